package enums

import "fmt"

// InvoiceItemKind distinguishes what a billing line item was priced from.
type InvoiceItemKind string

const (
	InvoiceItemKindCard       InvoiceItemKind = "card"
	InvoiceItemKindSubmission InvoiceItemKind = "submission"
	InvoiceItemKindShipping   InvoiceItemKind = "shipping"
)

var validInvoiceItemKinds = []InvoiceItemKind{
	InvoiceItemKindCard,
	InvoiceItemKindSubmission,
	InvoiceItemKindShipping,
}

// String implements fmt.Stringer.
func (k InvoiceItemKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known InvoiceItemKind.
func (k InvoiceItemKind) IsValid() bool {
	for _, candidate := range validInvoiceItemKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseInvoiceItemKind converts raw input into an InvoiceItemKind.
func ParseInvoiceItemKind(value string) (InvoiceItemKind, error) {
	kind := InvoiceItemKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid invoice item kind %q", value)
	}
	return kind, nil
}
