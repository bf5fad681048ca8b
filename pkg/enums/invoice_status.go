package enums

import "fmt"

// InvoiceStatus tracks a billing invoice from staging through settlement.
type InvoiceStatus string

const (
	InvoiceStatusPending    InvoiceStatus = "pending"
	InvoiceStatusDraft      InvoiceStatus = "draft"
	InvoiceStatusSent       InvoiceStatus = "sent"
	InvoiceStatusPaid       InvoiceStatus = "paid"
	InvoiceStatusClosed     InvoiceStatus = "closed"
	InvoiceStatusSuperseded InvoiceStatus = "superseded"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusClosed,
	InvoiceStatusSuperseded,
}

// OpenInvoiceStatuses are the states in which an invoice still claims its
// submissions. A submission linked to an open invoice is not billable again.
var OpenInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusDraft,
	InvoiceStatusSent,
}

// String implements fmt.Stringer.
func (i InvoiceStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvoiceStatus.
func (i InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsOpen reports whether the invoice still claims its submissions.
func (i InvoiceStatus) IsOpen() bool {
	for _, candidate := range OpenInvoiceStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInvoiceStatus converts raw input into an InvoiceStatus.
func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	status := InvoiceStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid invoice status %q", value)
	}
	return status, nil
}
