package types

// ShippingAddress is the customer-facing destination stored as jsonb on
// invoices. Normalization into a clustering key happens in the billing
// package; this type only carries the raw fields.
type ShippingAddress struct {
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Postal  string `json:"postal"`
	Country string `json:"country"`
}
