package billing

import (
	"time"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/slabworks/slabdesk-backend/pkg/types"
	"github.com/google/uuid"
)

// AssembleInput selects which submissions to bill. Either CustomerEmail or
// SubmissionIDs must be set; AddressGroups optionally pins submissions to
// explicit addresses instead of clustering by their stored ones.
type AssembleInput struct {
	CustomerEmail string
	SubmissionIDs []uuid.UUID
	AddressGroups []AddressGroup
}

// AddressGroup is an explicit address-to-submissions mapping.
type AddressGroup struct {
	Address       types.ShippingAddress
	SubmissionIDs []uuid.UUID
}

// DraftSummary reports one invoice produced or extended by an assembly run.
type DraftSummary struct {
	InvoiceID     uuid.UUID           `json:"invoice_id"`
	Status        enums.InvoiceStatus `json:"status"`
	DraftID       string              `json:"draft_id,omitempty"`
	DraftURL      string              `json:"draft_url,omitempty"`
	AddressKey    string              `json:"address_key"`
	Submissions   []string            `json:"submissions"`
	SubtotalCents int                 `json:"subtotal_cents"`
	TotalCents    int                 `json:"total_cents"`
	Error         string              `json:"error,omitempty"`
}

// SendResult reports a successful invoice send.
type SendResult struct {
	InvoiceID      uuid.UUID `json:"invoice_id"`
	SentTo         string    `json:"sent_to"`
	ExternalStatus string    `json:"external_status,omitempty"`
}

// InvoiceSummary exposes the fields shown in the admin invoice list.
type InvoiceSummary struct {
	ID            uuid.UUID           `json:"id"`
	CustomerEmail string              `json:"customer_email"`
	Status        enums.InvoiceStatus `json:"status"`
	SubtotalCents int                 `json:"subtotal_cents"`
	ShippingCents int                 `json:"shipping_cents"`
	TotalCents    int                 `json:"total_cents"`
	SentAt        *time.Time          `json:"sent_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// InvoiceList wraps the paginated invoices plus the next page cursor.
type InvoiceList struct {
	Invoices   []InvoiceSummary `json:"invoices"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// InvoiceItemDTO is one billing line on an invoice detail.
type InvoiceItemDTO struct {
	ItemID         uuid.UUID             `json:"item_id"`
	Kind           enums.InvoiceItemKind `json:"kind"`
	Description    string                `json:"description"`
	Qty            int                   `json:"qty"`
	UnitPriceCents int                   `json:"unit_price_cents"`
	UpchargeCents  int                   `json:"upcharge_cents"`
	TotalCents     int                   `json:"total_cents"`
}

// InvoiceDetail is the expanded invoice view with lines and covered submissions.
type InvoiceDetail struct {
	InvoiceSummary
	AddressKey      string                 `json:"address_key"`
	ShippingAddress *types.ShippingAddress `json:"shipping_address,omitempty"`
	Currency        string                 `json:"currency"`
	DraftID         string                 `json:"draft_id,omitempty"`
	DraftURL        string                 `json:"draft_url,omitempty"`
	SupersededByID  *uuid.UUID             `json:"superseded_by_id,omitempty"`
	Items           []InvoiceItemDTO       `json:"items"`
	Submissions     []string               `json:"submissions"`
}

func invoiceDetailFromModel(invoice *models.Invoice) *InvoiceDetail {
	detail := &InvoiceDetail{
		InvoiceSummary: InvoiceSummary{
			ID:            invoice.ID,
			CustomerEmail: invoice.CustomerEmail,
			Status:        invoice.Status,
			SubtotalCents: invoice.SubtotalCents,
			ShippingCents: invoice.ShippingCents,
			TotalCents:    invoice.TotalCents,
			SentAt:        invoice.SentAt,
			CreatedAt:     invoice.CreatedAt,
		},
		AddressKey:      invoice.AddressKey,
		ShippingAddress: invoice.ShippingAddress,
		Currency:        invoice.Currency,
		DraftID:         stringPtrValue(invoice.ExternalDraftID),
		DraftURL:        stringPtrValue(invoice.ExternalDraftURL),
		SupersededByID:  invoice.SupersededByID,
		Items:           make([]InvoiceItemDTO, 0, len(invoice.Items)),
		Submissions:     make([]string, 0, len(invoice.Submissions)),
	}
	for _, item := range invoice.Items {
		detail.Items = append(detail.Items, InvoiceItemDTO{
			ItemID:         item.ItemID,
			Kind:           item.Kind,
			Description:    item.Description,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			UpchargeCents:  item.UpchargeCents,
			TotalCents:     item.TotalCents,
		})
	}
	for _, link := range invoice.Submissions {
		detail.Submissions = append(detail.Submissions, link.SubmissionCode)
	}
	return detail
}

// SettingsInput carries human-entered rate values ("25.00" dollars).
type SettingsInput struct {
	UnitRate string `json:"unit_rate" validate:"required"`
	Shipping string `json:"shipping" validate:"required"`
	Currency string `json:"currency,omitempty"`
}

// SettingsDTO is the effective billing rate configuration.
type SettingsDTO struct {
	UnitRateCents int       `json:"unit_rate_cents"`
	ShippingCents int       `json:"shipping_cents"`
	Currency      string    `json:"currency"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func settingsFromModel(settings *models.BillingSettings) *SettingsDTO {
	return &SettingsDTO{
		UnitRateCents: settings.UnitRateCents,
		ShippingCents: settings.ShippingCents,
		Currency:      settings.Currency,
		UpdatedAt:     settings.UpdatedAt,
	}
}
