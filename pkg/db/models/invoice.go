package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/slabworks/slabdesk-backend/pkg/types"
)

// Invoice bills one customer for returned submissions grouped by shipping
// address. Totals always equal the sum of current line items plus shipping.
type Invoice struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerEmail      string                 `gorm:"column:customer_email;not null;index"`
	CustomerExternalID *string                `gorm:"column:customer_external_id"`
	AddressKey         string                 `gorm:"column:address_key;not null;index"`
	ShippingAddress    *types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Status             enums.InvoiceStatus    `gorm:"column:status;type:invoice_status;not null;default:'pending'"`
	Currency           string                 `gorm:"column:currency;not null;default:'USD'"`
	SubtotalCents      int                    `gorm:"column:subtotal_cents;not null;default:0"`
	ShippingCents      int                    `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents         int                    `gorm:"column:total_cents;not null;default:0"`
	ExternalDraftID    *string                `gorm:"column:external_draft_id"`
	ExternalDraftURL   *string                `gorm:"column:external_draft_url"`
	SupersededByID     *uuid.UUID             `gorm:"column:superseded_by_id;type:uuid"`
	SentAt             *time.Time             `gorm:"column:sent_at"`
	Items              []InvoiceItem          `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Submissions        []InvoiceSubmission    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// InvoiceItem is one billing line. The (invoice_id, item_id, kind) key makes
// repeated assembly runs update in place instead of duplicating lines.
type InvoiceItem struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID      uuid.UUID             `gorm:"column:invoice_id;type:uuid;not null;uniqueIndex:idx_invoice_items_key,priority:1"`
	ItemID         uuid.UUID             `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_invoice_items_key,priority:2"`
	Kind           enums.InvoiceItemKind `gorm:"column:kind;type:invoice_item_kind;not null;uniqueIndex:idx_invoice_items_key,priority:3"`
	Description    string                `gorm:"column:description;not null"`
	Qty            int                   `gorm:"column:qty;not null;default:1"`
	UnitPriceCents int                   `gorm:"column:unit_price_cents;not null"`
	UpchargeCents  int                   `gorm:"column:upcharge_cents;not null;default:0"`
	TotalCents     int                   `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// InvoiceSubmission links an invoice to the submissions it covers. A
// submission may appear on at most one open invoice at a time; the guard is
// enforced by the billing eligibility query, not a constraint, because closed
// and superseded invoices keep their links for history.
type InvoiceSubmission struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID      uuid.UUID `gorm:"column:invoice_id;type:uuid;not null;uniqueIndex:idx_invoice_submissions_key,priority:1"`
	SubmissionID   uuid.UUID `gorm:"column:submission_id;type:uuid;not null;uniqueIndex:idx_invoice_submissions_key,priority:2;index"`
	SubmissionCode string    `gorm:"column:submission_code;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
