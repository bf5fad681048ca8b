package billing

import (
	"context"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for invoices and billing settings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindEligibleSubmissionsByEmail(ctx context.Context, email string) ([]models.Submission, error)
	FindEligibleSubmissionsByID(ctx context.Context, ids []uuid.UUID) ([]models.Submission, error)
	FindSubmissionsWithCards(ctx context.Context, ids []uuid.UUID) ([]models.Submission, error)
	FindOpenInvoice(ctx context.Context, email, addressKey string) (*models.Invoice, error)
	// FindOpenInvoicesWithoutDraft returns pending or draft invoices with no
	// external draft reference for the given customers. An empty email set
	// matches nothing.
	FindOpenInvoicesWithoutDraft(ctx context.Context, emails []string) ([]models.Invoice, error)
	FindInvoiceByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListInvoicesByEmail(ctx context.Context, email string, params pagination.Params) (*InvoiceList, error)
	CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, updates map[string]any) error
	UpsertInvoiceItems(ctx context.Context, items []models.InvoiceItem) error
	UpsertInvoiceSubmissions(ctx context.Context, links []models.InvoiceSubmission) error
	SumInvoiceItems(ctx context.Context, invoiceID uuid.UUID) (subtotalCents, shippingCents int, err error)
	GetBillingSettings(ctx context.Context) (*models.BillingSettings, error)
	SaveBillingSettings(ctx context.Context, settings *models.BillingSettings) error
}
