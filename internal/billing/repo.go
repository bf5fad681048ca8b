package billing

import (
	"context"
	"errors"
	"time"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a billing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// openInvoiceSubmissionIDs is the subquery excluding submissions already
// linked to any open invoice.
func (r *repository) openInvoiceSubmissionIDs() *gorm.DB {
	return r.db.
		Model(&models.InvoiceSubmission{}).
		Select("invoice_submissions.submission_id").
		Joins("JOIN invoices ON invoices.id = invoice_submissions.invoice_id").
		Where("invoices.status IN ?", enums.OpenInvoiceStatuses)
}

func (r *repository) FindEligibleSubmissionsByEmail(ctx context.Context, email string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Cards").
		Where("customer_email = ?", email).
		Where("status = ?", enums.SubmissionStatusReceivedFromPSA).
		Where("id NOT IN (?)", r.openInvoiceSubmissionIDs()).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *repository) FindEligibleSubmissionsByID(ctx context.Context, ids []uuid.UUID) ([]models.Submission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Cards").
		Where("id IN ?", ids).
		Where("status = ?", enums.SubmissionStatusReceivedFromPSA).
		Where("id NOT IN (?)", r.openInvoiceSubmissionIDs()).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *repository) FindSubmissionsWithCards(ctx context.Context, ids []uuid.UUID) ([]models.Submission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Preload("Cards").
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *repository) FindOpenInvoice(ctx context.Context, email, addressKey string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Where("customer_email = ?", email).
		Where("address_key = ?", addressKey).
		Where("status IN ?", enums.OpenInvoiceStatuses).
		Order("created_at ASC").
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindOpenInvoicesWithoutDraft(ctx context.Context, emails []string) ([]models.Invoice, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Submissions").
		Where("status IN ?", []enums.InvoiceStatus{enums.InvoiceStatusPending, enums.InvoiceStatusDraft}).
		Where("external_draft_id IS NULL").
		Where("customer_email IN ?", emails).
		Order("created_at ASC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) FindInvoiceByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Submissions").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) ListInvoicesByEmail(ctx context.Context, email string, params pagination.Params) (*InvoiceList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.Invoice{})
	if email != "" {
		query = query.Where("customer_email = ?", email)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var invoices []models.Invoice
	err = query.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(invoices) > normalizedLimit {
		invoices = invoices[:normalizedLimit]
		last := invoices[len(invoices)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	list := &InvoiceList{
		Invoices:   make([]InvoiceSummary, 0, len(invoices)),
		NextCursor: nextCursor,
	}
	for _, invoice := range invoices {
		list.Invoices = append(list.Invoices, InvoiceSummary{
			ID:            invoice.ID,
			CustomerEmail: invoice.CustomerEmail,
			Status:        invoice.Status,
			SubtotalCents: invoice.SubtotalCents,
			ShippingCents: invoice.ShippingCents,
			TotalCents:    invoice.TotalCents,
			SentAt:        invoice.SentAt,
			CreatedAt:     invoice.CreatedAt,
		})
	}
	return list, nil
}

func (r *repository) CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *repository) UpdateInvoice(ctx context.Context, invoiceID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(updates).Error
}

// UpsertInvoiceItems inserts or updates lines keyed (invoice_id, item_id,
// kind) so repeated assembly runs update in place instead of duplicating.
func (r *repository) UpsertInvoiceItems(ctx context.Context, items []models.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "invoice_id"}, {Name: "item_id"}, {Name: "kind"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "qty", "unit_price_cents", "upcharge_cents", "total_cents", "updated_at",
			}),
		}).
		Create(&items).Error
}

func (r *repository) UpsertInvoiceSubmissions(ctx context.Context, links []models.InvoiceSubmission) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "invoice_id"}, {Name: "submission_id"}},
			DoNothing: true,
		}).
		Create(&links).Error
}

func (r *repository) SumInvoiceItems(ctx context.Context, invoiceID uuid.UUID) (int, int, error) {
	type kindTotal struct {
		Kind       enums.InvoiceItemKind
		TotalCents int
	}
	var totals []kindTotal
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceItem{}).
		Select("kind, SUM(total_cents) AS total_cents").
		Where("invoice_id = ?", invoiceID).
		Group("kind").
		Scan(&totals).Error
	if err != nil {
		return 0, 0, err
	}
	subtotal, shipping := 0, 0
	for _, row := range totals {
		if row.Kind == enums.InvoiceItemKindShipping {
			shipping += row.TotalCents
			continue
		}
		subtotal += row.TotalCents
	}
	return subtotal, shipping, nil
}

func (r *repository) GetBillingSettings(ctx context.Context) (*models.BillingSettings, error) {
	var settings models.BillingSettings
	err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repository) SaveBillingSettings(ctx context.Context, settings *models.BillingSettings) error {
	existing, err := r.GetBillingSettings(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		settings.ID = existing.ID
		settings.UpdatedAt = time.Now().UTC()
		return r.db.WithContext(ctx).Save(settings).Error
	}
	return r.db.WithContext(ctx).Create(settings).Error
}
