package submissions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a submissions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSubmission(ctx context.Context, submission *models.Submission) (*models.Submission, error) {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		return nil, err
	}
	return submission, nil
}

func (r *repository) FindSubmissionByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Cards").
		Where("id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *repository) FindSubmissionByCode(ctx context.Context, code string) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Preload("Cards").
		Where("code = ?", code).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *repository) ListSubmissions(ctx context.Context, params pagination.Params, filters SubmissionFilters) (*SubmissionList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("submissions s").
		Select("s.id, s.code, s.customer_email, s.status, s.card_count, s.paid_at, s.created_at")

	if filters.Status != nil {
		query = query.Where("s.status = ?", *filters.Status)
	}
	if trimmed := strings.TrimSpace(filters.Email); trimmed != "" {
		query = query.Where("s.customer_email = ?", strings.ToLower(trimmed))
	}
	if trimmed := strings.TrimSpace(filters.Search); trimmed != "" {
		query = query.Where("s.code ILIKE ?", "%"+trimmed+"%")
	}
	if cursor != nil {
		query = query.Where("(s.created_at < ?) OR (s.created_at = ? AND s.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	type submissionRecord struct {
		ID            uuid.UUID
		Code          string
		CustomerEmail string
		Status        string
		CardCount     int
		PaidAt        *time.Time
		CreatedAt     time.Time
	}

	var records []submissionRecord
	err = query.Order("s.created_at DESC").Order("s.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(records) > normalizedLimit {
		records = records[:normalizedLimit]
		last := records[len(records)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	list := &SubmissionList{
		Submissions: make([]SubmissionSummary, 0, len(records)),
		NextCursor:  nextCursor,
	}
	for _, record := range records {
		list.Submissions = append(list.Submissions, SubmissionSummary{
			ID:            record.ID,
			Code:          record.Code,
			CustomerEmail: record.CustomerEmail,
			Status:        enums.SubmissionStatus(record.Status),
			CardCount:     record.CardCount,
			PaidAt:        record.PaidAt,
			CreatedAt:     record.CreatedAt,
		})
	}
	return list, nil
}
