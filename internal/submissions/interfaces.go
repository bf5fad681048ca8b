package submissions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
)

// Repository defines persistence operations for submissions and their cards.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSubmission(ctx context.Context, submission *models.Submission) (*models.Submission, error)
	FindSubmissionByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	FindSubmissionByCode(ctx context.Context, code string) (*models.Submission, error)
	ListSubmissions(ctx context.Context, params pagination.Params, filters SubmissionFilters) (*SubmissionList, error)
}
