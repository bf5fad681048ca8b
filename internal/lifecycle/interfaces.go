package lifecycle

import (
	"context"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the status lifecycle tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	FindSubmissionIDsByCode(ctx context.Context, codes []string) ([]uuid.UUID, error)
	MemberSubmissionIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	AdvanceSubmissions(ctx context.Context, ids []uuid.UUID, target enums.SubmissionStatus, below []enums.SubmissionStatus) ([]uuid.UUID, error)
	AdvanceCards(ctx context.Context, submissionIDs []uuid.UUID, target enums.SubmissionStatus, below []enums.SubmissionStatus) (int64, error)
	FindGroupByID(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error)
	FindGroupBySubmission(ctx context.Context, submissionID uuid.UUID) (*models.GradingGroup, error)
	UpdateGroup(ctx context.Context, groupID uuid.UUID, updates map[string]any) error
	SetSubmissionStatus(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus) error
	SetCardStatusBySubmission(ctx context.Context, submissionID uuid.UUID, status enums.SubmissionStatus) error
}
