package groups

import (
	"context"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for groups and their ordered
// membership tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindGroupByID(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error)
	FindGroupByCode(ctx context.Context, code string) (*models.GradingGroup, error)
	// FindGroupForUpdate takes a row lock on the group so concurrent repacks
	// serialize instead of interleaving phase writes.
	FindGroupForUpdate(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error)
	FindGroupDetail(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error)
	ListGroups(ctx context.Context, params pagination.Params, filters GroupFilters) (*GroupList, error)
	CreateGroup(ctx context.Context, group *models.GradingGroup) (*models.GradingGroup, error)
	UpdateGroup(ctx context.Context, groupID uuid.UUID, updates map[string]any) error
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error)
	ListGroupCards(ctx context.Context, groupID uuid.UUID) ([]models.GroupCard, error)
	// MembershipsBySubmissions returns every membership row for the given
	// submissions across all groups. Membership is exclusive, so any row in
	// a different group blocks an add.
	MembershipsBySubmissions(ctx context.Context, submissionIDs []uuid.UUID) ([]models.GroupMember, error)
	CreateMembers(ctx context.Context, members []models.GroupMember) error
	CreateGroupCards(ctx context.Context, cards []models.GroupCard) error
	DeleteMembers(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (int64, error)
	DeleteGroupCardsBySubmissions(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (int64, error)
	CardIDsBySubmissions(ctx context.Context, submissionIDs []uuid.UUID) ([]uuid.UUID, error)
	CountSubmissions(ctx context.Context, submissionIDs []uuid.UUID) (int64, error)
	ShiftMemberPositions(ctx context.Context, groupID uuid.UUID, offset int) error
	ShiftCardNumbers(ctx context.Context, groupID uuid.UUID, offset int) error
	SetMemberPosition(ctx context.Context, groupID, submissionID uuid.UUID, position int) error
	SetCardNumber(ctx context.Context, groupID, cardID uuid.UUID, cardNo int) error
}
