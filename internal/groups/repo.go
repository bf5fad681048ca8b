package groups

import (
	"context"
	"strings"
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

// NewRepository builds a groups repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error) {
	var group models.GradingGroup
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) FindGroupByCode(ctx context.Context, code string) (*models.GradingGroup, error) {
	var group models.GradingGroup
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) FindGroupForUpdate(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error) {
	var group models.GradingGroup
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) FindGroupDetail(ctx context.Context, id uuid.UUID) (*models.GradingGroup, error) {
	var group models.GradingGroup
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Members.Submission").
		Preload("GroupCards", func(db *gorm.DB) *gorm.DB {
			return db.Order("card_no ASC")
		}).
		Preload("GroupCards.Card").
		Where("id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) ListGroups(ctx context.Context, params pagination.Params, filters GroupFilters) (*GroupList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Table("grading_groups g").
		Select(strings.Join([]string{
			"g.id",
			"g.code",
			"g.status",
			"g.reopen_hold",
			"g.shipped_at",
			"g.returned_at",
			"g.created_at",
			"(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id) AS member_count",
			"(SELECT COUNT(*) FROM group_cards gc WHERE gc.group_id = g.id) AS card_count",
		}, ", "))

	if filters.Status != nil {
		query = query.Where("g.status = ?", *filters.Status)
	}
	if trimmed := strings.TrimSpace(filters.Search); trimmed != "" {
		query = query.Where("g.code ILIKE ?", "%"+trimmed+"%")
	}
	if cursor != nil {
		query = query.Where("(g.created_at < ?) OR (g.created_at = ? AND g.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	type groupRecord struct {
		ID          uuid.UUID
		Code        string
		Status      string
		ReopenHold  bool
		ShippedAt   *time.Time
		ReturnedAt  *time.Time
		CreatedAt   time.Time
		MemberCount int
		CardCount   int
	}

	var records []groupRecord
	err = query.Order("g.created_at DESC").Order("g.id DESC").
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

	list := &GroupList{
		Groups:     make([]GroupSummary, 0, len(records)),
		NextCursor: nextCursor,
	}
	for _, record := range records {
		list.Groups = append(list.Groups, GroupSummary{
			ID:          record.ID,
			Code:        record.Code,
			Status:      enums.GroupStatus(record.Status),
			ReopenHold:  record.ReopenHold,
			MemberCount: record.MemberCount,
			CardCount:   record.CardCount,
			ShippedAt:   record.ShippedAt,
			ReturnedAt:  record.ReturnedAt,
			CreatedAt:   record.CreatedAt,
		})
	}
	return list, nil
}

func (r *repository) CreateGroup(ctx context.Context, group *models.GradingGroup) (*models.GradingGroup, error) {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (r *repository) UpdateGroup(ctx context.Context, groupID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.GradingGroup{}).
		Where("id = ?", groupID).
		Updates(updates).Error
}

func (r *repository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("position ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) ListGroupCards(ctx context.Context, groupID uuid.UUID) ([]models.GroupCard, error) {
	var cards []models.GroupCard
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("card_no ASC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *repository) MembershipsBySubmissions(ctx context.Context, submissionIDs []uuid.UUID) ([]models.GroupMember, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}
	var members []models.GroupMember
	err := r.db.WithContext(ctx).
		Where("submission_id IN ?", submissionIDs).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) CreateMembers(ctx context.Context, members []models.GroupMember) error {
	if len(members) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&members).Error
}

func (r *repository) CreateGroupCards(ctx context.Context, cards []models.GroupCard) error {
	if len(cards) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cards).Error
}

func (r *repository) DeleteMembers(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (int64, error) {
	if len(submissionIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Where("submission_id IN ?", submissionIDs).
		Delete(&models.GroupMember{})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteGroupCardsBySubmissions(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (int64, error) {
	if len(submissionIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Where("card_id IN (?)", r.db.Model(&models.Card{}).Select("id").Where("submission_id IN ?", submissionIDs)).
		Delete(&models.GroupCard{})
	return result.RowsAffected, result.Error
}

func (r *repository) CardIDsBySubmissions(ctx context.Context, submissionIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Card{}).
		Where("submission_id IN ?", submissionIDs).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) CountSubmissions(ctx context.Context, submissionIDs []uuid.UUID) (int64, error) {
	if len(submissionIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id IN ?", submissionIDs).
		Count(&count).Error
	return count, err
}

func (r *repository) ShiftMemberPositions(ctx context.Context, groupID uuid.UUID, offset int) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Update("position", gorm.Expr("position + ?", offset)).Error
}

func (r *repository) ShiftCardNumbers(ctx context.Context, groupID uuid.UUID, offset int) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupCard{}).
		Where("group_id = ?", groupID).
		Update("card_no", gorm.Expr("card_no + ?", offset)).Error
}

func (r *repository) SetMemberPosition(ctx context.Context, groupID, submissionID uuid.UUID, position int) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Where("submission_id = ?", submissionID).
		Update("position", position).Error
}

func (r *repository) SetCardNumber(ctx context.Context, groupID, cardID uuid.UUID, cardNo int) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupCard{}).
		Where("group_id = ?", groupID).
		Where("card_id = ?", cardID).
		Update("card_no", cardNo).Error
}
