package lifecycle

import (
	"context"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a lifecycle repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *repository) FindSubmissionIDsByCode(ctx context.Context, codes []string) ([]uuid.UUID, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("code IN ?", codes).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) MemberSubmissionIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("position ASC").
		Pluck("submission_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AdvanceSubmissions performs the forward-only move as one conditional UPDATE:
// only rows whose current status ranks below the target are touched, so
// concurrent callers cannot regress a submission regardless of interleaving.
func (r *repository) AdvanceSubmissions(ctx context.Context, ids []uuid.UUID, target enums.SubmissionStatus, below []enums.SubmissionStatus) ([]uuid.UUID, error) {
	if len(ids) == 0 || len(below) == 0 {
		return nil, nil
	}
	updates := map[string]any{"status": target}
	if target == enums.SubmissionStatusPaid {
		updates["paid_at"] = gorm.Expr("COALESCE(paid_at, NOW())")
	}
	var updated []models.Submission
	err := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).
		Where("id IN ?", ids).
		Where("status IN ?", below).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	updatedIDs := make([]uuid.UUID, 0, len(updated))
	for _, submission := range updated {
		updatedIDs = append(updatedIDs, submission.ID)
	}
	return updatedIDs, nil
}

func (r *repository) AdvanceCards(ctx context.Context, submissionIDs []uuid.UUID, target enums.SubmissionStatus, below []enums.SubmissionStatus) (int64, error) {
	if len(submissionIDs) == 0 || len(below) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Card{}).
		Where("submission_id IN ?", submissionIDs).
		Where("status IN ?", below).
		Update("status", target)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
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

func (r *repository) FindGroupBySubmission(ctx context.Context, submissionID uuid.UUID) (*models.GradingGroup, error) {
	var group models.GradingGroup
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = grading_groups.id").
		Where("group_members.submission_id = ?", submissionID).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) UpdateGroup(ctx context.Context, groupID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.GradingGroup{}).
		Where("id = ?", groupID).
		Updates(updates).Error
}

func (r *repository) SetSubmissionStatus(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) SetCardStatusBySubmission(ctx context.Context, submissionID uuid.UUID, status enums.SubmissionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Card{}).
		Where("submission_id = ?", submissionID).
		Update("status", status).Error
}
