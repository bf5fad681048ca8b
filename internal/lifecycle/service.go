package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service applies forward-only status moves and the sanctioned correction path.
type Service interface {
	AdvanceSubmissions(ctx context.Context, input AdvanceInput) (*AdvanceResult, error)
	CorrectSubmissionStatus(ctx context.Context, submissionID uuid.UUID, status enums.SubmissionStatus) error
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.EngineMetrics
}

// AdvanceInput identifies which submissions to move and where to move them.
// IDs and codes are merged; GroupID additionally pulls in the group's members
// and triggers the group status cascade after the advance.
type AdvanceInput struct {
	Target        enums.SubmissionStatus
	SubmissionIDs []uuid.UUID
	Codes         []string
	GroupID       uuid.UUID
	RequireMatch  bool
}

// AdvanceResult reports rows actually changed. Zero counts are a success:
// everything requested was already at or past the target.
type AdvanceResult struct {
	UpdatedSubmissions int
	UpdatedCards       int
	Group              *models.GradingGroup
}

// NewService builds a lifecycle service. Metrics may be nil.
func NewService(repo Repository, tx txRunner, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("lifecycle repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		metrics: engineMetrics,
	}, nil
}

func (s *service) AdvanceSubmissions(ctx context.Context, input AdvanceInput) (*AdvanceResult, error) {
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidStatus, fmt.Sprintf("unknown submission status %q", input.Target))
	}
	below, err := enums.SubmissionStatusesBelow(input.Target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "rank target status")
	}

	result := &AdvanceResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ids, err := s.resolveTargets(ctx, repo, input)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			if input.RequireMatch {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no submissions matched the request")
			}
			return nil
		}

		updatedIDs, err := repo.AdvanceSubmissions(ctx, ids, input.Target, below)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance submissions")
		}
		result.UpdatedSubmissions = len(updatedIDs)

		if len(updatedIDs) > 0 {
			cards, err := repo.AdvanceCards(ctx, updatedIDs, input.Target, below)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "cascade card statuses")
			}
			result.UpdatedCards = int(cards)
		}

		if input.GroupID != uuid.Nil {
			group, err := s.cascadeGroup(ctx, repo, input.GroupID, input.Target)
			if err != nil {
				return err
			}
			result.Group = group
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AddStatusAdvances("submissions", result.UpdatedSubmissions)
	s.metrics.AddStatusAdvances("cards", result.UpdatedCards)
	return result, nil
}

func (s *service) resolveTargets(ctx context.Context, repo Repository, input AdvanceInput) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(input.SubmissionIDs))
	ids = append(ids, input.SubmissionIDs...)

	if input.GroupID != uuid.Nil {
		memberIDs, err := repo.MemberSubmissionIDs(ctx, input.GroupID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group members")
		}
		ids = append(ids, memberIDs...)
	}
	if len(input.Codes) > 0 {
		codeIDs, err := repo.FindSubmissionIDsByCode(ctx, input.Codes)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve submission codes")
		}
		ids = append(ids, codeIDs...)
	}
	return dedupeIDs(ids), nil
}

// cascadeGroup recomputes the group's status from the advanced target. The
// group only moves when the mapped rank exceeds its current rank, and the
// shipped/returned stamps are written once and never overwritten.
func (s *service) cascadeGroup(ctx context.Context, repo Repository, groupID uuid.UUID, target enums.SubmissionStatus) (*models.GradingGroup, error) {
	group, err := repo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}

	groupTarget, ok := GroupTargetFor(target)
	if !ok {
		return group, nil
	}
	targetRank, err := groupTarget.Rank()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "rank group target")
	}
	currentRank, err := group.Status.Rank()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank stored group status")
	}
	if targetRank <= currentRank {
		return group, nil
	}

	now := time.Now().UTC()
	updates := map[string]any{"status": groupTarget}
	if groupTarget == enums.GroupStatusAtPSA && group.ShippedAt == nil {
		updates["shipped_at"] = now
	}
	if groupTarget == enums.GroupStatusReturned && group.ReturnedAt == nil {
		updates["returned_at"] = now
	}
	if err := repo.UpdateGroup(ctx, groupID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "persist group status")
	}

	group.Status = groupTarget
	if groupTarget == enums.GroupStatusAtPSA && group.ShippedAt == nil {
		group.ShippedAt = &now
	}
	if groupTarget == enums.GroupStatusReturned && group.ReturnedAt == nil {
		group.ReturnedAt = &now
	}
	return group, nil
}

func (s *service) CorrectSubmissionStatus(ctx context.Context, submissionID uuid.UUID, status enums.SubmissionStatus) error {
	if submissionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "submission id required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInvalidStatus, fmt.Sprintf("unknown submission status %q", status))
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		submission, err := repo.FindSubmission(ctx, submissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
		}

		if enums.IsForwardSubmissionMove(&submission.Status, status) {
			below, err := enums.SubmissionStatusesBelow(status)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "rank target status")
			}
			updatedIDs, err := repo.AdvanceSubmissions(ctx, []uuid.UUID{submission.ID}, status, below)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance submission")
			}
			if len(updatedIDs) == 0 {
				return nil
			}
			if _, err := repo.AdvanceCards(ctx, updatedIDs, status, below); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "cascade card statuses")
			}
			return nil
		}

		group, err := repo.FindGroupBySubmission(ctx, submission.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeCannotMoveBackward, "submission is not in a reopened group")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission group")
		}
		if !group.ReopenHold {
			return pkgerrors.New(pkgerrors.CodeCannotMoveBackward, "group is not flagged for reopen")
		}

		if err := repo.SetSubmissionStatus(ctx, submission.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "correct submission status")
		}
		if err := repo.SetCardStatusBySubmission(ctx, submission.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "correct card statuses")
		}
		return nil
	})
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
