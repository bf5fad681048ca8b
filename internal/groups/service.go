package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slabworks/slabdesk-backend/internal/lifecycle"
	"github.com/slabworks/slabdesk-backend/pkg/db"
	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/metrics"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// renumberOffset keeps phase-one temporary numbers disjoint from any live
// 1..N numbering so the unique index never collides mid-rewrite.
const renumberOffset = 1 << 20

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines group-level operations: status moves, membership edits,
// ordering maintenance, and the reopen correction window.
type Service interface {
	CreateGroup(ctx context.Context, code string) (*models.GradingGroup, error)
	ListGroups(ctx context.Context, params pagination.Params, filters GroupFilters) (*GroupList, error)
	GetGroupDetail(ctx context.Context, groupID uuid.UUID) (*models.GradingGroup, error)
	GetGroupByCode(ctx context.Context, code string) (*models.GradingGroup, error)
	SetGroupStatus(ctx context.Context, groupID uuid.UUID, requested string) (*SetStatusResult, error)
	AddSubmissionsToGroup(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (*MembershipResult, error)
	RemoveSubmissionsFromGroup(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (*MembershipResult, error)
	ReorderGroupCards(ctx context.Context, groupID uuid.UUID, orderedCardIDs []uuid.UUID) error
	RepackCardOrder(ctx context.Context, groupID uuid.UUID) error
	RepackMemberPositions(ctx context.Context, groupID uuid.UUID) error
	ReopenGroup(ctx context.Context, groupID uuid.UUID) (*models.GradingGroup, error)
	ResumeGroup(ctx context.Context, groupID uuid.UUID) (*models.GradingGroup, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	lifecycle lifecycle.Service
	metrics   *metrics.EngineMetrics
}

// NewService builds a groups service. Metrics may be nil.
func NewService(repo Repository, tx txRunner, lifecycleSvc lifecycle.Service, engineMetrics *metrics.EngineMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("groups repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if lifecycleSvc == nil {
		return nil, fmt.Errorf("lifecycle service required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		lifecycle: lifecycleSvc,
		metrics:   engineMetrics,
	}, nil
}

func (s *service) CreateGroup(ctx context.Context, code string) (*models.GradingGroup, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group code required")
	}
	group := &models.GradingGroup{
		Code:   code,
		Status: enums.GroupStatusDraft,
	}
	created, err := s.repo.CreateGroup(ctx, group)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_grading_groups_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "group code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create group")
	}
	return created, nil
}

func (s *service) ListGroups(ctx context.Context, params pagination.Params, filters GroupFilters) (*GroupList, error) {
	list, err := s.repo.ListGroups(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list groups")
	}
	return list, nil
}

func (s *service) GetGroupDetail(ctx context.Context, groupID uuid.UUID) (*models.GradingGroup, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	group, err := s.repo.FindGroupDetail(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}
	return group, nil
}

// GetGroupByCode resolves the business code to a group and returns the same
// detail shape as GetGroupDetail.
func (s *service) GetGroupByCode(ctx context.Context, code string) (*models.GradingGroup, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group code required")
	}
	group, err := s.repo.FindGroupByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}
	return s.GetGroupDetail(ctx, group.ID)
}

// SetGroupStatus applies a requested status to every member submission with
// card cascade, then recomputes the group status. The ready_to_ship alias is
// a group-only move and never touches submissions.
func (s *service) SetGroupStatus(ctx context.Context, groupID uuid.UUID, requested string) (*SetStatusResult, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	requested = strings.ToLower(strings.TrimSpace(requested))

	group, err := s.repo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}

	if requested == enums.GroupStatusReadyToShip.String() {
		return s.setReadyToShip(ctx, group)
	}

	target, err := enums.ParseSubmissionStatus(requested)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "parse requested status")
	}

	advanced, err := s.lifecycle.AdvanceSubmissions(ctx, lifecycle.AdvanceInput{
		Target:  target,
		GroupID: groupID,
	})
	if err != nil {
		return nil, err
	}
	result := &SetStatusResult{
		UpdatedSubmissions: advanced.UpdatedSubmissions,
		UpdatedCards:       advanced.UpdatedCards,
		Group:              advanced.Group,
	}
	if result.Group == nil {
		result.Group = group
	}
	return result, nil
}

func (s *service) setReadyToShip(ctx context.Context, group *models.GradingGroup) (*SetStatusResult, error) {
	result := &SetStatusResult{Group: group}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		locked, err := repo.FindGroupForUpdate(ctx, group.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock group")
		}
		targetRank, err := enums.GroupStatusReadyToShip.Rank()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "rank ready_to_ship")
		}
		currentRank, err := locked.Status.Rank()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank stored group status")
		}
		if targetRank <= currentRank {
			result.Group = locked
			return nil
		}
		if err := repo.UpdateGroup(ctx, locked.ID, map[string]any{"status": enums.GroupStatusReadyToShip}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist group status")
		}
		locked.Status = enums.GroupStatusReadyToShip
		result.Group = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) AddSubmissionsToGroup(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (*MembershipResult, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	if len(submissionIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission ids required")
	}

	result := &MembershipResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		group, err := s.lockEditableGroup(ctx, repo, groupID)
		if err != nil {
			return err
		}

		count, err := repo.CountSubmissions(ctx, submissionIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify submissions")
		}
		if int(count) != len(submissionIDs) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "one or more submissions not found")
		}

		memberships, err := repo.MembershipsBySubmissions(ctx, submissionIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing members")
		}
		existing := make([]uuid.UUID, 0, len(memberships))
		for _, member := range memberships {
			if member.GroupID != group.ID {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("submission %s already belongs to another group", member.SubmissionID))
			}
			existing = append(existing, member.SubmissionID)
		}
		newIDs := subtractIDs(submissionIDs, existing)
		if len(newIDs) == 0 {
			return nil
		}

		members, err := repo.ListMembers(ctx, group.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
		}
		newMembers := make([]models.GroupMember, 0, len(newIDs))
		for i, id := range newIDs {
			newMembers = append(newMembers, models.GroupMember{
				GroupID:      group.ID,
				SubmissionID: id,
				Position:     len(members) + i + 1,
			})
		}
		if err := repo.CreateMembers(ctx, newMembers); err != nil {
			if db.IsUniqueViolation(err, "idx_group_members_submission") {
				return pkgerrors.New(pkgerrors.CodeConflict, "one or more submissions already belong to another group")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add members")
		}

		cardIDs, err := repo.CardIDsBySubmissions(ctx, newIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "load submission cards")
		}
		groupCards, err := repo.ListGroupCards(ctx, group.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "list group cards")
		}
		newCards := make([]models.GroupCard, 0, len(cardIDs))
		for i, cardID := range cardIDs {
			newCards = append(newCards, models.GroupCard{
				GroupID: group.ID,
				CardID:  cardID,
				CardNo:  len(groupCards) + i + 1,
			})
		}
		if err := repo.CreateGroupCards(ctx, newCards); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "add group cards")
		}

		if err := s.repackMembers(ctx, repo, group.ID); err != nil {
			return err
		}
		if err := s.repackCards(ctx, repo, group.ID); err != nil {
			return err
		}

		result.Submissions = len(newIDs)
		result.Cards = len(cardIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) RemoveSubmissionsFromGroup(ctx context.Context, groupID uuid.UUID, submissionIDs []uuid.UUID) (*MembershipResult, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	if len(submissionIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission ids required")
	}

	result := &MembershipResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		group, err := s.lockEditableGroup(ctx, repo, groupID)
		if err != nil {
			return err
		}

		removedCards, err := repo.DeleteGroupCardsBySubmissions(ctx, group.ID, submissionIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove group cards")
		}
		removedMembers, err := repo.DeleteMembers(ctx, group.ID, submissionIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "remove members")
		}

		if err := s.repackMembers(ctx, repo, group.ID); err != nil {
			return err
		}
		if err := s.repackCards(ctx, repo, group.ID); err != nil {
			return err
		}

		result.Submissions = int(removedMembers)
		result.Cards = int(removedCards)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReorderGroupCards rewrites the card order to the provided sequence. The
// input must be an exact permutation of the group's current cards.
func (s *service) ReorderGroupCards(ctx context.Context, groupID uuid.UUID, orderedCardIDs []uuid.UUID) error {
	if groupID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.lockEditableGroup(ctx, repo, groupID); err != nil {
			return err
		}

		current, err := repo.ListGroupCards(ctx, groupID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list group cards")
		}
		if len(orderedCardIDs) != len(current) {
			return pkgerrors.New(pkgerrors.CodeValidation, "card ids are not an exact permutation of the group")
		}
		currentSet := make(map[uuid.UUID]struct{}, len(current))
		for _, gc := range current {
			currentSet[gc.CardID] = struct{}{}
		}
		seen := make(map[uuid.UUID]struct{}, len(orderedCardIDs))
		for _, cardID := range orderedCardIDs {
			if _, ok := currentSet[cardID]; !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "card ids are not an exact permutation of the group")
			}
			if _, dup := seen[cardID]; dup {
				return pkgerrors.New(pkgerrors.CodeValidation, "card ids are not an exact permutation of the group")
			}
			seen[cardID] = struct{}{}
		}

		if err := repo.ShiftCardNumbers(ctx, groupID, renumberOffset); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "shift card numbers")
		}
		for i, cardID := range orderedCardIDs {
			if err := repo.SetCardNumber(ctx, groupID, cardID, i+1); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "assign card number")
			}
		}
		s.metrics.IncRepack("cards")
		return nil
	})
}

func (s *service) RepackCardOrder(ctx context.Context, groupID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindGroupForUpdate(ctx, groupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock group")
		}
		return s.repackCards(ctx, repo, groupID)
	})
}

func (s *service) RepackMemberPositions(ctx context.Context, groupID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindGroupForUpdate(ctx, groupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock group")
		}
		return s.repackMembers(ctx, repo, groupID)
	})
}

// ReopenGroup flags the group for correction and steps its status back to the
// immediately prior state. This is the only sanctioned backward group move.
func (s *service) ReopenGroup(ctx context.Context, groupID uuid.UUID) (*models.GradingGroup, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	var reopened *models.GradingGroup
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		group, err := repo.FindGroupForUpdate(ctx, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock group")
		}
		rank, err := group.Status.Rank()
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank stored group status")
		}
		if rank == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "draft groups cannot be reopened")
		}
		prior := enums.GroupStatusOrder[rank-1]
		updates := map[string]any{
			"status":      prior,
			"reopen_hold": true,
		}
		if err := repo.UpdateGroup(ctx, group.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reopen group")
		}
		group.Status = prior
		group.ReopenHold = true
		reopened = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reopened, nil
}

// ResumeGroup closes the correction window by clearing reopen_hold.
func (s *service) ResumeGroup(ctx context.Context, groupID uuid.UUID) (*models.GradingGroup, error) {
	if groupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group id required")
	}
	group, err := s.repo.FindGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load group")
	}
	if !group.ReopenHold {
		return group, nil
	}
	if err := s.repo.UpdateGroup(ctx, group.ID, map[string]any{"reopen_hold": false}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear reopen hold")
	}
	group.ReopenHold = false
	return group, nil
}

func (s *service) lockEditableGroup(ctx context.Context, repo Repository, groupID uuid.UUID) (*models.GradingGroup, error) {
	group, err := repo.FindGroupForUpdate(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock group")
	}
	if !group.Status.IsEditable() {
		return nil, pkgerrors.New(pkgerrors.CodeGroupLocked, fmt.Sprintf("group %s is not editable in status %s", group.Code, group.Status))
	}
	return group, nil
}

// repackCards restores dense 1..N card numbering in prior relative order.
// Phase one shifts every row out of the live numbering range; phase two
// assigns the final numbers.
func (s *service) repackCards(ctx context.Context, repo Repository, groupID uuid.UUID) error {
	cards, err := repo.ListGroupCards(ctx, groupID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list group cards")
	}
	if err := repo.ShiftCardNumbers(ctx, groupID, renumberOffset); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "shift card numbers")
	}
	for i, gc := range cards {
		if err := repo.SetCardNumber(ctx, groupID, gc.CardID, i+1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "assign card number")
		}
	}
	s.metrics.IncRepack("cards")
	return nil
}

func (s *service) repackMembers(ctx context.Context, repo Repository, groupID uuid.UUID) error {
	members, err := repo.ListMembers(ctx, groupID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	if err := repo.ShiftMemberPositions(ctx, groupID, renumberOffset); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "shift member positions")
	}
	for i, member := range members {
		if err := repo.SetMemberPosition(ctx, groupID, member.SubmissionID, i+1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePartialWrite, err, "assign member position")
		}
	}
	s.metrics.IncRepack("members")
	return nil
}

func subtractIDs(ids, remove []uuid.UUID) []uuid.UUID {
	if len(remove) == 0 {
		return ids
	}
	removeSet := make(map[uuid.UUID]struct{}, len(remove))
	for _, id := range remove {
		removeSet[id] = struct{}{}
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := removeSet[id]; ok {
			continue
		}
		out = append(out, id)
	}
	return out
}
