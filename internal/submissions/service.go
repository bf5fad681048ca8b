package submissions

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabworks/slabdesk-backend/pkg/db"
	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
)

// Service covers submission intake and the admin read side. Status moves live
// in the lifecycle service; this one never writes a status.
type Service interface {
	CreateSubmission(ctx context.Context, input CreateInput) (*SubmissionDetail, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*SubmissionDetail, error)
	GetSubmissionByCode(ctx context.Context, code string) (*SubmissionDetail, error)
	ListSubmissions(ctx context.Context, params pagination.Params, filters SubmissionFilters) (*SubmissionList, error)
}

type service struct {
	repo Repository
}

// NewService builds a submissions service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("submissions repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateSubmission(ctx context.Context, input CreateInput) (*SubmissionDetail, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission code required")
	}
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}

	submission := &models.Submission{
		Code:            code,
		CustomerEmail:   email,
		ShippingAddress: input.ShippingAddress,
		Status:          enums.SubmissionStatusPendingPayment,
	}
	for _, card := range input.Cards {
		submission.Cards = append(submission.Cards, models.Card{
			Description:    strings.TrimSpace(card.Description),
			Status:         enums.SubmissionStatusPendingPayment,
			UnitPriceCents: card.UnitPriceCents,
			UpchargeCents:  card.UpchargeCents,
		})
	}
	submission.CardCount = len(submission.Cards)
	if submission.CardCount == 0 && input.CardCount > 0 {
		submission.CardCount = input.CardCount
	}

	created, err := s.repo.CreateSubmission(ctx, submission)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_submissions_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "submission code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create submission")
	}
	return detailFromModel(created), nil
}

func (s *service) GetSubmission(ctx context.Context, id uuid.UUID) (*SubmissionDetail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission id required")
	}
	submission, err := s.repo.FindSubmissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}
	return detailFromModel(submission), nil
}

func (s *service) GetSubmissionByCode(ctx context.Context, code string) (*SubmissionDetail, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "submission code required")
	}
	submission, err := s.repo.FindSubmissionByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "submission not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load submission")
	}
	return detailFromModel(submission), nil
}

func (s *service) ListSubmissions(ctx context.Context, params pagination.Params, filters SubmissionFilters) (*SubmissionList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidStatus, "unknown submission status")
	}
	list, err := s.repo.ListSubmissions(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submissions")
	}
	return list, nil
}
