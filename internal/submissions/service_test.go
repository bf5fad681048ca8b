package submissions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
	"github.com/slabworks/slabdesk-backend/pkg/types"
)

type stubSubmissionsRepo struct {
	byCode map[string]*models.Submission
}

func newStubSubmissionsRepo() *stubSubmissionsRepo {
	return &stubSubmissionsRepo{byCode: map[string]*models.Submission{}}
}

func (s *stubSubmissionsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubSubmissionsRepo) CreateSubmission(ctx context.Context, submission *models.Submission) (*models.Submission, error) {
	if _, exists := s.byCode[submission.Code]; exists {
		return nil, &duplicateCodeError{}
	}
	submission.ID = uuid.New()
	s.byCode[submission.Code] = submission
	return submission, nil
}

func (s *stubSubmissionsRepo) FindSubmissionByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	for _, submission := range s.byCode {
		if submission.ID == id {
			return submission, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubmissionsRepo) FindSubmissionByCode(ctx context.Context, code string) (*models.Submission, error) {
	if submission, ok := s.byCode[code]; ok {
		return submission, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubmissionsRepo) ListSubmissions(ctx context.Context, params pagination.Params, filters SubmissionFilters) (*SubmissionList, error) {
	return &SubmissionList{}, nil
}

type duplicateCodeError struct{}

func (*duplicateCodeError) Error() string { return "duplicate key" }

func TestCreateSubmissionNormalizesIntake(t *testing.T) {
	repo := newStubSubmissionsRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	created, err := svc.CreateSubmission(context.Background(), CreateInput{
		Code:          " sub-101 ",
		CustomerEmail: " Dana@Example.COM ",
		ShippingAddress: &types.ShippingAddress{
			Name:  "Dana Reyes",
			Line1: "12 Elm St",
			City:  "Austin",
		},
		Cards: []CreateCardInput{
			{Description: "1999 Charizard Holo"},
			{Description: "2003 LeBron Rookie", UpchargeCents: 500},
		},
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if created.Code != "SUB-101" {
		t.Fatalf("expected upper-cased code, got %s", created.Code)
	}
	if created.CustomerEmail != "dana@example.com" {
		t.Fatalf("expected lower-cased email, got %s", created.CustomerEmail)
	}
	if created.Status != enums.SubmissionStatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", created.Status)
	}
	if created.CardCount != 2 || len(created.Cards) != 2 {
		t.Fatalf("expected 2 cards, got count=%d len=%d", created.CardCount, len(created.Cards))
	}
	for _, card := range created.Cards {
		if card.Status != enums.SubmissionStatusPendingPayment {
			t.Fatalf("card status should mirror submission, got %s", card.Status)
		}
	}
}

func TestCreateSubmissionCardCountFallback(t *testing.T) {
	svc, err := NewService(newStubSubmissionsRepo())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	created, err := svc.CreateSubmission(context.Background(), CreateInput{
		Code:          "SUB-102",
		CustomerEmail: "lee@example.com",
		CardCount:     4,
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if created.CardCount != 4 {
		t.Fatalf("expected declared card count kept, got %d", created.CardCount)
	}
}

func TestCreateSubmissionRequiresCodeAndEmail(t *testing.T) {
	svc, err := NewService(newStubSubmissionsRepo())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.CreateSubmission(context.Background(), CreateInput{CustomerEmail: "x@example.com"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for missing code, got %v", err)
	}

	_, err = svc.CreateSubmission(context.Background(), CreateInput{Code: "SUB-103"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for missing email, got %v", err)
	}
}

func TestGetSubmissionByCodeNotFound(t *testing.T) {
	svc, err := NewService(newStubSubmissionsRepo())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.GetSubmissionByCode(context.Background(), "SUB-404")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestListSubmissionsRejectsUnknownStatus(t *testing.T) {
	svc, err := NewService(newStubSubmissionsRepo())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	bogus := enums.SubmissionStatus("smashed")
	_, err = svc.ListSubmissions(context.Background(), pagination.Params{}, SubmissionFilters{Status: &bogus})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidStatus {
		t.Fatalf("expected INVALID_STATUS, got %v", err)
	}
}
