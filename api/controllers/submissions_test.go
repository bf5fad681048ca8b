package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/internal/lifecycle"
	"github.com/slabworks/slabdesk-backend/internal/submissions"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
)

type stubSubmissionsService struct {
	listFn   func(ctx context.Context, params pagination.Params, filters submissions.SubmissionFilters) (*submissions.SubmissionList, error)
	createFn func(ctx context.Context, input submissions.CreateInput) (*submissions.SubmissionDetail, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*submissions.SubmissionDetail, error)
	byCodeFn func(ctx context.Context, code string) (*submissions.SubmissionDetail, error)
}

func (s stubSubmissionsService) ListSubmissions(ctx context.Context, params pagination.Params, filters submissions.SubmissionFilters) (*submissions.SubmissionList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params, filters)
	}
	return &submissions.SubmissionList{}, nil
}

func (s stubSubmissionsService) CreateSubmission(ctx context.Context, input submissions.CreateInput) (*submissions.SubmissionDetail, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &submissions.SubmissionDetail{}, nil
}

func (s stubSubmissionsService) GetSubmission(ctx context.Context, id uuid.UUID) (*submissions.SubmissionDetail, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &submissions.SubmissionDetail{}, nil
}

func (s stubSubmissionsService) GetSubmissionByCode(ctx context.Context, code string) (*submissions.SubmissionDetail, error) {
	if s.byCodeFn != nil {
		return s.byCodeFn(ctx, code)
	}
	return &submissions.SubmissionDetail{}, nil
}

type stubLifecycleService struct {
	advanceFn func(ctx context.Context, input lifecycle.AdvanceInput) (*lifecycle.AdvanceResult, error)
	correctFn func(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus) error
}

func (s stubLifecycleService) AdvanceSubmissions(ctx context.Context, input lifecycle.AdvanceInput) (*lifecycle.AdvanceResult, error) {
	if s.advanceFn != nil {
		return s.advanceFn(ctx, input)
	}
	return &lifecycle.AdvanceResult{}, nil
}

func (s stubLifecycleService) CorrectSubmissionStatus(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus) error {
	if s.correctFn != nil {
		return s.correctFn(ctx, id, status)
	}
	return nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestSubmissionsListPassesFilters(t *testing.T) {
	submissionID := uuid.New()
	svc := stubSubmissionsService{
		listFn: func(ctx context.Context, params pagination.Params, filters submissions.SubmissionFilters) (*submissions.SubmissionList, error) {
			if params.Limit != 5 {
				t.Fatalf("unexpected limit %d", params.Limit)
			}
			if filters.Email != "collector@example.com" {
				t.Fatalf("unexpected email filter %q", filters.Email)
			}
			if filters.Status == nil || *filters.Status != enums.SubmissionStatusGraded {
				t.Fatalf("unexpected status filter %v", filters.Status)
			}
			return &submissions.SubmissionList{
				Submissions: []submissions.SubmissionSummary{{
					ID:     submissionID,
					Code:   "SUB-0001",
					Status: enums.SubmissionStatusGraded,
				}},
			}, nil
		},
	}

	handler := SubmissionsList(svc, nil)
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&email=collector@example.com&status=graded", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data submissions.SubmissionList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Submissions) != 1 || envelope.Data.Submissions[0].ID != submissionID {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestSubmissionsListRejectsUnknownStatus(t *testing.T) {
	handler := SubmissionsList(stubSubmissionsService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/?status=vaporized", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmissionsAdvanceStatusBuildsInput(t *testing.T) {
	firstID := uuid.New()
	groupID := uuid.New()
	svc := stubLifecycleService{
		advanceFn: func(ctx context.Context, input lifecycle.AdvanceInput) (*lifecycle.AdvanceResult, error) {
			if input.Target != enums.SubmissionStatusReceived {
				t.Fatalf("unexpected target %s", input.Target)
			}
			if len(input.SubmissionIDs) != 1 || input.SubmissionIDs[0] != firstID {
				t.Fatalf("unexpected ids %v", input.SubmissionIDs)
			}
			if input.GroupID != groupID {
				t.Fatalf("unexpected group id %s", input.GroupID)
			}
			if !input.RequireMatch {
				t.Fatalf("expected require_match to carry through")
			}
			return &lifecycle.AdvanceResult{UpdatedSubmissions: 1, UpdatedCards: 3}, nil
		},
	}

	body := `{"target":"received","submission_ids":["` + firstID.String() + `"],"group_id":"` + groupID.String() + `","require_match":true}`
	handler := SubmissionsAdvanceStatus(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data map[string]int `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["updated_submissions"] != 1 || envelope.Data["updated_cards"] != 3 {
		t.Fatalf("unexpected counts %v", envelope.Data)
	}
}

func TestSubmissionsAdvanceStatusRejectsUnknownTarget(t *testing.T) {
	handler := SubmissionsAdvanceStatus(stubLifecycleService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"target":"sideways"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSubmissionCorrectStatus(t *testing.T) {
	submissionID := uuid.New()
	called := false
	svc := stubLifecycleService{
		correctFn: func(ctx context.Context, id uuid.UUID, status enums.SubmissionStatus) error {
			called = true
			if id != submissionID {
				t.Fatalf("unexpected id %s", id)
			}
			if status != enums.SubmissionStatusGraded {
				t.Fatalf("unexpected status %s", status)
			}
			return nil
		},
	}

	handler := SubmissionCorrectStatus(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"graded"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "submissionId", submissionID.String())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatalf("expected service call")
	}
}

func TestSubmissionDetailRejectsBadID(t *testing.T) {
	handler := SubmissionDetail(stubSubmissionsService{}, nil)
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "submissionId", "not-a-uuid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
