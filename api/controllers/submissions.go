package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/api/responses"
	"github.com/slabworks/slabdesk-backend/api/validators"
	"github.com/slabworks/slabdesk-backend/internal/lifecycle"
	"github.com/slabworks/slabdesk-backend/internal/submissions"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/logger"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
)

// SubmissionsList returns a filtered, cursor-paginated submission listing.
func SubmissionsList(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters := submissions.SubmissionFilters{
			Email:  strings.TrimSpace(r.URL.Query().Get("email")),
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseSubmissionStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "parse status filter"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.ListSubmissions(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// SubmissionCreate handles intake of a new grading submission.
func SubmissionCreate(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		var body submissions.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateSubmission(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// SubmissionDetail returns the expanded submission view by id.
func SubmissionDetail(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		id, err := parseUUIDParam(r, "submissionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetSubmission(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SubmissionDetailByCode resolves a submission by its human-entered code.
func SubmissionDetailByCode(svc submissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "submissions service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "submission code is required"))
			return
		}

		detail, err := svc.GetSubmissionByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type advanceStatusRequest struct {
	Target        string   `json:"target" validate:"required"`
	SubmissionIDs []string `json:"submission_ids,omitempty" validate:"omitempty,dive,uuid"`
	Codes         []string `json:"codes,omitempty"`
	GroupID       string   `json:"group_id,omitempty" validate:"omitempty,uuid"`
	RequireMatch  bool     `json:"require_match,omitempty"`
}

// SubmissionsAdvanceStatus moves a batch of submissions forward to a target
// status. Rows already at or past the target are left alone.
func SubmissionsAdvanceStatus(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		var body advanceStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseSubmissionStatus(body.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "parse target status"))
			return
		}

		input := lifecycle.AdvanceInput{
			Target:       target,
			Codes:        body.Codes,
			RequireMatch: body.RequireMatch,
		}
		for _, raw := range body.SubmissionIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid submission id"))
				return
			}
			input.SubmissionIDs = append(input.SubmissionIDs, id)
		}
		if body.GroupID != "" {
			groupID, err := uuid.Parse(body.GroupID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid group id"))
				return
			}
			input.GroupID = groupID
		}

		result, err := svc.AdvanceSubmissions(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{
			"updated_submissions": result.UpdatedSubmissions,
			"updated_cards":       result.UpdatedCards,
		})
	}
}

type correctStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SubmissionCorrectStatus applies the sanctioned backward correction to a
// single submission. The parent group must hold an open correction window.
func SubmissionCorrectStatus(svc lifecycle.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lifecycle service unavailable"))
			return
		}

		id, err := parseUUIDParam(r, "submissionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body correctStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseSubmissionStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "parse corrected status"))
			return
		}

		if err := svc.CorrectSubmissionStatus(r.Context(), id, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": status.String()})
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
