package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/api/responses"
	"github.com/slabworks/slabdesk-backend/api/validators"
	"github.com/slabworks/slabdesk-backend/internal/groups"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	pkgerrors "github.com/slabworks/slabdesk-backend/pkg/errors"
	"github.com/slabworks/slabdesk-backend/pkg/logger"
	"github.com/slabworks/slabdesk-backend/pkg/pagination"
)

// GroupsList returns a filtered, cursor-paginated group listing.
func GroupsList(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
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

		filters := groups.GroupFilters{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseGroupStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "parse status filter"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.ListGroups(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type createGroupRequest struct {
	Code string `json:"code" validate:"required,min=3,max=64"`
}

// GroupCreate opens a new draft grading group.
func GroupCreate(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		var body createGroupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.CreateGroup(r.Context(), body.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, groups.SummaryFromModel(group))
	}
}

// GroupDetail returns the expanded group view with ordered members and cards.
func GroupDetail(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		groupID, err := parseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.GetGroupDetail(r.Context(), groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups.DetailFromModel(group))
	}
}

// GroupDetailByCode resolves a group by its business code.
func GroupDetailByCode(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "group code is required"))
			return
		}

		group, err := svc.GetGroupByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, groups.DetailFromModel(group))
	}
}

type groupStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type groupStatusResponse struct {
	UpdatedSubmissions int                 `json:"updated_submissions"`
	UpdatedCards       int                 `json:"updated_cards"`
	Group              groups.GroupSummary `json:"group"`
}

// GroupSetStatus moves a group and its member submissions to a new status.
func GroupSetStatus(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		groupID, err := parseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body groupStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SetGroupStatus(r.Context(), groupID, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := groupStatusResponse{
			UpdatedSubmissions: result.UpdatedSubmissions,
			UpdatedCards:       result.UpdatedCards,
		}
		if result.Group != nil {
			resp.Group = groups.SummaryFromModel(result.Group)
		}
		responses.WriteSuccess(w, resp)
	}
}

type groupMembersRequest struct {
	SubmissionIDs []string `json:"submission_ids" validate:"required,min=1,dive,uuid"`
}

// GroupAddSubmissions appends submissions (and their cards) to an editable group.
func GroupAddSubmissions(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return groupMembershipHandler(svc, logg, func(r *http.Request, groupID uuid.UUID, ids []uuid.UUID) (*groups.MembershipResult, error) {
		return svc.AddSubmissionsToGroup(r.Context(), groupID, ids)
	})
}

// GroupRemoveSubmissions detaches submissions from an editable group.
func GroupRemoveSubmissions(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return groupMembershipHandler(svc, logg, func(r *http.Request, groupID uuid.UUID, ids []uuid.UUID) (*groups.MembershipResult, error) {
		return svc.RemoveSubmissionsFromGroup(r.Context(), groupID, ids)
	})
}

func groupMembershipHandler(svc groups.Service, logg *logger.Logger, apply func(*http.Request, uuid.UUID, []uuid.UUID) (*groups.MembershipResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		groupID, err := parseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body groupMembersRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ids, err := parseUUIDList(body.SubmissionIDs, "submission id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := apply(r, groupID, ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type reorderCardsRequest struct {
	CardIDs []string `json:"card_ids" validate:"required,min=1,dive,uuid"`
}

// GroupReorderCards rewrites the group's card order to an exact permutation.
func GroupReorderCards(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		groupID, err := parseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reorderCardsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ids, err := parseUUIDList(body.CardIDs, "card id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ReorderGroupCards(r.Context(), groupID, ids); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"cards": len(ids)})
	}
}

// GroupReopen steps the group back one status and opens the correction window.
func GroupReopen(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return groupTransitionHandler(svc, logg, func(r *http.Request, groupID uuid.UUID) (groups.GroupSummary, error) {
		group, err := svc.ReopenGroup(r.Context(), groupID)
		if err != nil {
			return groups.GroupSummary{}, err
		}
		return groups.SummaryFromModel(group), nil
	})
}

// GroupResume closes the correction window and restores forward-only rules.
func GroupResume(svc groups.Service, logg *logger.Logger) http.HandlerFunc {
	return groupTransitionHandler(svc, logg, func(r *http.Request, groupID uuid.UUID) (groups.GroupSummary, error) {
		group, err := svc.ResumeGroup(r.Context(), groupID)
		if err != nil {
			return groups.GroupSummary{}, err
		}
		return groups.SummaryFromModel(group), nil
	})
}

func groupTransitionHandler(svc groups.Service, logg *logger.Logger, apply func(*http.Request, uuid.UUID) (groups.GroupSummary, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "groups service unavailable"))
			return
		}

		groupID, err := parseUUIDParam(r, "groupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := apply(r, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func parseUUIDList(raw []string, label string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
