package groups

import (
	"time"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// GroupFilters narrows the admin group list.
type GroupFilters struct {
	Status *enums.GroupStatus
	Search string
}

// GroupSummary exposes the fields shown in the admin group list.
type GroupSummary struct {
	ID          uuid.UUID         `json:"id"`
	Code        string            `json:"code"`
	Status      enums.GroupStatus `json:"status"`
	ReopenHold  bool              `json:"reopen_hold"`
	MemberCount int               `json:"member_count"`
	CardCount   int               `json:"card_count"`
	ShippedAt   *time.Time        `json:"shipped_at,omitempty"`
	ReturnedAt  *time.Time        `json:"returned_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// GroupList wraps the paginated groups plus the next page cursor.
type GroupList struct {
	Groups     []GroupSummary `json:"groups"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// GroupMemberDTO is one submission slot on the group detail, ordered by position.
type GroupMemberDTO struct {
	SubmissionID  uuid.UUID              `json:"submission_id"`
	Code          string                 `json:"code"`
	CustomerEmail string                 `json:"customer_email"`
	Status        enums.SubmissionStatus `json:"status"`
	CardCount     int                    `json:"card_count"`
	Position      int                    `json:"position"`
}

// GroupCardDTO is one card slot on the group detail, ordered by card_no.
type GroupCardDTO struct {
	CardID       uuid.UUID              `json:"card_id"`
	SubmissionID uuid.UUID              `json:"submission_id"`
	Description  string                 `json:"description"`
	Status       enums.SubmissionStatus `json:"status"`
	CardNo       int                    `json:"card_no"`
}

// GroupDetail is the expanded group view with members and card order.
type GroupDetail struct {
	GroupSummary
	Members []GroupMemberDTO `json:"members"`
	Cards   []GroupCardDTO   `json:"cards"`
}

// SummaryFromModel flattens a group row for list and mutation responses.
func SummaryFromModel(group *models.GradingGroup) GroupSummary {
	return GroupSummary{
		ID:          group.ID,
		Code:        group.Code,
		Status:      group.Status,
		ReopenHold:  group.ReopenHold,
		MemberCount: len(group.Members),
		CardCount:   len(group.GroupCards),
		ShippedAt:   group.ShippedAt,
		ReturnedAt:  group.ReturnedAt,
		CreatedAt:   group.CreatedAt,
	}
}

// DetailFromModel expands a preloaded group row into the detail view.
func DetailFromModel(group *models.GradingGroup) *GroupDetail {
	detail := &GroupDetail{
		GroupSummary: SummaryFromModel(group),
		Members:      make([]GroupMemberDTO, 0, len(group.Members)),
		Cards:        make([]GroupCardDTO, 0, len(group.GroupCards)),
	}
	for _, member := range group.Members {
		detail.Members = append(detail.Members, GroupMemberDTO{
			SubmissionID:  member.SubmissionID,
			Code:          member.Submission.Code,
			CustomerEmail: member.Submission.CustomerEmail,
			Status:        member.Submission.Status,
			CardCount:     member.Submission.CardCount,
			Position:      member.Position,
		})
	}
	for _, gc := range group.GroupCards {
		detail.Cards = append(detail.Cards, GroupCardDTO{
			CardID:       gc.CardID,
			SubmissionID: gc.Card.SubmissionID,
			Description:  gc.Card.Description,
			Status:       gc.Card.Status,
			CardNo:       gc.CardNo,
		})
	}
	return detail
}

// SetStatusResult reports how many rows the status change actually moved.
type SetStatusResult struct {
	UpdatedSubmissions int
	UpdatedCards       int
	Group              *models.GradingGroup
}

// MembershipResult reports rows touched by an add or remove.
type MembershipResult struct {
	Submissions int `json:"submissions"`
	Cards       int `json:"cards"`
}
