package submissions

import (
	"time"

	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/pkg/db/models"
	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/slabworks/slabdesk-backend/pkg/types"
)

// CreateInput is the intake payload for a new submission.
type CreateInput struct {
	Code            string                 `json:"code" validate:"required,min=3,max=64"`
	CustomerEmail   string                 `json:"customer_email" validate:"required,email"`
	ShippingAddress *types.ShippingAddress `json:"shipping_address,omitempty"`
	Cards           []CreateCardInput      `json:"cards" validate:"dive"`
	CardCount       int                    `json:"card_count" validate:"gte=0"`
}

// CreateCardInput is one card on an intake payload.
type CreateCardInput struct {
	Description    string `json:"description" validate:"required,max=256"`
	UnitPriceCents int    `json:"unit_price_cents" validate:"gte=0"`
	UpchargeCents  int    `json:"upcharge_cents" validate:"gte=0"`
}

// SubmissionFilters narrow the admin submission listing.
type SubmissionFilters struct {
	Status *enums.SubmissionStatus
	Email  string
	Search string
}

// SubmissionSummary is one row of the admin submission listing.
type SubmissionSummary struct {
	ID            uuid.UUID              `json:"id"`
	Code          string                 `json:"code"`
	CustomerEmail string                 `json:"customer_email"`
	Status        enums.SubmissionStatus `json:"status"`
	CardCount     int                    `json:"card_count"`
	PaidAt        *time.Time             `json:"paid_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// SubmissionList is a cursor-paginated page of submissions.
type SubmissionList struct {
	Submissions []SubmissionSummary `json:"submissions"`
	NextCursor  string              `json:"next_cursor,omitempty"`
}

// CardDTO is one card on a submission detail.
type CardDTO struct {
	ID             uuid.UUID              `json:"id"`
	Description    string                 `json:"description"`
	Status         enums.SubmissionStatus `json:"status"`
	UnitPriceCents int                    `json:"unit_price_cents"`
	UpchargeCents  int                    `json:"upcharge_cents"`
}

// SubmissionDetail is the expanded submission view with cards and address.
type SubmissionDetail struct {
	SubmissionSummary
	CustomerExternalID *string                `json:"customer_external_id,omitempty"`
	ShippingAddress    *types.ShippingAddress `json:"shipping_address,omitempty"`
	Cards              []CardDTO              `json:"cards"`
}

func detailFromModel(sub *models.Submission) *SubmissionDetail {
	detail := &SubmissionDetail{
		SubmissionSummary: SubmissionSummary{
			ID:            sub.ID,
			Code:          sub.Code,
			CustomerEmail: sub.CustomerEmail,
			Status:        sub.Status,
			CardCount:     sub.CardCount,
			PaidAt:        sub.PaidAt,
			CreatedAt:     sub.CreatedAt,
		},
		CustomerExternalID: sub.CustomerExternalID,
		ShippingAddress:    sub.ShippingAddress,
		Cards:              make([]CardDTO, 0, len(sub.Cards)),
	}
	for _, card := range sub.Cards {
		detail.Cards = append(detail.Cards, CardDTO{
			ID:             card.ID,
			Description:    card.Description,
			Status:         card.Status,
			UnitPriceCents: card.UnitPriceCents,
			UpchargeCents:  card.UpchargeCents,
		})
	}
	return detail
}
