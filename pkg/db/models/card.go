package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/pkg/enums"
)

// Card is a single physical item inside a submission. Its status mirrors or
// lags the parent submission's status; group ordering lives on GroupCard.
type Card struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SubmissionID   uuid.UUID              `gorm:"column:submission_id;type:uuid;not null;index"`
	Description    string                 `gorm:"column:description;not null"`
	Status         enums.SubmissionStatus `gorm:"column:status;type:submission_status;not null;default:'pending_payment'"`
	UnitPriceCents int                    `gorm:"column:unit_price_cents;not null;default:0"`
	UpchargeCents  int                    `gorm:"column:upcharge_cents;not null;default:0"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
