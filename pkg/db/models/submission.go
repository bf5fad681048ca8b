package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/pkg/enums"
	"github.com/slabworks/slabdesk-backend/pkg/types"
)

// Submission is one customer's card-grading intake request. Submissions are
// never deleted; they move forward through the lifecycle and may be reassigned
// between groups while the group is still editable.
type Submission struct {
	ID                 uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code               string                 `gorm:"column:code;not null;uniqueIndex"`
	CustomerEmail      string                 `gorm:"column:customer_email;not null;index"`
	CustomerExternalID *string                `gorm:"column:customer_external_id"`
	ShippingAddress    *types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Status             enums.SubmissionStatus `gorm:"column:status;type:submission_status;not null;default:'pending_payment'"`
	CardCount          int                    `gorm:"column:card_count;not null;default:0"`
	PaidAt             *time.Time             `gorm:"column:paid_at"`
	Cards              []Card                 `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
