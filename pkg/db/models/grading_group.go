package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/pkg/enums"
)

// GradingGroup is a shipping/grading batch of submissions. Status only moves
// forward; reopen_hold sanctions a single backward correction for members.
type GradingGroup struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string            `gorm:"column:code;not null;uniqueIndex"`
	Status     enums.GroupStatus `gorm:"column:status;type:group_status;not null;default:'draft'"`
	ReopenHold bool              `gorm:"column:reopen_hold;not null;default:false"`
	ShippedAt  *time.Time        `gorm:"column:shipped_at"`
	ReturnedAt *time.Time        `gorm:"column:returned_at"`
	Members    []GroupMember     `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	GroupCards []GroupCard       `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// GroupMember links a submission into a group at a dense 1-based position.
type GroupMember struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID      uuid.UUID  `gorm:"column:group_id;type:uuid;not null;uniqueIndex:idx_group_members_position,priority:1"`
	SubmissionID uuid.UUID  `gorm:"column:submission_id;type:uuid;not null;uniqueIndex:idx_group_members_submission"`
	Position     int        `gorm:"column:position;not null;uniqueIndex:idx_group_members_position,priority:2"`
	Submission   Submission `gorm:"foreignKey:SubmissionID"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// GroupCard references (not owns) a card within a group at a dense card_no.
type GroupCard struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID `gorm:"column:group_id;type:uuid;not null;uniqueIndex:idx_group_cards_no,priority:1;uniqueIndex:idx_group_cards_card,priority:1"`
	CardID    uuid.UUID `gorm:"column:card_id;type:uuid;not null;uniqueIndex:idx_group_cards_card,priority:2"`
	CardNo    int       `gorm:"column:card_no;not null;uniqueIndex:idx_group_cards_no,priority:2"`
	Card      Card      `gorm:"foreignKey:CardID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
