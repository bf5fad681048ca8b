package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/slabworks/slabdesk-backend/pkg/enums"
)

// AdminUser is a back-office operator account.
type AdminUser struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string          `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Role         enums.AdminRole `gorm:"column:role;type:admin_role;not null;default:'operator'"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
