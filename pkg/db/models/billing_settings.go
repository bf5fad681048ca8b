package models

import (
	"time"

	"github.com/google/uuid"
)

// BillingSettings is the single configurable rate source for draft assembly.
// One row; config defaults apply when no row exists.
type BillingSettings struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UnitRateCents int       `gorm:"column:unit_rate_cents;not null"`
	ShippingCents int       `gorm:"column:shipping_cents;not null"`
	Currency      string    `gorm:"column:currency;not null;default:'USD'"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
