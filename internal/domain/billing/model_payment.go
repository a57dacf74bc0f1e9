package billing

import (
	"time"

	"buildtactical/internal/domain/identity"
)

type Payment struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"index"`
	User   identity.User
	PlanID *uint
	Plan   *Plan

	Provider          Provider `gorm:"type:varchar(16)"`
	ProviderSessionID string   `gorm:"uniqueIndex"`
	AmountUSD         float64  `gorm:"column:amount_usd"`
	Status            string
	InvoiceID         *string
	ReceiptURL        *string
	CreatedAt         time.Time
}
