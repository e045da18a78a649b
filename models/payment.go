package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	StripeChargeID string          `gorm:"uniqueIndex;not null" json:"stripe_charge_id"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	OrderID        uint            `gorm:"not null;index" json:"order_id"`
	CreatedAt      time.Time       `json:"created_at"`
}
