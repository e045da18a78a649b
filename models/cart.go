package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"user_id"` // one active cart per user
	CartTotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cart_total_price"`
	Items          []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type CartItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CartID        uint            `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"cart_id"`
	ProductID     uint            `gorm:"not null;uniqueIndex:idx_cart_item_product" json:"product_id"`
	Product       *Product        `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	CartItemPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"cart_item_price"`
	ValidTo       time.Time       `gorm:"index;not null" json:"valid_to"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
