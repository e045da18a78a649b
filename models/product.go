package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID               uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string            `gorm:"uniqueIndex;not null" json:"name"`
	Description      string            `json:"description"`
	Price            decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"price"`
	RemovedFromStore bool              `gorm:"not null;default:false;index" json:"removed_from_store"`
	Categories       []Category        `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	Inventory        *ProductInventory `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"inventory,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
