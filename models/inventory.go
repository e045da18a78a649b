package models

import "time"

// ProductInventory splits a product's stock into what is still free for carts
// (QuantityForCartItems) and what is committed to cart items and open orders
// (Quantity - QuantityForCartItems).
type ProductInventory struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	ProductID            uint      `gorm:"uniqueIndex;not null" json:"product_id"`
	Quantity             int       `gorm:"not null;check:chk_inventory_quantity,quantity >= 0" json:"quantity"`
	QuantityForCartItems int       `gorm:"not null;check:chk_inventory_reserved,quantity_for_cart_items >= 0 AND quantity_for_cart_items <= quantity" json:"quantity_for_cart_items"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Committed is the stock held by cart items and orders that are not yet received.
func (i *ProductInventory) Committed() int {
	return i.Quantity - i.QuantityForCartItems
}
