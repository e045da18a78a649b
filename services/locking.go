package services

import (
	"errors"
	"fmt"

	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Rows are always locked cart first, then inventories in ascending product id.

func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func lockCart(tx *gorm.DB, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := forUpdate(tx).First(&cart, cartID).Error; err != nil {
		return nil, notFound(err, "cart", "id", cartID)
	}
	return &cart, nil
}

func lockInventory(tx *gorm.DB, productID uint) (*models.ProductInventory, error) {
	var inv models.ProductInventory
	if err := forUpdate(tx).Where("product_id = ?", productID).First(&inv).Error; err != nil {
		return nil, notFound(err, "inventory", "product_id", productID)
	}
	return &inv, nil
}

// lockInventories locks the inventories of productIDs in ascending product id order.
// Products without an inventory row are absent from the result.
func lockInventories(tx *gorm.DB, productIDs []uint) (map[uint]*models.ProductInventory, error) {
	out := make(map[uint]*models.ProductInventory, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var invs []models.ProductInventory
	if err := forUpdate(tx).Where("product_id IN ?", productIDs).Order("product_id").Find(&invs).Error; err != nil {
		return nil, fmt.Errorf("lock inventories: %w", err)
	}
	for i := range invs {
		out[invs[i].ProductID] = &invs[i]
	}
	return out, nil
}

func saveInventory(tx *gorm.DB, inv *models.ProductInventory) error {
	err := tx.Model(inv).Updates(map[string]any{
		"quantity":                inv.Quantity,
		"quantity_for_cart_items": inv.QuantityForCartItems,
	}).Error
	if err != nil {
		return fmt.Errorf("save inventory %d: %w", inv.ID, err)
	}
	return nil
}

func saveCartTotal(tx *gorm.DB, cart *models.Cart) error {
	if err := tx.Model(cart).Update("cart_total_price", cart.CartTotalPrice).Error; err != nil {
		return fmt.Errorf("save cart %d total: %w", cart.ID, err)
	}
	return nil
}

func loadProduct(tx *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, productID).Error; err != nil {
		return nil, notFound(err, "product", "id", productID)
	}
	return &product, nil
}

func userExists(tx *gorm.DB, userID uint) error {
	var user models.User
	if err := tx.Select("id").First(&user, userID).Error; err != nil {
		return notFound(err, "user", "id", userID)
	}
	return nil
}

func isNotFound(err error) bool {
	var dne *DoesNotExistError
	return errors.As(err, &dne)
}
