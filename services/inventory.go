package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"gorm.io/gorm"
)

var InventoryFields = pagination.Fields{
	"product_id":              {Column: "product_id", Kind: pagination.Int},
	"quantity":                {Column: "quantity", Kind: pagination.Int},
	"quantity_for_cart_items": {Column: "quantity_for_cart_items", Kind: pagination.Int},
	"updated_at":              {Column: "updated_at", Kind: pagination.Time},
}

type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// CreateInventory opens a product's stock with everything available for carts.
func (s *InventoryService) CreateInventory(ctx context.Context, productID uint, quantity int) (*models.ProductInventory, error) {
	var inv *models.ProductInventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		inv, err = createInventory(tx, productID, quantity)
		return err
	})
	return inv, err
}

func createInventory(tx *gorm.DB, productID uint, quantity int) (*models.ProductInventory, error) {
	if quantity < 0 {
		return nil, ErrNegativeInventoryQuantity
	}
	if _, err := loadProduct(tx, productID); err != nil {
		return nil, err
	}
	var count int64
	if err := tx.Model(&models.ProductInventory{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check inventory: %w", err)
	}
	if count > 0 {
		return nil, &AlreadyExistsError{Resource: "inventory", Field: "product_id", Value: productID}
	}

	inv := &models.ProductInventory{ProductID: productID, Quantity: quantity, QuantityForCartItems: quantity}
	if err := tx.Create(inv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &AlreadyExistsError{Resource: "inventory", Field: "product_id", Value: productID}
		}
		return nil, fmt.Errorf("create inventory: %w", err)
	}
	return inv, nil
}

// UpdateInventory sets the stock level. The free share moves by the same delta,
// so the quantity may never drop below what carts and orders already hold.
func (s *InventoryService) UpdateInventory(ctx context.Context, inventoryID uint, quantity int) (*models.ProductInventory, error) {
	var inv models.ProductInventory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&inv, inventoryID).Error; err != nil {
			return notFound(err, "inventory", "id", inventoryID)
		}
		return applyQuantity(tx, &inv, quantity)
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func applyQuantity(tx *gorm.DB, inv *models.ProductInventory, quantity int) error {
	if quantity < 0 {
		return ErrNegativeInventoryQuantity
	}
	if committed := inv.Committed(); quantity < committed {
		return &QuantityBelowCommittedError{InventoryID: inv.ID, Committed: committed, Requested: quantity}
	}
	delta := quantity - inv.Quantity
	inv.Quantity = quantity
	inv.QuantityForCartItems += delta
	return saveInventory(tx, inv)
}

func (s *InventoryService) GetInventory(ctx context.Context, inventoryID uint) (*models.ProductInventory, error) {
	var inv models.ProductInventory
	if err := s.db.WithContext(ctx).First(&inv, inventoryID).Error; err != nil {
		return nil, notFound(err, "inventory", "id", inventoryID)
	}
	return &inv, nil
}

func (s *InventoryService) GetProductInventory(ctx context.Context, productID uint) (*models.ProductInventory, error) {
	var inv models.ProductInventory
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).First(&inv).Error; err != nil {
		return nil, notFound(err, "inventory", "product_id", productID)
	}
	return &inv, nil
}

func (s *InventoryService) ListInventories(ctx context.Context, p pagination.Params) (pagination.Page[models.ProductInventory], error) {
	return pagination.Paginate[models.ProductInventory](s.db.WithContext(ctx).Model(&models.ProductInventory{}), p, InventoryFields)
}
