package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrInvalidPrice = errors.New("price must be greater than zero")

var ProductFields = pagination.Fields{
	"name":               {Column: "products.name", Kind: pagination.String},
	"price":              {Column: "products.price", Kind: pagination.Decimal},
	"removed_from_store": {Column: "products.removed_from_store", Kind: pagination.Bool},
	"created_at":         {Column: "products.created_at", Kind: pagination.Time},
	"updated_at":         {Column: "products.updated_at", Kind: pagination.Time},
}

var CategoryFields = pagination.Fields{
	"name": {Column: "name", Kind: pagination.String},
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	CategoryIDs []uint          `json:"category_ids"`
	// Quantity opens the product's inventory in the same transaction when set.
	Quantity *int `json:"quantity"`
}

type UpdateProductInput struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	Price            *decimal.Decimal `json:"price"`
	CategoryIDs      []uint           `json:"category_ids"`
	RemovedFromStore *bool            `json:"removed_from_store"`
}

type CatalogService struct {
	db    *gorm.DB
	carts *CartService
}

func NewCatalogService(db *gorm.DB, carts *CartService) *CatalogService {
	return &CatalogService{db: db, carts: carts}
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	category := &models.Category{Name: strings.TrimSpace(in.Name), Description: in.Description}
	err := s.db.WithContext(ctx).Create(category).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &AlreadyExistsError{Resource: "category", Field: "name", Value: category.Name}
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		return nil, notFound(err, "category", "id", categoryID)
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID uint, in CategoryInput) (*models.Category, error) {
	category, err := s.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(in.Name)
	category.Description = in.Description
	err = s.db.WithContext(ctx).Model(category).Updates(map[string]any{
		"name":        category.Name,
		"description": category.Description,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &AlreadyExistsError{Resource: "category", Field: "name", Value: category.Name}
	}
	if err != nil {
		return nil, fmt.Errorf("update category %d: %w", categoryID, err)
	}
	return category, nil
}

// DeleteCategory unlinks the category from its products; the products stay.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, categoryID).Error; err != nil {
			return notFound(err, "category", "id", categoryID)
		}
		if err := tx.Model(&category).Association("Products").Clear(); err != nil {
			return fmt.Errorf("clear category products: %w", err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("delete category %d: %w", categoryID, err)
		}
		return nil
	})
}

func (s *CatalogService) ListCategories(ctx context.Context, p pagination.Params) (pagination.Page[models.Category], error) {
	return pagination.Paginate[models.Category](s.db.WithContext(ctx).Model(&models.Category{}), p, CategoryFields)
}

// ListCategoryProducts pages through a category's products. Removed products
// are only included when includeRemoved is set.
func (s *CatalogService) ListCategoryProducts(ctx context.Context, categoryID uint, includeRemoved bool, p pagination.Params) (pagination.Page[models.Product], error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return pagination.Page[models.Product]{}, err
	}
	db := s.productQuery(ctx, includeRemoved).
		Joins("JOIN product_categories ON product_categories.product_id = products.id").
		Where("product_categories.category_id = ?", categoryID)
	return pagination.Paginate[models.Product](db, p, ProductFields)
}

func loadCategories(tx *gorm.DB, ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	var categories []models.Category
	if err := tx.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if len(categories) != len(dedupe(ids)) {
		found := make(map[uint]bool, len(categories))
		for _, c := range categories {
			found[c.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, &DoesNotExistError{Resource: "category", Field: "id", Value: id}
			}
		}
	}
	return categories, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := loadCategories(tx, in.CategoryIDs)
		if err != nil {
			return err
		}
		product.Categories = categories

		var count int64
		if err := tx.Model(&models.Product{}).Where("name = ?", product.Name).Count(&count).Error; err != nil {
			return fmt.Errorf("check product name: %w", err)
		}
		if count > 0 {
			return &AlreadyExistsError{Resource: "product", Field: "name", Value: product.Name}
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		if in.Quantity != nil {
			inv, err := createInventory(tx, product.ID, *in.Quantity)
			if err != nil {
				return err
			}
			product.Inventory = inv
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) productQuery(ctx context.Context, includeRemoved bool) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&models.Product{}).Preload("Categories").Preload("Inventory")
	if !includeRemoved {
		db = db.Where("products.removed_from_store = ?", false)
	}
	return db
}

// GetProduct loads a product. Removed products are hidden unless includeRemoved is set.
func (s *CatalogService) GetProduct(ctx context.Context, productID uint, includeRemoved bool) (*models.Product, error) {
	var product models.Product
	if err := s.productQuery(ctx, includeRemoved).First(&product, productID).Error; err != nil {
		return nil, notFound(err, "product", "id", productID)
	}
	return &product, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, includeRemoved bool, p pagination.Params) (pagination.Page[models.Product], error) {
	return pagination.Paginate[models.Product](s.productQuery(ctx, includeRemoved), p, ProductFields)
}

// UpdateProduct applies the set fields. Taking a product off the store also
// drops it from every cart.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID uint, in UpdateProductInput) (*models.Product, error) {
	if in.Price != nil && !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	err := s.carts.transaction(ctx, func(ct *cartTx) error {
		var product models.Product
		if err := forUpdate(ct.tx).First(&product, productID).Error; err != nil {
			return notFound(err, "product", "id", productID)
		}
		// Updates writes the new values back into product.
		wasRemoved := product.RemovedFromStore

		updates := map[string]any{}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			var count int64
			if err := ct.tx.Model(&models.Product{}).Where("name = ? AND id <> ?", name, productID).Count(&count).Error; err != nil {
				return fmt.Errorf("check product name: %w", err)
			}
			if count > 0 {
				return &AlreadyExistsError{Resource: "product", Field: "name", Value: name}
			}
			updates["name"] = name
		}
		if in.Description != nil {
			updates["description"] = *in.Description
		}
		if in.Price != nil {
			updates["price"] = *in.Price
		}
		if in.RemovedFromStore != nil {
			updates["removed_from_store"] = *in.RemovedFromStore
		}
		if len(updates) > 0 {
			if err := ct.tx.Model(&product).Updates(updates).Error; err != nil {
				return fmt.Errorf("update product %d: %w", productID, err)
			}
		}

		if in.CategoryIDs != nil {
			categories, err := loadCategories(ct.tx, in.CategoryIDs)
			if err != nil {
				return err
			}
			if err := ct.tx.Model(&product).Association("Categories").Replace(categories); err != nil {
				return fmt.Errorf("replace product categories: %w", err)
			}
		}

		if in.RemovedFromStore != nil && *in.RemovedFromStore && !wasRemoved {
			n, err := ct.deleteItemsForProduct(productID)
			if err != nil {
				return err
			}
			log.Printf("🧹 Product %d removed from store, dropped %d cart items", productID, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID, true)
}

// RemoveFromStore hides the product from the store and drops it from every
// cart. It returns the number of cart items removed.
func (s *CatalogService) RemoveFromStore(ctx context.Context, productID uint) (int, error) {
	var n int
	err := s.carts.transaction(ctx, func(ct *cartTx) error {
		var product models.Product
		if err := forUpdate(ct.tx).First(&product, productID).Error; err != nil {
			return notFound(err, "product", "id", productID)
		}
		if !product.RemovedFromStore {
			if err := ct.tx.Model(&product).Update("removed_from_store", true).Error; err != nil {
				return fmt.Errorf("remove product %d from store: %w", productID, err)
			}
		}
		var err error
		n, err = ct.deleteItemsForProduct(productID)
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Printf("🧹 Product %d removed from store, dropped %d cart items", productID, n)
	return n, nil
}

// DeleteProduct drops the product from every cart, then deletes it with its
// inventory. Order items keep their product id as history.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID uint) error {
	return s.carts.transaction(ctx, func(ct *cartTx) error {
		var product models.Product
		if err := forUpdate(ct.tx).First(&product, productID).Error; err != nil {
			return notFound(err, "product", "id", productID)
		}
		if _, err := ct.deleteItemsForProduct(productID); err != nil {
			return err
		}
		if err := ct.tx.Model(&product).Association("Categories").Clear(); err != nil {
			return fmt.Errorf("clear product categories: %w", err)
		}
		if err := ct.tx.Where("product_id = ?", productID).Delete(&models.ProductInventory{}).Error; err != nil {
			return fmt.Errorf("delete inventory: %w", err)
		}
		if err := ct.tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("delete product %d: %w", productID, err)
		}
		return nil
	})
}
