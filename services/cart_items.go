package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItemResult is returned by cart item writes. CartDeleted is set when the
// write removed the last item and the cart went with it.
type CartItemResult struct {
	Item        *models.CartItem `json:"item,omitempty"`
	CartDeleted bool             `json:"cart_deleted"`
}

// cartTx carries one transaction's state for cart bookkeeping and records whose
// cached cart views it invalidated.
type cartTx struct {
	tx      *gorm.DB
	now     time.Time
	itemTTL time.Duration
	touched map[uint]struct{}
}

func (ct *cartTx) touch(userID uint) {
	ct.touched[userID] = struct{}{}
}

func linePrice(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// putItem adds productID to the locked cart, or replaces the quantity when the
// product is already in it.
func (ct *cartTx) putItem(cart *models.Cart, productID uint, quantity int) (*CartItemResult, error) {
	product, err := loadProduct(ct.tx, productID)
	if err != nil {
		return nil, err
	}
	if product.RemovedFromStore {
		return nil, &ProductRemovedFromStoreError{ProductID: productID}
	}
	if quantity < 0 {
		return nil, ErrNonPositiveCartItemQuantity
	}

	var existing models.CartItem
	err = ct.tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&existing).Error
	if err == nil {
		return ct.updateItem(cart, &existing, product, quantity)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load cart item: %w", err)
	}

	if quantity == 0 {
		return nil, ErrCartItemWithZeroQuantity
	}

	inv, err := lockInventory(ct.tx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > inv.QuantityForCartItems {
		return nil, &ExceededItemQuantityError{ProductID: productID, Available: inv.QuantityForCartItems, Requested: quantity}
	}
	inv.QuantityForCartItems -= quantity
	if err := saveInventory(ct.tx, inv); err != nil {
		return nil, err
	}

	item := models.CartItem{
		CartID:        cart.ID,
		ProductID:     productID,
		Quantity:      quantity,
		CartItemPrice: linePrice(product.Price, quantity),
		ValidTo:       ct.now.Add(ct.itemTTL),
	}
	if err := ct.tx.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create cart item: %w", err)
	}

	cart.CartTotalPrice = cart.CartTotalPrice.Add(item.CartItemPrice)
	if err := saveCartTotal(ct.tx, cart); err != nil {
		return nil, err
	}
	ct.touch(cart.UserID)
	return &CartItemResult{Item: &item}, nil
}

// updateItem sets item's quantity, moving the difference between the cart and
// the inventory. Zero deletes the item.
func (ct *cartTx) updateItem(cart *models.Cart, item *models.CartItem, product *models.Product, quantity int) (*CartItemResult, error) {
	if quantity < 0 {
		return nil, ErrNonPositiveCartItemQuantity
	}
	if quantity == 0 {
		deleted, err := ct.deleteItem(cart, item, false)
		if err != nil {
			return nil, err
		}
		return &CartItemResult{CartDeleted: deleted}, nil
	}
	if product.RemovedFromStore {
		return nil, &ProductRemovedFromStoreError{ProductID: product.ID}
	}

	inv, err := lockInventory(ct.tx, item.ProductID)
	if err != nil {
		return nil, err
	}
	available := inv.QuantityForCartItems + item.Quantity
	if quantity > available {
		return nil, &ExceededItemQuantityError{ProductID: item.ProductID, Available: available, Requested: quantity}
	}
	inv.QuantityForCartItems = available - quantity
	if err := saveInventory(ct.tx, inv); err != nil {
		return nil, err
	}

	price := linePrice(product.Price, quantity)
	cart.CartTotalPrice = cart.CartTotalPrice.Sub(item.CartItemPrice).Add(price)
	if err := saveCartTotal(ct.tx, cart); err != nil {
		return nil, err
	}

	item.Quantity = quantity
	item.CartItemPrice = price
	item.ValidTo = ct.now.Add(ct.itemTTL)
	err = ct.tx.Model(item).Updates(map[string]any{
		"quantity":        item.Quantity,
		"cart_item_price": item.CartItemPrice,
		"valid_to":        item.ValidTo,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("update cart item %d: %w", item.ID, err)
	}

	ct.touch(cart.UserID)
	return &CartItemResult{Item: item}, nil
}

// deleteItem returns the item's reservation to the inventory and removes it
// from the locked cart. Unless the whole cart is being deleted, an emptied cart
// is deleted too and true is returned.
func (ct *cartTx) deleteItem(cart *models.Cart, item *models.CartItem, partOfCartDelete bool) (bool, error) {
	inv, err := lockInventory(ct.tx, item.ProductID)
	switch {
	case err == nil:
		inv.QuantityForCartItems += item.Quantity
		if err := saveInventory(ct.tx, inv); err != nil {
			return false, err
		}
	case !isNotFound(err):
		return false, err
	}

	if err := ct.tx.Delete(&models.CartItem{}, item.ID).Error; err != nil {
		return false, fmt.Errorf("delete cart item %d: %w", item.ID, err)
	}
	cart.CartTotalPrice = cart.CartTotalPrice.Sub(item.CartItemPrice)
	ct.touch(cart.UserID)

	if partOfCartDelete {
		return false, nil
	}

	var remaining int64
	if err := ct.tx.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&remaining).Error; err != nil {
		return false, fmt.Errorf("count cart items: %w", err)
	}
	if remaining == 0 {
		if err := ct.tx.Delete(&models.Cart{}, cart.ID).Error; err != nil {
			return false, fmt.Errorf("delete empty cart %d: %w", cart.ID, err)
		}
		return true, nil
	}
	return false, saveCartTotal(ct.tx, cart)
}

// deleteItemsForProduct removes every cart item that references productID.
func (ct *cartTx) deleteItemsForProduct(productID uint) (int, error) {
	var items []models.CartItem
	if err := ct.tx.Where("product_id = ?", productID).Order("cart_id").Find(&items).Error; err != nil {
		return 0, fmt.Errorf("find cart items for product %d: %w", productID, err)
	}
	// Every cart is locked before the shared inventory row.
	carts := make([]*models.Cart, len(items))
	for i := range items {
		cart, err := lockCart(ct.tx, items[i].CartID)
		if err != nil {
			return 0, err
		}
		carts[i] = cart
	}
	for i := range items {
		if _, err := ct.deleteItem(carts[i], &items[i], false); err != nil {
			return i, err
		}
	}
	return len(items), nil
}

func (s *CartService) CreateCartItem(ctx context.Context, cartID, productID uint, quantity int) (*CartItemResult, error) {
	var res *CartItemResult
	err := s.transaction(ctx, func(ct *cartTx) error {
		cart, err := lockCart(ct.tx, cartID)
		if err != nil {
			return err
		}
		res, err = ct.putItem(cart, productID, quantity)
		return err
	})
	return res, err
}

// AddToUserCart puts a product into the user's cart, creating the cart on first use.
func (s *CartService) AddToUserCart(ctx context.Context, userID, productID uint, quantity int) (*CartItemResult, error) {
	var res *CartItemResult
	err := s.transaction(ctx, func(ct *cartTx) error {
		if err := userExists(ct.tx, userID); err != nil {
			return err
		}
		var cart models.Cart
		err := forUpdate(ct.tx).Where("user_id = ?", userID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = models.Cart{UserID: userID, CartTotalPrice: decimal.Zero}
			err = ct.tx.Create(&cart).Error
		}
		if err != nil {
			return fmt.Errorf("load user cart: %w", err)
		}
		res, err = ct.putItem(&cart, productID, quantity)
		return err
	})
	return res, err
}

func (s *CartService) UpdateCartItem(ctx context.Context, cartID, itemID uint, quantity int) (*CartItemResult, error) {
	var res *CartItemResult
	err := s.transaction(ctx, func(ct *cartTx) error {
		cart, item, err := lockCartItem(ct.tx, cartID, itemID)
		if err != nil {
			return err
		}
		product, err := loadProduct(ct.tx, item.ProductID)
		if err != nil {
			return err
		}
		res, err = ct.updateItem(cart, item, product, quantity)
		return err
	})
	return res, err
}

// DeleteCartItem removes one item and reports whether the cart was deleted with it.
func (s *CartService) DeleteCartItem(ctx context.Context, cartID, itemID uint) (bool, error) {
	var cartDeleted bool
	err := s.transaction(ctx, func(ct *cartTx) error {
		cart, item, err := lockCartItem(ct.tx, cartID, itemID)
		if err != nil {
			return err
		}
		cartDeleted, err = ct.deleteItem(cart, item, false)
		return err
	})
	return cartDeleted, err
}

func lockCartItem(tx *gorm.DB, cartID, itemID uint) (*models.Cart, *models.CartItem, error) {
	cart, err := lockCart(tx, cartID)
	if err != nil {
		return nil, nil, err
	}
	var item models.CartItem
	if err := tx.Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NoSuchItemInCartError{CartID: cartID, ItemID: itemID}
		}
		return nil, nil, fmt.Errorf("load cart item: %w", err)
	}
	return cart, &item, nil
}

func (s *CartService) ListCartItems(ctx context.Context, cartID uint) ([]models.CartItem, error) {
	db := s.db.WithContext(ctx)
	var cart models.Cart
	if err := db.Select("id").First(&cart, cartID).Error; err != nil {
		return nil, notFound(err, "cart", "id", cartID)
	}
	var items []models.CartItem
	if err := db.Where("cart_id = ?", cartID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return items, nil
}

func (s *CartService) GetCartItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).Preload("Product").Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NoSuchItemInCartError{CartID: cartID, ItemID: itemID}
	}
	if err != nil {
		return nil, fmt.Errorf("load cart item: %w", err)
	}
	return &item, nil
}

// DeleteExpiredCartItems removes items whose validity deadline is before now.
// Each item is removed in its own transaction; failures are collected and the
// sweep carries on.
func (s *CartService) DeleteExpiredCartItems(ctx context.Context, now time.Time) (int, error) {
	var expired []models.CartItem
	if err := s.db.WithContext(ctx).Select("id", "cart_id").Where("valid_to < ?", now).Order("cart_id").Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("find expired cart items: %w", err)
	}

	deleted := 0
	var errs []error
	for _, stale := range expired {
		err := s.transaction(ctx, func(ct *cartTx) error {
			cart, item, err := lockCartItem(ct.tx, stale.CartID, stale.ID)
			if err != nil {
				return err
			}
			if !item.ValidTo.Before(now) {
				return nil // refreshed since the scan
			}
			if _, err := ct.deleteItem(cart, item, false); err != nil {
				return err
			}
			deleted++
			return nil
		})
		var missing *NoSuchItemInCartError
		if err != nil && !isNotFound(err) && !errors.As(err, &missing) {
			log.Printf("❌ Failed to delete expired cart item %d: %v", stale.ID, err)
			errs = append(errs, err)
		}
	}
	return deleted, errors.Join(errs...)
}

// DeleteCartItemsForRemovedProduct removes every cart item of a product taken off the store.
func (s *CartService) DeleteCartItemsForRemovedProduct(ctx context.Context, productID uint) (int, error) {
	var n int
	err := s.transaction(ctx, func(ct *cartTx) error {
		var err error
		n, err = ct.deleteItemsForProduct(productID)
		return err
	})
	return n, err
}
