package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/junaidrashid-git/storefront-api/cache"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var CartFields = pagination.Fields{
	"user_id":          {Column: "user_id", Kind: pagination.Int},
	"cart_total_price": {Column: "cart_total_price", Kind: pagination.Decimal},
	"created_at":       {Column: "created_at", Kind: pagination.Time},
	"updated_at":       {Column: "updated_at", Kind: pagination.Time},
}

// CartService owns carts and cart items together with the inventory
// reservations they hold.
type CartService struct {
	db      *gorm.DB
	cache   cache.CartCache
	group   singleflight.Group
	itemTTL time.Duration
	now     func() time.Time
}

func NewCartService(db *gorm.DB, c cache.CartCache, itemTTL time.Duration) *CartService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CartService{db: db, cache: c, itemTTL: itemTTL, now: time.Now}
}

// transaction runs fn in one database transaction and drops the cached carts
// it touched once the transaction has committed.
func (s *CartService) transaction(ctx context.Context, fn func(ct *cartTx) error) error {
	ct := &cartTx{now: s.now(), itemTTL: s.itemTTL, touched: map[uint]struct{}{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ct.tx = tx
		return fn(ct)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, ct.touched)
	return nil
}

func (s *CartService) invalidate(ctx context.Context, users map[uint]struct{}) {
	if len(users) == 0 {
		return
	}
	ids := make([]uint, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	if err := s.cache.Delete(ctx, ids...); err != nil {
		log.Printf("⚠️ Failed to invalidate cached carts %v: %v", ids, err)
	}
}

func (s *CartService) CreateCart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart := &models.Cart{UserID: userID, CartTotalPrice: decimal.Zero}
	err := s.transaction(ctx, func(ct *cartTx) error {
		if err := userExists(ct.tx, userID); err != nil {
			return err
		}
		var count int64
		if err := ct.tx.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("check user cart: %w", err)
		}
		if count > 0 {
			return &IsOccupiedError{Resource: "cart", Field: "user_id", Value: userID}
		}
		if err := ct.tx.Create(cart).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &IsOccupiedError{Resource: "cart", Field: "user_id", Value: userID}
			}
			return fmt.Errorf("create cart: %w", err)
		}
		ct.touch(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	return cart, nil
}

// DeleteCart returns every item's reservation to the inventory before the cart row goes.
func (s *CartService) DeleteCart(ctx context.Context, cartID uint) error {
	return s.transaction(ctx, func(ct *cartTx) error {
		return ct.deleteCart(cartID)
	})
}

func (ct *cartTx) deleteCart(cartID uint) error {
	cart, err := lockCart(ct.tx, cartID)
	if err != nil {
		return err
	}
	var items []models.CartItem
	if err := ct.tx.Where("cart_id = ?", cartID).Order("product_id").Find(&items).Error; err != nil {
		return fmt.Errorf("load cart items: %w", err)
	}
	for i := range items {
		if _, err := ct.deleteItem(cart, &items[i], true); err != nil {
			return err
		}
	}
	if err := ct.tx.Delete(&models.Cart{}, cartID).Error; err != nil {
		return fmt.Errorf("delete cart %d: %w", cartID, err)
	}
	ct.touch(cart.UserID)
	return nil
}

func (s *CartService) GetCart(ctx context.Context, cartID uint) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&cart, cartID).Error
	if err != nil {
		return nil, notFound(err, "cart", "id", cartID)
	}
	return &cart, nil
}

// GetUserCart serves the user's cart from the cache, loading it from the
// database at most once per user on concurrent misses. A fill is dropped when
// a write invalidated the cart after the load started.
func (s *CartService) GetUserCart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("⚠️ Cart cache read failed for user %d: %v", userID, err)
	}

	v, err, _ := s.group.Do(strconv.FormatUint(uint64(userID), 10), func() (any, error) {
		gen, genErr := s.cache.Generation(ctx, userID)
		if genErr != nil {
			log.Printf("⚠️ Cart cache generation read failed for user %d: %v", userID, genErr)
		}

		var cart models.Cart
		err := s.db.WithContext(ctx).
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
			Where("user_id = ?", userID).
			First(&cart).Error
		if err != nil {
			return nil, notFound(err, "cart", "user_id", userID)
		}
		if genErr == nil {
			err := s.cache.Set(ctx, userID, gen, &cart)
			if err != nil && !errors.Is(err, cache.ErrStaleGeneration) {
				log.Printf("⚠️ Failed to cache cart for user %d: %v", userID, err)
			}
		}
		return &cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

// UserCartID reads the id of the user's cart from the database, bypassing the cache.
func (s *CartService) UserCartID(ctx context.Context, userID uint) (uint, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).Select("id").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return 0, notFound(err, "cart", "user_id", userID)
	}
	return cart.ID, nil
}

func (s *CartService) ListCarts(ctx context.Context, p pagination.Params) (pagination.Page[models.Cart], error) {
	return pagination.Paginate[models.Cart](s.db.WithContext(ctx).Model(&models.Cart{}), p, CartFields)
}
