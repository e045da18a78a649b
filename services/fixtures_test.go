package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/cache"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (r *recorder) Publish(_ context.Context, e events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	now       time.Time
	events    *recorder
	carts     *CartService
	orders    *OrderService
	inventory *InventoryService
	catalog   *CatalogService
	users     *UserService
}

const (
	testItemTTL       = 48 * time.Hour
	testPaymentWindow = 24 * time.Hour
)

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	f := &fixture{
		ctx:    context.Background(),
		db:     db,
		now:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		events: &recorder{},
	}
	f.carts = NewCartService(db, cache.Noop{}, testItemTTL)
	f.carts.now = func() time.Time { return f.now }
	f.orders = NewOrderService(db, f.carts, f.events, nil, testPaymentWindow)
	f.inventory = NewInventoryService(db)
	f.catalog = NewCatalogService(db, f.carts)
	f.users = NewUserService(db, f.carts)
	return f
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "not-a-hash", IsActive: true}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) product(t *testing.T, name, price string, quantity int) *models.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(f.ctx, ProductInput{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: &quantity,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) stock(t *testing.T, productID uint) models.ProductInventory {
	t.Helper()
	var inv models.ProductInventory
	require.NoError(t, f.db.Where("product_id = ?", productID).First(&inv).Error)
	return inv
}

// cartOf returns the user's cart, or nil when the user has none.
func (f *fixture) cartOf(t *testing.T, userID uint) *models.Cart {
	t.Helper()
	var carts []models.Cart
	require.NoError(t, f.db.Preload("Items").Where("user_id = ?", userID).Find(&carts).Error)
	if len(carts) == 0 {
		return nil
	}
	return &carts[0]
}

func (f *fixture) add(t *testing.T, userID, productID uint, quantity int) *CartItemResult {
	t.Helper()
	res, err := f.carts.AddToUserCart(f.ctx, userID, productID, quantity)
	require.NoError(t, err)
	return res
}

// assertConsistent checks that every cart total matches its items and that
// every inventory keeps its free share within its stock.
func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	var carts []models.Cart
	require.NoError(t, f.db.Preload("Items").Find(&carts).Error)
	for _, c := range carts {
		assert.NotEmpty(t, c.Items, "cart %d has no items", c.ID)
		sum := decimal.Zero
		for _, it := range c.Items {
			sum = sum.Add(it.CartItemPrice)
		}
		assert.True(t, sum.Equal(c.CartTotalPrice), "cart %d total %s != items %s", c.ID, c.CartTotalPrice, sum)
	}

	var invs []models.ProductInventory
	require.NoError(t, f.db.Find(&invs).Error)
	for _, inv := range invs {
		assert.GreaterOrEqual(t, inv.QuantityForCartItems, 0)
		assert.LessOrEqual(t, inv.QuantityForCartItems, inv.Quantity)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
