package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/cache"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/payments"
	"github.com/junaidrashid-git/storefront-api/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGateway struct {
	completion *payments.Completion
}

func (g *fakeGateway) CreateCheckout(_ context.Context, order *models.Order) (*payments.Checkout, error) {
	id := fmt.Sprintf("cs_test_%d", order.ID)
	return &payments.Checkout{SessionID: id, URL: "https://checkout.test/" + id}, nil
}

func (g *fakeGateway) ParseWebhook([]byte, string) (*payments.Completion, error) {
	return g.completion, nil
}

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

type api struct {
	t       *testing.T
	r       *gin.Engine
	db      *gorm.DB
	deps    *Deps
	gateway *fakeGateway
	mail    *outbox
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	gateway := &fakeGateway{}
	mail := &outbox{}
	carts := services.NewCartService(db, cache.Noop{}, time.Hour)
	orders := services.NewOrderService(db, carts, events.Noop{}, nil, time.Hour)
	users := services.NewUserService(db, carts)
	deps := &Deps{
		DB:             db,
		Tokens:         auth.NewTokens("test-secret", time.Hour),
		Users:          users,
		Carts:          carts,
		Catalog:        services.NewCatalogService(db, carts),
		Inventory:      services.NewInventoryService(db),
		Orders:         orders,
		Payments:       services.NewPaymentService(db, orders, gateway),
		Sweeper:        services.NewSweeper(carts, orders),
		Hub:            events.NewHub(),
		Mailer:         mail,
		TokenRateLimit: 100,
	}
	r := gin.New()
	SetupRoutes(r, deps)
	return &api{t: t, r: r, db: db, deps: deps, gateway: gateway, mail: mail}
}

// account creates an active user and returns it with a bearer token.
func (a *api) account(email string, staff, superuser bool) (*models.User, string) {
	a.t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(a.t, err)
	u := &models.User{Email: email, Password: hash, IsActive: true, IsStaff: staff, IsSuperuser: superuser}
	require.NoError(a.t, a.db.Create(u).Error)
	token, err := a.deps.Tokens.Issue(u.ID)
	require.NoError(a.t, err)
	return u, token
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// product creates a product with stock through the staff API.
func (a *api) product(staffToken, name, price string, quantity int) uint {
	a.t.Helper()
	w := a.do(http.MethodPost, "/products", staffToken, gin.H{"name": name, "price": price, "quantity": quantity})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		ID uint `json:"id"`
	}](a.t, w).ID
}

type cartBody struct {
	ID             uint            `json:"id"`
	CartTotalPrice decimal.Decimal `json:"cart_total_price"`
	Items          []struct {
		ID       uint `json:"id"`
		Quantity int  `json:"quantity"`
	} `json:"items"`
}

type orderBody struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
	Items  []struct {
		ID        uint `json:"id"`
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	} `json:"items"`
	TotalOrderPrice decimal.Decimal `json:"total_order_price"`
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterAndToken(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/users", "", gin.H{"email": "Ann@Example.com", "password": "password123", "first_name": "Ann"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "is_staff")

	w = a.do(http.MethodPost, "/users", "", gin.H{"email": "ann@example.com", "password": "password123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodPost, "/users", "", gin.H{"email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/token", "", gin.H{"username": "ann@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[map[string]string](t, w)
	assert.Equal(t, "bearer", token["token_type"])

	form := url.Values{"username": {"ann@example.com"}, "password": {"password123"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	fw := httptest.NewRecorder()
	a.r.ServeHTTP(fw, req)
	assert.Equal(t, http.StatusOK, fw.Code, fw.Body.String())

	w = a.do(http.MethodPost, "/token", "", gin.H{"username": "ann@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = a.do(http.MethodGet, "/users/me", token["access_token"], nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "ann@example.com", me["email"])
	assert.NotContains(t, me, "is_staff")

	w = a.do(http.MethodPut, "/users/me", token["access_token"], gin.H{"last_name": "Lee"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lee", decode[map[string]any](t, w)["last_name"])
}

func TestRoleGates(t *testing.T) {
	a := newAPI(t)
	ann, annToken := a.account("ann@example.com", false, false)
	_, bobToken := a.account("bob@example.com", false, false)
	_, staffToken := a.account("staff@example.com", true, false)
	_, rootToken := a.account("root@example.com", false, true)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/users/me", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/users", annToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/products", annToken, gin.H{"name": "x", "price": "1"}).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/products", "", gin.H{"name": "x", "price": "1"}).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/inventory", annToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/admin/sweeps", staffToken, nil).Code)

	path := fmt.Sprintf("/users/%d", ann.ID)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, annToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, path, bobToken, nil).Code)

	w := a.do(http.MethodGet, path, staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]any](t, w), "is_staff")

	w = a.do(http.MethodGet, "/users?sort=email__asc&size=2", staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	}](t, w)
	assert.Equal(t, int64(4), page.Total)
	assert.Equal(t, 2, page.Pages)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/users?password__eq=x", staffToken, nil).Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, path, staffToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, rootToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/users/me", annToken, nil).Code)
}

func TestShoppingFlow(t *testing.T) {
	a := newAPI(t)
	_, staffToken := a.account("staff@example.com", true, false)
	_, token := a.account("ann@example.com", false, false)
	mug := a.product(staffToken, "mug", "2.50", 5)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/carts/me", token, nil).Code)

	w := a.do(http.MethodPost, "/carts/me/items", token, gin.H{"product_id": mug, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/carts/me/items", token, gin.H{"product_id": mug, "quantity": 10})
	require.Equal(t, http.StatusBadRequest, w.Code)
	exceeded := decode[map[string]any](t, w)
	assert.EqualValues(t, 5, exceeded["available"])
	assert.EqualValues(t, 10, exceeded["requested"])

	w = a.do(http.MethodPost, "/carts/me/items", token, gin.H{"product_id": 999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/carts/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode[cartBody](t, w)
	require.Len(t, cart.Items, 1)
	assert.True(t, decimal.RequireFromString("5.00").Equal(cart.CartTotalPrice))

	itemPath := fmt.Sprintf("/carts/%d/items/%d", cart.ID, cart.Items[0].ID)
	w = a.do(http.MethodPut, itemPath, token, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cart_deleted":true}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/carts/me", token, nil).Code)

	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/carts/me/items", token, gin.H{"product_id": mug, "quantity": 3}).Code)

	w = a.do(http.MethodPost, "/orders", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[orderBody](t, w)
	assert.Equal(t, string(models.OrderStatusWaitingForPayment), order.Status)
	assert.True(t, decimal.RequireFromString("7.50").Equal(order.TotalOrderPrice))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/carts/me", token, nil).Code)

	w = a.do(http.MethodGet, fmt.Sprintf("/orders/%d/items/%d", order.ID, order.Items[0].ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	cancelPath := fmt.Sprintf("/orders/%d/cancel", order.ID)
	w = a.do(http.MethodPost, cancelPath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.OrderStatusCancelled), decode[orderBody](t, w).Status)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, cancelPath, token, nil).Code)

	var inv models.ProductInventory
	require.NoError(t, a.db.Where("product_id = ?", mug).First(&inv).Error)
	assert.Equal(t, 5, inv.QuantityForCartItems)
}

func TestOrderLifecycle(t *testing.T) {
	a := newAPI(t)
	_, staffToken := a.account("staff@example.com", true, false)
	_, token := a.account("ann@example.com", false, false)
	mug := a.product(staffToken, "mug", "4.00", 3)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/carts/me/items", token, gin.H{"product_id": mug, "quantity": 1}).Code)

	w := a.do(http.MethodPost, "/orders", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[orderBody](t, w)

	accept := fmt.Sprintf("/orders/%d/accept", order.ID)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, accept, token, nil).Code)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, accept, staffToken, nil).Code, "unpaid orders cannot be accepted")

	w = a.do(http.MethodPost, fmt.Sprintf("/payments/checkout/%d", order.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fmt.Sprintf("https://checkout.test/cs_test_%d", order.ID), decode[map[string]string](t, w)["url"])

	a.gateway.completion = &payments.Completion{OrderID: order.ID, ChargeID: "pi_1", Amount: decimal.RequireFromString("4.00")}
	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=test")
	hw := httptest.NewRecorder()
	a.r.ServeHTTP(hw, req)
	require.Equal(t, http.StatusOK, hw.Code, hw.Body.String())

	w = a.do(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), token, nil)
	assert.Equal(t, string(models.OrderStatusPaid), decode[orderBody](t, w).Status)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, accept, staffToken, nil).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, fmt.Sprintf("/orders/%d/deliver", order.ID), staffToken, nil).Code)
	w = a.do(http.MethodPost, fmt.Sprintf("/orders/%d/receive", order.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.OrderStatusReceived), decode[orderBody](t, w).Status)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), token, nil).Code)

	w = a.do(http.MethodGet, "/payments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	payPage := decode[struct {
		Total int64 `json:"total"`
		Items []struct {
			ID uint `json:"id"`
		} `json:"items"`
	}](t, w)
	require.Equal(t, int64(1), payPage.Total)

	_, bobToken := a.account("bob@example.com", false, false)
	paymentPath := fmt.Sprintf("/payments/%d", payPage.Items[0].ID)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, paymentPath, bobToken, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, paymentPath, staffToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), bobToken, nil).Code)
}

func TestStripeWebhook_IgnoresOtherEvents(t *testing.T) {
	a := newAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/stripe/webhook", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/stripe/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=test")
	w = httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestCartOwnership(t *testing.T) {
	a := newAPI(t)
	_, staffToken := a.account("staff@example.com", true, false)
	_, annToken := a.account("ann@example.com", false, false)
	bob, bobToken := a.account("bob@example.com", false, false)
	mug := a.product(staffToken, "mug", "1.00", 5)

	w := a.do(http.MethodPost, "/carts", annToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cart := decode[cartBody](t, w)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/carts", annToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/carts", annToken, gin.H{"user_id": bob.ID}).Code)

	cartPath := fmt.Sprintf("/carts/%d", cart.ID)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, cartPath, bobToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, cartPath+"/items", bobToken, gin.H{"product_id": mug, "quantity": 1}).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, cartPath, staffToken, nil).Code)

	w = a.do(http.MethodPost, cartPath+"/items", annToken, gin.H{"product_id": mug, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, cartPath+"/items", annToken, gin.H{"product_id": mug, "quantity": 2}).Code)

	w = a.do(http.MethodGet, cartPath+"/items", annToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, cartPath+"/items/999", annToken, nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, cartPath, annToken, nil).Code)
	var inv models.ProductInventory
	require.NoError(t, a.db.Where("product_id = ?", mug).First(&inv).Error)
	assert.Equal(t, 5, inv.QuantityForCartItems)
}

func TestProductViews(t *testing.T) {
	a := newAPI(t)
	_, staffToken := a.account("staff@example.com", true, false)
	_, token := a.account("ann@example.com", false, false)

	w := a.do(http.MethodPost, "/categories", staffToken, gin.H{"name": "kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)
	category := decode[map[string]any](t, w)

	w = a.do(http.MethodPost, "/products", staffToken, gin.H{
		"name": "mug", "price": "2.00", "quantity": 4, "category_ids": []any{category["id"]},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[map[string]any](t, w)["id"]
	path := fmt.Sprintf("/products/%v", id)

	public := decode[map[string]any](t, a.do(http.MethodGet, path, "", nil))
	assert.NotContains(t, public, "inventory")
	assert.Equal(t, true, public["in_stock"])

	staff := decode[map[string]any](t, a.do(http.MethodGet, path, staffToken, nil))
	assert.Contains(t, staff, "inventory")

	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/carts/me/items", token, gin.H{"product_id": id, "quantity": 1}).Code)

	w = a.do(http.MethodPost, path+"/remove_from_store", staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["removed_cart_items"])

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, token, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, staffToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/carts/me", token, nil).Code)

	w = a.do(http.MethodGet, fmt.Sprintf("/categories/%v/products", category["id"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["total"])

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/products?price__between=1", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/products/abc", "", nil).Code)

	w = a.do(http.MethodPost, "/products", staffToken, gin.H{"name": "free", "price": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryEndpoints(t *testing.T) {
	a := newAPI(t)
	_, staffToken := a.account("staff@example.com", true, false)
	mug := a.product(staffToken, "mug", "2.00", 5)

	w := a.do(http.MethodGet, fmt.Sprintf("/inventory/product/%d", mug), staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	inv := decode[models.ProductInventory](t, w)

	w = a.do(http.MethodPut, fmt.Sprintf("/inventory/%d", inv.ID), staffToken, gin.H{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(http.MethodPut, fmt.Sprintf("/inventory/%d", inv.ID), staffToken, gin.H{"quantity": 8})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8, decode[models.ProductInventory](t, w).QuantityForCartItems)

	w = a.do(http.MethodPost, "/inventory", staffToken, gin.H{"product_id": mug, "quantity": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodGet, "/products/export", staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=products.xlsx", w.Header().Get("Content-Disposition"))
	book, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, 2, book.Sheets[0].MaxRow)

	book.Sheets[0].Rows[1].Cells[4].SetInt(12)
	var file bytes.Buffer
	require.NoError(t, book.Write(&file))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "products.xlsx")
	require.NoError(t, err)
	_, err = part.Write(file.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/inventory/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+staffToken)
	iw := httptest.NewRecorder()
	a.r.ServeHTTP(iw, req)
	require.Equal(t, http.StatusOK, iw.Code, iw.Body.String())
	assert.JSONEq(t, `{"created_count":0,"updated_count":1,"skipped_count":0}`, iw.Body.String())

	w = a.do(http.MethodGet, fmt.Sprintf("/inventory/%d", inv.ID), staffToken, nil)
	assert.Equal(t, 12, decode[models.ProductInventory](t, w).Quantity)
}

func TestAdminEndpoints(t *testing.T) {
	a := newAPI(t)
	_, staffToken := a.account("staff@example.com", true, false)
	ann, annToken := a.account("ann@example.com", false, false)
	_, rootToken := a.account("root@example.com", false, true)
	mug := a.product(staffToken, "mug", "1.00", 5)

	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/carts/me/items", annToken, gin.H{"product_id": mug, "quantity": 2}).Code)
	require.NoError(t, a.db.Model(&models.CartItem{}).Where("1 = 1").Update("valid_to", time.Now().Add(-time.Minute)).Error)

	w := a.do(http.MethodPost, "/admin/sweeps", rootToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[services.SweepResult](t, w)
	assert.Equal(t, 1, res.ExpiredCartItems)
	assert.Equal(t, 0, res.OverdueOrders)

	var inv models.ProductInventory
	require.NoError(t, a.db.Where("product_id = ?", mug).First(&inv).Error)
	assert.Equal(t, 5, inv.QuantityForCartItems)

	w = a.do(http.MethodPut, fmt.Sprintf("/admin/users/%d/roles", ann.ID), rootToken, gin.H{"is_staff": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["is_staff"])
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/users", annToken, nil).Code)

	w = a.do(http.MethodPut, fmt.Sprintf("/admin/users/%d/roles", ann.ID), rootToken, gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/users/me", annToken, nil).Code)
}

func TestEmailEndpoints(t *testing.T) {
	a := newAPI(t)
	_, staffToken := a.account("staff@example.com", true, false)
	ann, annToken := a.account("ann@example.com", false, false)
	_, rootToken := a.account("root@example.com", false, true)
	mug := a.product(staffToken, "mug", "3.00", 5)
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/carts/me/items", annToken, gin.H{"product_id": mug, "quantity": 1}).Code)
	w := a.do(http.MethodPost, "/orders", annToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	order := decode[orderBody](t, w)

	path := fmt.Sprintf("/email/order/%d", order.ID)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, path, annToken, nil).Code)
	w = a.do(http.MethodPost, path, staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, a.mail.sent, 1)
	assert.Equal(t, "ann@example.com", a.mail.sent[0].To)
	assert.Contains(t, a.mail.sent[0].Subject, fmt.Sprintf("order #%d", order.ID))

	msg := gin.H{"user_id": ann.ID, "subject": "Hello", "html": "<p>hi</p>"}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/email/send", staffToken, msg).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/email/send", rootToken, msg).Code)
	require.Len(t, a.mail.sent, 2)

	a.deps.Mailer = mailer.Disabled{}
	r := gin.New()
	SetupRoutes(r, a.deps)
	a.r = r
	assert.Equal(t, http.StatusServiceUnavailable, a.do(http.MethodPost, "/email/send", rootToken, msg).Code)
}
