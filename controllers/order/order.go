package orderControllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/junaidrashid-git/storefront-api/services"
)

// -------- Request Structs --------

type PlaceOrderRequest struct {
	// CartID defaults to the caller's cart.
	CartID uint `json:"cart_id"`
}

// OrderView adds the derived lifecycle status.
type OrderView struct {
	models.Order
	Status models.OrderStatus `json:"status"`
}

func newOrderView(o *models.Order) OrderView {
	return OrderView{Order: *o, Status: o.Status()}
}

// -------- Helpers --------

// ownOrder loads the order in :id, answering 404/403 unless the caller owns it or is staff.
func ownOrder(c *gin.Context, orders *services.OrderService) (*models.Order, bool) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return nil, false
	}
	order, err := orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return nil, false
	}
	user := middleware.CurrentUser(c)
	if order.UserID != user.ID && !user.IsPrivileged() {
		respond.Error(c, services.ErrAuthorization)
		return nil, false
	}
	return order, true
}

// -------- Handlers --------

// POST /orders turns a cart into an order waiting for payment.
func PlaceOrder(orders *services.OrderService, carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PlaceOrderRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respond.BadRequest(c, err)
				return
			}
		}

		user := middleware.CurrentUser(c)
		if req.CartID == 0 {
			cartID, err := carts.UserCartID(c.Request.Context(), user.ID)
			if err != nil {
				respond.Error(c, err)
				return
			}
			req.CartID = cartID
		}

		order, err := orders.CreateOrder(c.Request.Context(), user.ID, req.CartID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, newOrderView(order))
	}
}

// GET /orders lists the caller's orders, or every order for staff.
func ListOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := respond.Params(c, services.OrderFields)
		if !ok {
			return
		}

		user := middleware.CurrentUser(c)
		var owner *uint
		if !user.IsPrivileged() {
			owner = &user.ID
		}
		page, err := orders.ListOrders(c.Request.Context(), owner, params)
		if err != nil {
			respond.Error(c, err)
			return
		}

		out := pagination.Page[OrderView]{
			Items: make([]OrderView, len(page.Items)),
			Total: page.Total,
			Page:  page.Page,
			Size:  page.Size,
			Pages: page.Pages,
		}
		for i := range page.Items {
			out.Items[i] = newOrderView(&page.Items[i])
		}
		c.JSON(http.StatusOK, out)
	}
}

// GET /orders/:id
func GetOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := ownOrder(c, orders)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newOrderView(order))
	}
}

// POST /orders/:id/cancel returns the reserved stock to the store.
func CancelOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := ownOrder(c, orders)
		if !ok {
			return
		}

		cancelled, err := orders.CancelOrder(c.Request.Context(), order.ID, false)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, newOrderView(cancelled))
	}
}

func transition(apply func(ctx context.Context, orderID uint) (*models.Order, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		order, err := apply(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, newOrderView(order))
	}
}

// POST /orders/:id/accept (staff)
func AcceptOrder(orders *services.OrderService) gin.HandlerFunc {
	return transition(orders.AcceptOrder)
}

// POST /orders/:id/deliver (staff)
func DeliverOrder(orders *services.OrderService) gin.HandlerFunc {
	return transition(orders.DeliverOrder)
}

// POST /orders/:id/receive, by the owner or staff.
func ReceiveOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := ownOrder(c, orders)
		if !ok {
			return
		}

		received, err := orders.ReceiveOrder(c.Request.Context(), order.ID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, newOrderView(received))
	}
}
