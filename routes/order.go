package routes

import (
	"github.com/gin-gonic/gin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d *Deps) {
	orders := r.Group("/orders")
	orders.Use(d.authenticated())
	{
		// websocket feed of order events for staff
		orders.GET("/ws", middleware.RequireStaff, orderControllers.OrderWebSocketHandler(d.Hub))

		// Create an order from a cart
		orders.POST("", orderControllers.PlaceOrder(d.Orders, d.Carts))

		// Own orders, or all of them for staff
		orders.GET("", orderControllers.ListOrders(d.Orders))
		orders.GET("/:id", orderControllers.GetOrder(d.Orders))
		orders.GET("/:id/items", orderControllers.ListOrderItems(d.Orders))
		orders.GET("/:id/items/:item_id", orderControllers.GetOrderItem(d.Orders))

		// Lifecycle
		orders.POST("/:id/cancel", orderControllers.CancelOrder(d.Orders))
		orders.POST("/:id/accept", middleware.RequireStaff, orderControllers.AcceptOrder(d.Orders))
		orders.POST("/:id/deliver", middleware.RequireStaff, orderControllers.DeliverOrder(d.Orders))
		orders.POST("/:id/receive", orderControllers.ReceiveOrder(d.Orders))
	}
}
