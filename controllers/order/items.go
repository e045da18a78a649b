package orderControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

// GET /orders/:id/items
func ListOrderItems(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := ownOrder(c, orders)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, order.Items)
	}
}

// GET /orders/:id/items/:item_id
func GetOrderItem(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, ok := ownOrder(c, orders)
		if !ok {
			return
		}
		itemID, ok := respond.ID(c, "item_id")
		if !ok {
			return
		}

		item, err := orders.GetOrderItem(c.Request.Context(), order.ID, itemID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}
