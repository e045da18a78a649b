package orderControllers

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/events"
)

// GET /orders/ws (staff) streams order events as they are published.
func OrderWebSocketHandler(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.Serve(c.Writer, c.Request)
	}
}
