package productcontroller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

// DELETE /products/:id (staff)
func DeleteProduct(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		if err := catalog.DeleteProduct(c.Request.Context(), id); err != nil {
			respond.Error(c, err)
			return
		}
		log.Printf("🗑️ Product %d deleted", id)
		c.Status(http.StatusNoContent)
	}
}
