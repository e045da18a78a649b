package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

// PUT /products/:id (staff)
func UpdateProduct(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		var input services.UpdateProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		product, err := catalog.UpdateProduct(c.Request.Context(), id, input)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, newStaffView(product))
	}
}

// POST /products/:id/remove_from_store (staff)
func RemoveFromStore(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		removed, err := catalog.RemoveFromStore(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"product_id": id, "removed_cart_items": removed})
	}
}
