package productcontroller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

// POST /products (staff). A quantity in the body opens the inventory too.
func CreateProduct(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		product, err := catalog.CreateProduct(c.Request.Context(), input)
		if err != nil {
			respond.Error(c, err)
			return
		}
		log.Printf("✅ Product %d (%s) created", product.ID, product.Name)
		c.JSON(http.StatusCreated, newStaffView(product))
	}
}
