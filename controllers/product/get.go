package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/services"
)

func isStaff(c *gin.Context) bool {
	user := middleware.CurrentUser(c)
	return user != nil && user.IsPrivileged()
}

// GetProductByID returns a single product. Staff also see removed products.
// URL param: /products/:id
func GetProductByID(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		staff := isStaff(c)
		product, err := catalog.GetProduct(c.Request.Context(), id, staff)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, view(staff, product))
	}
}

// GET /products?page=1&size=20&price__lte=10&sort=name__asc
func GetAllProducts(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := respond.Params(c, services.ProductFields)
		if !ok {
			return
		}

		staff := isStaff(c)
		page, err := catalog.ListProducts(c.Request.Context(), staff, params)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, viewPage(staff, page))
	}
}
