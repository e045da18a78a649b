package routes

import (
	"github.com/gin-gonic/gin"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupCatalogRoutes registers "/categories" and "/products". Reads are public;
// a token, when sent, switches to the staff view.
func SetupCatalogRoutes(r *gin.Engine, d *Deps) {
	optional := middleware.OptionalToken(d.Tokens, d.Users)
	staff := []gin.HandlerFunc{d.authenticated(), middleware.RequireStaff}

	categories := r.Group("/categories")
	{
		categories.GET("", productcontroller.ListCategories(d.Catalog))
		categories.GET("/:id", productcontroller.GetCategory(d.Catalog))
		categories.GET("/:id/products", optional, productcontroller.ListCategoryProducts(d.Catalog))

		categories.POST("", append(staff, productcontroller.CreateCategory(d.Catalog))...)
		categories.PUT("/:id", append(staff, productcontroller.UpdateCategory(d.Catalog))...)
		categories.DELETE("/:id", append(staff, productcontroller.DeleteCategory(d.Catalog))...)
	}

	products := r.Group("/products")
	{
		products.GET("", optional, productcontroller.GetAllProducts(d.Catalog))
		products.GET("/:id", optional, productcontroller.GetProductByID(d.Catalog))

		products.GET("/export", append(staff, productcontroller.ExportProductsExcel(d.Inventory))...)
		products.POST("", append(staff, productcontroller.CreateProduct(d.Catalog))...)
		products.PUT("/:id", append(staff, productcontroller.UpdateProduct(d.Catalog))...)
		products.POST("/:id/remove_from_store", append(staff, productcontroller.RemoveFromStore(d.Catalog))...)
		products.DELETE("/:id", append(staff, productcontroller.DeleteProduct(d.Catalog))...)
	}
}
