package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

// POST /categories (staff)
func CreateCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		category, err := catalog.CreateCategory(c.Request.Context(), input)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// GET /categories
func ListCategories(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := respond.Params(c, services.CategoryFields)
		if !ok {
			return
		}

		page, err := catalog.ListCategories(c.Request.Context(), params)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GET /categories/:id
func GetCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		category, err := catalog.GetCategory(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// PUT /categories/:id (staff)
func UpdateCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		var input services.CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		category, err := catalog.UpdateCategory(c.Request.Context(), id, input)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /categories/:id (staff)
func DeleteCategory(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		if err := catalog.DeleteCategory(c.Request.Context(), id); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GET /categories/:id/products
func ListCategoryProducts(catalog *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}
		params, ok := respond.Params(c, services.ProductFields)
		if !ok {
			return
		}

		staff := isStaff(c)
		page, err := catalog.ListCategoryProducts(c.Request.Context(), id, staff, params)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, viewPage(staff, page))
	}
}
