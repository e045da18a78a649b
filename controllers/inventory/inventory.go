package inventoryControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

type CreateInventoryInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity" binding:"required"`
}

type UpdateInventoryInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// POST /inventory
func CreateInventory(inventory *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateInventoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		inv, err := inventory.CreateInventory(c.Request.Context(), input.ProductID, *input.Quantity)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, inv)
	}
}

// GET /inventory
func ListInventories(inventory *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := respond.Params(c, services.InventoryFields)
		if !ok {
			return
		}

		page, err := inventory.ListInventories(c.Request.Context(), params)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GET /inventory/:id
func GetInventory(inventory *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		inv, err := inventory.GetInventory(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

// GET /inventory/product/:id
func GetProductInventory(inventory *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		inv, err := inventory.GetProductInventory(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}

// PUT /inventory/:id sets the stock; the free share moves by the same amount.
func UpdateInventory(inventory *services.InventoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		var input UpdateInventoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		inv, err := inventory.UpdateInventory(c.Request.Context(), id, *input.Quantity)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, inv)
	}
}
