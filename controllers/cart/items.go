package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/services"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity" binding:"required"`
}

type UpdateCartItemInput struct {
	// Quantity 0 removes the item.
	Quantity *int `json:"quantity" binding:"required"`
}

func writeResult(c *gin.Context, status int, res *services.CartItemResult) {
	if res.CartDeleted {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

// POST /carts/me/items adds to the caller's cart, opening it when needed.
func AddToMyCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		res, err := carts.AddToUserCart(c.Request.Context(), middleware.CurrentUser(c).ID, input.ProductID, *input.Quantity)
		if err != nil {
			respond.Error(c, err)
			return
		}
		writeResult(c, http.StatusCreated, res)
	}
}

// POST /carts/:id/items
func CreateCartItem(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := ownCart(c, carts)
		if !ok {
			return
		}

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		res, err := carts.CreateCartItem(c.Request.Context(), cartID, input.ProductID, *input.Quantity)
		if err != nil {
			respond.Error(c, err)
			return
		}
		writeResult(c, http.StatusCreated, res)
	}
}

// GET /carts/:id/items
func ListCartItems(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := ownCart(c, carts)
		if !ok {
			return
		}

		items, err := carts.ListCartItems(c.Request.Context(), cartID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GET /carts/:id/items/:item_id
func GetCartItem(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := ownCart(c, carts)
		if !ok {
			return
		}
		itemID, ok := respond.ID(c, "item_id")
		if !ok {
			return
		}

		item, err := carts.GetCartItem(c.Request.Context(), cartID, itemID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// PUT /carts/:id/items/:item_id
func UpdateCartItem(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := ownCart(c, carts)
		if !ok {
			return
		}
		itemID, ok := respond.ID(c, "item_id")
		if !ok {
			return
		}

		var input UpdateCartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		res, err := carts.UpdateCartItem(c.Request.Context(), cartID, itemID, *input.Quantity)
		if err != nil {
			respond.Error(c, err)
			return
		}
		writeResult(c, http.StatusOK, res)
	}
}

// DELETE /carts/:id/items/:item_id
func DeleteCartItem(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, ok := ownCart(c, carts)
		if !ok {
			return
		}
		itemID, ok := respond.ID(c, "item_id")
		if !ok {
			return
		}

		cartDeleted, err := carts.DeleteCartItem(c.Request.Context(), cartID, itemID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, services.CartItemResult{CartDeleted: cartDeleted})
	}
}
