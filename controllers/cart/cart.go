package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/services"
)

type CreateCartInput struct {
	// UserID lets staff open a cart for someone else.
	UserID uint `json:"user_id"`
}

// ownCart answers 404/403 unless the cart exists and the caller owns it or is staff.
func ownCart(c *gin.Context, carts *services.CartService) (uint, bool) {
	id, ok := respond.ID(c, "id")
	if !ok {
		return 0, false
	}
	user := middleware.CurrentUser(c)
	if user.IsPrivileged() {
		return id, true
	}
	cart, err := carts.GetCart(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return 0, false
	}
	if cart.UserID != user.ID {
		respond.Error(c, services.ErrAuthorization)
		return 0, false
	}
	return id, true
}

// POST /carts
func CreateCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateCartInput
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&input); err != nil {
				respond.BadRequest(c, err)
				return
			}
		}

		user := middleware.CurrentUser(c)
		userID := user.ID
		if input.UserID != 0 && input.UserID != user.ID {
			if !user.IsPrivileged() {
				respond.Error(c, services.ErrAuthorization)
				return
			}
			userID = input.UserID
		}

		cart, err := carts.CreateCart(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, cart)
	}
}

// GET /carts (staff)
func ListCarts(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := respond.Params(c, services.CartFields)
		if !ok {
			return
		}

		page, err := carts.ListCarts(c.Request.Context(), params)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GET /carts/me
func GetMyCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := carts.GetUserCart(c.Request.Context(), middleware.CurrentUser(c).ID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// GET /carts/:id
func GetCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ownCart(c, carts)
		if !ok {
			return
		}

		cart, err := carts.GetCart(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /carts/:id returns every reservation to the inventory.
func DeleteCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := ownCart(c, carts)
		if !ok {
			return
		}

		if err := carts.DeleteCart(c.Request.Context(), id); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
