package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupUserRoutes registers all "/users/*" and "/carts/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d *Deps) {
	userGroup := r.Group("/users")
	userGroup.Use(d.authenticated())
	{
		// ──────────────── Profile ────────────────
		userGroup.GET("/me", userControllers.GetMe)
		userGroup.PUT("/me", userControllers.UpdateMe(d.Users))

		// ──────────────── Accounts ────────────────
		userGroup.GET("", middleware.RequireStaff, userControllers.ListUsers(d.Users))
		userGroup.GET("/:id", userControllers.GetUser(d.Users))
		userGroup.DELETE("/:id", middleware.RequireSuperuser, userControllers.DeleteUser(d.Users))
	}

	cartGroup := r.Group("/carts")
	cartGroup.Use(d.authenticated())
	{
		// ──────────────── My cart ────────────────
		cartGroup.GET("/me", cartControllers.GetMyCart(d.Carts))
		cartGroup.POST("/me/items", cartControllers.AddToMyCart(d.Carts))

		// ──────────────── Carts by id (owner or staff) ────────────────
		cartGroup.POST("", cartControllers.CreateCart(d.Carts))
		cartGroup.GET("", middleware.RequireStaff, cartControllers.ListCarts(d.Carts))
		cartGroup.GET("/:id", cartControllers.GetCart(d.Carts))
		cartGroup.DELETE("/:id", cartControllers.DeleteCart(d.Carts))

		items := cartGroup.Group("/:id/items")
		{
			items.GET("", cartControllers.ListCartItems(d.Carts))
			items.POST("", cartControllers.CreateCartItem(d.Carts))
			items.GET("/:item_id", cartControllers.GetCartItem(d.Carts))
			items.PUT("/:item_id", cartControllers.UpdateCartItem(d.Carts))
			items.DELETE("/:item_id", cartControllers.DeleteCartItem(d.Carts))
		}
	}
}
