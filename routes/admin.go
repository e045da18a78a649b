package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	emailControllers "github.com/junaidrashid-git/storefront-api/controllers/email"
	inventoryControllers "github.com/junaidrashid-git/storefront-api/controllers/inventory"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAdminRoutes registers "/admin", "/inventory" and "/email". Staff only,
// with superuser-only routes marked.
func SetupAdminRoutes(r *gin.Engine, d *Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(d.authenticated(), middleware.RequireSuperuser)
	{
		adminGroup.PUT("/users/:id/roles", adminController.SetRoles(d.Users))
		adminGroup.POST("/sweeps", adminController.RunSweeps(d.Sweeper))
	}

	// ─────────── Inventory Management ───────────
	inventoryGroup := r.Group("/inventory")
	inventoryGroup.Use(d.authenticated(), middleware.RequireStaff)
	{
		inventoryGroup.POST("", inventoryControllers.CreateInventory(d.Inventory))
		inventoryGroup.GET("", inventoryControllers.ListInventories(d.Inventory))
		inventoryGroup.POST("/import", inventoryControllers.ImportInventoryExcel(d.Inventory))
		inventoryGroup.GET("/product/:id", inventoryControllers.GetProductInventory(d.Inventory))
		inventoryGroup.GET("/:id", inventoryControllers.GetInventory(d.Inventory))
		inventoryGroup.PUT("/:id", inventoryControllers.UpdateInventory(d.Inventory))
	}

	// ─────────── Email ───────────
	emailGroup := r.Group("/email")
	emailGroup.Use(d.authenticated(), middleware.RequireStaff)
	{
		emailGroup.POST("/order/:order_id", emailControllers.SendOrderSummary(d.Orders, d.Users, d.Mailer))
		emailGroup.POST("/send", middleware.RequireSuperuser, emailControllers.SendEmail(d.Users, d.Mailer))
	}
}
