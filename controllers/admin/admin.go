package adminController

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/services"
)

// PUT /admin/users/:id/roles
func SetRoles(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		var input services.RolesInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		user, err := users.SetRoles(c.Request.Context(), id, input)
		if err != nil {
			respond.Error(c, err)
			return
		}
		log.Printf("✅ Roles of user %d updated by %d", user.ID, middleware.CurrentUser(c).ID)
		c.JSON(http.StatusOK, userControllers.View(middleware.CurrentUser(c), user))
	}
}

// POST /admin/sweeps runs the expiry sweeps once. A partial failure still
// reports what was swept.
func RunSweeps(sweeper *services.Sweeper) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := sweeper.Sweep(c.Request.Context())
		if err != nil {
			log.Println("❌ Sweep finished with errors:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep finished with errors", "result": res})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
