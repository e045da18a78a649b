package routes

import (
	"github.com/gin-gonic/gin"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAuthRoutes registers registration and the token endpoint.
func SetupAuthRoutes(r *gin.Engine, d *Deps) {
	r.POST("/token", middleware.RateLimit(d.TokenRateLimit, 5), userControllers.IssueToken(d.Users, d.Tokens))
	r.POST("/users", userControllers.Register(d.Users))
}
