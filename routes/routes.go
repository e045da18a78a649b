package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/services"
	"gorm.io/gorm"
)

// Deps is everything the handlers are built from.
type Deps struct {
	DB        *gorm.DB
	Tokens    *auth.Tokens
	Users     *services.UserService
	Carts     *services.CartService
	Catalog   *services.CatalogService
	Inventory *services.InventoryService
	Orders    *services.OrderService
	Payments  *services.PaymentService
	Sweeper   *services.Sweeper
	Hub       *events.Hub
	Mailer    mailer.Sender

	// TokenRateLimit is requests per second per client on POST /token.
	TokenRateLimit float64
}

func (d *Deps) authenticated() gin.HandlerFunc {
	return middleware.ValidateToken(d.Tokens, d.Users)
}

// SetupRoutes is the single entry-point that wires every route group.
func SetupRoutes(r *gin.Engine, d *Deps) {
	r.GET("/health", health(d.DB))

	// 1️⃣ Public auth routes
	SetupAuthRoutes(r, d)

	// 2️⃣ Users and carts (JWT-protected)
	SetupUserRoutes(r, d)

	// 3️⃣ Catalog: public reads, staff writes
	SetupCatalogRoutes(r, d)

	// 4️⃣ Orders, payments and the Stripe webhook
	SetupOrderRoutes(r, d)
	SetupPaymentRoutes(r, d)

	// 5️⃣ Staff and superuser tools
	SetupAdminRoutes(r, d)
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
