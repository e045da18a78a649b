package routes

import (
	"github.com/gin-gonic/gin"
	paymentControllers "github.com/junaidrashid-git/storefront-api/controllers/payment"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupPaymentRoutes registers Stripe checkout, payment history and the webhook.
func SetupPaymentRoutes(r *gin.Engine, d *Deps) {
	paymentGroup := r.Group("/payments")
	paymentGroup.Use(d.authenticated())
	{
		paymentGroup.POST("/checkout/:order_id", paymentControllers.Checkout(d.Payments))
		paymentGroup.GET("", paymentControllers.ListPayments(d.Payments))
		paymentGroup.GET("/:id", paymentControllers.GetPayment(d.Payments))
	}

	// Stripe calls back without a token; the signature authenticates it.
	r.POST("/stripe/webhook", middleware.StripeWebhook, paymentControllers.StripeWebhook(d.Payments))
}
