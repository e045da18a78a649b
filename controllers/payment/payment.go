package paymentControllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/services"
)

// POST /payments/checkout/:order_id returns the hosted checkout URL.
func Checkout(payments *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := respond.ID(c, "order_id")
		if !ok {
			return
		}

		checkout, err := payments.Checkout(c.Request.Context(), middleware.CurrentUser(c).ID, orderID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"session_id": checkout.SessionID, "url": checkout.URL})
	}
}

// POST /stripe/webhook, behind middleware.StripeWebhook.
func StripeWebhook(payments *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, signature := middleware.StripePayload(c)

		payment, err := payments.HandleWebhook(c.Request.Context(), payload, signature)
		if err != nil {
			log.Println("❌ Stripe webhook rejected:", err)
			respond.Error(c, err)
			return
		}
		if payment == nil {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": true, "payment_id": payment.ID})
	}
}

// GET /payments lists the caller's payments, or every payment for staff.
func ListPayments(payments *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := respond.Params(c, services.PaymentFields)
		if !ok {
			return
		}

		user := middleware.CurrentUser(c)
		var owner *uint
		if !user.IsPrivileged() {
			owner = &user.ID
		}
		page, err := payments.ListPayments(c.Request.Context(), owner, params)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GET /payments/:id
func GetPayment(payments *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		payment, err := payments.GetPayment(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		user := middleware.CurrentUser(c)
		if payment.UserID != user.ID && !user.IsPrivileged() {
			respond.Error(c, services.ErrAuthorization)
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}
