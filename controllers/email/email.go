package emailControllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/services"
)

type SendEmailInput struct {
	UserID  uint   `json:"user_id" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	HTML    string `json:"html" binding:"required"`
}

// POST /email/order/:order_id (staff) mails the order summary to its owner.
func SendOrderSummary(orders *services.OrderService, users *services.UserService, sender mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := respond.ID(c, "order_id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		order, err := orders.GetOrder(ctx, orderID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		user, err := users.GetUser(ctx, order.UserID)
		if err != nil {
			respond.Error(c, err)
			return
		}

		msg, err := mailer.OrderSummary(user.Email, "Your order summary", order)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if err := sender.Send(ctx, msg); err != nil {
			respond.Error(c, err)
			return
		}
		log.Printf("📧 Order %d summary sent to %s", order.ID, user.Email)
		c.JSON(http.StatusOK, gin.H{"sent_to": user.Email})
	}
}

// POST /email/send (superuser)
func SendEmail(users *services.UserService, sender mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SendEmailInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		ctx := c.Request.Context()
		user, err := users.GetUser(ctx, input.UserID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		if err := sender.Send(ctx, mailer.Message{To: user.Email, Subject: input.Subject, HTML: input.HTML}); err != nil {
			respond.Error(c, err)
			return
		}
		log.Printf("📧 Email %q sent to %s", input.Subject, user.Email)
		c.JSON(http.StatusOK, gin.H{"sent_to": user.Email})
	}
}
