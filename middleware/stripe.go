package middleware

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	stripePayloadKey   = "stripe_payload"
	stripeSignatureKey = "stripe_signature"
	maxWebhookBody     = 65536
)

// StripeWebhook requires a Stripe-Signature header and buffers the raw body
// for signature verification.
func StripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing Stripe-Signature header"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody+1))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read webhook body"})
		return
	}
	if len(payload) > maxWebhookBody {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "webhook body too large"})
		return
	}

	c.Set(stripePayloadKey, payload)
	c.Set(stripeSignatureKey, signature)
	c.Next()
}

// StripePayload returns the body and signature buffered by StripeWebhook.
func StripePayload(c *gin.Context) ([]byte, string) {
	payload, _ := c.Get(stripePayloadKey)
	body, _ := payload.([]byte)
	return body, c.GetString(stripeSignatureKey)
}
