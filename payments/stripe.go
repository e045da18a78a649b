// Package payments creates Stripe Checkout sessions for orders and turns
// verified Stripe webhooks into completed payments.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrNotConfigured    = errors.New("payments are not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMissingOrderID   = errors.New("checkout session has no order_id metadata")
)

type Checkout struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// Completion is a paid checkout session.
type Completion struct {
	OrderID  uint
	ChargeID string
	Amount   decimal.Decimal
}

type Gateway interface {
	CreateCheckout(ctx context.Context, order *models.Order) (*Checkout, error)
	// ParseWebhook verifies the payload and returns nil for anything but a paid checkout session.
	ParseWebhook(payload []byte, signature string) (*Completion, error)
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Currency      string
}

type Stripe struct {
	api *client.API
	cfg StripeConfig
}

func NewStripe(cfg StripeConfig) *Stripe {
	return &Stripe{api: client.New(cfg.SecretKey, nil), cfg: cfg}
}

func (s *Stripe) CreateCheckout(ctx context.Context, order *models.Order) (*Checkout, error) {
	orderID := strconv.FormatUint(uint64(order.ID), 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(orderID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order #" + orderID),
					},
					UnitAmount: stripe.Int64(ToMinorUnits(order.TotalOrderPrice)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(checkoutIdempotencyKey(order))
	params.AddMetadata("order_id", orderID)
	params.AddMetadata("user_id", strconv.FormatUint(uint64(order.UserID), 10))

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Checkout{SessionID: sess.ID, URL: sess.URL}, nil
}

// checkoutIdempotencyKey is stable for one payment window of an order, so a
// repeated checkout request gets the session Stripe already created.
func checkoutIdempotencyKey(order *models.Order) string {
	name := fmt.Sprintf("checkout:order:%d:deadline:%d", order.ID, order.PaymentDeadline.Unix())
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*Completion, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted &&
		event.Type != stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return completionFromSession(&sess)
}

func completionFromSession(sess *stripe.CheckoutSession) (*Completion, error) {
	raw, ok := sess.Metadata["order_id"]
	if !ok {
		return nil, ErrMissingOrderID
	}
	orderID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse order_id %q: %w", raw, err)
	}
	// Delayed payment methods complete the session unpaid and report the
	// outcome in a later async_payment_succeeded event.
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, nil
	}

	chargeID := sess.ID
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		chargeID = sess.PaymentIntent.ID
	}
	return &Completion{
		OrderID:  uint(orderID),
		ChargeID: chargeID,
		Amount:   FromMinorUnits(sess.AmountTotal),
	}, nil
}

// ToMinorUnits converts an amount to cents.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Disabled is used when no Stripe key is configured.
type Disabled struct{}

func (Disabled) CreateCheckout(context.Context, *models.Order) (*Checkout, error) {
	return nil, ErrNotConfigured
}

func (Disabled) ParseWebhook([]byte, string) (*Completion, error) {
	return nil, ErrNotConfigured
}
