package services

import (
	"context"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/junaidrashid-git/storefront-api/payments"
	"gorm.io/gorm"
)

var PaymentFields = pagination.Fields{
	"user_id":    {Column: "user_id", Kind: pagination.Int},
	"order_id":   {Column: "order_id", Kind: pagination.Int},
	"amount":     {Column: "amount", Kind: pagination.Decimal},
	"created_at": {Column: "created_at", Kind: pagination.Time},
}

type PaymentService struct {
	db      *gorm.DB
	orders  *OrderService
	gateway payments.Gateway
}

func NewPaymentService(db *gorm.DB, orders *OrderService, gateway payments.Gateway) *PaymentService {
	if gateway == nil {
		gateway = payments.Disabled{}
	}
	return &PaymentService{db: db, orders: orders, gateway: gateway}
}

// Checkout opens a payment session for the user's own order while it waits for payment.
func (s *PaymentService) Checkout(ctx context.Context, userID, orderID uint) (*payments.Checkout, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrAuthorization
	}
	if order.Cancelled {
		return nil, ErrOrderAlreadyCancelled
	}
	if !order.WaitingForPayment {
		return nil, &InvalidOrderTransitionError{OrderID: orderID, Action: "pay", Reason: "order is not waiting for payment"}
	}
	return s.gateway.CreateCheckout(ctx, order)
}

// HandleWebhook fulfills the order of a completed checkout. Other events are ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.Payment, error) {
	completion, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil || completion == nil {
		return nil, err
	}
	return s.orders.FulfillOrder(ctx, completion.OrderID, completion.ChargeID, completion.Amount)
}

func (s *PaymentService) GetPayment(ctx context.Context, paymentID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).First(&payment, paymentID).Error; err != nil {
		return nil, notFound(err, "payment", "id", paymentID)
	}
	return &payment, nil
}

// ListPayments pages through all payments, or only userID's when it is non-nil.
func (s *PaymentService) ListPayments(ctx context.Context, userID *uint, p pagination.Params) (pagination.Page[models.Payment], error) {
	db := s.db.WithContext(ctx).Model(&models.Payment{})
	if userID != nil {
		db = db.Where("user_id = ?", *userID)
	}
	return pagination.Paginate[models.Payment](db, p, PaymentFields)
}
