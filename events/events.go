package events

import (
	"context"
	"errors"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
)

const (
	OrderCreated       = "order.created"
	OrderCancelled     = "order.cancelled"
	OrderPaid          = "order.paid"
	OrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type    string             `json:"type"`
	OrderID uint               `json:"order_id"`
	UserID  uint               `json:"user_id"`
	Status  models.OrderStatus `json:"status"`
	Total   decimal.Decimal    `json:"total_order_price"`
	At      time.Time          `json:"at"`
}

// NewOrderEvent snapshots an order for publishing.
func NewOrderEvent(eventType string, order *models.Order) OrderEvent {
	return OrderEvent{
		Type:    eventType,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  order.Status(),
		Total:   order.TotalOrderPrice,
		At:      time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event OrderEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Noop struct{}

func (Noop) Publish(context.Context, OrderEvent) error { return nil }
