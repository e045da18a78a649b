package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusWaitingForPayment OrderStatus = "waiting_for_payment"
	OrderStatusPaid              OrderStatus = "paid"
	OrderStatusAccepted          OrderStatus = "accepted"
	OrderStatusBeingDelivered    OrderStatus = "being_delivered"
	OrderStatusReceived          OrderStatus = "received"
	OrderStatusCancelled         OrderStatus = "cancelled"
	OrderStatusCreated           OrderStatus = "created"
)

type Order struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	TotalOrderPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_order_price"`
	OrderAccepted     bool            `gorm:"not null;default:false" json:"order_accepted"`
	PaymentAccepted   bool            `gorm:"not null;default:false" json:"payment_accepted"`
	BeingDelivered    bool            `gorm:"not null;default:false" json:"being_delivered"`
	Received          bool            `gorm:"not null;default:false" json:"received"`
	Cancelled         bool            `gorm:"not null;default:false;index" json:"cancelled"`
	WaitingForPayment bool            `gorm:"not null;default:false;index" json:"waiting_for_payment"`
	PaymentDeadline   time.Time       `gorm:"index" json:"payment_deadline"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Status collapses the lifecycle flags into the furthest state reached.
func (o *Order) Status() OrderStatus {
	switch {
	case o.Cancelled:
		return OrderStatusCancelled
	case o.Received:
		return OrderStatusReceived
	case o.BeingDelivered:
		return OrderStatusBeingDelivered
	case o.OrderAccepted:
		return OrderStatusAccepted
	case o.PaymentAccepted:
		return OrderStatusPaid
	case o.WaitingForPayment:
		return OrderStatusWaitingForPayment
	default:
		return OrderStatusCreated
	}
}

type OrderItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderID        uint            `gorm:"not null;index" json:"order_id"`
	ProductID      uint            `gorm:"not null;index" json:"product_id"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	OrderItemPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"order_item_price"`
}
