package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var OrderFields = pagination.Fields{
	"user_id":             {Column: "user_id", Kind: pagination.Int},
	"total_order_price":   {Column: "total_order_price", Kind: pagination.Decimal},
	"order_accepted":      {Column: "order_accepted", Kind: pagination.Bool},
	"payment_accepted":    {Column: "payment_accepted", Kind: pagination.Bool},
	"being_delivered":     {Column: "being_delivered", Kind: pagination.Bool},
	"received":            {Column: "received", Kind: pagination.Bool},
	"cancelled":           {Column: "cancelled", Kind: pagination.Bool},
	"waiting_for_payment": {Column: "waiting_for_payment", Kind: pagination.Bool},
	"payment_deadline":    {Column: "payment_deadline", Kind: pagination.Time},
	"created_at":          {Column: "created_at", Kind: pagination.Time},
}

// OrderMailer sends the confirmation for a newly created order.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error
}

type OrderService struct {
	db            *gorm.DB
	carts         *CartService
	publisher     events.Publisher
	mailer        OrderMailer
	paymentWindow time.Duration
}

// NewOrderService wires order handling. publisher and mailer may be nil.
func NewOrderService(db *gorm.DB, carts *CartService, publisher events.Publisher, mailer OrderMailer, paymentWindow time.Duration) *OrderService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &OrderService{
		db:            db,
		carts:         carts,
		publisher:     publisher,
		mailer:        mailer,
		paymentWindow: paymentWindow,
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		log.Printf("⚠️ Failed to publish %s for order %d: %v", eventType, order.ID, err)
	}
}

// CreateOrder turns the user's cart into an order waiting for payment and
// deletes the cart. The reservations the cart held move to the order.
func (s *OrderService) CreateOrder(ctx context.Context, userID, cartID uint) (*models.Order, error) {
	var order models.Order
	var user models.User
	err := s.carts.transaction(ctx, func(ct *cartTx) error {
		if err := ct.tx.First(&user, userID).Error; err != nil {
			return notFound(err, "user", "id", userID)
		}
		cart, err := lockCart(ct.tx, cartID)
		if err != nil {
			return err
		}
		if cart.UserID != userID {
			return &DoesNotExistError{Resource: "cart", Field: "id", Value: cartID}
		}

		var items []models.CartItem
		if err := ct.tx.Where("cart_id = ?", cartID).Order("product_id").Find(&items).Error; err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		productIDs := make([]uint, len(items))
		for i, item := range items {
			productIDs[i] = item.ProductID
		}
		invs, err := lockInventories(ct.tx, productIDs)
		if err != nil {
			return err
		}

		order = models.Order{
			UserID:            userID,
			TotalOrderPrice:   cart.CartTotalPrice,
			WaitingForPayment: true,
			PaymentDeadline:   ct.now.Add(s.paymentWindow),
		}
		for _, item := range items {
			if _, err := loadProduct(ct.tx, item.ProductID); err != nil {
				return err
			}
			inv, ok := invs[item.ProductID]
			if !ok {
				return &DoesNotExistError{Resource: "inventory", Field: "product_id", Value: item.ProductID}
			}
			if inv.Quantity < item.Quantity {
				return &ExceededItemQuantityError{ProductID: item.ProductID, Available: inv.Quantity, Requested: item.Quantity}
			}
			order.Items = append(order.Items, models.OrderItem{
				ProductID:      item.ProductID,
				Quantity:       item.Quantity,
				OrderItemPrice: item.CartItemPrice,
			})
		}

		if err := ct.tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := ct.tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("delete cart items: %w", err)
		}
		if err := ct.tx.Delete(&models.Cart{}, cartID).Error; err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		ct.touch(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🛒 Order %d created for user %d (total %s)", order.ID, userID, order.TotalOrderPrice.StringFixed(2))
	s.publish(ctx, events.OrderCreated, &order)
	if s.mailer != nil {
		go func(user models.User, order models.Order) {
			mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.mailer.SendOrderConfirmation(mctx, &user, &order); err != nil {
				log.Printf("⚠️ Failed to send confirmation for order %d: %v", order.ID, err)
			}
		}(user, order)
	}
	return &order, nil
}

func lockOrder(tx *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := forUpdate(tx).First(&order, orderID).Error; err != nil {
		return nil, notFound(err, "order", "id", orderID)
	}
	return &order, nil
}

// lockOrderInventories locks the inventories of the order's items in ascending product id order.
func lockOrderInventories(tx *gorm.DB, orderID uint) ([]models.OrderItem, map[uint]*models.ProductInventory, error) {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, nil, fmt.Errorf("load order items: %w", err)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	productIDs := make([]uint, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}
	invs, err := lockInventories(tx, productIDs)
	if err != nil {
		return nil, nil, err
	}
	return items, invs, nil
}

// errNoLongerOverdue skips an order the deadline sweep selected but which was
// paid or cancelled before its row was locked.
var errNoLongerOverdue = errors.New("order is no longer overdue")

// CancelOrder releases the order's items back to the carts' share of the inventory.
// dueToDeadline marks a cancellation for a missed payment deadline.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint, dueToDeadline bool) (*models.Order, error) {
	return s.cancelOrder(ctx, orderID, dueToDeadline, time.Time{})
}

// cancelOrder cancels under the order's row lock. A non-zero overdueAt requires
// the locked order to still be unpaid with its deadline before overdueAt.
func (s *OrderService) cancelOrder(ctx context.Context, orderID uint, dueToDeadline bool, overdueAt time.Time) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Cancelled {
			return ErrOrderAlreadyCancelled
		}
		if order.Received {
			return ErrOrderAlreadyReceived
		}
		if !overdueAt.IsZero() && (!order.WaitingForPayment || order.PaymentAccepted || !order.PaymentDeadline.Before(overdueAt)) {
			return errNoLongerOverdue
		}

		items, invs, err := lockOrderInventories(tx, orderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			inv, ok := invs[item.ProductID]
			if !ok {
				continue
			}
			inv.QuantityForCartItems += item.Quantity
			if err := saveInventory(tx, inv); err != nil {
				return err
			}
		}

		updates := map[string]any{"cancelled": true}
		order.Cancelled = true
		if dueToDeadline {
			updates["waiting_for_payment"] = false
			order.WaitingForPayment = false
		}
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return fmt.Errorf("cancel order %d: %w", orderID, err)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderCancelled, order)
	return order, nil
}

// CancelOrdersWithExceededPaymentDeadline cancels every unpaid order whose
// deadline is before now. Each order is cancelled in its own transaction.
func (s *OrderService) CancelOrdersWithExceededPaymentDeadline(ctx context.Context, now time.Time) (int, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("waiting_for_payment = ? AND cancelled = ? AND payment_deadline < ?", true, false, now).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("find overdue orders: %w", err)
	}

	cancelled := 0
	var errs []error
	for _, id := range ids {
		_, err := s.cancelOrder(ctx, id, true, now)
		switch {
		case err == nil:
			cancelled++
		case errors.Is(err, ErrOrderAlreadyCancelled), errors.Is(err, ErrOrderAlreadyReceived), errors.Is(err, errNoLongerOverdue):
		default:
			log.Printf("❌ Failed to cancel overdue order %d: %v", id, err)
			errs = append(errs, err)
		}
	}
	return cancelled, errors.Join(errs...)
}

// transition moves a locked order one lifecycle step. check returns a non-empty
// reason when the step is not allowed.
func (s *OrderService) transition(ctx context.Context, orderID uint, action, flag string, check func(*models.Order) string, apply func(tx *gorm.DB, order *models.Order) error) (*models.Order, error) {
	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Cancelled {
			return &InvalidOrderTransitionError{OrderID: orderID, Action: action, Reason: "order is cancelled"}
		}
		if reason := check(order); reason != "" {
			return &InvalidOrderTransitionError{OrderID: orderID, Action: action, Reason: reason}
		}
		if apply != nil {
			if err := apply(tx, order); err != nil {
				return err
			}
		}
		if err := tx.Model(order).Update(flag, true).Error; err != nil {
			return fmt.Errorf("%s order %d: %w", action, orderID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

func (s *OrderService) AcceptOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.transition(ctx, orderID, "accept", "order_accepted", func(o *models.Order) string {
		switch {
		case !o.PaymentAccepted:
			return "payment has not been accepted"
		case o.OrderAccepted:
			return "order is already accepted"
		}
		return ""
	}, func(_ *gorm.DB, o *models.Order) error {
		o.OrderAccepted = true
		return nil
	})
}

func (s *OrderService) DeliverOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.transition(ctx, orderID, "deliver", "being_delivered", func(o *models.Order) string {
		switch {
		case !o.OrderAccepted:
			return "order has not been accepted"
		case o.BeingDelivered:
			return "order is already being delivered"
		}
		return ""
	}, func(_ *gorm.DB, o *models.Order) error {
		o.BeingDelivered = true
		return nil
	})
}

// ReceiveOrder completes the sale: the items leave the stock for good.
func (s *OrderService) ReceiveOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.transition(ctx, orderID, "receive", "received", func(o *models.Order) string {
		switch {
		case !o.BeingDelivered:
			return "order is not being delivered"
		case o.Received:
			return "order is already received"
		}
		return ""
	}, func(tx *gorm.DB, o *models.Order) error {
		items, invs, err := lockOrderInventories(tx, o.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			inv, ok := invs[item.ProductID]
			if !ok {
				continue
			}
			inv.Quantity -= item.Quantity
			if err := saveInventory(tx, inv); err != nil {
				return err
			}
		}
		o.Received = true
		o.Items = items
		return nil
	})
}

// FulfillOrder records a completed payment. Repeating a charge id for the same
// order returns the payment already recorded for it.
func (s *OrderService) FulfillOrder(ctx context.Context, orderID uint, chargeID string, amount decimal.Decimal) (*models.Payment, error) {
	var payment models.Payment
	var order *models.Order
	fresh := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("stripe_charge_id = ?", chargeID).First(&payment).Error
		if err == nil {
			if payment.OrderID != orderID {
				return &AlreadyExistsError{Resource: "payment", Field: "stripe_charge_id", Value: chargeID}
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load payment: %w", err)
		}

		order, err = lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if order.Cancelled {
			return ErrOrderAlreadyCancelled
		}
		if order.PaymentAccepted {
			return &InvalidOrderTransitionError{OrderID: orderID, Action: "pay", Reason: "payment is already accepted"}
		}

		payment = models.Payment{StripeChargeID: chargeID, Amount: amount, UserID: order.UserID, OrderID: orderID}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		order.PaymentAccepted = true
		order.WaitingForPayment = false
		err = tx.Model(order).Updates(map[string]any{"payment_accepted": true, "waiting_for_payment": false}).Error
		if err != nil {
			return fmt.Errorf("accept payment for order %d: %w", orderID, err)
		}
		fresh = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if fresh {
		log.Printf("💳 Payment %s recorded for order %d", chargeID, orderID)
		s.publish(ctx, events.OrderPaid, order)
	}
	return &payment, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, orderID).Error
	if err != nil {
		return nil, notFound(err, "order", "id", orderID)
	}
	return &order, nil
}

// ListOrders pages through all orders, or only userID's when it is non-nil.
func (s *OrderService) ListOrders(ctx context.Context, userID *uint, p pagination.Params) (pagination.Page[models.Order], error) {
	db := s.db.WithContext(ctx).Model(&models.Order{})
	if userID != nil {
		db = db.Where("user_id = ?", *userID)
	}
	return pagination.Paginate[models.Order](db, p, OrderFields)
}

func (s *OrderService) ListOrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

func (s *OrderService) GetOrderItem(ctx context.Context, orderID, itemID uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := s.db.WithContext(ctx).Where("id = ? AND order_id = ?", itemID, orderID).First(&item).Error; err != nil {
		return nil, notFound(err, "order item", "id", itemID)
	}
	return &item, nil
}
