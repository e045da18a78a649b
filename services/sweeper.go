package services

import (
	"context"
	"errors"
	"log"
	"time"
)

// SweepResult counts what one sweep pass removed.
type SweepResult struct {
	ExpiredCartItems int       `json:"expired_cart_items"`
	OverdueOrders    int       `json:"overdue_orders"`
	At               time.Time `json:"at"`
}

// Sweeper drops expired cart items and cancels orders past their payment deadline.
type Sweeper struct {
	carts  *CartService
	orders *OrderService
	now    func() time.Time
}

func NewSweeper(carts *CartService, orders *OrderService) *Sweeper {
	return &Sweeper{carts: carts, orders: orders, now: time.Now}
}

// Sweep runs both sweeps once. Both always run; their errors are joined.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	res := SweepResult{At: s.now()}

	var errs []error
	n, err := s.carts.DeleteExpiredCartItems(ctx, res.At)
	res.ExpiredCartItems = n
	if err != nil {
		errs = append(errs, err)
	}

	n, err = s.orders.CancelOrdersWithExceededPaymentDeadline(ctx, res.At)
	res.OverdueOrders = n
	if err != nil {
		errs = append(errs, err)
	}
	return res, errors.Join(errs...)
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("🧹 Sweeper started (every %s)", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("🧹 Sweeper stopped")
			return
		case <-ticker.C:
			res, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("❌ Sweep failed: %v", err)
			}
			if res.ExpiredCartItems > 0 || res.OverdueOrders > 0 {
				log.Printf("🧹 Swept %d expired cart items, cancelled %d overdue orders", res.ExpiredCartItems, res.OverdueOrders)
			}
		}
	}
}
