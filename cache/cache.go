package cache

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/storefront-api/models"
)

// CartCache stores read views of a user's cart, keyed by user id.
//
// Every Delete bumps the user's generation. A reader takes the generation
// before loading the cart and passes it to Set, which refuses to store the
// view once the generation has moved on.
type CartCache interface {
	Get(ctx context.Context, userID uint) (*models.Cart, error)
	Generation(ctx context.Context, userID uint) (uint64, error)
	Set(ctx context.Context, userID uint, generation uint64, cart *models.Cart) error
	Delete(ctx context.Context, userIDs ...uint) error
}

var (
	ErrCacheMiss = errors.New("cache miss")
	// ErrStaleGeneration is returned by Set when the cart was invalidated
	// after the caller read its generation.
	ErrStaleGeneration = errors.New("cart generation changed")
)

// Noop is used when Redis is not configured; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, uint) (*models.Cart, error) { return nil, ErrCacheMiss }
func (Noop) Generation(context.Context, uint) (uint64, error) { return 0, nil }
func (Noop) Set(context.Context, uint, uint64, *models.Cart) error { return nil }
func (Noop) Delete(context.Context, ...uint) error { return nil }
