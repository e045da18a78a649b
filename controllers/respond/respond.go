// Package respond holds the helpers every handler shares: error translation,
// path ids and list parameters.
package respond

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"github.com/junaidrashid-git/storefront-api/payments"
	"github.com/junaidrashid-git/storefront-api/services"
)

// Status maps a service error onto its HTTP status.
func Status(err error) int {
	var (
		dne       *services.DoesNotExistError
		noItem    *services.NoSuchItemInCartError
		exists    *services.AlreadyExistsError
		occupied  *services.IsOccupiedError
		invalid   *services.InvalidOrderTransitionError
		exceeded  *services.ExceededItemQuantityError
		removed   *services.ProductRemovedFromStoreError
		belowComm *services.QuantityBelowCommittedError
	)
	switch {
	case errors.As(err, &dne), errors.As(err, &noItem):
		return http.StatusNotFound
	case errors.As(err, &exists), errors.As(err, &occupied), errors.As(err, &invalid),
		errors.Is(err, services.ErrOrderAlreadyCancelled), errors.Is(err, services.ErrOrderAlreadyReceived):
		return http.StatusConflict
	case errors.As(err, &exceeded), errors.As(err, &removed), errors.As(err, &belowComm),
		errors.Is(err, services.ErrNonPositiveCartItemQuantity),
		errors.Is(err, services.ErrCartItemWithZeroQuantity),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrNegativeInventoryQuantity),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrEmptySpreadsheet),
		errors.Is(err, services.ErrInvalidSpreadsheet),
		errors.Is(err, pagination.ErrUnknownField),
		errors.Is(err, pagination.ErrUnknownOperator),
		errors.Is(err, pagination.ErrInvalidValue),
		errors.Is(err, payments.ErrInvalidSignature),
		errors.Is(err, payments.ErrMissingOrderID):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, payments.ErrNotConfigured), errors.Is(err, mailer.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": message}. Unexpected errors are logged and
// their text is not exposed.
func Error(c *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}

	body := gin.H{"error": err.Error()}
	var exceeded *services.ExceededItemQuantityError
	if errors.As(err, &exceeded) {
		body["available"] = exceeded.Available
		body["requested"] = exceeded.Requested
	}
	c.AbortWithStatusJSON(status, body)
}

// BadRequest rejects malformed input.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// ID reads a positive integer path parameter, answering 400 when it is not one.
func ID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// Params parses list query parameters against fields, answering 400 on error.
func Params(c *gin.Context, fields pagination.Fields) (pagination.Params, bool) {
	p, err := pagination.Parse(c.Request.URL.Query(), fields)
	if err != nil {
		BadRequest(c, err)
		return p, false
	}
	return p, true
}
