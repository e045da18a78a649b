package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/services"
)

const currentUserKey = "current_user"

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	Parse(token string) (uint, error)
}

// UserLoader loads the user a token belongs to.
type UserLoader interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}

// ValidateToken requires a valid bearer token for an active user and stores
// that user in the context.
func ValidateToken(tokens TokenParser, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header is missing")
			return
		}
		scheme, tokenString, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
			abortUnauthorized(c, "Authorization header must be a bearer token")
			return
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		var missing *services.DoesNotExistError
		if errors.As(err, &missing) {
			abortUnauthorized(c, "Could not validate credentials")
			return
		}
		if err != nil {
			log.Printf("❌ Failed to load user %d for token: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !user.IsActive {
			abortUnauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// CurrentUser returns the user stored by ValidateToken.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireStaff lets staff and superusers through.
func RequireStaff(c *gin.Context) {
	if user := CurrentUser(c); user == nil || !user.IsPrivileged() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not enough permissions"})
		return
	}
	c.Next()
}

func RequireSuperuser(c *gin.Context) {
	if user := CurrentUser(c); user == nil || !user.IsSuperuser {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not enough permissions"})
		return
	}
	c.Next()
}

// OptionalToken authenticates the request only when it carries an
// Authorization header, so public endpoints can still tell staff apart.
func OptionalToken(tokens TokenParser, users UserLoader) gin.HandlerFunc {
	validate := ValidateToken(tokens, users)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		validate(c)
	}
}
