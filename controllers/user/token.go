package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/services"
)

type TokenInput struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// POST /token accepts a form or a JSON body.
func IssueToken(users *services.UserService, tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input TokenInput
		if err := c.ShouldBind(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		user, err := users.Authenticate(c.Request.Context(), input.Username, input.Password)
		if err != nil {
			respond.Error(c, err)
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}
