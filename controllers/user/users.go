package userControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/controllers/respond"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/services"
)

// POST /users
func Register(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.RegisterInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		user, err := users.Register(c.Request.Context(), input)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, newUserView(user))
	}
}

// GET /users/me
func GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, View(user, user))
}

// PUT /users/me
func UpdateMe(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		current := middleware.CurrentUser(c)
		user, err := users.UpdateUser(c.Request.Context(), current.ID, input)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, View(current, user))
	}
}

// GET /users (staff)
func ListUsers(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, ok := respond.Params(c, services.UserFields)
		if !ok {
			return
		}

		page, err := users.ListUsers(c.Request.Context(), params)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, staffPage(page))
	}
}

// GET /users/:id, owner or staff
func GetUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		current := middleware.CurrentUser(c)
		if current.ID != id && !current.IsPrivileged() {
			respond.Error(c, services.ErrAuthorization)
			return
		}

		user, err := users.GetUser(c.Request.Context(), id)
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, View(current, user))
	}
}

// DELETE /users/:id (superuser)
func DeleteUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := respond.ID(c, "id")
		if !ok {
			return
		}

		if err := users.DeleteUser(c.Request.Context(), id); err != nil {
			respond.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
