package userControllers

import (
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
)

// UserView is what a user sees about an account.
type UserView struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStaffView adds roles and activity for staff.
type UserStaffView struct {
	UserView
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newUserView(u *models.User) UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

func newUserStaffView(u *models.User) UserStaffView {
	return UserStaffView{
		UserView:    newUserView(u),
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		UpdatedAt:   u.UpdatedAt,
	}
}

// View picks the variant the viewer is allowed to see.
func View(viewer, u *models.User) any {
	if viewer != nil && viewer.IsPrivileged() {
		return newUserStaffView(u)
	}
	return newUserView(u)
}

func staffPage(page pagination.Page[models.User]) pagination.Page[UserStaffView] {
	out := pagination.Page[UserStaffView]{
		Items: make([]UserStaffView, len(page.Items)),
		Total: page.Total,
		Page:  page.Page,
		Size:  page.Size,
		Pages: page.Pages,
	}
	for i := range page.Items {
		out.Items[i] = newUserStaffView(&page.Items[i])
	}
	return out
}
