package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/pagination"
	"gorm.io/gorm"
)

var UserFields = pagination.Fields{
	"email":        {Column: "email", Kind: pagination.String},
	"first_name":   {Column: "first_name", Kind: pagination.String},
	"last_name":    {Column: "last_name", Kind: pagination.String},
	"is_active":    {Column: "is_active", Kind: pagination.Bool},
	"is_staff":     {Column: "is_staff", Kind: pagination.Bool},
	"is_superuser": {Column: "is_superuser", Kind: pagination.Bool},
	"created_at":   {Column: "created_at", Kind: pagination.Time},
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type UpdateUserInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password" binding:"omitempty,min=8"`
}

type RolesInput struct {
	IsStaff     *bool `json:"is_staff"`
	IsSuperuser *bool `json:"is_superuser"`
	IsActive    *bool `json:"is_active"`
}

type UserService struct {
	db    *gorm.DB
	carts *CartService
}

func NewUserService(db *gorm.DB, carts *CartService) *UserService {
	return &UserService{db: db, carts: carts}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return &AlreadyExistsError{Resource: "user", Field: "email", Value: email}
		}
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &AlreadyExistsError{Resource: "user", Field: "email", Value: email}
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks an email and password pair. Every failure reads the same.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive || !auth.CheckPassword(user.Password, password) {
		return nil, ErrAuthentication
	}
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound(err, "user", "id", userID)
	}
	return &user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, userID uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user %d: %w", userID, err)
	}
	return s.GetUser(ctx, userID)
}

func (s *UserService) SetRoles(ctx context.Context, userID uint, in RolesInput) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.IsStaff != nil {
		updates["is_staff"] = *in.IsStaff
	}
	if in.IsSuperuser != nil {
		updates["is_superuser"] = *in.IsSuperuser
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("update roles of user %d: %w", userID, err)
		}
	}
	return s.GetUser(ctx, userID)
}

// DeleteUser removes the user after returning their cart's reservations.
// Orders and payments stay as history.
func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	return s.carts.transaction(ctx, func(ct *cartTx) error {
		if err := userExists(ct.tx, userID); err != nil {
			return err
		}
		var cart models.Cart
		err := ct.tx.Select("id").Where("user_id = ?", userID).First(&cart).Error
		switch {
		case err == nil:
			if err := ct.deleteCart(cart.ID); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load user cart: %w", err)
		}
		if err := ct.tx.Delete(&models.User{}, userID).Error; err != nil {
			return fmt.Errorf("delete user %d: %w", userID, err)
		}
		return nil
	})
}

func (s *UserService) ListUsers(ctx context.Context, p pagination.Params) (pagination.Page[models.User], error) {
	return pagination.Paginate[models.User](s.db.WithContext(ctx).Model(&models.User{}), p, UserFields)
}
