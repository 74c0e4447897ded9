package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/rpupo63/blogicum/errs"
	"github.com/rpupo63/blogicum/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Take(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// EnsureStaff creates a staff user with the given credentials unless the
// username is already taken. It reports whether a user was created.
func (r *UserRepo) EnsureStaff(ctx context.Context, username, password string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errs.IsNotFound(err) {
		return false, err
	}

	user := models.User{Username: username, IsStaff: true}
	if err := user.SetPassword(password); err != nil {
		return false, err
	}
	if err := r.Add(ctx, &user); err != nil {
		return false, err
	}
	return true, nil
}
