package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/go-trainings/internal/models"
)

// ErrUserNotFound is returned when no live account has the requested id.
var ErrUserNotFound = errors.New("user not found")

// userSortKeys lists the columns accounts may be ordered by.
var userSortKeys = map[string]bool{
	"id":         true,
	"firstname":  true,
	"lastname":   true,
	"email":      true,
	"created_at": true,
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// FetchAll returns every live account ordered by sortKey, or by id when the key is unknown.
func (s *UserService) FetchAll(ctx context.Context, sortKey string) ([]models.User, error) {
	if !userSortKeys[sortKey] {
		sortKey = "id"
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Order(sortKey + ", id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) ByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &u, nil
}

// ByEmail returns the live account with email, used at login.
func (s *UserService) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).Order("id").First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user by email: %w", err)
	}
	return &u, nil
}

// FindByEmail returns every live account holding email.
func (s *UserService) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Select("id", "email").Where("email = ?", email).Order("id").Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("find users by email: %w", err)
	}
	return users, nil
}

// Insert creates u and returns its new id.
func (s *UserService) Insert(ctx context.Context, u *models.User) (uint, error) {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return u.ID, nil
}

// Update writes the editable fields of u. Role and archive flags are left untouched.
func (s *UserService) Update(ctx context.Context, u *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).
		Updates(map[string]any{
			"firstname": u.Firstname,
			"lastname":  u.Lastname,
			"email":     u.Email,
			"password":  u.Password,
		})
	if res.Error != nil {
		return fmt.Errorf("update user %d: %w", u.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete soft-deletes the account.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
