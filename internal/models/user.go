package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a student or administrator account.
// Deleted accounts are soft-deleted and disappear from every default query.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Firstname string `gorm:"size:100;not null" json:"firstname"`
	Lastname  string `gorm:"size:100;not null" json:"lastname"`
	// Email uniqueness among live accounts is enforced by the form validator,
	// so a deleted account does not block its address.
	Email    string `gorm:"size:255;not null;index" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash

	IsAdmin    bool `gorm:"not null;default:false" json:"is_admin"`
	IsArchived bool `gorm:"not null;default:false" json:"is_archived"`

	Invoices []Invoice `gorm:"foreignKey:UserID" json:"-"`
}

// GetUserID implements the Ownable interface: an account is owned by itself.
func (u *User) GetUserID() uint {
	return u.ID
}

// FullName returns "Firstname Lastname".
func (u *User) FullName() string {
	switch {
	case u.Firstname == "":
		return u.Lastname
	case u.Lastname == "":
		return u.Firstname
	}
	return u.Firstname + " " + u.Lastname
}

// RoleCode returns the i18n code of the account role.
func (u *User) RoleCode() string {
	if u.IsAdmin {
		return "role_admin"
	}
	return "role_student"
}
