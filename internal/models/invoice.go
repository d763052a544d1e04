package models

import (
	"time"

	"gorm.io/gorm"
)

// Training is a course a student can be invoiced for.
type Training struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title string  `gorm:"size:255;not null;uniqueIndex" json:"title"`
	Price float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}

// Invoice bills a student for one or more trainings.
// Implements the Ownable interface for ownership-based authorization.
type Invoice struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Number string `gorm:"size:50;uniqueIndex;not null" json:"number"`

	// UserID is the invoiced student.
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	PaidAt *time.Time `json:"paid_at,omitempty"`

	Trainings []Training `gorm:"many2many:invoice_trainings;" json:"trainings,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// IsPaid returns true once a payment date is recorded.
func (i *Invoice) IsPaid() bool {
	return i.PaidAt != nil
}

// Total sums the prices of the invoiced trainings.
func (i *Invoice) Total() float64 {
	var total float64
	for _, t := range i.Trainings {
		total += t.Price
	}
	return total
}
