package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/internal/config"
	"github.com/diewo77/go-trainings/internal/models"
)

var baseTrainings = []models.Training{
	{Title: "Go : les fondamentaux", Price: 1200},
	{Title: "PostgreSQL pour développeurs", Price: 900},
	{Title: "Docker et conteneurs", Price: 750},
	{Title: "Sécurité des applications web", Price: 1100},
}

// Seed creates the bootstrap administrator and the training catalogue when missing.
// Running it twice changes nothing.
func Seed(db *gorm.DB, admin config.AdminConfig) error {
	for _, tr := range baseTrainings {
		var existing models.Training
		err := db.Where("title = ?", tr.Title).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&tr).Error; err != nil {
				return fmt.Errorf("seed training %q: %w", tr.Title, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("seed training %q: %w", tr.Title, err)
		}
	}

	if admin.Email == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", admin.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	u := models.User{
		Firstname: admin.Firstname,
		Lastname:  admin.Lastname,
		Email:     admin.Email,
		Password:  hash,
		IsAdmin:   true,
	}
	if err := db.Create(&u).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
