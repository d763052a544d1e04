package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-trainings/internal/models"
)

var invoiceSortColumns = map[string]bool{
	"created_at": true,
	"number":     true,
	"id":         true,
}

type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

// ByUser returns the invoices of userID ordered by column and direction.
// Unknown columns fall back to created_at and unknown directions to asc.
func (s *InvoiceService) ByUser(ctx context.Context, userID uint, column, direction string) ([]models.Invoice, error) {
	if !invoiceSortColumns[column] {
		column = "created_at"
	}
	direction = strings.ToLower(direction)
	if direction != "desc" {
		direction = "asc"
	}
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(column + " " + direction + ", id " + direction).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("list invoices of user %d: %w", userID, err)
	}
	return invoices, nil
}

// TrainingTitles returns the titles of the trainings billed on invoiceID, alphabetically.
func (s *InvoiceService) TrainingTitles(ctx context.Context, invoiceID uint) ([]string, error) {
	var titles []string
	err := s.db.WithContext(ctx).Model(&models.Training{}).
		Joins("JOIN invoice_trainings ON invoice_trainings.training_id = trainings.id").
		Where("invoice_trainings.invoice_id = ?", invoiceID).
		Order("trainings.title").
		Pluck("trainings.title", &titles).Error
	if err != nil {
		return nil, fmt.Errorf("list trainings of invoice %d: %w", invoiceID, err)
	}
	return titles, nil
}

// ComputeTotal sums the training prices of an invoice with loaded trainings.
func (s *InvoiceService) ComputeTotal(inv *models.Invoice) float64 {
	return inv.Total()
}

// Revenue sums the paid invoices of a user.
func (s *InvoiceService) Revenue(ctx context.Context, userID uint) (float64, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND paid_at IS NOT NULL", userID).
		Preload("Trainings").
		Find(&invoices).Error
	if err != nil {
		return 0, fmt.Errorf("revenue of user %d: %w", userID, err)
	}

	var total float64
	for i := range invoices {
		total += s.ComputeTotal(&invoices[i])
	}
	return total, nil
}
