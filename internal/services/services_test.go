package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/go-trainings/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Training{}, &models.Invoice{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, first, last, email string) *models.User {
	t.Helper()
	u := &models.User{Firstname: first, Lastname: last, Email: email, Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestUserServiceFetchAllSorting(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	seedUser(t, db, "Zoé", "Martin", "z@ecole.fr")
	seedUser(t, db, "Alice", "Durand", "a@ecole.fr")
	seedUser(t, db, "Marc", "Bernard", "m@ecole.fr")

	users, err := svc.FetchAll(ctx, "firstname")
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"Alice", "Marc", "Zoé"}, []string{users[0].Firstname, users[1].Firstname, users[2].Firstname})

	users, err = svc.FetchAll(ctx, "lastname; DROP TABLE users")
	require.NoError(t, err)
	assert.Equal(t, "Zoé", users[0].Firstname, "unknown key falls back to id")
}

func TestUserServiceCRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	id, err := svc.Insert(ctx, &models.User{Firstname: "Jean", Lastname: "Dupont", Email: "j@ecole.fr", Password: "hash"})
	require.NoError(t, err)
	require.NotZero(t, id)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", id).Update("is_admin", true).Error)

	err = svc.Update(ctx, &models.User{ID: id, Firstname: "Jeanne", Lastname: "Dupont", Email: "jd@ecole.fr", Password: "hash2"})
	require.NoError(t, err)

	u, err := svc.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jeanne", u.Firstname)
	assert.Equal(t, "jd@ecole.fr", u.Email)
	assert.Equal(t, "hash2", u.Password)
	assert.True(t, u.IsAdmin, "update keeps the role")

	byEmail, err := svc.ByEmail(ctx, "jd@ecole.fr")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.ByID(ctx, id)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, id), ErrUserNotFound)
	assert.ErrorIs(t, svc.Update(ctx, &models.User{ID: id, Firstname: "x"}), ErrUserNotFound)
	_, err = svc.ByEmail(ctx, "jd@ecole.fr")
	assert.ErrorIs(t, err, ErrUserNotFound)

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", id).Count(&count).Error)
	assert.Equal(t, int64(1), count, "soft delete keeps the row")
}

func TestUserServiceFindByEmailSkipsDeleted(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	a := seedUser(t, db, "A", "A", "shared@ecole.fr")
	b := seedUser(t, db, "B", "B", "shared@ecole.fr")
	seedUser(t, db, "C", "C", "other@ecole.fr")

	owners, err := svc.FindByEmail(ctx, "shared@ecole.fr")
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, a.ID, owners[0].ID)

	require.NoError(t, svc.Delete(ctx, b.ID))
	owners, err = svc.FindByEmail(ctx, "shared@ecole.fr")
	require.NoError(t, err)
	assert.Len(t, owners, 1)
}

func seedInvoices(t *testing.T, db *gorm.DB) (*models.User, []models.Invoice) {
	t.Helper()
	u := seedUser(t, db, "Jean", "Dupont", "j@ecole.fr")
	goTraining := models.Training{Title: "Go", Price: 1200}
	sqlTraining := models.Training{Title: "SQL", Price: 800}
	apiTraining := models.Training{Title: "API REST", Price: 500}
	require.NoError(t, db.Create(&[]*models.Training{&goTraining, &sqlTraining, &apiTraining}).Error)

	paid := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	invoices := []models.Invoice{
		{Number: "F-001", UserID: u.ID, CreatedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), PaidAt: &paid, Trainings: []models.Training{sqlTraining, goTraining}},
		{Number: "F-002", UserID: u.ID, CreatedAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), Trainings: []models.Training{apiTraining}},
	}
	require.NoError(t, db.Create(&invoices).Error)
	return u, invoices
}

func TestInvoiceServiceByUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	ctx := context.Background()
	u, _ := seedInvoices(t, db)
	other := seedUser(t, db, "Other", "User", "o@ecole.fr")

	list, err := svc.ByUser(ctx, u.ID, "created_at", "DESC")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "F-002", list[0].Number)

	list, err = svc.ByUser(ctx, u.ID, "bogus", "sideways")
	require.NoError(t, err)
	assert.Equal(t, "F-001", list[0].Number)

	list, err = svc.ByUser(ctx, other.ID, "created_at", "desc")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvoiceServiceTrainingTitles(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	_, invoices := seedInvoices(t, db)

	titles, err := svc.TrainingTitles(context.Background(), invoices[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, titles)
}

func TestInvoiceServiceTotals(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInvoiceService(db)
	ctx := context.Background()
	u, invoices := seedInvoices(t, db)

	assert.InDelta(t, 2000.0, svc.ComputeTotal(&invoices[0]), 0.001)

	revenue, err := svc.Revenue(ctx, u.ID)
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, revenue, 0.001, "only paid invoices count")
}
