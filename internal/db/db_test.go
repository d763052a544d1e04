package db

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/internal/config"
	"github.com/diewo77/go-trainings/internal/models"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")}

	d, err := Open(cfg, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(d))
	require.NoError(t, Migrate(d), "migrate twice")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, config.DriverSQLite, entry.Data["driver"])
}

func TestOpenUnknownDriver(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	_, err := Open(config.DatabaseConfig{Driver: "mysql"}, log)
	assert.Error(t, err)
}

func TestSeedIdempotent(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	d, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: "file:" + t.Name() + "?mode=memory&cache=shared"}, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(d))

	admin := config.AdminConfig{Email: "admin@ecole.fr", Password: "admin123", Firstname: "Ada", Lastname: "Min"}
	require.NoError(t, Seed(d, admin))
	require.NoError(t, Seed(d, admin))

	var trainings, admins int64
	d.Model(&models.Training{}).Count(&trainings)
	d.Model(&models.User{}).Where("email = ?", admin.Email).Count(&admins)
	assert.Equal(t, int64(len(baseTrainings)), trainings)
	assert.Equal(t, int64(1), admins)

	var u models.User
	require.NoError(t, d.Where("email = ?", admin.Email).First(&u).Error)
	assert.True(t, u.IsAdmin)
	assert.NoError(t, auth.CheckPassword(u.Password, "admin123"))
}
