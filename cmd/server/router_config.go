package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/internal/handlers"
	"github.com/diewo77/go-trainings/internal/policy"
	"github.com/diewo77/go-trainings/internal/services"
)

// RouterConfig holds the configured handlers and middleware of the application.
type RouterConfig struct {
	AccountGate *policy.AccountGate
	Identities  *policy.IdentityCache
	Sessions    *auth.Sessions

	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler

	UserService    *services.UserService
	InvoiceService *services.InvoiceService
}

// NewRouterConfig wires the account gate, the cached identity resolver and the handlers.
func NewRouterConfig(db *gorm.DB, sessions *auth.Sessions, identityTTL time.Duration, log logrus.FieldLogger) *RouterConfig {
	accountGate := policy.NewAccountGate()
	identities := policy.NewIdentityCache(db, identityTTL)

	userService := services.NewUserService(db)
	invoiceService := services.NewInvoiceService(db)

	return &RouterConfig{
		AccountGate:    accountGate,
		Identities:     identities,
		Sessions:       sessions,
		AuthHandler:    handlers.NewAuthHandler(userService, sessions, log),
		UserHandler:    handlers.NewUserHandler(userService, invoiceService, accountGate, identities, log),
		UserService:    userService,
		InvoiceService: invoiceService,
	}
}
