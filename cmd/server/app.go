package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-trainings/httpx"
	"github.com/diewo77/go-trainings/i18n"
	"github.com/diewo77/go-trainings/internal/logging"
	"github.com/diewo77/go-trainings/internal/metrics"
	"github.com/diewo77/go-trainings/internal/policy"
)

// App is the main application handler that sets up all routes.
type App struct {
	router    chi.Router
	db        *gorm.DB
	routerCfg *RouterConfig
	staticDir string
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, routerCfg *RouterConfig, staticDir string, log logrus.FieldLogger) *App {
	app := &App{
		router:    chi.NewRouter(),
		db:        db,
		routerCfg: routerCfg,
		staticDir: staticDir,
	}
	app.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		logging.Middleware(log),
		metrics.InstrumentHandler,
		middleware.Recoverer,
		withPreferences,
		routerCfg.Sessions.Middleware(routerCfg.Identities),
	)
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	r := a.router
	ah := a.routerCfg.AuthHandler
	uh := a.routerCfg.UserHandler
	requireAdmin := a.routerCfg.AccountGate.RequireAdmin()

	// Public
	r.Get("/", ah.Landing)
	r.Get("/login", ah.Login)
	r.Post("/login", ah.Login)
	r.Post("/logout", ah.Logout)

	// Gated per request by the account gate
	r.Get("/profile", uh.Show)
	r.Get("/users/invoices", uh.Invoices)
	r.Group(func(r chi.Router) {
		r.Use(policy.RequireLogin())
		r.Get("/users/edit", uh.Edit)
		r.Post("/users/edit", uh.Edit)
	})

	// Administrators only
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/users", uh.Index)
		r.Get("/users/add", uh.Add)
		r.Post("/users/add", uh.Add)
		r.Post("/users/delete", uh.Delete)
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	})

	// Infrastructure
	r.Get("/healthz", a.healthz)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(a.staticDir))))
}

func (a *App) healthz(w http.ResponseWriter, _ *http.Request) {
	if err := a.db.Exec("SELECT 1").Error; err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// withPreferences stores the request language: query, then cookie, then Accept-Language.
// A language chosen through the query is remembered in a cookie.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if c, err := r.Cookie("lang"); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		if lang == "" {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
