package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/httpx"
	"github.com/diewo77/go-trainings/i18n"
	"github.com/diewo77/go-trainings/internal/models"
	"github.com/diewo77/go-trainings/internal/policy"
	"github.com/diewo77/go-trainings/internal/services"
	"github.com/diewo77/go-trainings/validation"
	"github.com/diewo77/go-trainings/view"
)

// AccountFinder looks accounts up by login email.
type AccountFinder interface {
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthHandler struct {
	accounts AccountFinder
	sessions *auth.Sessions
	log      logrus.FieldLogger
}

func NewAuthHandler(accounts AccountFinder, sessions *auth.Sessions, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, log: log}
}

// Landing renders the home page.
func (h *AuthHandler) Landing(w http.ResponseWriter, r *http.Request) {
	if err := view.Render(w, r, "index.html", nil); err != nil {
		serverError(h.log, w, r, err, "render index.html")
	}
}

// Login shows the form and opens a session for valid credentials.
// Archived accounts cannot log in.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.renderLogin(w, r, http.StatusOK, "", "")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	lang := i18n.LangFromContext(r.Context())

	v := make(validation.Violations)
	validation.Required("email", email, v)
	validation.Required("password", password, v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		h.renderLogin(w, r, http.StatusBadRequest, email, i18n.T(lang, "required"))
		return
	}

	user, err := h.accounts.ByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		serverError(h.log, w, r, err, "login lookup")
		return
	}
	if user == nil || user.IsArchived || auth.CheckPassword(user.Password, password) != nil {
		h.log.WithField("email", email).Warn("login failed")
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		h.renderLogin(w, r, http.StatusUnauthorized, email, i18n.T(lang, "invalid_credentials"))
		return
	}

	h.sessions.Create(w, user.ID)
	target := policy.ProfilePath(user.ID)
	if user.IsAdmin {
		target = "/users"
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, auth.Identity{ID: user.ID, IsAdmin: user.IsAdmin})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Logout ends the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	if httpx.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, policy.LandingPath, http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, email, msg string) {
	data := map[string]any{"Title": i18n.T(i18n.LangFromContext(r.Context()), "login"), "Email": email, "Error": msg}
	if err := view.RenderStatus(w, r, status, "login.html", data); err != nil {
		serverError(h.log, w, r, err, "render login.html")
	}
}
