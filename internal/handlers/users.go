package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/httpx"
	"github.com/diewo77/go-trainings/i18n"
	"github.com/diewo77/go-trainings/internal/accounts"
	"github.com/diewo77/go-trainings/internal/metrics"
	"github.com/diewo77/go-trainings/internal/models"
	"github.com/diewo77/go-trainings/internal/policy"
	"github.com/diewo77/go-trainings/internal/services"
	"github.com/diewo77/go-trainings/validation"
	"github.com/diewo77/go-trainings/view"
)

// UserStore is the account persistence used by UserHandler.
type UserStore interface {
	FetchAll(ctx context.Context, sortKey string) ([]models.User, error)
	ByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) ([]models.User, error)
	Insert(ctx context.Context, u *models.User) (uint, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id uint) error
}

// InvoiceStore is the invoice lookup used by UserHandler.
type InvoiceStore interface {
	ByUser(ctx context.Context, userID uint, column, direction string) ([]models.Invoice, error)
	TrainingTitles(ctx context.Context, invoiceID uint) ([]string, error)
	Revenue(ctx context.Context, userID uint) (float64, error)
}

// IdentityInvalidator drops a cached session identity after its account changed.
type IdentityInvalidator interface {
	Invalidate(userID uint)
}

// UserHandler serves the account pages.
type UserHandler struct {
	users      UserStore
	invoices   InvoiceStore
	gate       *policy.AccountGate
	identities IdentityInvalidator
	log        logrus.FieldLogger
}

func NewUserHandler(users UserStore, invoices InvoiceStore, gate *policy.AccountGate, identities IdentityInvalidator, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{users: users, invoices: invoices, gate: gate, identities: identities, log: log}
}

// invoiceRow is one line of the invoices page.
type invoiceRow struct {
	ID        uint       `json:"id"`
	Number    string     `json:"number"`
	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Paid      bool       `json:"paid"`
	Trainings []string   `json:"trainings"`
}

// Index lists every account by first name.
func (h *UserHandler) Index(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FetchAll(r.Context(), "firstname")
	if err != nil {
		h.serverError(w, r, err, "list users")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, users)
		return
	}
	h.render(w, r, http.StatusOK, "users/index.html", map[string]any{
		"Title": i18n.T(i18n.LangFromContext(r.Context()), "users_title"),
		"Users": users,
	})
}

// Show displays one profile.
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	id, ok := h.requestedID(w, r, ident, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	if d := h.gate.CanViewProfile(r.Context(), ident, id); !d.Allow {
		metrics.RecordAccessDenied("profile")
		httpx.Redirect(w, r, d.RedirectTarget)
		return
	}
	u, ok := h.loadUser(w, r, id)
	if !ok {
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, u)
		return
	}
	h.render(w, r, http.StatusOK, "users/profile.html", map[string]any{"Title": u.FullName(), "User": u})
}

// Invoices lists the invoices of one account, newest first, with their training titles.
func (h *UserHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	id, ok := accounts.ParseID(r.URL.Query().Get("id"))
	if !ok || !h.gate.CanViewInvoices(r.Context(), ident, id) {
		metrics.RecordAccessDenied("invoices")
		httpx.Redirect(w, r, policy.LandingPath)
		return
	}
	invoices, err := h.invoices.ByUser(r.Context(), id, "created_at", "desc")
	if err != nil {
		h.serverError(w, r, err, "list invoices")
		return
	}
	rows := make([]invoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		titles, err := h.invoices.TrainingTitles(r.Context(), inv.ID)
		if err != nil {
			h.serverError(w, r, err, "list invoice trainings")
			return
		}
		rows = append(rows, invoiceRow{ID: inv.ID, Number: inv.Number, CreatedAt: inv.CreatedAt, PaidAt: inv.PaidAt, Paid: inv.IsPaid(), Trainings: titles})
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, rows)
		return
	}
	revenue, err := h.invoices.Revenue(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err, "compute revenue")
		return
	}
	h.render(w, r, http.StatusOK, "users/invoices.html", map[string]any{
		"Title":    i18n.T(i18n.LangFromContext(r.Context()), "invoices_title"),
		"Invoices": rows,
		"Paid":     fmt.Sprintf("%.2f €", revenue),
	})
}

// Edit shows and processes the profile form. The role and archive flags are kept.
func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ident := auth.IdentityFromContext(r.Context())
	id, ok := h.requestedID(w, r, ident, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	if d := h.gate.CanEditProfile(r.Context(), ident, id); !d.Allow {
		metrics.RecordAccessDenied("edit")
		httpx.Redirect(w, r, d.RedirectTarget)
		return
	}
	u, ok := h.loadUser(w, r, id)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "users/edit.html", map[string]any{
			"User": accounts.UserRecord{ID: u.ID, Firstname: u.Firstname, Lastname: u.Lastname, Email: u.Email},
		})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	rec := accounts.FromForm(id, r.PostForm)
	if msgs, err := h.validate(r.Context(), rec); err != nil {
		h.serverError(w, r, err, "check email")
		return
	} else if !msgs.Empty() {
		h.rejectForm(w, r, "edit", "users/edit.html", rec, msgs)
		return
	}
	hash, err := auth.HashPassword(rec.Password)
	if err != nil {
		h.serverError(w, r, err, "hash password")
		return
	}
	u.Firstname, u.Lastname, u.Email, u.Password = rec.Firstname, rec.Lastname, rec.Email, hash
	if err := h.users.Update(r.Context(), u); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, err, "update user")
		return
	}
	h.identities.Invalidate(id)
	h.log.WithFields(logrus.Fields{"user_id": id, "by": ident.ID}).Info("account updated")
	h.done(w, r, http.StatusOK, policy.ProfilePath(id), u)
}

// Add shows and processes the new account form. New accounts are students.
func (h *UserHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, r, http.StatusOK, "users/add.html", map[string]any{"User": accounts.UserRecord{}})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	rec := accounts.FromForm(0, r.PostForm)
	if msgs, err := h.validate(r.Context(), rec); err != nil {
		h.serverError(w, r, err, "check email")
		return
	} else if !msgs.Empty() {
		h.rejectForm(w, r, "add", "users/add.html", rec, msgs)
		return
	}
	hash, err := auth.HashPassword(rec.Password)
	if err != nil {
		h.serverError(w, r, err, "hash password")
		return
	}
	u := &models.User{
		Firstname:  rec.Firstname,
		Lastname:   rec.Lastname,
		Email:      rec.Email,
		Password:   hash,
		IsAdmin:    false,
		IsArchived: false,
	}
	id, err := h.users.Insert(r.Context(), u)
	if err != nil {
		h.serverError(w, r, err, "insert user")
		return
	}
	h.log.WithField("user_id", id).Info("account created")
	h.done(w, r, http.StatusCreated, policy.ProfilePath(id), u)
}

// Delete removes the account named by the form field id.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	id, ok := accounts.ParseID(r.PostForm.Get("id"))
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			h.notFound(w, r)
			return
		}
		h.serverError(w, r, err, "delete user")
		return
	}
	h.identities.Invalidate(id)
	h.log.WithField("user_id", id).Info("account deleted")
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
		return
	}
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// validate runs the form rules against the live accounts holding the same email.
func (h *UserHandler) validate(ctx context.Context, rec accounts.UserRecord) (validation.Messages, error) {
	owners, err := h.users.FindByEmail(ctx, rec.Email)
	if err != nil {
		return nil, err
	}
	existing := make([]accounts.EmailOwner, len(owners))
	for i, o := range owners {
		existing[i] = accounts.EmailOwner{ID: o.ID, Email: o.Email}
	}
	return accounts.NewValidator(i18n.LangFromContext(ctx)).Validate(rec, existing), nil
}

func (h *UserHandler) rejectForm(w http.ResponseWriter, r *http.Request, form, tmpl string, rec accounts.UserRecord, msgs []string) {
	metrics.RecordFormRejection(form)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", msgs)
		return
	}
	rec.Password, rec.Password2 = "", ""
	h.render(w, r, http.StatusUnprocessableEntity, tmpl, map[string]any{"User": rec, "Errors": msgs})
}

// done answers a successful mutation: the record for JSON clients, a redirect otherwise.
func (h *UserHandler) done(w http.ResponseWriter, r *http.Request, status int, location string, u *models.User) {
	if httpx.WantsJSON(r) {
		w.Header().Set("Location", location)
		httpx.JSON(w, status, u)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// requestedID parses the id parameter. Anonymous visitors are sent to the landing
// page, logged-in users get a 400.
func (h *UserHandler) requestedID(w http.ResponseWriter, r *http.Request, ident *auth.Identity, raw string) (uint, bool) {
	id, ok := accounts.ParseID(raw)
	if ok {
		return id, true
	}
	if ident == nil {
		httpx.Redirect(w, r, policy.LandingPath)
		return 0, false
	}
	httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
	return 0, false
}

func (h *UserHandler) loadUser(w http.ResponseWriter, r *http.Request, id uint) (*models.User, bool) {
	u, err := h.users.ByID(r.Context(), id)
	if errors.Is(err, services.ErrUserNotFound) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err, "load user")
		return nil, false
	}
	return u, true
}

func (h *UserHandler) notFound(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	}
	http.NotFound(w, r)
}

func (h *UserHandler) serverError(w http.ResponseWriter, r *http.Request, err error, op string) {
	serverError(h.log, w, r, err, op)
}

func (h *UserHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		serverError(h.log, w, r, err, "render "+name)
	}
}

func serverError(log logrus.FieldLogger, w http.ResponseWriter, r *http.Request, err error, op string) {
	log.WithError(err).WithFields(logrus.Fields{"op": op, "path": r.URL.Path}).Error("request failed")
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
