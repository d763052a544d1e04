package policy

import (
	"context"
	"net/http"
	"strconv"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/gate"
	"github.com/diewo77/go-trainings/httpx"
)

// Resource types registered on the account gate.
const (
	ResourceUser      = "user"
	ResourceInvoice   = "invoice"
	ResourceDirectory = "user_directory" // list, add and delete accounts
)

// LandingPath is where anonymous visitors are sent.
const LandingPath = "/"

// ProfilePath returns the profile page of account id.
func ProfilePath(id uint) string {
	return "/profile?id=" + strconv.FormatUint(uint64(id), 10)
}

// Decision is the outcome of a page-level check. When Allow is false the caller
// redirects to RedirectTarget; a denial is never an error.
type Decision struct {
	Allow          bool
	RedirectTarget string
}

func allow() Decision { return Decision{Allow: true} }

// AccountGate answers who may see and change which account.
// Every check takes the session identity explicitly; nil means anonymous.
type AccountGate struct {
	gate *gate.Gate[*auth.Identity]
}

// NewAccountGate registers the account policies: owners and administrators on
// accounts and invoices, administrators only on the account directory.
func NewAccountGate() *AccountGate {
	g := gate.NewGate[*auth.Identity]()
	owner := NewAdminBypassPolicy(NewOwnershipPolicy())
	g.Register(ResourceUser, owner)
	g.Register(ResourceInvoice, owner)
	g.Register(ResourceDirectory, NewAdminBypassPolicy(denyAll))
	return &AccountGate{gate: g}
}

// CanViewProfile decides whether ident may open the profile of target.
// Non-administrators looking at another account are sent to their own profile.
func (ag *AccountGate) CanViewProfile(ctx context.Context, ident *auth.Identity, target uint) Decision {
	return ag.decide(ctx, ident, gate.ActionView, ResourceUser, target)
}

// CanEditProfile applies the profile rule to updates.
func (ag *AccountGate) CanEditProfile(ctx context.Context, ident *auth.Identity, target uint) Decision {
	return ag.decide(ctx, ident, gate.ActionUpdate, ResourceUser, target)
}

// CanViewInvoices reports whether ident may list the invoices of requested.
func (ag *AccountGate) CanViewInvoices(ctx context.Context, ident *auth.Identity, requested uint) bool {
	if ident == nil {
		return false
	}
	return ag.gate.Can(ctx, ident, gate.ActionList, ResourceInvoice, Account(requested))
}

// CanManageAccounts reports whether ident may list, add and delete accounts.
func (ag *AccountGate) CanManageAccounts(ctx context.Context, ident *auth.Identity) bool {
	if ident == nil {
		return false
	}
	return ag.gate.Can(ctx, ident, gate.ActionList, ResourceDirectory, nil)
}

func (ag *AccountGate) decide(ctx context.Context, ident *auth.Identity, action gate.Action, resourceType string, target uint) Decision {
	if ident == nil {
		return Decision{RedirectTarget: LandingPath}
	}
	if ag.gate.Can(ctx, ident, action, resourceType, Account(target)) {
		return allow()
	}
	return Decision{RedirectTarget: ProfilePath(ident.ID)}
}

// RequireAdmin returns middleware that lets administrators through.
// Anonymous visitors go to the landing page and students to their own profile.
func (ag *AccountGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := auth.IdentityFromContext(r.Context())
			switch {
			case ident == nil:
				httpx.Redirect(w, r, LandingPath)
			case !ag.CanManageAccounts(r.Context(), ident):
				httpx.Redirect(w, r, ProfilePath(ident.ID))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireLogin returns middleware that sends anonymous visitors to the landing page.
func RequireLogin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.IdentityFromContext(r.Context()) == nil {
				httpx.Redirect(w, r, LandingPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
