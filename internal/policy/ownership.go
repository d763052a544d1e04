package policy

import (
	"context"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/gate"
)

// Ownable is implemented by resources that belong to one account.
type Ownable interface {
	GetUserID() uint
}

// Account is the id of an account used as a resource: an account owns itself,
// and the invoices listed for it.
type Account uint

// GetUserID implements Ownable.
func (a Account) GetUserID() uint { return uint(a) }

// OwnershipPolicy allows an identity to act on the resources it owns.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can reports whether ident owns resource.
// A nil resource (list/create) is allowed; resources that are not Ownable are denied.
func (p *OwnershipPolicy) Can(_ context.Context, ident *auth.Identity, _ gate.Action, resource any) bool {
	if ident == nil {
		return false
	}
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == ident.ID
}

// AdminBypassPolicy allows administrators everything and defers to inner otherwise.
type AdminBypassPolicy struct {
	inner gate.Policy[*auth.Identity]
}

// NewAdminBypassPolicy wraps inner.
func NewAdminBypassPolicy(inner gate.Policy[*auth.Identity]) *AdminBypassPolicy {
	return &AdminBypassPolicy{inner: inner}
}

// Can implements gate.Policy.
func (p *AdminBypassPolicy) Can(ctx context.Context, ident *auth.Identity, action gate.Action, resource any) bool {
	if ident == nil {
		return false
	}
	if ident.IsAdmin {
		return true
	}
	return p.inner.Can(ctx, ident, action, resource)
}

// denyAll is the inner policy of admin-only resources.
var denyAll = gate.PolicyFunc[*auth.Identity](func(context.Context, *auth.Identity, gate.Action, any) bool {
	return false
})
