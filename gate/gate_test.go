package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-trainings/gate"
)

// mockPolicy is a simple policy for testing with uint subject type.
type mockPolicy struct {
	allowAll bool
}

func (p *mockPolicy) Can(_ context.Context, _ uint, _ gate.Action, _ any) bool {
	return p.allowAll
}

func TestGate_Authorize_NoUser(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("test", &mockPolicy{allowAll: true})

	err := g.Authorize(context.Background(), 0, gate.ActionView, "test", nil)
	if err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_Authorize_NoPolicy(t *testing.T) {
	g := gate.NewGate[uint]()

	err := g.Authorize(context.Background(), 1, gate.ActionView, "unknown", nil)
	if err != gate.ErrNoPolicyDefined {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}

func TestGate_Authorize_AllowedAndDenied(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("open", &mockPolicy{allowAll: true})
	g.Register("closed", &mockPolicy{allowAll: false})

	if err := g.Authorize(context.Background(), 1, gate.ActionView, "open", nil); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := g.Authorize(context.Background(), 1, gate.ActionView, "closed", nil); err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_Register_Overwrites(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("test", &mockPolicy{allowAll: false})
	g.Register("test", &mockPolicy{allowAll: true})

	if !g.Can(context.Background(), 1, gate.ActionCreate, "test", nil) {
		t.Error("expected the second registration to win")
	}
}

type account struct {
	ID    int
	Admin bool
}

func TestGate_WithPointerSubjectAndPolicyFunc(t *testing.T) {
	g := gate.NewGate[*account]()
	g.Register("profile", gate.PolicyFunc[*account](func(_ context.Context, a *account, _ gate.Action, resource any) bool {
		if a.Admin {
			return true
		}
		id, ok := resource.(int)
		return ok && id == a.ID
	}))

	admin := &account{ID: 1, Admin: true}
	student := &account{ID: 2}

	if !g.Can(context.Background(), admin, gate.ActionView, "profile", 7) {
		t.Error("admin should view any profile")
	}
	if !g.Can(context.Background(), student, gate.ActionView, "profile", 2) {
		t.Error("student should view own profile")
	}
	if g.Can(context.Background(), student, gate.ActionView, "profile", 7) {
		t.Error("student should not view another profile")
	}
	if err := g.Authorize(context.Background(), nil, gate.ActionView, "profile", 2); err != gate.ErrUnauthorized {
		t.Errorf("nil subject should be unauthorized, got %v", err)
	}
}
