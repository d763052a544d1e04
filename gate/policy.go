package gate

import "context"

// Policy defines authorization rules for a resource type.
// For list/create checks resource may be nil.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a plain function to the Policy interface.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

// Can calls f.
func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}

// Resolver loads the value V that belongs to key K (e.g. a session identity for a user id).
type Resolver[K comparable, V any] interface {
	Resolve(ctx context.Context, key K) (V, error)
}
