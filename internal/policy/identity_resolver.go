package policy

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/gate"
	"github.com/diewo77/go-trainings/internal/models"
)

// DBIdentityResolver loads session identities from the users table.
// Soft-deleted and archived accounts do not resolve.
type DBIdentityResolver struct {
	DB *gorm.DB
}

// NewDBIdentityResolver creates a database-backed identity resolver.
func NewDBIdentityResolver(db *gorm.DB) *DBIdentityResolver {
	return &DBIdentityResolver{DB: db}
}

// Resolve implements auth.IdentityResolver.
func (r *DBIdentityResolver) Resolve(ctx context.Context, userID uint) (*auth.Identity, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Select("id", "is_admin").
		Where("is_archived = ?", false).
		First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &auth.Identity{ID: user.ID, IsAdmin: user.IsAdmin}, nil
}

// IdentityCache is the cached resolver used by the session middleware.
// Handlers invalidate an entry whenever they change or delete the account.
type IdentityCache = gate.CachedResolver[uint, *auth.Identity]

// NewIdentityCache wraps the database resolver with a TTL cache.
func NewIdentityCache(db *gorm.DB, ttl time.Duration) *IdentityCache {
	return gate.NewCachedResolver[uint, *auth.Identity](NewDBIdentityResolver(db), ttl)
}
