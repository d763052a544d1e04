// Package auth handles the signed session cookie and the per-request identity.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	sessionCookieName = "session"
	defaultSessionTTL = 14 * 24 * time.Hour
)

type ctxKey string

const identityCtxKey = ctxKey("identity")

// Identity is the authenticated actor of the current request.
type Identity struct {
	ID      uint `json:"id"`
	IsAdmin bool `json:"is_admin"`
}

// IdentityResolver loads the identity of a user id carried by a session.
// It returns an error when the user no longer exists.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID uint) (*Identity, error)
}

// Sessions signs and verifies the session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions returns a session manager signing cookies with secret.
func NewSessions(secret string, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: defaultSessionTTL, secure: secure}
}

func (s *Sessions) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Create sets a signed cookie with the user id.
func (s *Sessions) Create(w http.ResponseWriter, userID uint) {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    uidStr + "." + s.sign(uidStr),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	})
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, Secure: s.secure, SameSite: http.SameSiteLaxMode})
}

// Parse validates the cookie and returns the user id.
func (s *Sessions) Parse(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	uidStr, sig, ok := strings.Cut(c.Value, ".")
	if !ok || strings.Contains(sig, ".") {
		return 0, false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(uidStr))) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

// WithIdentity stores the identity in ctx.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, ident)
}

// IdentityFromContext returns the request identity, or nil when the request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityCtxKey).(*Identity)
	return ident
}

// Middleware attaches the session identity to the request context.
// A cookie pointing at a user that can no longer be resolved is cleared and the
// request continues anonymously.
func (s *Sessions) Middleware(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := s.Parse(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ident, err := resolver.Resolve(r.Context(), uid)
			if err != nil || ident == nil {
				s.Clear(w)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}
