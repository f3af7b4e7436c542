package httpmiddleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// sessionKey is the context key for the session ID value.
type sessionKey struct{}

// SessionFromContext extracts the session ID from the context. It returns an
// empty string if no session is present.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}

// WithSession returns a copy of ctx carrying the given session ID; used by
// tests that call handlers without the middleware chain.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionConfig configures the session cookie middleware.
type SessionConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string
	// TTL is the cookie lifetime; refreshed on every response.
	TTL time.Duration
	// Secure marks the cookie as HTTPS-only.
	Secure bool
}

// Session returns a middleware that scopes each request to a shopping
// session. An incoming request with a valid session cookie keeps its ID;
// anything else gets a fresh UUID v4. The ID is stored in the request
// context and the cookie is (re)issued on the response.
func Session(cfg SessionConfig) Middleware {
	if cfg.CookieName == "" {
		cfg.CookieName = "storefront_session"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.New().String()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
