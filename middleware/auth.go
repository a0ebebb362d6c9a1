package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"kycdesk/logger"
	"kycdesk/services"
	"kycdesk/session"

	"go.uber.org/zap"
)

type contextKey string

const (
	IdentityContextKey contextKey = "identity"

	// SessionCookieName is the cookie carrying the session token.
	SessionCookieName = "session"

	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// IdentityResolver turns a session token into the calling identity.
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context, token string) (services.Identity, error)
}

// SessionToken returns the session token of r, preferring the cookie over
// a bearer Authorization header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get(AuthorizationHeader); strings.HasPrefix(h, BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix))
	}
	return ""
}

// SessionAuth resolves the caller of every request and stores it in the
// request context. It never rejects a request; the Require* guards do.
func SessionAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolver.CurrentIdentity(r.Context(), SessionToken(r))
			if err != nil {
				logger.Error(r.Context(), "failed to resolve session", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
					"success": false,
					"message": "Internal server error",
				})
				return
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the identity stored by SessionAuth, or the anonymous
// identity when none is present.
func GetIdentity(r *http.Request) services.Identity {
	if identity, ok := r.Context().Value(IdentityContextKey).(services.Identity); ok {
		return identity
	}
	return services.Identity{Principal: session.Anonymous}
}

func GetPrincipal(r *http.Request) session.Principal {
	return GetIdentity(r).Principal
}

func RequireAdmin(next http.Handler) http.Handler {
	return guard(next, session.Principal.IsAdmin)
}

func RequireUser(next http.Handler) http.Handler {
	return guard(next, session.Principal.IsUser)
}

func RequireAuthenticated(next http.Handler) http.Handler {
	return guard(next, func(p session.Principal) bool { return !p.IsAnonymous() })
}

func guard(next http.Handler, allowed func(session.Principal) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r)
		if !allowed(p) {
			logger.Info(r.Context(), "request refused",
				zap.String("path", r.URL.Path),
				zap.String("principal", string(p.Kind)),
			)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
