package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"welwexpress/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID string
	Name   string
	Role   domain.Role
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

type Middleware struct {
	issuer *TokenIssuer
	logger *zap.Logger
}

func NewMiddleware(issuer *TokenIssuer, logger *zap.Logger) *Middleware {
	return &Middleware{
		issuer: issuer,
		logger: logger,
	}
}

// Authenticate requires a valid bearer token and attaches the caller's
// principal to the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			m.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or malformed bearer token")
			return
		}

		claims, err := m.issuer.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.logger.Debug("token verification failed", zap.Error(err))
			m.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or expired token")
			return
		}

		principal := Principal{
			UserID: claims.UserID,
			Name:   claims.Name,
			Role:   claims.Role,
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// RequireRole gates a route to callers holding the given role. It must run
// after Authenticate.
func (m *Middleware) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				m.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing or malformed bearer token")
				return
			}

			if principal.Role != role {
				m.writeError(w, http.StatusForbidden, "FORBIDDEN", "caller role is not allowed to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	}); err != nil {
		m.logger.Error("failed to encode response", zap.Error(err))
	}
}
