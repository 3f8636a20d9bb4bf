package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"glamgo/internal/model"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	identityKey contextKey = iota
	requestIDKey
)

// TokenParser validates a bearer token and returns the caller it identifies.
type TokenParser interface {
	Parse(token string) (model.Identity, error)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the authenticated caller stored in ctx.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok && id.UserID != ""
}

// Auth requires a valid "Authorization: Bearer <token>" header and stores
// the caller's identity in the request context.
func Auth(parser TokenParser, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				logger.Debug().Str("path", r.URL.Path).Msg("missing authorization header")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required")
				return
			}

			scheme, token, ok := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.Warn().Str("path", r.URL.Path).Msg("malformed authorization header")
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Invalid Authorization header format")
				return
			}

			identity, err := parser.Parse(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token validation failed")
				message := "Invalid or expired token"
				if de, ok := model.AsDomainError(err); ok {
					message = de.Message
				}
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, message)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole rejects callers whose role is not one of roles. It must run
// after Auth.
func RequireRole(logger zerolog.Logger, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required")
				return
			}

			if !slices.Contains(roles, identity.Role) {
				logger.Warn().
					Str("user_id", identity.UserID).
					Str("role", string(identity.Role)).
					Str("path", r.URL.Path).
					Msg("role not permitted")
				writeError(w, http.StatusForbidden, model.ErrCodeForbidden, model.ErrForbidden.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
