package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "carehub/pkg/domain"
)

// TokenValidator validates a bearer token and yields the caller's claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents what the registry needs from an authenticated token:
// the caller identity that keys profiles and drives authorization.
type Claims struct {
	Identity id.Identity
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for use in handler tests.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated caller identity from the context.
// Returns the zero identity when the request was not authenticated.
func GetIdentity(ctx context.Context) id.Identity {
	identity, ok := ctx.Value(ContextKeyIdentity).(id.Identity)
	if !ok {
		return id.Zero
	}
	return identity
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller identity in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyIdentity, claims.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
