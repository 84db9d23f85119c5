package middleware

import (
	"context"
	"net/http"
	"strings"

	"privacygate/internal/auth"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// UserContext is the authenticated caller identity decoded from the token.
type UserContext struct {
	UserID   string
	TenantID string
}

// Auth decodes a bearer token into the request context. Requests without a
// valid token pass through unauthenticated; handlers enforce RequireUser.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, UserContext{
				UserID:   claims.UserID,
				TenantID: claims.TenantID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(UserContext)
	return user, ok
}

// WithUser is a test helper for building authenticated contexts.
func WithUser(ctx context.Context, user UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}
