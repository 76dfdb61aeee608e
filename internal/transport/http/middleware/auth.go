package middleware

import (
	"context"
	"net/http"
	"strings"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/transport/http/api"
)

// Auth attaches the principal from a valid bearer token. Requests without
// one pass through anonymously; RequireAuth rejects them.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), auth.UserContext{
				UserID:   claims.UserID,
				TenantID: claims.TenantID,
				RoleName: claims.RoleName,
			})))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
