package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gosuda/flowboard/internal/auth"
)

type authOptions struct {
	queryParam string
}

// AuthOption configures Auth.
type AuthOption func(*authOptions)

// WithQueryToken also accepts the access token from the named query
// parameter. Browsers cannot set headers on a websocket upgrade.
func WithQueryToken(param string) AuthOption {
	return func(o *authOptions) {
		o.queryParam = param
	}
}

// Auth accepts requests carrying a valid access token and stores the user in
// the request context. Refresh tokens are rejected.
func Auth(jwtSecret string, opts ...AuthOption) func(http.Handler) http.Handler {
	var o authOptions
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := extractBearer(r)
			if tok == "" && o.queryParam != "" {
				tok = r.URL.Query().Get(o.queryParam)
			}

			if tok != "" {
				if ctx, ok := authenticateJWT(r.Context(), tok, jwtSecret); ok {
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		})
	}
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return ""
}

func authenticateJWT(ctx context.Context, tokenStr, secret string) (context.Context, bool) {
	claims, err := auth.ValidateToken(secret, tokenStr)
	if err != nil || !claims.IsAccess() {
		return ctx, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return ctx, false
	}

	return WithUser(ctx, userID, claims.Admin), true
}
