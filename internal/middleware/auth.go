package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/OeunSochetra/storefront-api/internal/auth"
	"github.com/OeunSochetra/storefront-api/internal/http/respond"
)

type contextKey string

const principalKey contextKey = "principal"

// RequireAuth gates a handler behind bearer-token verification. A missing
// Authorization header is rejected with 403; a token that fails
// verification, for whatever reason, with 401. On success the token's
// subject is attached to the request context.
func RequireAuth(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respond.Error(w, http.StatusForbidden, "access denied")
			return
		}

		userID, err := tokens.Verify(bearerToken(header))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalID returns the authenticated user ID attached by RequireAuth.
func PrincipalID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalKey).(string)
	return id, ok
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
