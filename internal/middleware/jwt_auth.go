package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/token"
)

// Auth gates a route group on a valid bearer access token. On success the
// claimed email and username are injected into the request context.
func Auth(tokens *token.Service, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authorization header required", "NO_AUTH_HEADER")
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				writeAuthError(w, http.StatusUnauthorized, "Invalid authorization header format", "INVALID_AUTH_HEADER")
				return
			}

			identity, err := tokens.Verify(tokenString, token.ClassAccess)
			if err != nil {
				logger.Debug("Access token rejected", zap.Error(err))
				writeAuthError(w, http.StatusForbidden, "Invalid or expired access token", "INVALID_ACCESS_TOKEN")
				return
			}

			ctx := context.WithValue(r.Context(), EmailCtxKey, identity.Email)
			ctx = context.WithValue(ctx, UsernameCtxKey, identity.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext returns the authenticated email placed by Auth.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailCtxKey).(string)
	return email, ok && email != ""
}

// UsernameFromContext returns the authenticated username placed by Auth.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameCtxKey).(string)
	return username, ok && username != ""
}

func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   false,
		"message":   message,
		"errorCode": code,
	})
}
