package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"expense-tracker-go/internal/auth"
	"expense-tracker-go/pkg/logger"
)

type contextKey int

const userIDKey contextKey = iota

type TokenVerifier interface {
	UserID(token string) (string, error)
}

type JWTAuth struct {
	tokens TokenVerifier
	log    logger.Logger
}

func NewJWTAuth(tokens TokenVerifier, log logger.Logger) *JWTAuth {
	return &JWTAuth{tokens: tokens, log: log}
}

// Middleware rejects requests without a valid bearer token and stores the
// token's user id in the request context.
func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w, "missing bearer token")
			return
		}

		userID, err := a.tokens.UserID(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				a.log.BusinessError("auth: token expired", err, "path", r.URL.Path)
				unauthorized(w, "token expired")
				return
			}
			a.log.BusinessError("auth: token rejected", err, "path", r.URL.Path)
			unauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, "invalid_token", message)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	value := ctx.Value(userIDKey)
	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
