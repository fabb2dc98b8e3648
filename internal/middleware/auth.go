package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"giveup-backend/internal/apperr"
	"giveup-backend/internal/auth"
)

type contextKey string

const claimsKey contextKey = "session_claims"

// Authenticator validates session tokens
type Authenticator interface {
	Authenticate(ctx context.Context, sessionToken string) (*auth.SessionClaims, error)
}

// AuthMiddleware creates a middleware for session token authentication
func AuthMiddleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			claims, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				meta := apperr.MetadataFor(apperr.CodeOf(err))
				respondError(w, meta.PublicMessage, meta.HTTPStatus)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// WithClaims stores session claims in ctx
func WithClaims(ctx context.Context, claims *auth.SessionClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims extracts the session claims from context
func GetClaims(ctx context.Context) *auth.SessionClaims {
	claims, _ := ctx.Value(claimsKey).(*auth.SessionClaims)
	return claims
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	claims := GetClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
