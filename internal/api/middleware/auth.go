package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	// ContextKeyUserID carries the authenticated subject
	ContextKeyUserID contextKey = "user_id"

	// ContextKeyRole carries the authenticated role claim
	ContextKeyRole contextKey = "role"
)

// AuthMiddleware validates Bearer tokens and stores the subject and role
// claims on the request context. With an empty secret authentication is
// disabled and requests pass through, which is how local development runs.
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(secret string) *AuthMiddleware {
	if secret == "" {
		log.Warn().Msg("JWT secret not configured, authentication disabled")
	}
	return &AuthMiddleware{secret: []byte(secret)}
}

// Enabled reports whether token validation is active
func (m *AuthMiddleware) Enabled() bool {
	return len(m.secret) > 0
}

// Authenticate validates the Bearer token on protected routes
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseToken(r)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserID, claims.Subject)
		ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole additionally demands a specific role claim
func (m *AuthMiddleware) RequireRole(role string, next http.Handler) http.Handler {
	return m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		if RoleFromContext(r.Context()) != role {
			forbidden(w, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (m *AuthMiddleware) parseToken(r *http.Request) (*authClaims, error) {
	header := r.Header.Get("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return nil, errMissingToken
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigning
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	return claims, nil
}

// UserIDFromContext returns the authenticated subject, or empty
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyUserID).(string)
	return id
}

// RoleFromContext returns the authenticated role claim, or empty
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(ContextKeyRole).(string)
	return role
}

type authError string

func (e authError) Error() string { return string(e) }

const (
	errMissingToken      = authError("missing bearer token")
	errInvalidToken      = authError("invalid or expired token")
	errUnexpectedSigning = authError("unexpected token signing method")
)

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
