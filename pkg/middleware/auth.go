// Package middleware provides the HTTP middleware chain: request ids,
// logging, panic recovery, CORS, rate limiting and JWT authentication.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey namespaces request-scoped values set by the middleware chain.
type ContextKey string

const (
	ContextUserID    ContextKey = "userID"
	ContextRequestID ContextKey = "requestID"
)

// Claims is the token payload the workflow service accepts.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthConfig configures the bearer-token middleware.
type AuthConfig struct {
	JWTSecret []byte
	SkipPaths []string
}

// DefaultAuthConfig skips the operational endpoints that must stay
// reachable without a token.
func DefaultAuthConfig() *AuthConfig {
	return &AuthConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// Auth validates the Authorization bearer token and stores the caller's
// user id on the request context. Only HMAC-signed tokens are accepted.
func Auth(config *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			claims, err := parseBearer(r.Header.Get("Authorization"), config.JWTSecret)
			if err != nil {
				respondUnauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), ContextUserID, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseBearer(header string, secret []byte) (*Claims, error) {
	if header == "" {
		return nil, errors.New("missing authorization header")
	}
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return nil, errors.New("authorization header is not a bearer token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":%q}`, message)
}

// GenerateToken signs a short-lived HS256 token for the given user. Used
// by tests and local tooling; production tokens come from the identity
// service.
func GenerateToken(secret []byte, userID, email string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// GetUserID returns the authenticated user id, or "" outside the chain.
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(ContextUserID).(string); ok {
		return userID
	}
	return ""
}
