// Package auth handles JWT authentication for the inspection API
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// Claims represents the JWT claims accepted by the API.
// Dir is the virtual directory the bearer may inspect; empty means all.
type Claims struct {
	Dir     string `json:"dir"`
	Expires string `json:"expires"`
	jwt.RegisteredClaims
}

// contextKey is used for storing values in context
type contextKey string

const (
	// ClaimsContextKey is the key used to store JWT claims in request context
	ClaimsContextKey contextKey = "jwt_claims"
)

// JWTMiddleware creates a middleware that validates bearer tokens
func JWTMiddleware(secret string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Missing authorization header", http.StatusUnauthorized)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := ValidateJWTString(strings.TrimPrefix(authHeader, "Bearer "), secret)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaimsFromContext retrieves JWT claims from request context
func GetClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}

// ValidateJWTString validates an HMAC-signed JWT and returns its claims.
// Both the registered exp claim and the RFC 3339 "expires" claim are honoured.
func ValidateJWTString(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Expires != "" {
		expiresTime, err := time.Parse(time.RFC3339, claims.Expires)
		if err != nil {
			return nil, fmt.Errorf("invalid expiration format")
		}
		if time.Now().After(expiresTime) {
			return nil, fmt.Errorf("token expired")
		}
	}

	return claims, nil
}
