package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/camden-git/photocatalog/visibility"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// CallerContextKey is the key used to store the resolved caller identity
	// in the request context.
	CallerContextKey ContextKey = "caller"
)

// ResolveCaller creates a middleware that turns an optional bearer token into
// a caller identity. Tokens are issued by the external auth service; this
// system only verifies the HMAC and reads the subject. Requests without an
// Authorization header proceed as anonymous; read endpoints serve public
// content to them through the same visibility filter as everyone else.
// A present-but-invalid token is rejected outright.
func ResolveCaller(jwtSecret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ctx := context.WithValue(r.Context(), CallerContextKey, visibility.AnonymousCaller())
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			WriteAPIError(w, http.StatusUnauthorized, "invalid_token", "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			WriteAPIError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
			return
		}

		var userID uint
		if _, err := fmt.Sscan(claims.Subject, &userID); err != nil || userID == 0 {
			WriteAPIError(w, http.StatusUnauthorized, "invalid_token", "Invalid subject in token")
			return
		}

		ctx := context.WithValue(r.Context(), CallerContextKey, visibility.AuthenticatedCaller(userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthenticated rejects anonymous callers. It should be used after
// ResolveCaller on every mutating route.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := CallerFromContext(r.Context())
		if caller.Anonymous {
			WriteAPIError(w, http.StatusUnauthorized, "authentication_required", "This operation requires an authenticated caller")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallerFromContext extracts the resolved caller; requests that bypassed
// ResolveCaller count as anonymous.
func CallerFromContext(ctx context.Context) visibility.Caller {
	if caller, ok := ctx.Value(CallerContextKey).(visibility.Caller); ok {
		return caller
	}
	return visibility.AnonymousCaller()
}
