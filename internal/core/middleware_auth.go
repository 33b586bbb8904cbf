package core

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"saasterkit/internal/types"
)

// Authenticator resolves a bearer session token to the identity-provider
// user id that owns the session. The concrete implementation verifies the
// provider's session JWT; tests inject fakes.
type Authenticator interface {
	// Authenticate returns the provider user id for a valid token,
	// or an error (preferably a *types.AppError with an auth_* code).
	Authenticate(ctx context.Context, token string) (string, error)
}

// RequireSession wraps handlers requiring an authenticated caller.
//
//  1. Extracts the Bearer token from the Authorization header.
//  2. Calls Authenticator.Authenticate to resolve the token to a user id.
//  3. Injects the user id into the request context via types.WithUserID.
//  4. Returns 401 Unauthorized on failure with distinct error codes:
//     - auth_token_missing: No Authorization header or empty Bearer token.
//     - auth_token_invalid: Token is malformed or fails verification.
//     - auth_token_expired: Token exists but has expired.
//
// If the Authenticator field on Server is nil (e.g., during tests that
// don't inject one), the middleware passes through without authentication.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Authenticator == nil {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthTokenMissing,
				"Authorization header is required",
				nil,
			))
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthTokenMissing,
				"Bearer token is required",
				nil,
			))
			return
		}

		userID, err := s.Authenticator.Authenticate(r.Context(), token)
		if err != nil {
			var appErr *types.AppError
			if errors.As(err, &appErr) {
				Error(w, r, appErr)
				return
			}
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthTokenInvalid,
				"Invalid authentication token",
				err,
			))
			return
		}

		next.ServeHTTP(w, r.WithContext(types.WithUserID(r.Context(), userID)))
	})
}

// extractBearerToken parses the Authorization header value and returns
// the token string. It expects the format "Bearer <token>" (case-insensitive
// scheme per RFC 7235). Returns empty string if the format is invalid.
func extractBearerToken(authHeader string) string {
	const prefix = "Bearer "
	if len(authHeader) < len(prefix) {
		return ""
	}
	if !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(prefix):])
}

// ClerkAuthenticator verifies identity-provider session tokens without a
// network round trip: the provider signs session JWTs with RS256, and the
// instance public key is distributed out of band (dashboard -> config).
type ClerkAuthenticator struct {
	publicKey *rsa.PublicKey
}

// NewClerkAuthenticator parses the PEM-encoded instance public key.
func NewClerkAuthenticator(pemKey string) (*ClerkAuthenticator, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("parsing session public key: %w", err)
	}
	return &ClerkAuthenticator{publicKey: key}, nil
}

// Authenticate verifies the token signature, expiry, and not-before claims
// and returns the subject (the provider's user id).
func (a *ClerkAuthenticator) Authenticate(_ context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return a.publicKey, nil },
		jwt.WithValidMethods([]string{"RS256"}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", types.NewAppError(types.ErrCodeAuthTokenExpired, "Session token has expired", err)
		}
		return "", types.NewAppError(types.ErrCodeAuthTokenInvalid, "Invalid session token", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", types.NewAppError(types.ErrCodeAuthTokenInvalid, "Invalid session token", nil)
	}
	return claims.Subject, nil
}
