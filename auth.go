package shoot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth creates middleware that validates the JWT in the Authorization
// header of the current request. It expects the header format:
// "Authorization: Bearer <token>"
//
// If the token is valid, the user ID is added to the context handed to the
// rest of the chain, so views can read it with GetUserID while rendering.
// Otherwise the chain stops here: nothing further in runs, the view is not
// rendered, and an error wrapping ErrUnauthorized is returned.
//
// Usage:
//
//	p := shoot.New(shoot.Logging(logger), shoot.RequireAuth("your-secret-key"))
func RequireAuth(secret string) Middleware {
	return MiddlewareFunc(func(ctx context.Context, view View, r *http.Request, next Next) (View, error) {
		token, err := bearerToken(r)
		if err != nil {
			return view, err
		}

		userID, err := ValidateJWT(token, secret)
		if err != nil {
			return view, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}

		return next(WithUserID(ctx, userID), view)
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("%w: missing authorization header", ErrUnauthorized)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("%w: invalid authorization format", ErrUnauthorized)
	}

	return parts[1], nil
}

// GenerateJWT creates a signed JWT token for the given user ID.
// The token includes standard claims (subject, issued at, expiration).
//
// Example:
//
//	token, err := shoot.GenerateJWT("user123", "secret", 24*time.Hour)
func GenerateJWT(userID string, secret string, expiration time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT parses and validates a JWT token string and returns the user ID
// held in its "sub" claim.
func ValidateJWT(tokenString string, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subject == "" {
		return "", errors.New("missing user ID in token")
	}

	return subject, nil
}

// WithUserID adds a user ID to the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the user ID placed in the context by RequireAuth.
//
// Example:
//
//	func (v *ProfileView) Render(ctx context.Context) error {
//	    userID, ok := shoot.GetUserID(ctx)
//	    ...
//	}
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
