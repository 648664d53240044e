package tokenstore

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/felixgeelhaar/nvms/internal/errors"
)

// Claims is the subset of access-token claims the client displays.
type Claims struct {
	Subject   string
	UserID    string
	ExpiresAt time.Time
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID any `json:"user_id,omitempty"`
}

// Inspect decodes token without verifying its signature. Only the backend can
// verify tokens; the client reads the expiry for display and logging.
func Inspect(token string) (*Claims, error) {
	if token == "" {
		return nil, errors.New(errors.ErrCodeAuthTokenInvalid, "token is empty")
	}

	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthTokenInvalid, "token is not a JWT", err)
	}
	if claims.ExpiresAt == nil {
		return nil, errors.New(errors.ErrCodeAuthTokenInvalid, "token has no expiry")
	}

	out := &Claims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	switch v := claims.UserID.(type) {
	case string:
		out.UserID = v
	case float64:
		out.UserID = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out, nil
}

// Expired reports whether the claims expire before now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
