package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of access-token claims the client displays. The
// token is decoded without verification — the client holds no signing
// secret; the server remains the authority on validity.
type Claims struct {
	UserID    string
	Username  string
	ExpiresAt time.Time
}

func (c Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// Peek extracts display claims from an access token.
func Peek(token string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, ErrInvalidToken
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	if id, ok := mapClaims["user_id"].(string); ok {
		claims.UserID = id
	}
	if username, ok := mapClaims["username"].(string); ok {
		claims.Username = username
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
