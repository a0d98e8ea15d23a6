package types

import "github.com/golang-jwt/jwt/v5"

// Claims carried by the bearer token issued by the identity service.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UID prefers the explicit user_id claim and falls back to the subject.
func (c *Claims) UID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}
