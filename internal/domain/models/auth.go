package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the access token payload issued by the identity provider.
// Only the subject is required; it becomes the owner id of every item.
type Claims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role,omitempty"` // "authenticated" or "anon" when present
	IsAnonymous          bool   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
