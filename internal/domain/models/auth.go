package models

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email"`
	AppMetadata  map[string]any `json:"app_metadata"`
	UserMetadata map[string]any `json:"user_metadata"`
	Role         string         `json:"role"` // "authenticated" or "anon"
	SessionID    string         `json:"session_id"`
	IsAnonymous  bool           `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// DisplayName returns the user's display name from metadata, falling back to
// the local part of the email address.
func (c *SupabaseClaims) DisplayName() string {
	if name, ok := c.UserMetadata["name"].(string); ok && name != "" {
		return name
	}
	for i := 0; i < len(c.Email); i++ {
		if c.Email[i] == '@' {
			return c.Email[:i]
		}
	}
	return c.Email
}
