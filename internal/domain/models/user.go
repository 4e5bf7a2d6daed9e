package models

import "time"

// User is the local mirror of an identity-provider account. Rows are created
// lazily the first time an authenticated user touches the API; the identity
// provider remains the source of truth for credentials.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	IsPremium   bool      `json:"is_premium"`
	PromptsUsed int       `json:"prompts_used"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
