package repositories

import (
	"context"

	"merry/internal/domain/models"
)

// UserRepository mirrors identity-provider accounts locally. Rows are
// written lazily; the provider stays authoritative for credentials.
type UserRepository interface {
	// Upsert creates or refreshes the local mirror row for a user.
	Upsert(ctx context.Context, user *models.User) error

	// GetByID retrieves a mirrored user, or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// IncrementPromptsUsed bumps the usage counter for a user.
	IncrementPromptsUsed(ctx context.Context, id string) error
}
