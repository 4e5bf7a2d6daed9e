package repositories

import (
	"context"

	"merry/internal/domain/models"
)

// DocumentRepository persists document rows. Ownership checks and content
// invariants live in the service layer; this interface is pure storage.
type DocumentRepository interface {
	// Create inserts a new document row.
	Create(ctx context.Context, doc *models.Document) error

	// GetByID retrieves a document, or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Document, error)

	// ListByOwner returns all documents owned by the user, most recently
	// updated first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Document, error)

	// Update persists title, content, current_version and updated_at.
	Update(ctx context.Context, doc *models.Document) error

	// Delete removes the document row. Version rows are deleted explicitly
	// by the caller inside the same transaction.
	Delete(ctx context.Context, id string) error
}
