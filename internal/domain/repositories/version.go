package repositories

import (
	"context"

	"merry/internal/domain/models"
)

// VersionRepository is the append-only ledger of document snapshots. Version
// numbers are unique per document; a collision surfaces as a
// domain.ConflictError and exactly one concurrent writer wins.
type VersionRepository interface {
	// Append inserts an immutable version row.
	Append(ctx context.Context, v *models.Version) error

	// History returns all versions of a document, ascending by version
	// number.
	History(ctx context.Context, documentID string) ([]*models.Version, error)

	// AtVersion returns one specific version, or domain.ErrNotFound.
	AtVersion(ctx context.Context, documentID string, version int) (*models.Version, error)

	// DeleteByDocument removes all versions of a document. Called within
	// the document-delete transaction.
	DeleteByDocument(ctx context.Context, documentID string) error
}
