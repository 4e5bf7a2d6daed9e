package services

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"merry/internal/config"
	"merry/internal/domain/models"
)

// DocumentService handles document business logic: content validation,
// ownership checks and the version ledger. requesterID is empty for
// anonymous callers.
type DocumentService interface {
	// Create validates content, assigns version 1 and persists the
	// document atomically with its first version row.
	Create(ctx context.Context, requesterID string, req *CreateDocumentRequest) (*models.Document, error)

	// Get retrieves a document, enforcing ownership. Ownerless documents
	// are readable by anyone holding the id.
	Get(ctx context.Context, requesterID, id string) (*models.Document, error)

	// List returns the requester's documents, most recently updated
	// first. Anonymous requesters get an empty list, never an error.
	List(ctx context.Context, requesterID string) ([]*models.Document, error)

	// Update merges partial content into the document, re-validates,
	// appends a version with a diff against the prior snapshot, and bumps
	// current_version. Last-writer-wins; no concurrency token is checked.
	Update(ctx context.Context, requesterID, id string, req *UpdateDocumentRequest) (*models.Document, error)

	// Delete removes a document and all its versions in one transaction.
	// Requires an authenticated requester even for ownerless documents.
	Delete(ctx context.Context, requesterID, id string) error

	// History returns the document's versions ascending by number.
	History(ctx context.Context, requesterID, id string) ([]*models.Version, error)

	// AtVersion returns one version of the document.
	AtVersion(ctx context.Context, requesterID, id string, version int) (*models.Version, error)
}

var kindPattern = regexp.MustCompile(`^(word|excel)$`)

// CreateDocumentRequest carries a raw content payload. Sections and sheets
// stay untyped here; the content validator owns their shape.
type CreateDocumentRequest struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Sections []any  `json:"sections"`
	Sheets   []any  `json:"sheets"`
	Sources  []any  `json:"sources"`
	Author   string `json:"-"` // models.AuthorUser or models.AuthorAI, set by the caller
}

// Validate checks the request shape before the content validator runs.
func (r *CreateDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.Required,
			validation.Length(1, config.MaxTitleLength),
		),
		validation.Field(&r.Type,
			validation.Required,
			validation.Match(kindPattern).Error("type must be \"word\" or \"excel\""),
		),
	)
}

// UpdateDocumentRequest carries a partial content payload. Nil fields are
// left untouched; provided fields replace the existing value wholesale
// (last-writer-wins at content-field granularity).
type UpdateDocumentRequest struct {
	Title    *string `json:"title"`
	Sections []any   `json:"sections"`
	Sheets   []any   `json:"sheets"`
	Sources  []any   `json:"sources"`
	Author   string  `json:"-"`
}

// Validate checks the request shape.
func (r *UpdateDocumentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxTitleLength),
		),
	)
}
