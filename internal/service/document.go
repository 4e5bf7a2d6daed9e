package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"merry/internal/content"
	"merry/internal/domain"
	"merry/internal/domain/models"
	"merry/internal/domain/repositories"
	"merry/internal/domain/services"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo     repositories.DocumentRepository
	versionRepo repositories.VersionRepository
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo repositories.DocumentRepository,
	versionRepo repositories.VersionRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.DocumentService {
	return &documentService{
		docRepo:     docRepo,
		versionRepo: versionRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Create validates content and persists the document with its first version
// row in one transaction. current_version always starts at 1.
func (s *documentService) Create(ctx context.Context, requesterID string, req *services.CreateDocumentRequest) (*models.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	kind := models.Kind(req.Type)
	canonical, warnings, err := content.Normalize(rawContent(req.Sections, req.Sheets, req.Sources), kind)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.logger.Warn("content normalized with warning", "warning", w)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:             uuid.New().String(),
		Kind:           kind,
		Title:          strings.TrimSpace(req.Title),
		Content:        canonical,
		CurrentVersion: 1,
		SchemaVersion:  models.SchemaVersion,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if requesterID != "" {
		doc.OwnerID = &requesterID
	}

	first := &models.Version{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Version:    1,
		Snapshot:   canonical,
		Author:     versionAuthor(req.Author),
		CreatedAt:  now,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.docRepo.Create(txCtx, doc); err != nil {
			return err
		}
		return s.versionRepo.Append(txCtx, first)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"kind", doc.Kind,
		"owner", requesterID != "",
	)
	return doc, nil
}

// Get retrieves a document, enforcing ownership on owned documents.
func (s *documentService) Get(ctx context.Context, requesterID, id string) (*models.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(doc, requesterID); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns the requester's documents. An anonymous requester owns
// nothing, so the result is an empty list rather than an error.
func (s *documentService) List(ctx context.Context, requesterID string) ([]*models.Document, error) {
	if requesterID == "" {
		return []*models.Document{}, nil
	}
	return s.docRepo.ListByOwner(ctx, requesterID)
}

// Update merges the partial payload, re-validates the merged content and
// appends the next version with a diff against the prior snapshot. The whole
// read-merge-append runs in one transaction; a version-number collision from
// a concurrent update surfaces as a ConflictError (the loser never silently
// overwrites the winner's version row).
func (s *documentService) Update(ctx context.Context, requesterID, id string, req *services.UpdateDocumentRequest) (*models.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var updated *models.Document
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := authorizeRead(doc, requesterID); err != nil {
			return err
		}

		merged, err := content.ToMap(doc.Content)
		if err != nil {
			return err
		}
		if req.Sections != nil {
			merged["sections"] = req.Sections
		}
		if req.Sheets != nil {
			merged["sheets"] = req.Sheets
		}
		if req.Sources != nil {
			merged["sources"] = req.Sources
		}

		canonical, warnings, err := content.Normalize(merged, doc.Kind)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			s.logger.Warn("content normalized with warning", "document_id", id, "warning", w)
		}

		delta, err := content.Diff(doc.Content, canonical)
		if err != nil {
			return err
		}

		parent := doc.CurrentVersion
		next := &models.Version{
			ID:            uuid.New().String(),
			DocumentID:    doc.ID,
			Version:       parent + 1,
			ParentVersion: &parent,
			Snapshot:      canonical,
			Diff:          delta,
			Author:        versionAuthor(req.Author),
			CreatedAt:     time.Now().UTC(),
		}
		if err := s.versionRepo.Append(txCtx, next); err != nil {
			return err
		}

		if req.Title != nil {
			doc.Title = strings.TrimSpace(*req.Title)
		}
		doc.Content = canonical
		doc.CurrentVersion = next.Version
		doc.UpdatedAt = next.CreatedAt
		if err := s.docRepo.Update(txCtx, doc); err != nil {
			return err
		}

		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document updated",
		"id", updated.ID,
		"version", updated.CurrentVersion,
	)
	return updated, nil
}

// Delete removes a document and all its versions. The version rows are
// deleted explicitly inside the same transaction as the document row.
func (s *documentService) Delete(ctx context.Context, requesterID, id string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		doc, err := s.docRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := authorizeDelete(doc, requesterID); err != nil {
			return err
		}
		if err := s.versionRepo.DeleteByDocument(txCtx, doc.ID); err != nil {
			return err
		}
		return s.docRepo.Delete(txCtx, doc.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("document deleted", "id", id)
	return nil
}

// History returns the document's version ledger, ascending.
func (s *documentService) History(ctx context.Context, requesterID, id string) ([]*models.Version, error) {
	if _, err := s.Get(ctx, requesterID, id); err != nil {
		return nil, err
	}
	return s.versionRepo.History(ctx, id)
}

// AtVersion returns one version of the document.
func (s *documentService) AtVersion(ctx context.Context, requesterID, id string, version int) (*models.Version, error) {
	if _, err := s.Get(ctx, requesterID, id); err != nil {
		return nil, err
	}
	return s.versionRepo.AtVersion(ctx, id, version)
}

// authorizeRead applies the read-path ownership rule: owned documents are
// visible only to their owner, ownerless documents to anyone holding the id.
// Updates use the same rule deliberately (an anonymous creator can keep
// editing an anonymous document).
func authorizeRead(doc *models.Document, requesterID string) error {
	if doc.OwnerID == nil {
		return nil
	}
	if requesterID == "" {
		return &domain.ForbiddenError{Message: "sign in to access this document"}
	}
	if !doc.OwnedBy(requesterID) {
		return &domain.ForbiddenError{Message: "you don't have access to this document"}
	}
	return nil
}

// authorizeDelete is stricter than authorizeRead: deletion always requires
// an authenticated requester, so an ownerless document cannot be deleted by
// an anonymous caller who merely holds the id.
func authorizeDelete(doc *models.Document, requesterID string) error {
	if requesterID == "" {
		return &domain.ForbiddenError{Message: "sign in to delete this document"}
	}
	if doc.OwnerID != nil && !doc.OwnedBy(requesterID) {
		return &domain.ForbiddenError{Message: "you don't have access to this document"}
	}
	return nil
}

func versionAuthor(author string) string {
	if author == models.AuthorAI {
		return models.AuthorAI
	}
	return models.AuthorUser
}

func rawContent(sections, sheets, sources []any) map[string]any {
	raw := map[string]any{}
	if sections != nil {
		raw["sections"] = sections
	}
	if sheets != nil {
		raw["sheets"] = sheets
	}
	if sources != nil {
		raw["sources"] = sources
	}
	return raw
}
