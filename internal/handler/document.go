package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"merry/internal/domain/models"
	"merry/internal/domain/services"
	"merry/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService services.DocumentService
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService services.DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// DocumentMeta is the metadata block of a document response.
type DocumentMeta struct {
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	SchemaVersion string          `json:"schema_version"`
	Sources       []models.Source `json:"sources"`
}

// DocumentResponse is the wire shape of a document.
type DocumentResponse struct {
	ID       string           `json:"id"`
	Type     models.Kind      `json:"type"`
	Title    string           `json:"title"`
	Meta     DocumentMeta     `json:"meta"`
	Sections []models.Section `json:"sections"`
	Sheets   []models.Sheet   `json:"sheets"`
	Warnings []string         `json:"warnings,omitempty"`
}

func toDocumentResponse(doc *models.Document, warnings []string) *DocumentResponse {
	resp := &DocumentResponse{
		ID:    doc.ID,
		Type:  doc.Kind,
		Title: doc.Title,
		Meta: DocumentMeta{
			Version:       doc.CurrentVersion,
			CreatedAt:     doc.CreatedAt,
			UpdatedAt:     doc.UpdatedAt,
			SchemaVersion: doc.SchemaVersion,
			Sources:       []models.Source{},
		},
		Sections: []models.Section{},
		Sheets:   []models.Sheet{},
		Warnings: warnings,
	}
	if doc.Content != nil {
		resp.Sections = doc.Content.Sections
		resp.Sheets = doc.Content.Sheets
		resp.Meta.Sources = doc.Content.Sources
	}
	return resp
}

// HealthCheck reports process liveness
// GET /health
func (h *DocumentHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateDocument creates a new document at version 1
// POST /api/documents
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req services.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Author = models.AuthorUser

	doc, err := h.docService.Create(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, toDocumentResponse(doc, nil))
}

// ListDocuments retrieves the requester's documents, most recent first
// GET /api/documents
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docService.List(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	responses := make([]*DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, toDocumentResponse(doc, nil))
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"documents": responses,
		"total":     len(responses),
	})
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	doc, err := h.docService.Get(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, toDocumentResponse(doc, nil))
}

// UpdateDocument merges partial content and appends a version
// PUT /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	var req services.UpdateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Author = models.AuthorUser

	doc, err := h.docService.Update(r.Context(), httputil.GetUserID(r), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, toDocumentResponse(doc, nil))
}

// DeleteDocument removes a document and its version history
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	if err := h.docService.Delete(r.Context(), httputil.GetUserID(r), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetVersions returns the document's version history ascending
// GET /api/documents/{id}/versions
func (h *DocumentHandler) GetVersions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	versions, err := h.docService.History(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"versions": versions,
		"total":    len(versions),
	})
}

// GetVersion returns one version of a document
// GET /api/documents/{id}/versions/{version}
func (h *DocumentHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}

	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || version < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "Version must be a positive integer")
		return
	}

	v, err := h.docService.AtVersion(r.Context(), httputil.GetUserID(r), id, version)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, v)
}
