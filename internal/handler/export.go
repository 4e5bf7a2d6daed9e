package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"merry/internal/domain/services"
	"merry/internal/export"
	"merry/internal/httputil"
)

// ExportHandler renders stored documents into office file formats.
type ExportHandler struct {
	docService services.DocumentService
	logger     *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(docService services.DocumentService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		docService: docService,
		logger:     logger,
	}
}

// ExportDocument renders the current version of a document
// GET /api/documents/{id}/export/{format}
func (h *ExportHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Document ID is required")
		return
	}
	format := export.Format(r.PathValue("format"))

	doc, err := h.docService.Get(r.Context(), httputil.GetUserID(r), id)
	if err != nil {
		handleError(w, err)
		return
	}

	file, err := export.Render(doc, format)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		h.logger.Warn("export write interrupted", "document_id", id, "error", err)
	}
}
