package handler

import (
	"log/slog"
	"net/http"

	"merry/internal/domain/models"
	"merry/internal/domain/services"
	"merry/internal/httputil"
)

// AIHandler handles AI collaborator HTTP requests
type AIHandler struct {
	intentService services.IntentService
	logger        *slog.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(intentService services.IntentService, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		intentService: intentService,
		logger:        logger,
	}
}

// ParseIntent turns a prompt into a candidate document
// POST /api/ai/parse-intent
func (h *AIHandler) ParseIntent(w http.ResponseWriter, r *http.Request) {
	var req services.ParseIntentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.intentService.ParseIntent(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Rewrite rewrites a section body per instructions
// POST /api/ai/rewrite
func (h *AIHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	var req services.RewriteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.intentService.RewriteSection(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// SuggestColumns suggests spreadsheet columns for a topic
// POST /api/ai/suggest-columns
func (h *AIHandler) SuggestColumns(w http.ResponseWriter, r *http.Request) {
	var req services.SuggestColumnsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	columns, err := h.intentService.SuggestColumns(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	if columns == nil {
		columns = []models.Column{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"columns": columns})
}
