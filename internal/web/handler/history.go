package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/symptomcheck/internal/services/session"
	"github.com/mcoot/symptomcheck/internal/web/templates/pages"
)

// HistoryHandler handles the prediction history page
type HistoryHandler struct {
	controller *session.Controller
	logger     *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(controller *session.Controller, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		controller: controller,
		logger:     logger,
	}
}

// Page renders the user's history, most recent first
func (h *HistoryHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess, entries, err := h.controller.History(r.Context(), sessionToken(r))
	if err != nil {
		handleSessionError(w, r, h.logger, err)
		return
	}

	data := pages.HistoryData{
		PageData: pageData(r, sess, "History"),
		Entries:  entries,
	}
	render(w, r, http.StatusOK, pages.History(data))
}
