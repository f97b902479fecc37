package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/session"
	"github.com/mcoot/symptomcheck/internal/web/middleware"
	"github.com/mcoot/symptomcheck/internal/web/templates/pages"
)

// HomeHandler handles the root and home pages
type HomeHandler struct {
	controller *session.Controller
	logger     *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(controller *session.Controller, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		controller: controller,
		logger:     logger,
	}
}

// Index sends the visitor to the view their session is on
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	view := model.ViewLogin
	if sess := middleware.GetSession(r.Context()); sess != nil {
		view = sess.View
	}
	http.Redirect(w, r, ViewPath(view), http.StatusSeeOther)
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	sess, err := h.controller.Navigate(r.Context(), sessionToken(r), model.ViewHome)
	if err != nil {
		handleSessionError(w, r, h.logger, err)
		return
	}

	data := pages.HomeData{
		PageData: pageData(r, sess, "Home"),
		Features: pages.Features,
	}
	render(w, r, http.StatusOK, pages.Home(data))
}
