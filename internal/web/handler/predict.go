package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/session"
	"github.com/mcoot/symptomcheck/internal/web/templates/pages"
)

// PredictHandler handles the symptom form and predictions
type PredictHandler struct {
	controller *session.Controller
	logger     *slog.Logger
}

// NewPredictHandler creates a new PredictHandler
func NewPredictHandler(controller *session.Controller, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{
		controller: controller,
		logger:     logger,
	}
}

// Page renders the empty symptom form
func (h *PredictHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess, err := h.controller.Navigate(r.Context(), sessionToken(r), model.ViewPredict)
	if err != nil {
		handleSessionError(w, r, h.logger, err)
		return
	}
	render(w, r, http.StatusOK, pages.Predict(h.data(r, sess)))
}

// Submit runs a prediction for the selected symptoms and renders the result
func (h *PredictHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	selected := r.PostForm["symptoms"]

	sess, result, err := h.controller.Predict(r.Context(), sessionToken(r), selected)
	switch {
	case err == nil:
		data := h.data(r, sess)
		data.Selected = result.Symptoms
		data.Result = result
		render(w, r, http.StatusOK, pages.Predict(data))
	case errors.Is(err, model.ErrEmptySelection):
		data := h.data(r, sess)
		data.Warning = "Please select at least one symptom."
		render(w, r, http.StatusOK, pages.Predict(data))
	case errors.Is(err, model.ErrUnknownSymptom):
		data := h.data(r, sess)
		data.Error = "Some selected symptoms are not recognised. Please choose from the list."
		render(w, r, http.StatusBadRequest, pages.Predict(data))
	default:
		handleSessionError(w, r, h.logger, err)
	}
}

func (h *PredictHandler) data(r *http.Request, sess *model.Session) pages.PredictData {
	return pages.PredictData{
		PageData: pageData(r, sess, "Predict"),
		Symptoms: h.controller.Symptoms(),
	}
}
