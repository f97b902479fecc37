package handler

import (
	"net/http"

	"github.com/mcoot/symptomcheck/internal/api/apierr"
	"github.com/mcoot/symptomcheck/internal/api/middleware"
	"github.com/mcoot/symptomcheck/internal/api/request"
	"github.com/mcoot/symptomcheck/internal/api/response"
	"github.com/mcoot/symptomcheck/internal/services/session"
)

// PredictionHandler handles symptom, prediction and history endpoints
type PredictionHandler struct {
	controller *session.Controller
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(controller *session.Controller) *PredictionHandler {
	return &PredictionHandler{
		controller: controller,
	}
}

// Symptoms handles GET /api/v1/symptoms
func (h *PredictionHandler) Symptoms(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Symptoms{Symptoms: h.controller.Symptoms()})
}

// Predict handles POST /api/v1/predictions
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req request.PredictRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	sess := middleware.MustGetSession(r.Context())
	sess, result, err := h.controller.Predict(r.Context(), sess.Token, req.Symptoms)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PredictionFromModel(result, sess))
}

// History handles GET /api/v1/history
func (h *PredictionHandler) History(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())
	sess, entries, err := h.controller.History(r.Context(), sess.Token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HistoryFromModel(sess.Username, entries))
}
