package handler

import (
	"net/http"

	"github.com/mcoot/symptomcheck/internal/api/apierr"
	"github.com/mcoot/symptomcheck/internal/api/middleware"
	"github.com/mcoot/symptomcheck/internal/api/request"
	"github.com/mcoot/symptomcheck/internal/api/response"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/session"
)

// UserHandler handles account and session endpoints
type UserHandler struct {
	controller *session.Controller
}

// NewUserHandler creates a new user handler
func NewUserHandler(controller *session.Controller) *UserHandler {
	return &UserHandler{
		controller: controller,
	}
}

// Register handles POST /api/v1/users/register
// The session returned is still anonymous and sits on the login view.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	sess := middleware.MustGetSession(r.Context())
	sess, err := h.controller.Register(r.Context(), sess.Token, req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(sess))
}

// Login handles POST /api/v1/users/login
// The token in the response replaces the one the request was made with.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	sess := middleware.MustGetSession(r.Context())
	sess, err := h.controller.Login(r.Context(), sess.Token, req.Username, req.Password)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}

// Logout handles POST /api/v1/users/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())
	sess, err := h.controller.Logout(r.Context(), sess.Token)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}

// GetSession handles GET /api/v1/session
func (h *UserHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := middleware.MustGetSession(r.Context())
	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}

// Navigate handles POST /api/v1/session/view
func (h *UserHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req request.NavigateRequest
	if err := request.Decode(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	sess := middleware.MustGetSession(r.Context())
	sess, err := h.controller.Navigate(r.Context(), sess.Token, model.View(req.View))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(sess))
}
