package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/session"
	"github.com/mcoot/symptomcheck/internal/web/middleware"
	"github.com/mcoot/symptomcheck/internal/web/templates/pages"
)

// AuthHandler handles the login and registration pages and actions
type AuthHandler struct {
	controller *session.Controller
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(controller *session.Controller, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		controller: controller,
		logger:     logger,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess, err := h.controller.ShowLogin(r.Context(), sessionToken(r))
	if err != nil {
		handleSessionError(w, r, h.logger, err)
		return
	}
	h.renderLogin(w, r, sess, "", "")
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, middleware.GetSession(r.Context()), "", "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		h.renderLogin(w, r, middleware.GetSession(r.Context()), username, "Username and password are required")
		return
	}

	sess, err := h.controller.Login(r.Context(), sessionToken(r), username, password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		h.renderLogin(w, r, sess, username, "Invalid username or password.")
		return
	}
	if err != nil {
		handleSessionError(w, r, h.logger, err)
		return
	}

	middleware.SetSessionCookie(w, sess)
	middleware.SetFlash(w, middleware.FlashSuccess, "Login successful!")
	http.Redirect(w, r, ViewPath(sess.View), http.StatusSeeOther)
}

// RegisterPage renders the registration page
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	sess, err := h.controller.ShowRegister(r.Context(), sessionToken(r))
	if err != nil {
		handleSessionError(w, r, h.logger, err)
		return
	}
	h.renderRegister(w, r, sess, "", nil)
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	current := middleware.GetSession(r.Context())
	if err := r.ParseForm(); err != nil {
		h.renderRegister(w, r, current, "", map[string]string{"username": "Invalid form data"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	fieldErrors := make(map[string]string)
	if username == "" {
		fieldErrors["username"] = "Username is required"
	}
	if password == "" {
		fieldErrors["password"] = "Password is required"
	}
	if len(fieldErrors) > 0 {
		h.renderRegister(w, r, current, username, fieldErrors)
		return
	}

	sess, err := h.controller.Register(r.Context(), sessionToken(r), username, password)
	if errors.Is(err, session.ErrUsernameExists) {
		fieldErrors["username"] = "Username already exists. Please choose another."
		h.renderRegister(w, r, sess, username, fieldErrors)
		return
	}
	if err != nil {
		handleSessionError(w, r, h.logger, err)
		return
	}

	middleware.SetFlash(w, middleware.FlashSuccess, "Registration successful! Please login.")
	http.Redirect(w, r, ViewPath(model.ViewLogin), http.StatusSeeOther)
}

// Logout handles logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, err := h.controller.Logout(r.Context(), sessionToken(r)); err != nil {
		handleSessionError(w, r, h.logger, err)
		return
	}

	middleware.SetFlash(w, middleware.FlashInfo, "You have been logged out.")
	http.Redirect(w, r, ViewPath(model.ViewLogin), http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, sess *model.Session, username, errorMsg string) {
	data := pages.LoginData{
		PageData: pageData(r, sess, "Login"),
		Username: username,
		Error:    errorMsg,
	}
	render(w, r, http.StatusOK, pages.Login(data))
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, sess *model.Session, username string, fieldErrors map[string]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}

	data := pages.RegisterData{
		PageData:    pageData(r, sess, "Register"),
		Username:    username,
		FieldErrors: fieldErrors,
	}
	render(w, r, http.StatusOK, pages.Register(data))
}
