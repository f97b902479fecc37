package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/symptomcheck/internal/api/handler"
	"github.com/mcoot/symptomcheck/internal/api/middleware"
	"github.com/mcoot/symptomcheck/internal/api/response"
	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController *session.Controller
	Metrics           *metrics.Collector
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	userHandler := handler.NewUserHandler(cfg.SessionController)
	predictionHandler := handler.NewPredictionHandler(cfg.SessionController)

	requireSession := middleware.RequireSession(cfg.SessionController)
	ensureSession := middleware.EnsureSession(cfg.SessionController)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger, cfg.Metrics))
	api.Use(middleware.Logging(cfg.Logger, cfg.Metrics))

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/symptoms", predictionHandler.Symptoms).Methods(http.MethodGet)

	// Login and register work with or without an existing session
	api.Handle("/users/register", ensureSession(http.HandlerFunc(userHandler.Register))).Methods(http.MethodPost)
	api.Handle("/users/login", ensureSession(http.HandlerFunc(userHandler.Login))).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(requireSession)
	protected.HandleFunc("/users/logout", userHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/session", userHandler.GetSession).Methods(http.MethodGet)
	protected.HandleFunc("/session/view", userHandler.Navigate).Methods(http.MethodPost)
	protected.HandleFunc("/predictions", predictionHandler.Predict).Methods(http.MethodPost)
	protected.HandleFunc("/history", predictionHandler.History).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
