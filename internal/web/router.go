package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/services/session"
	"github.com/mcoot/symptomcheck/internal/web/handler"
	"github.com/mcoot/symptomcheck/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger            *slog.Logger
	SessionController *session.Controller
	Metrics           *metrics.Collector
	StaticDir         string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger, cfg.Metrics))
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.SessionController, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.SessionController, cfg.Logger)
	predictHandler := handler.NewPredictHandler(cfg.SessionController, cfg.Logger)
	historyHandler := handler.NewHistoryHandler(cfg.SessionController, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(staticHandler)
	}

	// Every page runs inside a session; anonymous visitors get one on first request
	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Flash())
	pages.Use(middleware.Session(cfg.SessionController))

	pages.HandleFunc("/", homeHandler.Index).Methods(http.MethodGet)

	// Anonymous views
	pages.HandleFunc("/login", authHandler.LoginPage).Methods(http.MethodGet)
	pages.HandleFunc("/register", authHandler.RegisterPage).Methods(http.MethodGet)
	pages.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	pages.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	pages.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	// Member views; the controller rejects anonymous sessions
	pages.HandleFunc("/home", homeHandler.Home).Methods(http.MethodGet)
	pages.HandleFunc("/predict", predictHandler.Page).Methods(http.MethodGet)
	pages.HandleFunc("/predict", predictHandler.Submit).Methods(http.MethodPost)
	pages.HandleFunc("/history", historyHandler.Page).Methods(http.MethodGet)

	return r
}
