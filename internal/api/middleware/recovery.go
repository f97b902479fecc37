package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/symptomcheck/internal/api/apierr"
	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/middleware"
)

// Recovery creates panic recovery middleware for the API; panics become INTERNAL_ERROR responses
func Recovery(logger *slog.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), collector, apiPanicHandler)
}

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")), collector)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
