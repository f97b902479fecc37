package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/middleware"
)

// Logging creates logging middleware for the web interface
func Logging(logger *slog.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return middleware.Logging(logger, collector)
}
