package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/middleware"
	"github.com/mcoot/symptomcheck/internal/web/templates/layout"
	"github.com/mcoot/symptomcheck/internal/web/templates/pages"
)

// Recovery creates panic recovery middleware for the web interface.
// A panicking handler gets the site's error page.
func Recovery(logger *slog.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, collector, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	page := pages.Error(pages.ErrorData{
		PageData: layout.PageData{Title: "Error"},
		Message:  "We could not complete your request. Please try again in a moment.",
	})
	_ = page.Render(r.Context(), w)
}
