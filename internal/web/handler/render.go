package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/session"
	"github.com/mcoot/symptomcheck/internal/web/middleware"
	"github.com/mcoot/symptomcheck/internal/web/templates/layout"
	"github.com/mcoot/symptomcheck/internal/web/templates/pages"
)

// ViewPath returns the page URL for a view
func ViewPath(view model.View) string {
	return "/" + string(view)
}

func sessionToken(r *http.Request) string {
	if sess := middleware.GetSession(r.Context()); sess != nil {
		return sess.Token
	}
	return ""
}

// pageData builds the shared page data; sess is the session after the handler's transition
func pageData(r *http.Request, sess *model.Session, title string) layout.PageData {
	data := layout.PageData{
		Title: title,
		Flash: middleware.GetFlash(r.Context()),
	}
	if sess != nil {
		data.Username = sess.Username
		data.View = sess.View
	}
	return data
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.ErrorContext(r.Context(), "render failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}
}

// handleSessionError redirects for the controller errors every page can hit
func handleSessionError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		middleware.SetFlash(w, middleware.FlashWarning, "Please log in to continue.")
		http.Redirect(w, r, ViewPath(model.ViewLogin), http.StatusSeeOther)
	case errors.Is(err, session.ErrAlreadyAuthenticated):
		http.Redirect(w, r, ViewPath(model.ViewHome), http.StatusSeeOther)
	case errors.Is(err, session.ErrInvalidSession):
		middleware.ClearSessionCookie(w)
		middleware.SetFlash(w, middleware.FlashInfo, "Your session has expired. Please log in again.")
		http.Redirect(w, r, ViewPath(model.ViewLogin), http.StatusSeeOther)
	default:
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		render(w, r, http.StatusInternalServerError, pages.Error(pages.ErrorData{
			PageData: pageData(r, middleware.GetSession(r.Context()), "Error"),
			Message:  "We could not complete your request. Please try again in a moment.",
		}))
	}
}
