package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/session"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"

	// SessionCookieName is the cookie carrying the session token
	SessionCookieName = "session"
)

// GetSession retrieves the current session from the request context
// Returns nil outside the Session middleware
func GetSession(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// Session returns middleware that loads the session named by the cookie.
// Visitors without a valid session get a new anonymous one on the login view.
func Session(controller *session.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := loadSession(r, controller)
			if errors.Is(err, session.ErrInvalidSession) {
				sess, err = controller.Start(r.Context())
				if err == nil {
					SetSessionCookie(w, sess)
				}
			}
			if err != nil {
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func loadSession(r *http.Request, controller *session.Controller) (*model.Session, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, session.ErrInvalidSession
	}
	return controller.Get(r.Context(), cookie.Value)
}

// SetSessionCookie stores the session token in the cookie until the session expires
func SetSessionCookie(w http.ResponseWriter, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
