package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mcoot/symptomcheck/internal/api/apierr"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// RequireSession rejects requests without a valid session token
func RequireSession(controller *session.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			sess, err := controller.Get(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		})
	}
}

// EnsureSession uses the caller's session if it is valid and starts an anonymous one otherwise.
// Clients that have never talked to the server can log in or register without a prior request.
func EnsureSession(controller *session.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *model.Session
			var err error

			if token := extractToken(r); token != "" {
				sess, err = controller.Get(r.Context(), token)
			} else {
				err = session.ErrInvalidSession
			}
			if errors.Is(err, session.ErrInvalidSession) {
				sess, err = controller.Start(r.Context())
			}
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

func withSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

// MustGetSession returns the session or panics
func MustGetSession(ctx context.Context) *model.Session {
	sess := GetSession(ctx)
	if sess == nil {
		panic("no session in context - session middleware not applied?")
	}
	return sess
}
