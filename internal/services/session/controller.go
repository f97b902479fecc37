package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/symptomcheck/internal/dependencies/clock"
	"github.com/mcoot/symptomcheck/internal/dependencies/random"
	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/auth"
	"github.com/mcoot/symptomcheck/internal/services/history"
	"github.com/mcoot/symptomcheck/internal/services/prediction"
	"github.com/mcoot/symptomcheck/internal/storage"
)

const (
	// TokenLength is the length of generated session tokens
	TokenLength = 32
	// TokenAlphabet is the characters used in session tokens
	TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	maxTokenAttempts = 8
)

// Errors
var (
	ErrInvalidSession       = errors.New("invalid or expired session")
	ErrInvalidCredentials   = auth.ErrInvalidCredentials
	ErrUsernameExists       = model.ErrUsernameExists
	ErrNotAuthenticated     = model.ErrNotAuthenticated
	ErrAlreadyAuthenticated = model.ErrAlreadyAuthenticated
	ErrEmptySelection       = model.ErrEmptySelection
)

// Config holds configuration for the session controller
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// Controller owns the per-client state machine: who is logged in and which view is shown.
// Every transition loads the session by token, applies the change and saves it back.
type Controller struct {
	storage    storage.Storage
	auth       *auth.Service
	prediction *prediction.Service
	history    *history.Service
	clock      clock.Clock
	random     random.Random
	metrics    *metrics.Collector
	logger     *slog.Logger

	sessionDuration time.Duration
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	authService *auth.Service,
	predictionService *prediction.Service,
	historyService *history.Service,
	clock clock.Clock,
	random random.Random,
	collector *metrics.Collector,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Controller{
		storage:         storage,
		auth:            authService,
		prediction:      predictionService,
		history:         historyService,
		clock:           clock,
		random:          random,
		metrics:         collector,
		logger:          logger,
		sessionDuration: cfg.SessionDuration,
	}
}

// Start creates a new anonymous session on the login view
func (c *Controller) Start(ctx context.Context) (*model.Session, error) {
	return c.newSession(ctx, "", model.ViewLogin)
}

// Get returns the session for a token.
// Unknown and expired tokens return ErrInvalidSession; expired sessions are removed.
func (c *Controller) Get(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	sess, err := c.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if sess.IsExpired(c.clock.Now()) {
		if err := c.storage.DeleteSession(ctx, token); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
			return nil, err
		}
		return nil, ErrInvalidSession
	}

	return sess, nil
}

// Login authenticates the user. On success the session is replaced by a new
// authenticated one on the home view and the old token stops working.
// On failure the session stays anonymous on the login view.
func (c *Controller) Login(ctx context.Context, token, username, password string) (*model.Session, error) {
	sess, err := c.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.IsAuthenticated() {
		return sess, ErrAlreadyAuthenticated
	}

	if err := c.auth.Authenticate(ctx, username, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, err
		}
		c.metrics.ObserveLogin("failure")
		sess.View = model.ViewLogin
		if err := c.storage.SaveSession(ctx, sess); err != nil {
			return nil, err
		}
		return sess, ErrInvalidCredentials
	}

	next, err := c.newSession(ctx, username, model.ViewHome)
	if err != nil {
		return nil, err
	}
	if err := c.storage.DeleteSession(ctx, sess.Token); err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		return nil, err
	}

	c.metrics.ObserveLogin("success")
	c.logger.InfoContext(ctx, "user logged in", slog.String("username", username))
	return next, nil
}

// ShowRegister moves an anonymous session to the register view
func (c *Controller) ShowRegister(ctx context.Context, token string) (*model.Session, error) {
	return c.moveAnonymous(ctx, token, model.ViewRegister)
}

// ShowLogin moves an anonymous session to the login view
func (c *Controller) ShowLogin(ctx context.Context, token string) (*model.Session, error) {
	return c.moveAnonymous(ctx, token, model.ViewLogin)
}

// Register creates an account. Success returns to the login view;
// a taken username leaves the session on the register view with ErrUsernameExists.
func (c *Controller) Register(ctx context.Context, token, username, password string) (*model.Session, error) {
	sess, err := c.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.IsAuthenticated() {
		return sess, ErrAlreadyAuthenticated
	}

	regErr := c.auth.Register(ctx, username, password)
	switch {
	case regErr == nil:
		c.metrics.ObserveRegistration("success")
		sess.View = model.ViewLogin
	case errors.Is(regErr, auth.ErrUsernameExists):
		c.metrics.ObserveRegistration("duplicate")
		sess.View = model.ViewRegister
	default:
		c.metrics.ObserveRegistration("error")
		return nil, regErr
	}

	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	if regErr != nil {
		return sess, ErrUsernameExists
	}

	c.logger.InfoContext(ctx, "user registered", slog.String("username", username))
	return sess, nil
}

// Navigate changes the current view.
// Views behind login need an authenticated session; login and register need an anonymous one.
func (c *Controller) Navigate(ctx context.Context, token string, view model.View) (*model.Session, error) {
	if _, err := model.ParseView(string(view)); err != nil {
		return nil, err
	}
	if !view.RequiresAuth() {
		return c.moveAnonymous(ctx, token, view)
	}

	sess, err := c.requireAuth(ctx, token)
	if err != nil {
		return sess, err
	}

	sess.View = view
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout clears the identity and returns the session to the login view
func (c *Controller) Logout(ctx context.Context, token string) (*model.Session, error) {
	sess, err := c.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	username := sess.Username
	sess.Username = ""
	sess.View = model.ViewLogin
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}

	if username != "" {
		c.logger.InfoContext(ctx, "user logged out", slog.String("username", username))
	}
	return sess, nil
}

// Predict runs a prediction for the session's user and records it in their history.
// The session moves to the predict view even when the prediction fails.
func (c *Controller) Predict(ctx context.Context, token string, symptoms []string) (*model.Session, *model.Prediction, error) {
	sess, err := c.requireAuth(ctx, token)
	if err != nil {
		return sess, nil, err
	}

	sess.View = model.ViewPredict
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, nil, err
	}

	result, err := c.prediction.Predict(ctx, symptoms)
	if err != nil {
		if errors.Is(err, ErrEmptySelection) {
			c.logger.WarnContext(ctx, "prediction requested with no symptoms", slog.String("username", sess.Username))
		}
		return sess, nil, err
	}

	if _, err := c.history.Append(ctx, sess.Username, result.Symptoms, result.Disease, result.Confidence); err != nil {
		return sess, nil, fmt.Errorf("record history: %w", err)
	}

	return sess, result, nil
}

// History moves the session to the history view and returns the user's entries most recent first
func (c *Controller) History(ctx context.Context, token string) (*model.Session, []*model.HistoryEntry, error) {
	sess, err := c.Navigate(ctx, token, model.ViewHistory)
	if err != nil {
		return sess, nil, err
	}

	entries, err := c.history.Recent(ctx, sess.Username)
	if err != nil {
		return sess, nil, err
	}
	return sess, entries, nil
}

// Symptoms returns the selectable symptoms
func (c *Controller) Symptoms() []string {
	return c.prediction.Symptoms()
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (c *Controller) CleanExpiredSessions(ctx context.Context) (int, error) {
	removed, err := c.storage.DeleteExpiredSessions(ctx, c.clock.Now().Unix())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		c.logger.InfoContext(ctx, "expired sessions removed", slog.Int("count", removed))
	}
	return removed, nil
}

func (c *Controller) moveAnonymous(ctx context.Context, token string, view model.View) (*model.Session, error) {
	sess, err := c.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.IsAuthenticated() {
		return sess, ErrAlreadyAuthenticated
	}

	sess.View = view
	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (c *Controller) requireAuth(ctx context.Context, token string) (*model.Session, error) {
	sess, err := c.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if !sess.IsAuthenticated() {
		return sess, ErrNotAuthenticated
	}
	return sess, nil
}

func (c *Controller) newSession(ctx context.Context, username string, view model.View) (*model.Session, error) {
	token, err := c.generateToken(ctx)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	sess := &model.Session{
		Token:     token,
		Username:  username,
		View:      view,
		CreatedAt: now,
		ExpiresAt: now.Add(c.sessionDuration),
	}

	if err := c.storage.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// generateToken picks a token that no live session uses
func (c *Controller) generateToken(ctx context.Context) (string, error) {
	for range maxTokenAttempts {
		token := c.random.String(TokenLength, TokenAlphabet)
		if token == "" {
			continue
		}
		_, err := c.storage.GetSession(ctx, token)
		if errors.Is(err, model.ErrSessionNotFound) {
			return token, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not generate a unique session token")
}
