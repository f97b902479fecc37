package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/symptomcheck/internal/dependencies/mocks"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/auth"
	"github.com/mcoot/symptomcheck/internal/services/history"
	"github.com/mcoot/symptomcheck/internal/services/prediction"
	"github.com/mcoot/symptomcheck/internal/services/vocabulary"
	"github.com/mcoot/symptomcheck/internal/storage/memory"
	"github.com/mcoot/symptomcheck/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	classifier *mocks.MockClassifier
	history    *history.Service
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	logger := testutil.NopLogger()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()

	authService, err := auth.New(s.storage, s.clock, auth.Config{
		HashScheme: model.HashSchemeBcryptSHA256,
		BcryptCost: bcrypt.MinCost,
	}, logger)
	s.Require().NoError(err)

	vocab := vocabulary.New(s.storage, logger)
	s.Require().NoError(vocab.LoadSymptoms([]string{"fever", "cough", "fatigue"}))

	s.classifier = mocks.NewMockClassifier(3, []string{"Disease A", "Disease B"}, []float64{0.82, 0.18})
	predictionService, err := prediction.New(vocab, s.classifier, nil, logger)
	s.Require().NoError(err)

	s.history = history.New(s.storage, s.clock, logger)
	s.controller = NewController(s.storage, authService, predictionService, s.history,
		s.clock, s.random, nil, logger, DefaultConfig())
	s.ctx = context.Background()
}

func (s *ControllerSuite) start(token string) *model.Session {
	s.random.QueueString(token)
	sess, err := s.controller.Start(s.ctx)
	s.Require().NoError(err)
	return sess
}

// loggedIn registers a user and returns an authenticated session
func (s *ControllerSuite) loggedIn(username, password string) *model.Session {
	sess := s.start("anon-" + username)
	_, err := s.controller.Register(s.ctx, sess.Token, username, password)
	s.Require().NoError(err)

	s.random.QueueString("auth-" + username)
	sess, err = s.controller.Login(s.ctx, sess.Token, username, password)
	s.Require().NoError(err)
	return sess
}

// Start / Get tests

func (s *ControllerSuite) TestStartIsAnonymousAtLogin() {
	sess := s.start("tok-1")

	s.Equal("tok-1", sess.Token)
	s.Equal("anonymous@login", sess.State())
	s.Equal(s.clock.Now().Add(24*time.Hour), sess.ExpiresAt)

	stored, err := s.controller.Get(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal("anonymous@login", stored.State())
}

func (s *ControllerSuite) TestStartSkipsTakenTokens() {
	s.start("tok-1")
	s.random.QueueString("tok-1", "tok-2")

	sess, err := s.controller.Start(s.ctx)
	s.Require().NoError(err)
	s.Equal("tok-2", sess.Token)
	s.Equal([]int{TokenLength, TokenLength, TokenLength}, s.random.Requested())
}

func (s *ControllerSuite) TestStartFailsWithoutTokens() {
	_, err := s.controller.Start(s.ctx)
	s.Error(err)
}

func (s *ControllerSuite) TestGetUnknownToken() {
	_, err := s.controller.Get(s.ctx, "nope")
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.controller.Get(s.ctx, "")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ControllerSuite) TestGetExpiredSession() {
	s.start("tok-1")
	s.clock.Advance(25 * time.Hour)

	_, err := s.controller.Get(s.ctx, "tok-1")
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.storage.GetSession(s.ctx, "tok-1")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Login tests

func (s *ControllerSuite) TestLoginRotatesToken() {
	sess := s.start("tok-1")
	_, err := s.controller.Register(s.ctx, sess.Token, "alice", "pw")
	s.Require().NoError(err)

	s.random.QueueString("tok-2")
	sess, err = s.controller.Login(s.ctx, "tok-1", "alice", "pw")
	s.Require().NoError(err)

	s.Equal("tok-2", sess.Token)
	s.Equal("alice", sess.Username)
	s.Equal("authenticated@home", sess.State())

	_, err = s.controller.Get(s.ctx, "tok-1")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ControllerSuite) TestLoginWrongPasswordStaysAtLogin() {
	sess := s.start("tok-1")
	_, _ = s.controller.Register(s.ctx, sess.Token, "alice", "pw")

	sess, err := s.controller.Login(s.ctx, "tok-1", "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Equal("anonymous@login", sess.State())
	s.Equal("tok-1", sess.Token)
}

func (s *ControllerSuite) TestLoginUnknownUser() {
	s.start("tok-1")

	sess, err := s.controller.Login(s.ctx, "tok-1", "ghost", "pw")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Equal("anonymous@login", sess.State())
}

func (s *ControllerSuite) TestLoginWhenAuthenticated() {
	sess := s.loggedIn("alice", "pw")

	_, err := s.controller.Login(s.ctx, sess.Token, "alice", "pw")
	s.ErrorIs(err, ErrAlreadyAuthenticated)
}

// Register tests

func (s *ControllerSuite) TestShowRegisterAndBack() {
	s.start("tok-1")

	sess, err := s.controller.ShowRegister(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal("anonymous@register", sess.State())

	sess, err = s.controller.ShowLogin(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal("anonymous@login", sess.State())
}

func (s *ControllerSuite) TestRegisterSuccessReturnsToLogin() {
	s.start("tok-1")
	_, _ = s.controller.ShowRegister(s.ctx, "tok-1")

	sess, err := s.controller.Register(s.ctx, "tok-1", "alice", "pw")
	s.Require().NoError(err)
	s.Equal("anonymous@login", sess.State())
}

func (s *ControllerSuite) TestRegisterDuplicateStaysAtRegister() {
	s.start("tok-1")
	_, err := s.controller.Register(s.ctx, "tok-1", "alice", "original")
	s.Require().NoError(err)

	_, _ = s.controller.ShowRegister(s.ctx, "tok-1")
	sess, err := s.controller.Register(s.ctx, "tok-1", "alice", "other")
	s.ErrorIs(err, ErrUsernameExists)
	s.Equal("anonymous@register", sess.State())

	// Original password still works
	s.random.QueueString("tok-2")
	sess, err = s.controller.Login(s.ctx, "tok-1", "alice", "original")
	s.Require().NoError(err)
	s.Equal("authenticated@home", sess.State())
}

func (s *ControllerSuite) TestRegisterWhenAuthenticated() {
	sess := s.loggedIn("alice", "pw")

	_, err := s.controller.Register(s.ctx, sess.Token, "bob", "pw")
	s.ErrorIs(err, ErrAlreadyAuthenticated)

	_, err = s.controller.ShowRegister(s.ctx, sess.Token)
	s.ErrorIs(err, ErrAlreadyAuthenticated)
}

// Navigate tests

func (s *ControllerSuite) TestNavigateAuthenticated() {
	sess := s.loggedIn("alice", "pw")

	for _, view := range []model.View{model.ViewPredict, model.ViewHistory, model.ViewHome} {
		next, err := s.controller.Navigate(s.ctx, sess.Token, view)
		s.Require().NoError(err)
		s.Equal("authenticated@"+string(view), next.State())
	}
}

func (s *ControllerSuite) TestNavigateAnonymousToProtectedView() {
	s.start("tok-1")

	for _, view := range []model.View{model.ViewHome, model.ViewPredict, model.ViewHistory} {
		sess, err := s.controller.Navigate(s.ctx, "tok-1", view)
		s.ErrorIs(err, ErrNotAuthenticated)
		s.Equal("anonymous@login", sess.State())
	}
}

func (s *ControllerSuite) TestNavigateAnonymousViews() {
	s.start("tok-1")

	sess, err := s.controller.Navigate(s.ctx, "tok-1", model.ViewRegister)
	s.Require().NoError(err)
	s.Equal("anonymous@register", sess.State())
}

func (s *ControllerSuite) TestNavigateAuthenticatedToLogin() {
	sess := s.loggedIn("alice", "pw")

	_, err := s.controller.Navigate(s.ctx, sess.Token, model.ViewLogin)
	s.ErrorIs(err, ErrAlreadyAuthenticated)
}

func (s *ControllerSuite) TestNavigateInvalidView() {
	sess := s.loggedIn("alice", "pw")

	_, err := s.controller.Navigate(s.ctx, sess.Token, model.View("settings"))
	s.ErrorIs(err, model.ErrInvalidView)
}

// Logout tests

func (s *ControllerSuite) TestLogoutResetsSession() {
	sess := s.loggedIn("alice", "pw")
	_, _, err := s.controller.Predict(s.ctx, sess.Token, []string{"fever"})
	s.Require().NoError(err)

	out, err := s.controller.Logout(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal(sess.Token, out.Token)
	s.Equal("", out.Username)
	s.Equal("anonymous@login", out.State())

	// History is unreachable until login again
	_, _, err = s.controller.History(s.ctx, sess.Token)
	s.ErrorIs(err, ErrNotAuthenticated)

	s.random.QueueString("tok-again")
	sess, err = s.controller.Login(s.ctx, sess.Token, "alice", "pw")
	s.Require().NoError(err)

	_, entries, err := s.controller.History(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *ControllerSuite) TestLogoutAnonymous() {
	s.start("tok-1")
	_, _ = s.controller.ShowRegister(s.ctx, "tok-1")

	sess, err := s.controller.Logout(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal("anonymous@login", sess.State())
}

// Predict tests

func (s *ControllerSuite) TestPredictRecordsHistory() {
	sess := s.loggedIn("alice", "pw")

	next, result, err := s.controller.Predict(s.ctx, sess.Token, []string{"fever", "cough"})
	s.Require().NoError(err)

	s.Equal("authenticated@predict", next.State())
	s.Equal([]float64{1, 1, 0}, s.classifier.Calls()[0])
	s.Equal(model.Disease("Disease A"), result.Disease)
	s.InDelta(82.0, result.Confidence, 1e-9)

	entries, err := s.history.Get(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal([]string{"fever", "cough"}, entries[0].Symptoms)
	s.Equal(model.Disease("Disease A"), entries[0].Disease)
	s.InDelta(82.0, entries[0].Confidence, 1e-9)
}

func (s *ControllerSuite) TestPredictEmptySelection() {
	sess := s.loggedIn("alice", "pw")

	next, result, err := s.controller.Predict(s.ctx, sess.Token, nil)
	s.ErrorIs(err, ErrEmptySelection)
	s.Nil(result)
	s.Equal("authenticated@predict", next.State())
	s.Empty(s.classifier.Calls())

	entries, _ := s.history.Get(s.ctx, "alice")
	s.Empty(entries)
}

func (s *ControllerSuite) TestPredictUnknownSymptom() {
	sess := s.loggedIn("alice", "pw")

	_, _, err := s.controller.Predict(s.ctx, sess.Token, []string{"sneezing"})
	s.ErrorIs(err, model.ErrUnknownSymptom)

	entries, _ := s.history.Get(s.ctx, "alice")
	s.Empty(entries)
}

func (s *ControllerSuite) TestPredictAnonymous() {
	s.start("tok-1")

	_, _, err := s.controller.Predict(s.ctx, "tok-1", []string{"fever"})
	s.ErrorIs(err, ErrNotAuthenticated)
	s.Empty(s.classifier.Calls())
}

func (s *ControllerSuite) TestHistoryMostRecentFirst() {
	sess := s.loggedIn("alice", "pw")
	selections := [][]string{{"fever"}, {"cough"}, {"fatigue"}}
	for _, selection := range selections {
		_, _, err := s.controller.Predict(s.ctx, sess.Token, selection)
		s.Require().NoError(err)
		s.clock.Advance(time.Minute)
	}

	next, entries, err := s.controller.History(s.ctx, sess.Token)
	s.Require().NoError(err)
	s.Equal("authenticated@history", next.State())
	s.Require().Len(entries, 3)
	s.Equal([]string{"fatigue"}, entries[0].Symptoms)
	s.Equal([]string{"cough"}, entries[1].Symptoms)
	s.Equal([]string{"fever"}, entries[2].Symptoms)
}

func (s *ControllerSuite) TestHistoryIsPerUser() {
	alice := s.loggedIn("alice", "pw")
	bob := s.loggedIn("bob", "pw")
	_, _, _ = s.controller.Predict(s.ctx, alice.Token, []string{"fever"})

	_, entries, err := s.controller.History(s.ctx, bob.Token)
	s.Require().NoError(err)
	s.Empty(entries)
}

// CleanExpiredSessions tests

func (s *ControllerSuite) TestCleanExpiredSessions() {
	s.start("old")
	s.clock.Advance(12 * time.Hour)
	s.start("new")
	s.clock.Advance(13 * time.Hour)

	removed, err := s.controller.CleanExpiredSessions(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, removed)

	_, err = s.controller.Get(s.ctx, "new")
	s.NoError(err)
}
