package factory

import (
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/symptomcheck/internal/dependencies/mocks"
	"github.com/mcoot/symptomcheck/internal/dependencies/random"
	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/auth"
	"github.com/mcoot/symptomcheck/internal/services/session"
	"github.com/mcoot/symptomcheck/internal/services/vocabulary"
	"github.com/mcoot/symptomcheck/internal/storage/memory"
	"github.com/mcoot/symptomcheck/internal/testutil"
)

// TestSymptoms is the vocabulary loaded into every TestApp
var TestSymptoms = []string{"fever", "cough", "fatigue"}

// TestClasses are the labels the TestApp classifier knows
var TestClasses = []string{"Disease A", "Disease B"}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock      *mocks.MockClock
	MockClassifier *mocks.MockClassifier
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The classifier predicts "Disease A" with 82% confidence unless reconfigured.
func NewTestApp() *TestApp {
	return NewTestAppWithLogger(testutil.NopLogger())
}

// NewTestAppWithLogger is NewTestApp with every service logging to logger
func NewTestAppWithLogger(logger *slog.Logger) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockClassifier := mocks.NewMockClassifier(len(TestSymptoms), TestClasses, []float64{0.82, 0.18})

	vocab := vocabulary.New(store, logger)
	if err := vocab.LoadSymptoms(TestSymptoms); err != nil {
		panic(err)
	}

	authCfg := auth.Config{HashScheme: model.HashSchemeBcryptSHA256, BcryptCost: bcrypt.MinCost}
	app, err := newWithDependencies(store, mockClock, random.New(), vocab, mockClassifier,
		authCfg, session.DefaultConfig(), metrics.New(), logger)
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:            app,
		MockClock:      mockClock,
		MockClassifier: mockClassifier,
	}
}
