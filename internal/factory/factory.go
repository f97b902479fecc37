package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/symptomcheck/internal/dependencies/clock"
	"github.com/mcoot/symptomcheck/internal/dependencies/random"
	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/services/auth"
	"github.com/mcoot/symptomcheck/internal/services/classifier"
	"github.com/mcoot/symptomcheck/internal/services/history"
	"github.com/mcoot/symptomcheck/internal/services/prediction"
	"github.com/mcoot/symptomcheck/internal/services/session"
	"github.com/mcoot/symptomcheck/internal/services/vocabulary"
	"github.com/mcoot/symptomcheck/internal/storage"
	"github.com/mcoot/symptomcheck/internal/storage/memory"
	redisstorage "github.com/mcoot/symptomcheck/internal/storage/redis"
	sqlitestorage "github.com/mcoot/symptomcheck/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	Metrics *metrics.Collector

	// Services
	VocabularyService *vocabulary.Service
	Classifier        classifier.Classifier
	AuthService       *auth.Service
	HistoryService    *history.Service
	PredictionService *prediction.Service
	SessionController *session.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// SymptomsPath is the JSON symptom vocabulary (required)
	SymptomsPath string
	// ModelPath is the classifier artifact (required)
	ModelPath string
	// AuthConfig holds configuration for the credential store (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// SessionConfig holds configuration for the session controller (optional)
	SessionConfig session.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Metrics collects Prometheus metrics (optional)
	// If nil, a new collector is created
	Metrics *metrics.Collector
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLiteConfig holds database settings (optional, used if StorageType is "sqlite")
	SQLiteConfig *sqlitestorage.Config
}

// New creates a new application with all dependencies wired.
// The vocabulary and classifier are loaded here; failure to load either is an error.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	collector := cfg.Metrics
	if collector == nil {
		collector = metrics.New()
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app, err := build(ctx, store, cfg, collector, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, store storage.Storage, cfg Config, collector *metrics.Collector, logger *slog.Logger) (*App, error) {
	if cfg.SymptomsPath == "" || cfg.ModelPath == "" {
		return nil, errors.New("SymptomsPath and ModelPath are required")
	}

	vocab := vocabulary.New(store, logger)
	if err := vocab.LoadFromFile(ctx, cfg.SymptomsPath); err != nil {
		return nil, err
	}

	clf, artifact, err := classifier.Load(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	logger.Info("classifier loaded",
		slog.String("path", cfg.ModelPath),
		slog.String("type", artifact.Type),
		slog.Any("classes", artifact.Classes),
	)

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.HashScheme == "" {
		authCfg = auth.DefaultConfig()
	}

	app, err := newWithDependencies(store, clock.New(), random.New(), vocab, clf, authCfg, cfg.SessionConfig, collector, logger)
	if err != nil {
		return nil, err
	}

	if len(artifact.Features) > 0 {
		if err := app.PredictionService.VerifyFeatures(artifact.Features); err != nil {
			return nil, err
		}
	}
	return app, nil
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		sqliteCfg := sqlitestorage.DefaultConfig()
		if cfg.SQLiteConfig != nil {
			sqliteCfg = *cfg.SQLiteConfig
		}
		return sqlitestorage.New(ctx, sqliteCfg)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	vocab *vocabulary.Service,
	clf classifier.Classifier,
	authCfg auth.Config,
	sessionCfg session.Config,
	collector *metrics.Collector,
	logger *slog.Logger,
) (*App, error) {
	authService, err := auth.New(store, clk, authCfg, logger)
	if err != nil {
		return nil, err
	}

	predictionService, err := prediction.New(vocab, clf, collector, logger)
	if err != nil {
		return nil, err
	}

	historyService := history.New(store, clk, logger)
	sessionController := session.NewController(store, authService, predictionService, historyService,
		clk, rnd, collector, logger, sessionCfg)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Metrics:           collector,
		VocabularyService: vocab,
		Classifier:        clf,
		AuthService:       authService,
		HistoryService:    historyService,
		PredictionService: predictionService,
		SessionController: sessionController,
	}, nil
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
