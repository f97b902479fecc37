package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mcoot/symptomcheck/internal/api"
	"github.com/mcoot/symptomcheck/internal/config"
	"github.com/mcoot/symptomcheck/internal/factory"
	"github.com/mcoot/symptomcheck/internal/metrics"
	"github.com/mcoot/symptomcheck/internal/model"
	"github.com/mcoot/symptomcheck/internal/services/auth"
	"github.com/mcoot/symptomcheck/internal/services/session"
	redisstorage "github.com/mcoot/symptomcheck/internal/storage/redis"
	sqlitestorage "github.com/mcoot/symptomcheck/internal/storage/sqlite"
	"github.com/mcoot/symptomcheck/internal/web"
)

const sessionCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector := metrics.New()

	app, err := factory.New(ctx, factoryConfig(cfg, logger, collector))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	logger.Info("application ready",
		slog.String("storage", cfg.Storage),
		slog.Int("symptoms", app.VocabularyService.Size()),
		slog.Any("classes", app.Classifier.Classes()),
	)

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findStaticDir()
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		Metrics:           app.Metrics,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		Metrics:           app.Metrics,
		StaticDir:         staticDir,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/metrics", app.Metrics.Handler())
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	go cleanSessions(ctx, app.SessionController, sessionCleanupInterval, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			cancel()
			return
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}

func factoryConfig(cfg config.Config, logger *slog.Logger, collector *metrics.Collector) factory.Config {
	authCfg := auth.DefaultConfig()
	authCfg.HashScheme = model.HashScheme(cfg.PasswordHash)

	sessionCfg := session.DefaultConfig()
	sessionCfg.SessionDuration = cfg.SessionDuration

	fc := factory.Config{
		SymptomsPath:  cfg.SymptomsPath,
		ModelPath:     cfg.ModelPath,
		AuthConfig:    authCfg,
		SessionConfig: sessionCfg,
		Logger:        logger,
		Metrics:       collector,
		StorageType:   cfg.Storage,
	}

	switch cfg.Storage {
	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		// Keep session keys around at least as long as the sessions themselves
		if redisCfg.SessionTTL < cfg.SessionDuration {
			redisCfg.SessionTTL = cfg.SessionDuration
		}
		fc.RedisConfig = &redisCfg
	case config.StorageSQLite:
		sqliteCfg := sqlitestorage.DefaultConfig()
		sqliteCfg.Path = cfg.SQLitePath
		fc.SQLiteConfig = &sqliteCfg
	}

	return fc
}

// cleanSessions sweeps expired sessions every interval until ctx is done.
// The controller logs what it removed.
func cleanSessions(ctx context.Context, controller *session.Controller, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := controller.CleanExpiredSessions(ctx); err != nil {
				logger.Warn("session cleanup failed", slog.String("error", err.Error()))
			}
		}
	}
}

// findStaticDir looks for the static files directory
func findStaticDir() string {
	candidates := []string{
		"internal/web/static",
		"./internal/web/static",
		filepath.Join(os.Getenv("PWD"), "internal/web/static"),
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return "internal/web/static"
}
