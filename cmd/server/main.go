// Matchbook API and web server
//
// Usage:
//
//	server                          Start the HTTP server
//	server -config matchbook.hcl    Load settings from an HCL file
//	server -migrate                 Run database migrations and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matchbook/matchbook/internal/api"
	"github.com/matchbook/matchbook/internal/auth"
	"github.com/matchbook/matchbook/internal/config"
	"github.com/matchbook/matchbook/internal/db"
	"github.com/matchbook/matchbook/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to an HCL config file")
	migrateOnly := flag.Bool("migrate", false, "Run migrations and exit")
	secureCookies := flag.Bool("secure-cookies", false, "Mark the session cookie Secure (serve over HTTPS)")
	flag.Parse()

	cfg, err := config.Load(*configPath, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *migrateOnly, *secureCookies); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger, migrateOnly, secureCookies bool) error {
	ctx := context.Background()

	// Connect to database
	store, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer store.Close()

	// Run migrations
	applied, err := store.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("migrations complete",
		zap.String("driver", cfg.DatabaseDriver),
		zap.Strings("applied", applied),
	)

	if migrateOnly {
		logger.Info("migration-only mode, exiting")
		return nil
	}

	apiServer, err := api.NewServer(store, auth.New(cfg.JWTSecret, cfg.TokenTTL), metrics.New(), logger, api.Options{
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		SecureCookies:  secureCookies,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer apiServer.Close()

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      apiServer.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		logger.Info("matchbook server starting", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-done:
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newLogger builds a production JSON logger, or a console logger in
// development mode, at the given level.
func newLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
