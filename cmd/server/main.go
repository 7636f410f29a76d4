// Package main initializes and starts the JobTracker API server,
// setting up configuration, logging, database connections, repositories,
// services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/JobTracker/internal/config"
	"github.com/atinyakov/JobTracker/internal/db"
	"github.com/atinyakov/JobTracker/internal/logger"
	"github.com/atinyakov/JobTracker/internal/password"
	"github.com/atinyakov/JobTracker/internal/repository"
	"github.com/atinyakov/JobTracker/internal/server/handler/http"
	"github.com/atinyakov/JobTracker/internal/service"
	"github.com/atinyakov/JobTracker/internal/token"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log
	defer func() { _ = zapLogger.Sync() }()

	if err := options.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, options *config.Options, zapLogger *zap.Logger) error {
	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("cannot init database: %w", err)
	}
	defer postgresDB.Close()

	// Initialize repositories for users and jobs.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	jobRepo := repository.NewPostgresJobRepository(postgresDB)

	tokens, err := token.NewManager(token.Config{
		Secret: []byte(options.JWTSecret),
		TTL:    options.TokenTTL,
		Issuer: options.JWTIssuer,
	})
	if err != nil {
		return err
	}

	// Initialize business-logic services.
	authService, err := service.NewAuthService(userRepo, password.NewHasher(options.BcryptCost), tokens)
	if err != nil {
		return err
	}
	jobService := service.NewJobService(jobRepo)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterConfig{
		Auth:          &http.AuthHandler{AuthService: authService, Log: zapLogger},
		Jobs:          &http.JobsHandler{JobService: jobService, Log: zapLogger},
		Health:        &http.HealthHandler{DB: postgresDB, Log: zapLogger},
		Authenticator: authService,
		CORSOrigins:   options.CORSOrigins,
		Logger:        zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSEnabled() {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Addr),
			zap.Bool("tls", options.TLSEnabled()),
		)
		var err error
		if options.TLSEnabled() {
			err = server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zapLogger.Info("shutting down", zap.Duration("timeout", options.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), options.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
