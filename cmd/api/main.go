package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
	"go-chi-calculator/internal/session"
	"go-chi-calculator/internal/solver"
)

func main() {

	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	// Logger
	err = observability.InitLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing
	traceShutdown, err := observability.InitTracing(ctx, cfg.ServiceName, cfg.Telemetry.OTLPEnabled)
	if err != nil {
		panic(err)
	}
	defer traceShutdown(ctx)

	// Metrics
	metricShutdown, err := initMetrics(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer metricShutdown(ctx)

	// Logs
	if cfg.Telemetry.LogsEnabled {
		logShutdown, err := observability.InitLogging(ctx, cfg.ServiceName)
		if err != nil {
			panic(err)
		}
		defer logShutdown(ctx)
	}

	// Sessions
	sessions := session.NewManager(session.Options{
		Solver:       newSolver(cfg),
		SolveTimeout: cfg.AI.Timeout,
		IdleTTL:      cfg.Session.IdleTTL,
		Logger:       observability.Logger,
	})
	defer sessions.Close()

	// Router
	router := server.NewRouter(sessions)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Bool("ai_enabled", sessions.SolverEnabled()),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(srv, sessions)
}

// newSolver returns nil when no API key is configured, which disables the
// solve endpoint.
func newSolver(cfg config.Config) solver.Solver {
	s, err := solver.FromConfig(cfg.AI, observability.Logger)
	if errors.Is(err, solver.ErrNotConfigured) {
		observability.Logger.Warn("AI solver disabled", zap.Error(err))
		return nil
	}
	if err != nil {
		panic(err)
	}
	return s
}

func waitForShutdown(srv *http.Server, sessions *session.Manager) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	if err := shutdown(srv, sessions, shutdownTimeout); err != nil {
		observability.Logger.Error("shutdown failed", zap.Error(err))
	}
}

const shutdownTimeout = 5 * time.Second

// shutdown closes every session first so requests waiting on an AI answer
// resolve as failures, then drains the HTTP server within timeout.
func shutdown(srv *http.Server, sessions *session.Manager, timeout time.Duration) error {
	sessions.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return srv.Shutdown(ctx)
}
