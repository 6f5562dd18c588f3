// Package app wires configuration, storage, services, and the HTTP server
// into a running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rowanledger/taxdesk-backend/internal/adapter/memory"
	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres"
	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/intakelink"
	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/intakeresponse"
	pgmessage "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/message"
	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/pagesection"
	pgstaff "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/staff"
	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/stafftoken"
	pgtimeline "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/timeline"
	pgworkspace "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/workspace"
	"github.com/rowanledger/taxdesk-backend/internal/auth"
	"github.com/rowanledger/taxdesk-backend/internal/config"
	"github.com/rowanledger/taxdesk-backend/internal/obs"
	"github.com/rowanledger/taxdesk-backend/internal/service/content"
	"github.com/rowanledger/taxdesk-backend/internal/service/intake"
	"github.com/rowanledger/taxdesk-backend/internal/service/message"
	"github.com/rowanledger/taxdesk-backend/internal/service/staffauth"
	"github.com/rowanledger/taxdesk-backend/internal/service/workspace"
	"github.com/rowanledger/taxdesk-backend/internal/transport/middleware"
	"github.com/rowanledger/taxdesk-backend/internal/transport/rest"
)

// noopPinger reports the in-memory store as always healthy.
type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

// Run is the application entry point. It loads configuration, initializes
// the logger and metrics, connects the configured store, builds the service
// graph, and serves HTTP until the process receives SIGINT or SIGTERM.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := NewLogger(cfg.Log)
	obs.Init()

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("driver", cfg.Database.Driver),
		slog.String("log_level", cfg.Log.Level),
	)

	var (
		authSvc      *staffauth.Service
		intakeSvc    *intake.Service
		workspaceSvc *workspace.Service
		messageSvc   *message.Service
		contentSvc   *content.Service
		health       *rest.HealthHandler
	)

	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	switch cfg.Database.Driver {
	case "memory":
		store := memory.NewStore()
		authSvc = staffauth.NewService(logger, store.Staff(), store.StaffTokens(), jwt, cfg.Auth)
		intakeSvc = intake.NewService(logger, store.IntakeLinks(), store.Workspaces(), store.IntakeResponses(), store.Timeline(), cfg.Intake)
		workspaceSvc = workspace.NewService(logger, store.Workspaces(), store.Timeline(), store.IntakeResponses())
		messageSvc = message.NewService(logger, store.Messages(), store.Workspaces(), store.Timeline())
		contentSvc = content.NewService(logger, store.PageSections())
		health = rest.NewHealthHandler(noopPinger{}, BuildVersion())

	default:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		authSvc = staffauth.NewService(logger, pgstaff.New(pool), stafftoken.New(pool), jwt, cfg.Auth)
		intakeSvc = intake.NewService(logger, intakelink.New(pool), pgworkspace.New(pool), intakeresponse.New(pool), pgtimeline.New(pool), cfg.Intake)
		workspaceSvc = workspace.NewService(logger, pgworkspace.New(pool), pgtimeline.New(pool), intakeresponse.New(pool))
		messageSvc = message.NewService(logger, pgmessage.New(pool), pgworkspace.New(pool), pgtimeline.New(pool))
		contentSvc = content.NewService(logger, pagesection.New(pool))
		health = rest.NewHealthHandler(pool, BuildVersion())
	}

	limiter := middleware.NewRateLimiter(5 * time.Minute)
	defer limiter.Stop()

	handler := rest.NewRouter(rest.RouterDeps{
		Logger:    logger,
		Config:    cfg,
		Validator: authSvc,
		Limiter:   limiter,

		Health:    health,
		Auth:      rest.NewAuthHandler(authSvc, logger),
		Intake:    rest.NewIntakeHandler(intakeSvc, logger),
		Workspace: rest.NewWorkspaceHandler(workspaceSvc, logger),
		Message:   rest.NewMessageHandler(messageSvc, logger),
		Content:   rest.NewContentHandler(contentSvc, logger),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}
