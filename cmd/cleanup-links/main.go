// Command cleanup-links expires lapsed intake links and removes terminal
// links older than the configured retention period. It is intended to be
// invoked by an external cron job, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres"
	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/intakelink"
	"github.com/rowanledger/taxdesk-backend/internal/app"
	"github.com/rowanledger/taxdesk-backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	linkRepo := intakelink.New(pool)
	now := time.Now()

	expired, err := linkRepo.ExpireLapsed(ctx, now)
	if err != nil {
		logger.Error("expire lapsed links failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cutoff := now.Add(-cfg.Intake.CleanupRetention)

	deleted, err := linkRepo.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		logger.Error("delete terminal links failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff),
		)
		os.Exit(1)
	}

	logger.Info("link cleanup completed",
		slog.Int("expired", expired),
		slog.Int("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)
}
