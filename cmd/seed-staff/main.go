// Command seed-staff creates a staff user. There is no open registration
// endpoint, so the first admin account is bootstrapped with this tool.
//
// Flags:
//
//	--email     staff email (required)
//	--name      display name (required)
//	--password  login password (required)
//	--role      preparer or admin (default: preparer)
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/rowanledger/taxdesk-backend/internal/adapter/postgres"
	pgstaff "github.com/rowanledger/taxdesk-backend/internal/adapter/postgres/staff"
	"github.com/rowanledger/taxdesk-backend/internal/app"
	"github.com/rowanledger/taxdesk-backend/internal/auth"
	"github.com/rowanledger/taxdesk-backend/internal/config"
	"github.com/rowanledger/taxdesk-backend/internal/domain"
)

func main() {
	emailFlag := flag.String("email", "", "staff email")
	nameFlag := flag.String("name", "", "display name")
	passwordFlag := flag.String("password", "", "login password")
	roleFlag := flag.String("role", "preparer", "preparer or admin")
	flag.Parse()

	_ = godotenv.Load()

	if *emailFlag == "" || *nameFlag == "" || *passwordFlag == "" {
		log.Fatal("--email, --name, and --password are required")
	}

	role := domain.StaffRole(*roleFlag)
	if !role.IsValid() {
		log.Fatalf("invalid role %q (expected preparer or admin)", *roleFlag)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := auth.HashPassword(*passwordFlag)
	if err != nil {
		logger.Error("hash password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	now := time.Now().UTC()
	staff, err := pgstaff.New(pool).Create(ctx, &domain.StaffUser{
		ID:           uuid.New(),
		Email:        *emailFlag,
		Name:         *nameFlag,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		logger.Error("create staff user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("staff user created",
		slog.String("id", staff.ID.String()),
		slog.String("email", staff.Email),
		slog.String("role", staff.Role.String()),
	)
}
