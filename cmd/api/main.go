// Command api runs the HTTP server.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/rowanledger/taxdesk-backend/internal/app"
)

func main() {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
