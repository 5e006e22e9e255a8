package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/Ixollozi/Lux-wood/internal/cart"
	"github.com/Ixollozi/Lux-wood/internal/janitor"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	days := flag.Int("days", janitor.DefaultRetentionDays, "delete carts untouched for this many days")
	flag.Parse()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// No marker: the operator command is never throttled.
	j := janitor.New(cart.NewPostgresRepository(db), nil, janitor.DefaultInterval, *days, logger)
	deleted, err := j.Sweep(ctx, *days)
	if err != nil {
		logger.Error("cart sweep failed", "error", err)
		os.Exit(1)
	}

	logger.Info("cart sweep complete", "deleted", deleted, "retention_days", *days)
}
