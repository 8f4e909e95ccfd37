package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/tradepost/messaging/api"
	"github.com/tradepost/messaging/api/validator"
	"github.com/tradepost/messaging/memory"
	"github.com/tradepost/messaging/postgres"
	"github.com/tradepost/messaging/redis"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using process environment")
	}

	ctx := context.Background()

	var (
		db  api.DB
		dir api.Directory
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := postgres.Connect(ctx, dsn)
		if err != nil {
			logger.Error("Could not connect to Postgres", "error", err.Error())
			os.Exit(1)
		}
		db, dir = pg, pg
	} else {
		logger.Info("DATABASE_URL not set, using in-memory store")
		store := memory.NewStore()
		db, dir = store, store
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cached, err := redis.Connect(ctx, addr, dir)
		if err != nil {
			logger.Error("Could not connect to Redis", "error", err.Error())
			os.Exit(1)
		}
		dir = cached
	}

	a := &api.API{
		Logger:    logger,
		DB:        db,
		Directory: dir,
		Val:       validator.New(),
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	logger.Info("Server started", "addr", addr)
	if err := http.ListenAndServe(addr, a); err != nil {
		logger.Error("Server stopped", "error", err.Error())
		os.Exit(1)
	}
}
