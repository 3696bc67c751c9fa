package main

import (
	"log/slog"
	"os"

	"github.com/drivelane-dev/drivelane/db"
	"github.com/drivelane-dev/drivelane/internal/auth"
	"github.com/drivelane-dev/drivelane/internal/config"
	"github.com/drivelane-dev/drivelane/internal/handlers"
	"github.com/drivelane-dev/drivelane/internal/middleware"
	"github.com/drivelane-dev/drivelane/internal/router"
	"github.com/drivelane-dev/drivelane/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()

	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	conn, err := db.Connect(cfg.DatabaseDSN)

	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.Migrate(conn); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	users := store.NewUserStore(conn)
	applications := store.NewApplicationStore(conn)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	r := router.NewRouter(router.Deps{
		Auth:           handlers.NewAuthHandler(users, tokens, hasher, logger),
		Users:          handlers.NewUserHandler(users, hasher, logger),
		Applications:   handlers.NewApplicationHandler(applications, logger),
		RequireAuth:    middleware.RequireAuth(tokens, users),
		AllowedOrigins: cfg.Origins(),
	})

	logger.Info("starting server", "port", cfg.Port)

	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
