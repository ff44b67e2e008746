package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"interview-prep/internal/config"
	"interview-prep/internal/database"
	"interview-prep/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "roll back one migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer func() { _ = logger.Sync() }()

	client, err := database.Connect(context.Background(), cfg.Mongo)
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if !*down {
		if err := database.RunMigrations(client, cfg.Mongo.Database); err != nil {
			l.Fatal("Failed to run migrations", zap.Error(err))
		}
		return
	}

	m, err := database.NewMigrator(client, cfg.Mongo.Database)
	if err != nil {
		l.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		l.Fatal("Failed to roll back migration", zap.Error(err))
	}
	l.Info("Rolled back one migration")
}
