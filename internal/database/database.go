package database

import (
	"context"
	"fmt"

	"interview-prep/internal/config"
	"interview-prep/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	CollUsers          = "users"
	CollSessions       = "sessions"
	CollQuestions      = "questions"
	CollQuizzes        = "quizzes"
	CollStudyMaterials = "study_materials"
	CollPageViews      = "page_views"
	CollEvents         = "events"
)

// Connect opens a MongoDB client and pings the primary.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetAppName("interview-prep")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Get().Info("Successfully connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}
