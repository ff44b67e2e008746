// Package app owns the process-wide state of the API: configuration, the
// request latency log, external clients and the wired handlers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"interview-prep/internal/adapter"
	"interview-prep/internal/adapter/analytics"
	"interview-prep/internal/adapter/llm"
	"interview-prep/internal/adapter/search"
	"interview-prep/internal/adapter/youtube"
	"interview-prep/internal/cache"
	"interview-prep/internal/config"
	"interview-prep/internal/database"
	"interview-prep/internal/domain"
	"interview-prep/internal/handler"
	"interview-prep/internal/logger"
	"interview-prep/internal/metrics"
	"interview-prep/internal/repository"
	"interview-prep/internal/service"
	"interview-prep/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// requestLogSize bounds the latency log used by the system status endpoints.
const requestLogSize = 1000

// App is constructed once at startup and shared by every request.
type App struct {
	Config    *config.Config
	StartedAt time.Time
	Requests  *metrics.RequestLog

	mongo     *mongo.Client
	redis     *redis.Client
	generator *llm.GeminiGenerator
	auth      service.AuthService
	handlers  *handler.Handlers
}

// New connects to MongoDB and Redis, applies pending migrations and wires
// repositories, services and handlers. Optional integrations (YouTube, GA4
// reporting and event forwarding) are left disabled when not configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	l := logger.Get()
	a := &App{
		Config:    cfg,
		StartedAt: time.Now().UTC(),
		Requests:  metrics.NewRequestLog(requestLogSize),
	}

	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	a.mongo = client
	if err := database.RunMigrations(client, cfg.Mongo.Database); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.redis = rdb
	l.Info("Connected to Redis", zap.String("address", cfg.Redis.Address))
	store := adapter.NewRedisCacheAdapter(rdb)

	db := client.Database(cfg.Mongo.Database)
	users := repository.NewMongoUserRepository(db)
	sessions := repository.NewMongoSessionRepository(db)
	questions := repository.NewMongoQuestionRepository(db)
	quizzes := repository.NewMongoQuizRepository(db)
	materials := repository.NewMongoStudyMaterialRepository(db)
	stats := repository.NewMongoStatsRepository(db)
	tracking := repository.NewMongoTrackingRepository(db)

	generator, err := llm.NewGeminiGenerator(cfg.Gemini.Model, cfg.Gemini.RequestTimeout, llm.GoogleAIFactory)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.generator = generator
	keys, err := service.NewKeyCipher(cfg.Encryption.Key)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	searcher := search.NewTavilyClient(cfg.Tavily.APIKey, cfg.Tavily.URL, httpClient)

	var videos domain.VideoMetadata
	if yt, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, store, cfg.YouTube.CacheTTL); err != nil {
		l.Warn("YouTube enrichment disabled", zap.Error(err))
	} else {
		videos = yt
	}

	var reporter domain.AnalyticsReporter
	if r, err := analytics.NewGA4Reporter(ctx, cfg.GA4); err != nil {
		if errors.Is(err, analytics.ErrNotConfigured) {
			l.Info("GA4 reporting not configured")
		} else {
			l.Warn("GA4 reporting disabled", zap.Error(err))
		}
	} else {
		reporter = r
	}

	var forwarder domain.EventForwarder
	if mp := analytics.NewMeasurementProtocol(cfg.GA4.MeasurementID, cfg.GA4.APISecret, "", nil); mp != nil {
		forwarder = mp
	}

	purger := service.NewPurger(users, sessions, questions, quizzes, materials)
	authService, err := service.NewAuthService(users, store, generator, keys, service.NewLogOTPSender(), purger, nil, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.auth = authService

	systemService := service.NewSystemService(stats, a.Requests, a.StartedAt)
	v := validation.NewValidator()

	a.handlers = &handler.Handlers{
		Auth: handler.NewAuthHandler(authService, v),
		AI:   handler.NewAIHandler(service.NewAIService(generator, authService), v),
		Session: handler.NewSessionHandler(
			service.NewSessionService(sessions, questions, purger),
			service.NewQuestionService(sessions, questions),
			service.NewExportService(sessions, questions),
			v,
		),
		Quiz: handler.NewQuizHandler(service.NewQuizService(quizzes, sessions, questions, generator, authService), v),
		StudyMaterial: handler.NewStudyMaterialHandler(
			service.NewStudyMaterialService(materials, questions, sessions, searcher, videos, generator, authService, cfg.StudyMaterial.FreshFor),
			v,
		),
		Admin: handler.NewAdminHandler(
			service.NewAdminService(users, sessions, questions, quizzes, materials, stats, generator, keys, purger, systemService),
			systemService,
			v,
		),
		Analytics: handler.NewAnalyticsHandler(
			service.NewAnalyticsService(reporter, store, cfg.GA4.CacheTTL),
			service.NewTrackingService(tracking, forwarder),
			authService,
			v,
		),
	}
	return a, nil
}

// Server returns the HTTP server for the wired handlers.
func (a *App) Server() *fiber.App {
	return NewServer(a.Config.Server, a.Requests, a.handlers, a.auth)
}

// Close releases the database and cache connections.
func (a *App) Close(ctx context.Context) {
	l := logger.Get()
	if a.generator != nil {
		a.generator.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			l.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			l.Warn("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}
}
