package app

import (
	"time"

	"interview-prep/internal/config"
	"interview-prep/internal/domain"
	"interview-prep/internal/handler"
	"interview-prep/internal/metrics"
	"interview-prep/internal/middleware"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	authRateLimit  = 30
	authRateWindow = time.Minute
)

// NewServer builds the fiber app with the shared middleware chain and mounts
// the API, swagger UI and Prometheus endpoint.
func NewServer(cfg config.ServerConfig, requests *metrics.RequestLog, h *handler.Handlers, auth middleware.TokenAuthenticator) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BodyLimit:    cfg.BodyLimit,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestTracker(requests))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Session-ID,X-Request-ID",
		ExposeHeaders: middleware.RequestIDHeader + "," + middleware.ResponseTimeHeader,
		MaxAge:        300,
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Interview Prep API is running"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Use("/auth", limiter.New(limiter.Config{
		Max:        authRateLimit,
		Expiration: authRateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return domain.NewTooManyRequestsError("Too many requests, please try again later")
		},
	}))
	handler.RegisterRoutes(api, h, auth)

	return app
}
