package middleware

import (
	"fmt"
	"strconv"
	"time"

	"interview-prep/internal/logger"
	"interview-prep/internal/metrics"
	"interview-prep/internal/util"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	RequestIDHeader    = "X-Request-ID"
	ResponseTimeHeader = "X-Response-Time"
	requestIDKey       = "requestID"
)

// RequestID reuses a well-formed incoming X-Request-ID or issues a new ULID.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !util.IsULID(id) {
			id = util.NewULID()
		}
		c.Locals(requestIDKey, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// RequestTracker renders handler errors, then records the finished request in
// the latency log and Prometheus and writes one log line per request.
func RequestTracker(requests *metrics.RequestLog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		requests.Record(metrics.RequestSample{
			Timestamp: start,
			Latency:   latency,
			IsError:   status >= fiber.StatusBadRequest,
			Path:      c.Path(),
		})
		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status/100)+"xx").Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(latency.Seconds())
		c.Set(ResponseTimeHeader, fmt.Sprintf("%.2fms", float64(latency.Microseconds())/1000))

		logger.Get().Info("HTTP Request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", latency),
			zap.String("ip", c.IP()),
			zap.String("request_id", RequestIDFrom(c)),
		)
		return nil
	}
}
