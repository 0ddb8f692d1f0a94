package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/echoclass/classboard/internal/observability"
)

// Observability records Prometheus metrics and structured latency logging
// for the dashboard endpoints.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		if !strings.HasPrefix(c.Path(), "/api/") {
			return err
		}

		route := c.Path()
		if c.Route() != nil && c.Route().Path != "" {
			route = c.Route().Path
		}
		method := c.Method()
		status := c.Response().StatusCode()

		observability.ViewRequests().WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
		observability.ViewLatency().WithLabelValues(method, route).Observe(duration.Seconds())

		requestLogger := logger.With().
			Str("correlation_id", GetCorrelationID(c)).
			Str("route", route).
			Str("method", method).
			Int("status", status).
			Dur("latency", duration).
			Logger()

		switch {
		case status >= fiber.StatusInternalServerError:
			requestLogger.Error().Msg("dashboard request failed")
		case status >= fiber.StatusBadRequest:
			requestLogger.Warn().Msg("dashboard request completed with client error")
		default:
			requestLogger.Debug().Msg("dashboard request completed")
		}

		return err
	}
}
