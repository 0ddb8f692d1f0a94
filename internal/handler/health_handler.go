package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/echoclass/classboard/internal/config"
	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	PushChannel string    `json:"push_channel"`
}

// ConnStateReporter exposes the push channel's current state.
type ConnStateReporter interface {
	State() dto.ConnState
}

// HealthCheck returns a handler that reports application health plus the
// push-channel connection state the dashboard surfaces.
func HealthCheck(cfg config.Config, conn ConnStateReporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state := "Uninstantiated"
		if conn != nil {
			state = conn.State().String()
		}

		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			PushChannel: state,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
