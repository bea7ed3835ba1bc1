package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	environment string
	now         func() time.Time
}

func NewHealthHandler(environment string, clock func() time.Time) *HealthHandler {
	if clock == nil {
		clock = time.Now
	}
	return &HealthHandler{environment: environment, now: clock}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:      "OK",
		Environment: h.environment,
		Timestamp:   h.now().UTC().Format(time.RFC3339),
	})
}
