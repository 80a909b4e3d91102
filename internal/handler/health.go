package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	startedAt       time.Time
	convertAPIReady bool
}

func NewHealthHandler(startedAt time.Time, convertAPIReady bool) *HealthHandler {
	return &HealthHandler{
		startedAt:       startedAt,
		convertAPIReady: convertAPIReady,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Seconds(),
		"services": fiber.Map{
			"convertApi": h.convertAPIReady,
		},
	})
}
