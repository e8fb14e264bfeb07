package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
)

type HealthHandler struct {
	store readinglist.Store
}

func NewHealthHandler(store readinglist.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"series": len(h.store.Load(c.UserContext())),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
