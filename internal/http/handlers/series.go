package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/b23bb1023/Manhwa-agent/internal/dashboard"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
)

type SeriesHandler struct {
	controller *dashboard.Controller
}

func NewSeriesHandler(controller *dashboard.Controller) *SeriesHandler {
	return &SeriesHandler{controller: controller}
}

func (h *SeriesHandler) List(c *fiber.Ctx) error {
	cards := h.controller.Refresh(c.UserContext())
	return c.JSON(fiber.Map{"items": cards, "count": len(cards)})
}

func (h *SeriesHandler) MarkRead(c *fiber.Ctx) error {
	found, err := h.controller.MarkAsRead(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to update reading list"})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "series not found"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *SeriesHandler) Open(c *fiber.Ctx) error {
	err := h.controller.Open(c.UserContext(), c.Params("id"))
	if errors.Is(err, readinglist.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "series not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "failed to open series"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
