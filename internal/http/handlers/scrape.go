package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/b23bb1023/Manhwa-agent/internal/scrape"
)

type ScrapeHandler struct {
	scraper scrape.Scraper
}

func NewScrapeHandler(scraper scrape.Scraper) *ScrapeHandler {
	return &ScrapeHandler{scraper: scraper}
}

// Scrape answers 200 with the envelope for every scrape outcome; only a
// missing url parameter is a client error.
func (h *ScrapeHandler) Scrape(c *fiber.Ctx) error {
	target := strings.TrimSpace(c.Query("url"))
	if target == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "url query parameter is required"})
	}

	return c.JSON(h.scraper.Scrape(c.UserContext(), target))
}
