package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
)

const maxThumbnailBytes = 5 << 20

// ThumbnailHandler proxies cover images so hotlink-protected hosts see a
// browser user agent instead of the dashboard's origin. Only thumbnails
// stored on a tracked series are fetched.
type ThumbnailHandler struct {
	store     readinglist.Store
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

func NewThumbnailHandler(store readinglist.Store, userAgent string, logger *slog.Logger) *ThumbnailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThumbnailHandler{
		store:     store,
		client:    &http.Client{Timeout: 15 * time.Second},
		userAgent: userAgent,
		logger:    logger,
	}
}

func (h *ThumbnailHandler) Get(c *fiber.Ctx) error {
	target := strings.TrimSpace(c.Query("url"))
	if target == "" || !strings.Contains(target, "http") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "valid image url is required"})
	}

	if !h.tracked(c, target) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "thumbnail unavailable"})
	}

	req, err := http.NewRequestWithContext(c.UserContext(), http.MethodGet, target, nil)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "valid image url is required"})
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	res, err := h.client.Do(req)
	if err != nil {
		h.logger.Debug("thumbnail fetch failed", "url", target, "error", err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "thumbnail unavailable"})
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		h.logger.Debug("thumbnail fetch returned error status", "url", target, "status", res.StatusCode)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "thumbnail unavailable"})
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxThumbnailBytes))
	if err != nil {
		h.logger.Debug("thumbnail read failed", "url", target, "error", err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "thumbnail unavailable"})
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(body)
}

func (h *ThumbnailHandler) tracked(c *fiber.Ctx, target string) bool {
	if h.store == nil {
		return false
	}
	for _, record := range h.store.Load(c.UserContext()) {
		if record.Thumbnail == target {
			return true
		}
	}
	return false
}
