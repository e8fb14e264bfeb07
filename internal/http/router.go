package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/b23bb1023/Manhwa-agent/internal/config"
	"github.com/b23bb1023/Manhwa-agent/internal/dashboard"
	"github.com/b23bb1023/Manhwa-agent/internal/http/handlers"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
	"github.com/b23bb1023/Manhwa-agent/internal/scrape"
)

type Dependencies struct {
	Scraper    scrape.Scraper
	Store      readinglist.Store
	Controller *dashboard.Controller
	Logger     *slog.Logger
}

func NewServer(cfg config.Config, deps Dependencies) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())

	health := handlers.NewHealthHandler(deps.Store)
	scraper := handlers.NewScrapeHandler(deps.Scraper)
	series := handlers.NewSeriesHandler(deps.Controller)
	page := handlers.NewDashboardHandler(cfg.AppName, deps.Controller)
	thumbnails := handlers.NewThumbnailHandler(deps.Store, cfg.UserAgent, deps.Logger)

	app.Get("/", page.Page)
	app.Get("/dashboard", page.Page)
	app.Post("/dashboard/series/:id/open", page.OpenFromCard)
	app.Get("/thumbnails", thumbnails.Get)
	app.Get("/scrape", scraper.Scrape)
	app.Get("/health", health.Check)
	app.Get("/v1/health", health.Check)

	v1 := app.Group("/v1")
	v1.Get("/scrape", scraper.Scrape)
	v1.Get("/series", series.List)
	v1.Post("/series/:id/read", series.MarkRead)
	v1.Post("/series/:id/open", series.Open)

	return app
}
