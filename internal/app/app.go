// Package app wires configuration into the services both binaries share.
package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/b23bb1023/Manhwa-agent/internal/browser"
	"github.com/b23bb1023/Manhwa-agent/internal/config"
	"github.com/b23bb1023/Manhwa-agent/internal/dashboard"
	"github.com/b23bb1023/Manhwa-agent/internal/extraction"
	"github.com/b23bb1023/Manhwa-agent/internal/notifications"
	"github.com/b23bb1023/Manhwa-agent/internal/pageloader"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
	"github.com/b23bb1023/Manhwa-agent/internal/scheduler"
	"github.com/b23bb1023/Manhwa-agent/internal/scrape"
)

type Services struct {
	Store      readinglist.Store
	Scraper    scrape.Scraper
	Controller *dashboard.Controller
	Poller     *scheduler.Poller
}

type Options struct {
	// RemoteScrape sends scrapes to cfg.ScrapeURL when it is set.
	RemoteScrape bool
}

func New(cfg config.Config, logger *slog.Logger, opts Options) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := readinglist.Open(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open reading list: %w", err)
	}

	scraper, err := newScraper(cfg, logger, opts)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var pinger notifications.Notifier = notifications.NoopNotifier{}
	if strings.TrimSpace(cfg.RefreshWebhookURL) != "" {
		ping, err := notifications.NewPingNotifier(cfg.RefreshWebhookURL, cfg.RefreshPingTimeout)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("refresh ping: %w", err)
		}
		pinger = ping
	}

	controller := dashboard.NewController(dashboard.Options{
		Store:       store,
		Opener:      browser.NewLauncher(cfg.BrowserCommand, logger),
		Pinger:      pinger,
		PingTimeout: cfg.RefreshPingTimeout,
		Logger:      logger,
	})

	poller := scheduler.NewPoller(
		store,
		scraper,
		notifications.FromURL(cfg.NotifyWebhookURL),
		scheduler.PollerConfig{
			Interval:     time.Duration(cfg.PollingMinutes) * time.Minute,
			HostInterval: cfg.PollingHostInterval,
		},
		logger,
	)

	return &Services{
		Store:      store,
		Scraper:    scraper,
		Controller: controller,
		Poller:     poller,
	}, nil
}

func (s *Services) Close() error {
	return s.Store.Close()
}

func newScraper(cfg config.Config, logger *slog.Logger, opts Options) (scrape.Scraper, error) {
	if opts.RemoteScrape && strings.TrimSpace(cfg.ScrapeURL) != "" {
		logger.Debug("using remote scrape endpoint", "endpoint", cfg.ScrapeURL)
		return scrape.NewClient(cfg.ScrapeURL, cfg.PageLoadTimeout+15*time.Second, logger), nil
	}

	profiles, err := extraction.LoadProfiles(cfg.ExtractionProfilesPath)
	if err != nil {
		logger.Warn("extraction profiles loaded with warnings", "error", err)
	}

	loader, err := pageloader.New(pageloader.Options{
		Kind:             cfg.PageLoader,
		UserAgent:        cfg.UserAgent,
		CloudflareBypass: cfg.CloudflareBypass,
	})
	if err != nil {
		return nil, err
	}

	return scrape.NewService(loader, extraction.NewEngine(profiles, logger), cfg.PageLoadTimeout, logger), nil
}
