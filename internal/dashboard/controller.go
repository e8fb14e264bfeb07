// Package dashboard drives the reading-list view: it reloads and reconciles
// the store, opens series in the browser and records what has been read.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/b23bb1023/Manhwa-agent/internal/browser"
	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/b23bb1023/Manhwa-agent/internal/notifications"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
	"github.com/b23bb1023/Manhwa-agent/internal/reconcile"
)

const defaultPingTimeout = time.Second

type Renderer interface {
	Render(cards []reconcile.Card)
}

type Controller struct {
	store       readinglist.Store
	opener      browser.Opener
	pinger      notifications.Notifier
	pingTimeout time.Duration
	logger      *slog.Logger

	mu       sync.RWMutex
	renderer Renderer
}

type Options struct {
	Store       readinglist.Store
	Opener      browser.Opener
	Pinger      notifications.Notifier
	PingTimeout time.Duration
	Logger      *slog.Logger
}

func NewController(opts Options) *Controller {
	if opts.Pinger == nil {
		opts.Pinger = notifications.NoopNotifier{}
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = defaultPingTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		store:       opts.Store,
		opener:      opts.Opener,
		pinger:      opts.Pinger,
		pingTimeout: opts.PingTimeout,
		logger:      opts.Logger,
	}
}

func (c *Controller) SetRenderer(renderer Renderer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderer = renderer
}

func (c *Controller) Refresh(ctx context.Context) []reconcile.Card {
	cards := reconcile.Reconcile(c.store.Load(ctx))

	c.mu.RLock()
	renderer := c.renderer
	c.mu.RUnlock()
	if renderer != nil {
		renderer.Render(cards)
	}
	return cards
}

// Open launches the series page. A series with unread chapters is marked
// read up to its latest chapter. Launch failures are logged, not returned.
func (c *Controller) Open(ctx context.Context, id string) error {
	record, err := readinglist.Find(c.store.Load(ctx), id)
	if err != nil {
		return err
	}

	if c.opener != nil {
		if err := c.opener.Open(record.URL); err != nil {
			c.logger.Warn("open series in browser failed", "id", id, "url", record.URL, "error", err)
		}
	}

	if !record.HasUpdate() {
		return nil
	}
	if _, err := c.markAsRead(ctx, id, record.LatestAvailable); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// MarkAsRead moves last_read to the series' latest available chapter.
// An unknown id reports found=false and changes nothing.
func (c *Controller) MarkAsRead(ctx context.Context, id string) (bool, error) {
	found, err := c.markAsRead(ctx, id, -1)
	if err != nil || !found {
		return found, err
	}
	c.Refresh(ctx)
	return true, nil
}

var errUnknownSeries = errors.New("unknown series")

// latest < 0 means "whatever the stored record says".
func (c *Controller) markAsRead(ctx context.Context, id string, latest int) (bool, error) {
	err := c.store.Update(ctx, func(records []models.SeriesRecord) ([]models.SeriesRecord, error) {
		target := latest
		if target < 0 {
			record, err := readinglist.Find(records, id)
			if err != nil {
				return nil, errUnknownSeries
			}
			target = record.LatestAvailable
		}

		updated, found := reconcile.MarkAsRead(records, id, target)
		if !found {
			return nil, errUnknownSeries
		}
		return updated, nil
	})
	if errors.Is(err, errUnknownSeries) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Startup fires the refresh ping in the background and returns at once.
// The returned channel closes when the ping has finished.
func (c *Controller) Startup(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		pingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.pingTimeout)
		defer cancel()

		if err := c.pinger.Notify(pingCtx, notifications.RefreshMessage()); err != nil {
			c.logger.Info("refresh ping failed", "error", err)
			return
		}
		c.logger.Debug("refresh ping sent")
	}()
	return done
}
