package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/b23bb1023/Manhwa-agent/internal/notifications"
	"github.com/b23bb1023/Manhwa-agent/internal/ratelimit"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
	"github.com/b23bb1023/Manhwa-agent/internal/reconcile"
	"github.com/b23bb1023/Manhwa-agent/internal/scrape"
)

type Poller struct {
	store    readinglist.Store
	scraper  scrape.Scraper
	notifier notifications.Notifier
	limiter  *ratelimit.KeyedLimiter
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}

	OnProgress func(Progress)
}

type PollerConfig struct {
	Interval     time.Duration
	HostInterval time.Duration
}

type Progress struct {
	Done   int
	Total  int
	Record models.SeriesRecord
	Result models.ScrapeResult
}

type RunSummary struct {
	Checked int
	Updated int
	Failed  int
}

func NewPoller(store readinglist.Store, scraper scrape.Scraper, notifier notifications.Notifier, cfg PollerConfig, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{
		store:    store,
		scraper:  scraper,
		notifier: notifier,
		limiter:  ratelimit.New(cfg.HostInterval),
		interval: cfg.Interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("poller started", "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		p.runLogged(ctx, "poller initial run failed")
		for {
			select {
			case <-ctx.Done():
				p.logger.Info("poller stopped")
				close(p.stopCh)
				return
			case <-ticker.C:
				p.runLogged(ctx, "poller cycle failed")
			}
		}
	}()
}

func (p *Poller) runLogged(ctx context.Context, failure string) {
	summary, err := p.RunOnce(ctx)
	if err != nil {
		p.logger.Warn(failure, "error", err)
		return
	}
	p.logger.Info("poller cycle finished", "checked", summary.Checked, "updated", summary.Updated, "failed", summary.Failed)
}

func (p *Poller) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-p.stopCh:
	case <-time.After(timeout):
	}
}

// RunOnce scrapes every series that has an id and a url and merges the
// results into the store. Per-series failures are logged and counted.
func (p *Poller) RunOnce(ctx context.Context) (RunSummary, error) {
	targets := make([]models.SeriesRecord, 0)
	for _, record := range p.store.Load(ctx) {
		if record.ID != "" && record.URL != "" {
			targets = append(targets, record)
		}
	}

	var summary RunSummary
	for i, record := range targets {
		if err := p.limiter.Wait(ctx, ratelimit.HostKey(record.URL)); err != nil {
			return summary, fmt.Errorf("wait for %s: %w", ratelimit.HostKey(record.URL), err)
		}

		result := p.scraper.Scrape(ctx, record.URL)
		summary.Checked++
		p.progress(Progress{Done: i + 1, Total: len(targets), Record: record, Result: result})

		if !result.OK() {
			summary.Failed++
			p.logger.Warn("poll scrape failed", "id", record.ID, "url", record.URL, "error", result.Message)
			continue
		}

		updated, changed, err := p.merge(ctx, record.ID, result)
		if err != nil {
			summary.Failed++
			p.logger.Warn("poll update state failed", "id", record.ID, "error", err)
			continue
		}
		if !changed {
			continue
		}
		summary.Updated++

		if isNewChapter(record.LatestAvailable, updated) {
			if err := p.notifier.Notify(ctx, notifications.NewChaptersMessage(updated, record.LatestAvailable)); err != nil {
				p.logger.Warn("new chapter notification failed", "id", record.ID, "error", err)
			}
		}
	}

	return summary, nil
}

func (p *Poller) merge(ctx context.Context, id string, result models.ScrapeResult) (models.SeriesRecord, bool, error) {
	var (
		merged  models.SeriesRecord
		changed bool
	)
	err := p.store.Update(ctx, func(records []models.SeriesRecord) ([]models.SeriesRecord, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			merged, changed = reconcile.ApplyScrape(records[i], result)
			records[i] = merged
			return records, nil
		}
		// removed from the list while we were scraping
		return records, nil
	})
	return merged, changed, err
}

func (p *Poller) progress(progress Progress) {
	if p.OnProgress != nil {
		p.OnProgress(progress)
	}
}

func isNewChapter(previous int, current models.SeriesRecord) bool {
	return current.LatestAvailable > previous && current.HasUpdate()
}
