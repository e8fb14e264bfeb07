// Package extraction turns a loaded chapter-listing page into a best-guess
// latest chapter number and cover thumbnail.
//
// Selector strategies run in a fixed order. Chapter strategies all
// contribute to one candidate pool; thumbnail strategies stop at the first
// acceptable image. A strategy that errors counts as matching nothing.
package extraction

import (
	"log/slog"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
)

type Strategies struct {
	Chapter   []string
	Thumbnail []string
}

func DefaultStrategies() Strategies {
	return Strategies{
		Chapter: []string{
			`h3.text-sm.text-white.font-medium`,
			`a[href*="/chapter/"] h3`,
			`a[href*="/chapter/"]`,
		},
		Thumbnail: []string{
			`img[alt*="cover"]`,
			`div.relative img`,
			`div.grid img`,
			`img`,
		},
	}
}

// Extract never fails: a phase that panics contributes its zero value.
func Extract(dom DOM, strategies Strategies) models.ScrapeResult {
	return models.Success(extractChapter(dom, strategies.Chapter, nil), extractThumbnail(dom, strategies.Thumbnail, nil))
}

type Engine struct {
	profiles *Registry
	logger   *slog.Logger
}

func NewEngine(profiles *Registry, logger *slog.Logger) *Engine {
	if profiles == nil {
		profiles = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{profiles: profiles, logger: logger}
}

func (e *Engine) Extract(pageURL string, dom DOM) models.ScrapeResult {
	strategies := e.profiles.StrategiesFor(pageURL)

	latest := extractChapter(dom, strategies.Chapter, e.logger)
	thumbnail := extractThumbnail(dom, strategies.Thumbnail, e.logger)
	if thumbnail != "" {
		e.logger.Debug("found thumbnail", "url", pageURL, "thumbnail", thumbnail)
	}

	return models.Success(latest, thumbnail)
}

func extractChapter(dom DOM, selectors []string, logger *slog.Logger) (latest int) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logRecovered(logger, "chapter", recovered)
			latest = 0
		}
	}()

	if dom == nil {
		return 0
	}
	return LatestChapter(collectChapterTexts(dom, selectors))
}

func extractThumbnail(dom DOM, selectors []string, logger *slog.Logger) (thumbnail string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logRecovered(logger, "thumbnail", recovered)
			thumbnail = ""
		}
	}()

	if dom == nil {
		return ""
	}
	return PickThumbnail(dom, selectors)
}

func logRecovered(logger *slog.Logger, phase string, recovered any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("extraction phase failed", "phase", phase, "error", recovered)
}
