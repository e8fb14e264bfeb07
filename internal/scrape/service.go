// Package scrape wraps a page load and extraction pass into the
// status/latest_chapter/thumbnail envelope. Scrape never returns an error:
// every failure is reported inside the envelope.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/b23bb1023/Manhwa-agent/internal/extraction"
	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/b23bb1023/Manhwa-agent/internal/pageloader"
)

type Scraper interface {
	Scrape(ctx context.Context, url string) models.ScrapeResult
}

type Request struct {
	URL string `validate:"required,http_url"`
}

type Service struct {
	loader   pageloader.Loader
	engine   *extraction.Engine
	timeout  time.Duration
	logger   *slog.Logger
	validate *validator.Validate
}

func NewService(loader pageloader.Loader, engine *extraction.Engine, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = extraction.NewEngine(nil, logger)
	}
	if timeout <= 0 {
		timeout = pageloader.DefaultTimeout
	}
	return &Service{
		loader:   loader,
		engine:   engine,
		timeout:  timeout,
		logger:   logger,
		validate: validator.New(),
	}
}

func (s *Service) Scrape(ctx context.Context, url string) (result models.ScrapeResult) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("scrape panicked", "url", url, "error", recovered)
			result = models.Failure(fmt.Sprint(recovered))
		}
	}()

	if err := s.validate.Struct(Request{URL: url}); err != nil {
		return models.Failure(invalidURLMessage(url, err))
	}

	session, err := s.loader.Open(ctx)
	if err != nil {
		s.logger.Error("open page loader session failed", "url", url, "error", err)
		return models.Failure(err.Error())
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Warn("close page loader session failed", "url", url, "error", err)
		}
	}()

	page, err := session.Load(ctx, url, s.timeout)
	switch {
	case errors.Is(err, pageloader.ErrLoadTimeout):
		s.logger.Warn("page load timeout, attempting parse anyway", "url", url, "timeout", s.timeout)
	case err != nil:
		s.logger.Error("page load failed", "url", url, "error", err)
		return models.Failure(err.Error())
	}

	var dom extraction.DOM
	if page != nil && page.Document != nil {
		dom = extraction.FromDocument(page.Document)
	}

	result = s.engine.Extract(url, dom)
	s.logger.Info("scraped series page", "url", url, "latest_chapter", result.LatestChapter, "thumbnail", result.Thumbnail != "")
	return result
}

func invalidURLMessage(url string, err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		switch validationErrs[0].Tag() {
		case "required":
			return "url is required"
		case "http_url":
			return fmt.Sprintf("invalid url %q: must be an absolute http(s) URL", url)
		}
	}
	return fmt.Sprintf("invalid url %q: %v", url, err)
}
