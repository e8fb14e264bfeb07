package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
)

// Client asks a remote scrape endpoint instead of loading pages in-process.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Scrape(ctx context.Context, seriesURL string) models.ScrapeResult {
	endpoint, err := c.endpoint(seriesURL)
	if err != nil {
		return models.Failure(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.Failure(err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("remote scrape failed", "url", seriesURL, "error", err)
		return models.Failure(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.Failure(fmt.Sprintf("read scrape response: %v", err))
	}

	var result models.ScrapeResult
	if err := json.Unmarshal(body, &result); err != nil || result.Status == "" {
		if resp.StatusCode >= http.StatusBadRequest {
			return models.Failure(fmt.Sprintf("scrape endpoint returned %d", resp.StatusCode))
		}
		return models.Failure("malformed scrape response")
	}

	if result.OK() {
		return models.Success(result.LatestChapter, result.Thumbnail)
	}
	return models.Failure(result.Message)
}

func (c *Client) endpoint(seriesURL string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("scrape endpoint is not configured")
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid scrape endpoint: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/scrape") {
		base.Path = strings.TrimRight(base.Path, "/") + "/scrape"
	}
	query := base.Query()
	query.Set("url", seriesURL)
	base.RawQuery = query.Encode()
	return base.String(), nil
}
