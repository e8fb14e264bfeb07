package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/b23bb1023/Manhwa-agent/internal/config"
	"github.com/b23bb1023/Manhwa-agent/internal/dashboard"
	apihttp "github.com/b23bb1023/Manhwa-agent/internal/http"
	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
)

type fakeScraper struct {
	mu     sync.Mutex
	result models.ScrapeResult
	urls   []string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) models.ScrapeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return f.result
}

type fakeLauncher struct {
	mu     sync.Mutex
	opened []string
}

func (f *fakeLauncher) Open(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, url)
	return nil
}

type testApp struct {
	app      *fiber.App
	store    readinglist.Store
	scraper  *fakeScraper
	launcher *fakeLauncher
}

func setupTestApp(t *testing.T, records []models.SeriesRecord) testApp {
	t.Helper()

	store := readinglist.NewFileStore(filepath.Join(t.TempDir(), "reading_list.json"), nil)
	require.NoError(t, store.Save(context.Background(), records))

	scraper := &fakeScraper{result: models.Success(0, "")}
	launcher := &fakeLauncher{}
	controller := dashboard.NewController(dashboard.Options{Store: store, Opener: launcher})

	app := apihttp.NewServer(config.Config{AppName: "test-app", UserAgent: "test-agent"}, apihttp.Dependencies{
		Scraper:    scraper,
		Store:      store,
		Controller: controller,
	})
	t.Cleanup(func() { _ = app.Shutdown() })

	return testApp{app: app, store: store, scraper: scraper, launcher: launcher}
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	_ = res.Body.Close()
	return res, body
}

func decodeJSON(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}

var sampleRecords = []models.SeriesRecord{
	{ID: "a", Title: "Alpha", URL: "https://a.example/s", Thumbnail: "https://img.example/a.jpg", LatestAvailable: 10, LastRead: 10},
	{ID: "b", Title: "Beta", URL: "https://b.example/s", LatestAvailable: 12, LastRead: 10},
}
