package handlers_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSeriesReturnsReconciledCards(t *testing.T) {
	env := setupTestApp(t, sampleRecords)

	res, body := doRequest(t, env.app, httptest.NewRequest(fiber.MethodGet, "/v1/series", nil))
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	payload := decodeJSON(t, body)
	assert.Equal(t, float64(2), payload["count"])
	items := payload["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "Beta", first["title"])
	assert.Equal(t, true, first["has_update"])
	presentation := first["presentation"].(map[string]any)
	assert.Equal(t, "Read Ch. 12", presentation["button_label"])
}

func TestMarkReadUpdatesStore(t *testing.T) {
	env := setupTestApp(t, sampleRecords)

	res, _ := doRequest(t, env.app, httptest.NewRequest(fiber.MethodPost, "/v1/series/b/read", nil))
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	records := env.store.Load(context.Background())
	assert.Equal(t, 12, records[1].LastRead)
	assert.Equal(t, "Caught up!", records[1].HypeMessage)
}

func TestMarkReadUnknownSeries(t *testing.T) {
	env := setupTestApp(t, sampleRecords)

	res, body := doRequest(t, env.app, httptest.NewRequest(fiber.MethodPost, "/v1/series/nope/read", nil))
	require.Equal(t, fiber.StatusNotFound, res.StatusCode)
	assert.Equal(t, "series not found", decodeJSON(t, body)["message"])
}

func TestOpenSeriesLaunchesAndMarksRead(t *testing.T) {
	env := setupTestApp(t, sampleRecords)

	res, _ := doRequest(t, env.app, httptest.NewRequest(fiber.MethodPost, "/v1/series/b/open", nil))
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"https://b.example/s"}, env.launcher.opened)
	assert.Equal(t, 12, env.store.Load(context.Background())[1].LastRead)

	res, _ = doRequest(t, env.app, httptest.NewRequest(fiber.MethodPost, "/v1/series/zzz/open", nil))
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestDashboardPageRendersCards(t *testing.T) {
	env := setupTestApp(t, sampleRecords)

	res, body := doRequest(t, env.app, httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")

	html := string(body)
	assert.Contains(t, html, "🔥 2 New Chapters")
	assert.Contains(t, html, "Caught up")
	assert.Equal(t, 2, strings.Count(html, "Last Read: 10"))
	assert.Less(t, strings.Index(html, "Beta"), strings.Index(html, "Alpha"))
	assert.Contains(t, html, "/thumbnails?url=https%3a%2f%2fimg.example%2fa.jpg")
}

func TestDashboardPageEmpty(t *testing.T) {
	env := setupTestApp(t, nil)

	_, body := doRequest(t, env.app, httptest.NewRequest(fiber.MethodGet, "/dashboard", nil))
	assert.Contains(t, string(body), "No Data")
}

func TestDashboardOpenRedirects(t *testing.T) {
	env := setupTestApp(t, sampleRecords)

	res, _ := doRequest(t, env.app, httptest.NewRequest(fiber.MethodPost, "/dashboard/series/b/open", nil))
	require.Equal(t, fiber.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/dashboard", res.Header.Get("Location"))
	assert.Equal(t, []string{"https://b.example/s"}, env.launcher.opened)
}
