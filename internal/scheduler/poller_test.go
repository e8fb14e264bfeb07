package scheduler

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/b23bb1023/Manhwa-agent/internal/notifications"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
)

type fakeScraper struct {
	mu      sync.Mutex
	results map[string]models.ScrapeResult
	calls   []string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) models.ScrapeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if result, ok := f.results[url]; ok {
		return result
	}
	return models.Failure("unexpected url")
}

type fakeNotifier struct {
	messages []notifications.Message
}

func (f *fakeNotifier) Notify(_ context.Context, message notifications.Message) error {
	f.messages = append(f.messages, message)
	return nil
}

func newStore(t *testing.T, records []models.SeriesRecord) readinglist.Store {
	t.Helper()
	store := readinglist.NewFileStore(filepath.Join(t.TempDir(), "reading_list.json"), nil)
	require.NoError(t, store.Save(context.Background(), records))
	return store
}

func TestPollerRunOnceNotifiesOnNewChapter(t *testing.T) {
	store := newStore(t, []models.SeriesRecord{
		{ID: "a", Title: "A", URL: "https://a.example/s", LatestAvailable: 10, LastRead: 10},
		{ID: "b", Title: "B", URL: "https://b.example/s", LatestAvailable: 4, LastRead: 4, Thumbnail: "https://b/old.jpg"},
		{ID: "c", Title: "No URL"},
		{ID: "", URL: "https://ghost.example/s"},
	})
	scraper := &fakeScraper{results: map[string]models.ScrapeResult{
		"https://a.example/s": models.Success(11, ""),
		"https://b.example/s": models.Success(4, ""),
	}}
	notifier := &fakeNotifier{}

	var progress []Progress
	poller := NewPoller(store, scraper, notifier, PollerConfig{Interval: time.Minute}, nil)
	poller.OnProgress = func(p Progress) { progress = append(progress, p) }

	summary, err := poller.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunSummary{Checked: 2, Updated: 1, Failed: 0}, summary)
	assert.Equal(t, []string{"https://a.example/s", "https://b.example/s"}, scraper.calls)
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "A", notifier.messages[0].Title)
	require.Len(t, progress, 2)
	assert.Equal(t, 2, progress[1].Total)

	records := store.Load(context.Background())
	require.Len(t, records, 4)
	assert.Equal(t, 11, records[0].LatestAvailable)
	assert.Equal(t, "https://b/old.jpg", records[1].Thumbnail)
}

func TestPollerRunOnceNeverMovesBackwards(t *testing.T) {
	store := newStore(t, []models.SeriesRecord{
		{ID: "a", URL: "https://a.example/s", LatestAvailable: 50, LastRead: 20},
	})
	scraper := &fakeScraper{results: map[string]models.ScrapeResult{
		"https://a.example/s": models.Success(0, ""),
	}}
	notifier := &fakeNotifier{}

	summary, err := NewPoller(store, scraper, notifier, PollerConfig{}, nil).RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Updated)
	assert.Empty(t, notifier.messages)
	assert.Equal(t, 50, store.Load(context.Background())[0].LatestAvailable)
}

func TestPollerRunOnceCountsFailures(t *testing.T) {
	store := newStore(t, []models.SeriesRecord{
		{ID: "a", URL: "https://a.example/s", LatestAvailable: 3},
	})
	scraper := &fakeScraper{results: map[string]models.ScrapeResult{
		"https://a.example/s": models.Failure("Timeout"),
	}}

	summary, err := NewPoller(store, scraper, nil, PollerConfig{}, nil).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Checked: 1, Failed: 1}, summary)
}

func TestPollerRunOnceStopsOnCancelledContext(t *testing.T) {
	store := newStore(t, []models.SeriesRecord{
		{ID: "a", URL: "https://same.example/1"},
		{ID: "b", URL: "https://same.example/2"},
	})
	scraper := &fakeScraper{results: map[string]models.ScrapeResult{
		"https://same.example/1": models.Success(1, ""),
		"https://same.example/2": models.Success(2, ""),
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	poller := NewPoller(store, scraper, nil, PollerConfig{HostInterval: time.Hour}, nil)
	summary, err := poller.RunOnce(ctx)
	assert.Error(t, err)
	assert.Equal(t, 1, summary.Checked)
}

func TestPollerStartStopsWithContext(t *testing.T) {
	store := newStore(t, nil)
	poller := NewPoller(store, &fakeScraper{}, nil, PollerConfig{Interval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	poller.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		poller.StopWait(2 * time.Second)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("poller did not stop")
	}
	_, open := <-poller.stopCh
	assert.False(t, open)
}
