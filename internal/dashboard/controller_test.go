package dashboard

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/b23bb1023/Manhwa-agent/internal/notifications"
	"github.com/b23bb1023/Manhwa-agent/internal/readinglist"
	"github.com/b23bb1023/Manhwa-agent/internal/reconcile"
)

type fakeLauncher struct {
	opened []string
	err    error
}

func (f *fakeLauncher) Open(url string) error {
	f.opened = append(f.opened, url)
	return f.err
}

type fakeRenderer struct {
	mu     sync.Mutex
	frames [][]reconcile.Card
}

func (f *fakeRenderer) Render(cards []reconcile.Card) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, cards)
}

type blockingPinger struct {
	release chan struct{}
	calls   chan struct{}
}

func (b *blockingPinger) Notify(ctx context.Context, _ notifications.Message) error {
	b.calls <- struct{}{}
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newController(t *testing.T, records []models.SeriesRecord) (*Controller, readinglist.Store, *fakeLauncher, *fakeRenderer) {
	t.Helper()
	store := readinglist.NewFileStore(filepath.Join(t.TempDir(), "reading_list.json"), nil)
	require.NoError(t, store.Save(context.Background(), records))

	launcher := &fakeLauncher{}
	renderer := &fakeRenderer{}
	controller := NewController(Options{Store: store, Opener: launcher})
	controller.SetRenderer(renderer)
	return controller, store, launcher, renderer
}

var sample = []models.SeriesRecord{
	{ID: "a", Title: "A", URL: "https://a.example/s", LatestAvailable: 10, LastRead: 10},
	{ID: "b", Title: "B", URL: "https://b.example/s", LatestAvailable: 12, LastRead: 10},
	{ID: "", Title: "hidden"},
}

func TestRefreshRendersReconciledCards(t *testing.T) {
	controller, _, _, renderer := newController(t, sample)

	cards := controller.Refresh(context.Background())
	require.Len(t, cards, 2)
	assert.Equal(t, "B", cards[0].Title)
	require.Len(t, renderer.frames, 1)
	assert.Equal(t, cards, renderer.frames[0])
}

func TestOpenWithUpdateMarksReadAndRefreshes(t *testing.T) {
	controller, store, launcher, renderer := newController(t, sample)
	ctx := context.Background()

	require.NoError(t, controller.Open(ctx, "b"))

	assert.Equal(t, []string{"https://b.example/s"}, launcher.opened)
	records := store.Load(ctx)
	assert.Equal(t, 12, records[1].LastRead)
	assert.Equal(t, reconcile.AcknowledgedMessage, records[1].HypeMessage)
	assert.Len(t, records, 3, "records without id are kept in the store")
	require.Len(t, renderer.frames, 1)
	assert.False(t, renderer.frames[0][0].HasUpdate)
}

func TestOpenCaughtUpOnlyLaunches(t *testing.T) {
	controller, store, launcher, renderer := newController(t, sample)
	ctx := context.Background()

	require.NoError(t, controller.Open(ctx, "a"))
	assert.Equal(t, []string{"https://a.example/s"}, launcher.opened)
	assert.Empty(t, renderer.frames)
	assert.Empty(t, store.Load(ctx)[0].HypeMessage)
}

func TestOpenLaunchFailureStillMarksRead(t *testing.T) {
	controller, store, launcher, _ := newController(t, sample)
	launcher.err = errors.New("no browser")

	require.NoError(t, controller.Open(context.Background(), "b"))
	assert.Equal(t, 12, store.Load(context.Background())[1].LastRead)
}

func TestOpenUnknownID(t *testing.T) {
	controller, _, launcher, _ := newController(t, sample)

	err := controller.Open(context.Background(), "zzz")
	assert.ErrorIs(t, err, readinglist.ErrNotFound)
	assert.Empty(t, launcher.opened)
}

func TestMarkAsRead(t *testing.T) {
	controller, store, _, renderer := newController(t, sample)
	ctx := context.Background()

	found, err := controller.MarkAsRead(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 12, store.Load(ctx)[1].LastRead)
	assert.Len(t, renderer.frames, 1)

	found, err = controller.MarkAsRead(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, renderer.frames, 1)
}

func TestStartupDoesNotBlockAndIsBounded(t *testing.T) {
	pinger := &blockingPinger{release: make(chan struct{}), calls: make(chan struct{}, 1)}
	store := readinglist.NewFileStore(filepath.Join(t.TempDir(), "list.json"), nil)
	controller := NewController(Options{Store: store, Pinger: pinger, PingTimeout: 50 * time.Millisecond})

	started := time.Now()
	done := controller.Startup(context.Background())
	assert.Less(t, time.Since(started), 40*time.Millisecond)

	<-pinger.calls
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ping was not bounded by its timeout")
	}
}
