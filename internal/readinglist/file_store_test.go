package readinglist

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
)

func TestFileStoreLoadMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	missing := NewFileStore(filepath.Join(dir, "missing.json"), nil)
	assert.Empty(t, missing.Load(ctx))

	for name, content := range map[string]string{
		"corrupt.json": `[{"id":`,
		"object.json":  `{"id":"a"}`,
		"null.json":    `null`,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		records := NewFileStore(path, nil).Load(ctx)
		assert.NotNil(t, records, name)
		assert.Empty(t, records, name)
	}
}

func TestFileStoreRoundTripKeepsOrderAndUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "reading_list.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id": "b", "title": "Beta", "latest_available": 3, "source": "n8n"},
  {"id": "a", "title": "Alpha", "last_read": 2}
]`), 0o644))

	store := NewFileStore(path, nil)
	ctx := context.Background()

	records := store.Load(ctx)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)

	require.NoError(t, store.Save(ctx, records))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\n  {\n    \"")

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(content, &raw))
	require.Len(t, raw, 2)
	assert.Equal(t, "n8n", raw[0]["source"])
	assert.Equal(t, "a", raw[1]["id"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreSaveEmptyWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	store := NewFileStore(path, nil)

	require.NoError(t, store.Save(context.Background(), nil))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(content))
}

func TestFileStoreUpdateSerializesWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Update(ctx, func(records []models.SeriesRecord) ([]models.SeriesRecord, error) {
				return append(records, models.SeriesRecord{ID: NewRecordID()}), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, store.Load(ctx), 20)
}

func TestFileStoreUpdateErrorLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	store := NewFileStore(path, nil)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, []models.SeriesRecord{{ID: "a"}}))

	boom := errors.New("boom")
	err := store.Update(ctx, func([]models.SeriesRecord) ([]models.SeriesRecord, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Len(t, store.Load(ctx), 1)
}

func TestFileStoreUpdateKeepsRecordsItCannotDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id": "a", "title": "Alpha", "latest_available": 12.5, "last_read": "3"},
  "stray note",
  {"id": "odd", "latest_available": "soon"},
  {"id": "b", "title": "Beta", "latest_available": 9, "last_read": 7}
]`), 0o644))

	store := NewFileStore(path, nil)
	ctx := context.Background()

	records := store.Load(ctx)
	require.Len(t, records, 2)
	assert.Equal(t, 12, records[0].LatestAvailable)
	assert.Equal(t, 3, records[0].LastRead)

	err := store.Update(ctx, func(records []models.SeriesRecord) ([]models.SeriesRecord, error) {
		for i := range records {
			if records[i].ID == "b" {
				records[i].LastRead = records[i].LatestAvailable
			}
		}
		return records, nil
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []any
	require.NoError(t, json.Unmarshal(content, &raw))
	require.Len(t, raw, 4)
	assert.Equal(t, "a", raw[0].(map[string]any)["id"])
	assert.Equal(t, "stray note", raw[1])
	assert.Equal(t, map[string]any{"id": "odd", "latest_available": "soon"}, raw[2])
	assert.Equal(t, "b", raw[3].(map[string]any)["id"])
	assert.Equal(t, float64(9), raw[3].(map[string]any)["last_read"])
}

func TestFileStoreUpdateRefusesToOverwriteUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	original := []byte(`{"series": [{"id": "a"}]}`)
	require.NoError(t, os.WriteFile(path, original, 0o644))

	store := NewFileStore(path, nil)
	err := store.Update(context.Background(), func(records []models.SeriesRecord) ([]models.SeriesRecord, error) {
		return append(records, models.SeriesRecord{ID: "new"}), nil
	})
	require.ErrorIs(t, err, ErrUnreadable)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, content)
}

func TestFind(t *testing.T) {
	records := []models.SeriesRecord{{ID: "a", Title: "A"}}

	found, err := Find(records, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", found.Title)

	_, err = Find(records, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Find(records, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
