package models_test

import (
	"encoding/json"
	"testing"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesRecordKeepsUnknownKeys(t *testing.T) {
	raw := `{"id":"abc","title":"Nano Machine","url":"https://example.com/series/nano","latest_available":30,"last_read":10,"source":"asura","tags":["action"]}`

	var record models.SeriesRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))

	assert.Equal(t, "abc", record.ID)
	assert.Equal(t, 30, record.LatestAvailable)
	assert.True(t, record.HasUpdate())
	require.Contains(t, record.Extra, "source")

	out, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "asura", decoded["source"])
	assert.Equal(t, []any{"action"}, decoded["tags"])
	assert.Equal(t, float64(10), decoded["last_read"])
}

func TestSeriesRecordDefaults(t *testing.T) {
	var record models.SeriesRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","latest_available":-4}`), &record))

	assert.Equal(t, 0, record.LatestAvailable)
	assert.Equal(t, 0, record.LastRead)
	assert.False(t, record.HasUpdate())
	assert.Equal(t, models.DefaultTitle, record.DisplayTitle())
	assert.Nil(t, record.Extra)
}

func TestScrapeResultEnvelope(t *testing.T) {
	failed := models.Failure("navigation failed")
	out, err := json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"error","latest_chapter":0,"thumbnail":"","message":"navigation failed"}`, string(out))

	ok := models.Success(12, "")
	out, err = json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","latest_chapter":12,"thumbnail":""}`, string(out))
	assert.True(t, ok.OK())
}

func TestSeriesRecordToleratesLooseNumbers(t *testing.T) {
	var record models.SeriesRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","latest_available":12.5,"last_read":"7"}`), &record))
	assert.Equal(t, 12, record.LatestAvailable)
	assert.Equal(t, 7, record.LastRead)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"b","latest_available":null,"last_read":""}`), &record))
	assert.Equal(t, 0, record.LatestAvailable)
	assert.Equal(t, 0, record.LastRead)

	assert.Error(t, json.Unmarshal([]byte(`{"id":"c","latest_available":"soon"}`), &record))
	assert.Error(t, json.Unmarshal([]byte(`["not","an","object"]`), &record))
}
