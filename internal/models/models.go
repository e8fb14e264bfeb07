package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	DefaultTitle = "Unknown Series"
)

type SeriesRecord struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	Thumbnail       string `json:"thumbnail"`
	LatestAvailable int    `json:"latest_available"`
	LastRead        int    `json:"last_read"`
	HypeMessage     string `json:"hype_message,omitempty"`

	// Extra keeps keys written by other tools so a load/save round trip
	// does not drop them.
	Extra map[string]json.RawMessage `json:"-"`
}

var knownRecordKeys = map[string]bool{
	"id":               true,
	"title":            true,
	"url":              true,
	"thumbnail":        true,
	"latest_available": true,
	"last_read":        true,
	"hype_message":     true,
}

type seriesRecordFields struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	Thumbnail       string `json:"thumbnail"`
	LatestAvailable int    `json:"latest_available"`
	LastRead        int    `json:"last_read"`
	HypeMessage     string `json:"hype_message,omitempty"`
}

// chapterNumber accepts what other writers of the file produce: integers,
// floats (truncated), numeric strings and null.
type chapterNumber int

func (n *chapterNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		raw = strings.TrimSpace(text)
		if raw == "" {
			*n = 0
			return nil
		}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("chapter number %s is not numeric", data)
	}
	value = math.Max(math.Min(value, math.MaxInt32), math.MinInt32)
	*n = chapterNumber(int(value))
	return nil
}

type seriesRecordInput struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	URL             string        `json:"url"`
	Thumbnail       string        `json:"thumbnail"`
	LatestAvailable chapterNumber `json:"latest_available"`
	LastRead        chapterNumber `json:"last_read"`
	HypeMessage     string        `json:"hype_message"`
}

func (r *SeriesRecord) UnmarshalJSON(data []byte) error {
	var fields seriesRecordInput
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = SeriesRecord{
		ID:              fields.ID,
		Title:           fields.Title,
		URL:             fields.URL,
		Thumbnail:       fields.Thumbnail,
		LatestAvailable: nonNegative(int(fields.LatestAvailable)),
		LastRead:        nonNegative(int(fields.LastRead)),
		HypeMessage:     fields.HypeMessage,
	}

	for key, value := range raw {
		if knownRecordKeys[key] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = value
	}

	return nil
}

func (r SeriesRecord) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(seriesRecordFields{
		ID:              r.ID,
		Title:           r.Title,
		URL:             r.URL,
		Thumbnail:       r.Thumbnail,
		LatestAvailable: r.LatestAvailable,
		LastRead:        r.LastRead,
		HypeMessage:     r.HypeMessage,
	})
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(r.Extra)+len(knownRecordKeys))
	for key, value := range r.Extra {
		merged[key] = value
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, fmt.Errorf("remarshal series record: %w", err)
	}
	for key, value := range knownMap {
		merged[key] = value
	}

	return json.Marshal(merged)
}

func (r SeriesRecord) HasUpdate() bool {
	return r.LatestAvailable > r.LastRead
}

func (r SeriesRecord) DisplayTitle() string {
	if r.Title == "" {
		return DefaultTitle
	}
	return r.Title
}

type ScrapeResult struct {
	Status        string `json:"status"`
	LatestChapter int    `json:"latest_chapter"`
	Thumbnail     string `json:"thumbnail"`
	Message       string `json:"message,omitempty"`
}

func Success(latestChapter int, thumbnail string) ScrapeResult {
	return ScrapeResult{
		Status:        StatusSuccess,
		LatestChapter: nonNegative(latestChapter),
		Thumbnail:     thumbnail,
	}
}

func Failure(message string) ScrapeResult {
	return ScrapeResult{
		Status:        StatusError,
		LatestChapter: 0,
		Thumbnail:     "",
		Message:       message,
	}
}

func (r ScrapeResult) OK() bool {
	return r.Status == StatusSuccess
}

func nonNegative(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
