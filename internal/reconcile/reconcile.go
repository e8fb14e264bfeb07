// Package reconcile compares scraped chapter counts against the reader's
// position and derives how each series is shown. Everything here is pure.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
)

const AcknowledgedMessage = "Caught up!"

// Color classes are palette names; renderers map them to real colors.
const (
	ColorAttention       = "orange-400"
	ColorNeutral         = "green-400"
	ColorButtonAttention = "blue-700"
	ColorButtonNeutral   = "grey-800"
	ColorBorderAttention = "blue-900"
	ColorBorderNeutral   = "grey-900"
)

type PresentationState struct {
	StatusText       string `json:"status_text"`
	StatusColorClass string `json:"status_color_class"`
	ButtonLabel      string `json:"button_label"`
	ButtonColorClass string `json:"button_color_class"`
	BorderColorClass string `json:"border_color_class"`
}

type Card struct {
	Record       models.SeriesRecord `json:"record"`
	Title        string              `json:"title"`
	HasUpdate    bool                `json:"has_update"`
	NewChapters  int                 `json:"new_chapters"`
	Presentation PresentationState   `json:"presentation"`
}

func Present(record models.SeriesRecord) PresentationState {
	if !record.HasUpdate() {
		return PresentationState{
			StatusText:       "Caught up",
			StatusColorClass: ColorNeutral,
			ButtonLabel:      "Open",
			ButtonColorClass: ColorButtonNeutral,
			BorderColorClass: ColorBorderNeutral,
		}
	}

	return PresentationState{
		StatusText:       fmt.Sprintf("🔥 %d New Chapters", record.LatestAvailable-record.LastRead),
		StatusColorClass: ColorAttention,
		ButtonLabel:      fmt.Sprintf("Read Ch. %d", record.LatestAvailable),
		ButtonColorClass: ColorButtonAttention,
		BorderColorClass: ColorBorderAttention,
	}
}

// Reconcile drops records without an id and orders the rest: series with
// unread chapters first, then by title. Ties keep their input order.
func Reconcile(records []models.SeriesRecord) []Card {
	cards := make([]Card, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			continue
		}
		newChapters := 0
		if record.HasUpdate() {
			newChapters = record.LatestAvailable - record.LastRead
		}
		cards = append(cards, Card{
			Record:       record,
			Title:        record.DisplayTitle(),
			HasUpdate:    record.HasUpdate(),
			NewChapters:  newChapters,
			Presentation: Present(record),
		})
	}

	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].HasUpdate != cards[j].HasUpdate {
			return cards[i].HasUpdate
		}
		return cards[i].Record.Title < cards[j].Record.Title
	})

	return cards
}

// MarkAsRead returns a copy of records with every series carrying id moved
// to latest. found is false when no record has that id.
func MarkAsRead(records []models.SeriesRecord, id string, latest int) ([]models.SeriesRecord, bool) {
	updated := make([]models.SeriesRecord, len(records))
	copy(updated, records)

	if id == "" {
		return updated, false
	}
	if latest < 0 {
		latest = 0
	}

	found := false
	for i := range updated {
		if updated[i].ID != id {
			continue
		}
		updated[i].LastRead = latest
		updated[i].HypeMessage = AcknowledgedMessage
		found = true
	}
	return updated, found
}

// ApplyScrape folds a scrape result into a record. The latest chapter only
// moves forward and an empty thumbnail never replaces a known one; error
// results change nothing. changed reports whether the record differs.
func ApplyScrape(record models.SeriesRecord, result models.ScrapeResult) (models.SeriesRecord, bool) {
	if !result.OK() {
		return record, false
	}

	changed := false
	if result.LatestChapter > record.LatestAvailable {
		record.LatestAvailable = result.LatestChapter
		changed = true
	}
	if result.Thumbnail != "" && result.Thumbnail != record.Thumbnail {
		record.Thumbnail = result.Thumbnail
		changed = true
	}
	return record, changed
}
