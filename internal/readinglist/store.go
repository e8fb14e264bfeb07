// Package readinglist persists the ordered collection of tracked series.
//
// Writes always replace the whole collection. Load never fails: a missing
// or unreadable collection is treated as empty.
package readinglist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/b23bb1023/Manhwa-agent/internal/config"
	"github.com/b23bb1023/Manhwa-agent/internal/database"
	"github.com/b23bb1023/Manhwa-agent/internal/models"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

var ErrNotFound = errors.New("series not found")

type Store interface {
	Load(ctx context.Context) []models.SeriesRecord
	Save(ctx context.Context, records []models.SeriesRecord) error
	// Update runs a read-modify-write cycle that no other Update or Save
	// on the same store can interleave with.
	Update(ctx context.Context, fn func([]models.SeriesRecord) ([]models.SeriesRecord, error)) error
	// Path is the file whose changes signal a new collection.
	Path() string
	Close() error
}

func Open(cfg config.Config, logger *slog.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ReadingListBackend)) {
	case "", BackendJSON:
		return NewFileStore(cfg.ReadingListPath, logger), nil
	case BackendSQLite:
		db, err := database.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := database.ApplyMigrations(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate reading list: %w", err)
		}
		return NewSQLiteStore(db, cfg.SQLitePath, logger), nil
	default:
		return nil, fmt.Errorf("unknown READING_LIST_BACKEND %q, expected %s|%s", cfg.ReadingListBackend, BackendJSON, BackendSQLite)
	}
}

func Find(records []models.SeriesRecord, id string) (models.SeriesRecord, error) {
	if id == "" {
		return models.SeriesRecord{}, ErrNotFound
	}
	for _, record := range records {
		if record.ID == id {
			return record, nil
		}
	}
	return models.SeriesRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func NewRecordID() string {
	return uuid.NewString()
}
