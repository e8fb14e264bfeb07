package readinglist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
)

// SQLiteStore keeps the collection in the series table; position holds
// the collection order.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewSQLiteStore(db *sql.DB, path string, logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteStore{db: db, path: path, logger: logger}
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Load(ctx context.Context) []models.SeriesRecord {
	records, err := s.query(ctx)
	if err != nil {
		s.logger.Warn("load reading list failed, treating as empty", "path", s.path, "error", err)
		return []models.SeriesRecord{}
	}
	return records
}

func (s *SQLiteStore) query(ctx context.Context) ([]models.SeriesRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, thumbnail, latest_available, last_read, hype_message, extra
		FROM series
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	records := make([]models.SeriesRecord, 0)
	for rows.Next() {
		var record models.SeriesRecord
		var extra string
		if err := rows.Scan(
			&record.ID,
			&record.Title,
			&record.URL,
			&record.Thumbnail,
			&record.LatestAvailable,
			&record.LastRead,
			&record.HypeMessage,
			&extra,
		); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		if extra != "" && extra != "{}" {
			if err := json.Unmarshal([]byte(extra), &record.Extra); err != nil {
				s.logger.Warn("ignoring malformed extra fields", "id", record.ID, "error", err)
				record.Extra = nil
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Save(ctx context.Context, records []models.SeriesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(ctx, records)
}

func (s *SQLiteStore) Update(ctx context.Context, fn func([]models.SeriesRecord) ([]models.SeriesRecord, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.query(ctx)
	if err != nil {
		s.logger.Warn("load reading list failed, treating as empty", "path", s.path, "error", err)
		current = []models.SeriesRecord{}
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.replace(ctx, next)
}

func (s *SQLiteStore) replace(ctx context.Context, records []models.SeriesRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM series`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear series: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO series (position, id, title, url, thumbnail, latest_available, last_read, hype_message, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare series insert: %w", err)
	}
	defer stmt.Close()

	for position, record := range records {
		extra := "{}"
		if len(record.Extra) > 0 {
			encoded, err := json.Marshal(record.Extra)
			if err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("encode extra fields for %s: %w", record.ID, err)
			}
			extra = string(encoded)
		}

		if _, err := stmt.ExecContext(ctx,
			position,
			record.ID,
			record.Title,
			record.URL,
			record.Thumbnail,
			max(record.LatestAvailable, 0),
			max(record.LastRead, 0),
			record.HypeMessage,
			extra,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert series %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}
