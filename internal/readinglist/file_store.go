package readinglist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/b23bb1023/Manhwa-agent/internal/models"
)

// FileStore keeps the collection as a pretty-printed JSON array.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Close() error { return nil }

// ErrUnreadable means the file exists but is not a JSON array. Update
// refuses to build on it so the content is not overwritten.
var ErrUnreadable = errors.New("reading list is not a JSON array")

// opaqueItem is an array element that does not decode as a record. It is
// written back unchanged at its original index.
type opaqueItem struct {
	index int
	raw   json.RawMessage
}

type snapshot struct {
	records []models.SeriesRecord
	opaque  []opaqueItem
}

func (s *FileStore) Load(context.Context) []models.SeriesRecord {
	snap, err := s.read()
	if err != nil {
		if errors.Is(err, ErrUnreadable) {
			s.logger.Warn("reading list is not a JSON array, treating as empty", "path", s.path, "error", err)
		} else {
			s.logger.Warn("read reading list failed", "path", s.path, "error", err)
		}
		return []models.SeriesRecord{}
	}
	return snap.records
}

func (s *FileStore) Save(_ context.Context, records []models.SeriesRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// An explicit save replaces an unreadable file.
	snap, err := s.read()
	if err != nil {
		snap = snapshot{}
	}
	return s.write(records, snap.opaque)
}

func (s *FileStore) Update(_ context.Context, fn func([]models.SeriesRecord) ([]models.SeriesRecord, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.read()
	if err != nil {
		return fmt.Errorf("update reading list %s: %w", s.path, err)
	}

	next, err := fn(snap.records)
	if err != nil {
		return err
	}
	return s.write(next, snap.opaque)
}

// read returns an empty snapshot for a missing file.
func (s *FileStore) read() (snapshot, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snapshot{records: []models.SeriesRecord{}}, nil
		}
		return snapshot{}, err
	}

	snap, err := decodeRecords(content)
	if err != nil {
		return snapshot{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if len(snap.opaque) > 0 {
		s.logger.Warn("reading list has entries that are not series records, keeping them as is",
			"path", s.path, "count", len(snap.opaque))
	}
	return snap, nil
}

func (s *FileStore) write(records []models.SeriesRecord, opaque []opaqueItem) error {
	items, err := mergeItems(records, opaque)
	if err != nil {
		return fmt.Errorf("encode reading list: %w", err)
	}

	content, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode reading list: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create reading list dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp reading list: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp reading list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp reading list: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace reading list: %w", err)
	}
	return nil
}

// mergeItems puts opaque elements back at their original indices, or at
// the end once the records run out.
func mergeItems(records []models.SeriesRecord, opaque []opaqueItem) ([]json.RawMessage, error) {
	items := make([]json.RawMessage, 0, len(records)+len(opaque))
	next := 0
	for _, item := range opaque {
		for len(items) < item.index && next < len(records) {
			encoded, err := json.Marshal(records[next])
			if err != nil {
				return nil, err
			}
			items = append(items, encoded)
			next++
		}
		items = append(items, item.raw)
	}
	for ; next < len(records); next++ {
		encoded, err := json.Marshal(records[next])
		if err != nil {
			return nil, err
		}
		items = append(items, encoded)
	}
	return items, nil
}

// decodeRecords accepts only a top-level array. Elements that do not decode
// as records are returned as opaque items.
func decodeRecords(content []byte) (snapshot, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(content, &items); err != nil {
		return snapshot{}, err
	}
	if items == nil {
		return snapshot{}, errors.New("null document")
	}

	snap := snapshot{records: make([]models.SeriesRecord, 0, len(items))}
	for i, item := range items {
		var record models.SeriesRecord
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			snap.opaque = append(snap.opaque, opaqueItem{index: i, raw: item})
			continue
		}
		if err := json.Unmarshal(item, &record); err != nil {
			snap.opaque = append(snap.opaque, opaqueItem{index: i, raw: item})
			continue
		}
		snap.records = append(snap.records, record)
	}
	return snap, nil
}
