package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/logger"
	"codeberg.org/snonux/paperpush/internal/paper"
)

// DefaultFile is the cache file name used when none is configured.
const DefaultFile = "push_papers.json"

// Index maps a normalized title to its position in the loaded records.
type Index map[string]int

// Store is the on-disk paper cache. It assumes a single writer.
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a store backed by the file at path.
func NewStore(path string, log *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.OrNop(log),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads every cached record. A missing file is created empty; a file
// that does not parse is treated as empty.
func (s *Store) Load() ([]paper.Paper, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
		s.logger.Info("created empty paper cache", zap.String("path", s.path))
		return []paper.Paper{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var records []paper.Paper
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("cache file is not valid JSON, starting empty",
			zap.String("path", s.path), zap.Error(err))
		return []paper.Paper{}, nil
	}
	if records == nil {
		records = []paper.Paper{}
	}
	return records, nil
}

// MergeAndPersist appends novel onto existing and rewrites the whole file.
// Titles in novel are assumed absent from existing; no dedup happens here.
func (s *Store) MergeAndPersist(existing, novel []paper.Paper) ([]paper.Paper, error) {
	merged := make([]paper.Paper, 0, len(existing)+len(novel))
	merged = append(merged, existing...)
	merged = append(merged, novel...)

	if err := s.write(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// write replaces the cache file atomically via a temp file in the same
// directory.
func (s *Store) write(records []paper.Paper) error {
	if records == nil {
		records = []paper.Paper{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set cache file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// NormalizeTitle returns the cache key for a title.
func NormalizeTitle(title string) string {
	return strings.ToLower(title)
}

// BuildIndex indexes records by normalized title. When a title occurs twice
// the later position wins.
func BuildIndex(records []paper.Paper) Index {
	index := make(Index, len(records))
	for i, record := range records {
		index[NormalizeTitle(record.Title)] = i
	}
	return index
}

// Partition splits incoming papers into those already cached and novel ones.
// A cached hit yields the stored record (with its translation), not the
// freshly fetched one. Both results keep the relative order of incoming.
func Partition(incoming, existing []paper.Paper, index Index) (cached, novel []paper.Paper) {
	cached = []paper.Paper{}
	novel = []paper.Paper{}
	for _, p := range incoming {
		if pos, ok := index[NormalizeTitle(p.Title)]; ok {
			cached = append(cached, existing[pos])
			continue
		}
		novel = append(novel, p)
	}
	return cached, novel
}
