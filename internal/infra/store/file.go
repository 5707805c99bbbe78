package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"realscan/internal/domain/model"
	"realscan/internal/domain/ports/repository"
)

var _ repository.CodeStore = (*FileStore)(nil)

// FileStore persists the whole code collection as one JSON document on disk,
// the same pretty-printed {"codes":[...]} layout the admin can inspect by hand.
type FileStore struct {
	path string
	log  *zerolog.Logger
}

// NewFileStore creates the parent directory if needed and initializes the
// document to an empty collection on first run.
func NewFileStore(path string, logger *zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fsLog := logger.With().Str("component", "FileStore").Logger()
	s := &FileStore{path: path, log: &fsLog}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.Save(context.Background(), model.EmptyCollection()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load reads the full collection. Absent, unreadable or corrupt state loads as
// an empty collection with a warning; read problems never surface to callers.
func (s *FileStore) Load(ctx context.Context) (model.CodeCollection, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("code file unreadable, treating as empty")
		return model.EmptyCollection(), nil
	}
	var col model.CodeCollection
	if err := json.Unmarshal(raw, &col); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("code file corrupt, treating as empty")
		return model.EmptyCollection(), nil
	}
	if col.Codes == nil {
		col.Codes = []model.CodeRecord{}
	}
	return col, nil
}

// Save overwrites the document with the given collection in full.
func (s *FileStore) Save(ctx context.Context, col model.CodeCollection) error {
	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("encode codes: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
