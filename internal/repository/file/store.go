package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"savewise/internal/domain/prediction"
	"savewise/pkg/errors"
)

// Name identifies the local fallback backend
const Name = "file"

// Compile-time check
var _ prediction.Store = (*Store)(nil)

// document is the on-disk layout shared with earlier clients of the file
type document struct {
	Predictions []prediction.Record `json:"predictions"`
}

// Store keeps the most recent fallback record in one JSON document.
// Every Create replaces the whole file, so it holds at most one record.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a file store at path. The file is created on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Name() string {
	return Name
}

// Path is the document location
func (s *Store) Path() string {
	return s.path
}

// Create overwrites the document with rec as its only entry. The write goes
// through a temp file and rename so readers never see a partial document.
func (s *Store) Create(ctx context.Context, rec *prediction.Record) (*prediction.Record, error) {
	if rec == nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, "file store: nil record")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := *rec
	stored.ID = ""

	data, err := json.MarshalIndent(document{Predictions: []prediction.Record{stored}}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "file store: marshal")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path, data); err != nil {
		return nil, errors.Wrapf(err, "file store: write %s", s.path)
	}
	return &stored, nil
}

// List returns the stored records newest first. A missing file is an empty
// history, not an error. Entries are kept in append order on disk.
func (s *Store) List(ctx context.Context) ([]prediction.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()

	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "file store: read %s", s.path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "file store: decode %s", s.path)
	}

	records := doc.Predictions
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
