package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/cardops/emboss-services/internal/embosssvc/codec"
	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

// MasterStore owns the persisted master table. The snapshot on disk is the
// store; in-memory slices are transient copies rebuilt per request. All
// mutation goes through Update, which holds the writer mutex across the
// whole read-merge-write sequence so two ingestions cannot race the file.
type MasterStore struct {
	path string
	mu   sync.Mutex
}

func NewMasterStore(path string) *MasterStore {
	return &MasterStore{path: path}
}

// Path returns the snapshot location, used to derive export formats.
func (s *MasterStore) Path() string { return s.path }

// Load reads the current snapshot. A missing snapshot is an empty table.
func (s *MasterStore) Load(ctx context.Context) ([]models.CardRecord, error) {
	return s.load()
}

func (s *MasterStore) load() ([]models.CardRecord, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "read snapshot", Err: err}
	}
	return codec.DecodeTable(raw, s.path)
}

// Update loads the table, applies merge and persists the result as a single
// atomic replace. On any failure the previous snapshot stays untouched.
func (s *MasterStore) Update(ctx context.Context, merge func(existing []models.CardRecord) []models.CardRecord) ([]models.CardRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return nil, err
	}
	merged := merge(existing)
	if err := s.save(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// save writes to a temp file in the destination directory and renames it over
// the old snapshot, so readers never see a partial write.
func (s *MasterStore) save(records []models.CardRecord) error {
	raw, err := codec.EncodeTable(records, s.path)
	if err != nil {
		return &models.PersistenceError{Op: "encode snapshot", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &models.PersistenceError{Op: "create data dir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".master-*"+filepath.Ext(s.path))
	if err != nil {
		return &models.PersistenceError{Op: "create temp snapshot", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.PersistenceError{Op: "write snapshot", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &models.PersistenceError{Op: "close snapshot", Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &models.PersistenceError{Op: "chmod snapshot", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &models.PersistenceError{Op: "replace snapshot", Err: err}
	}
	return nil
}
