package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jszwec/csvutil"

	"github.com/cardops/emboss-services/internal/embosssvc/models"
)

// UserStore persists the credential table as a csv snapshot with the same
// atomic-replace discipline as the master table. It is injected into the
// services that need it rather than held as package-level state.
type UserStore struct {
	path string
	mu   sync.Mutex
}

func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

// Load reads all users. A missing snapshot means no users yet.
func (s *UserStore) Load(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *UserStore) load() ([]models.User, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "read users", Err: err}
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := csvutil.Unmarshal(raw, &users); err != nil {
		return nil, &models.PersistenceError{Op: "decode users", Err: err}
	}
	return users, nil
}

// GetByUsername returns the user or nil when absent.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Upsert inserts or replaces a user by username.
func (s *UserStore) Upsert(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range users {
		if users[i].Username == user.Username {
			users[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, user)
	}
	return s.save(users)
}

// Remove deletes a user by username.
func (s *UserStore) Remove(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	kept := users[:0]
	for _, u := range users {
		if u.Username != username {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return fmt.Errorf("user %q not found", username)
	}
	return s.save(kept)
}

func (s *UserStore) save(users []models.User) error {
	raw, err := csvutil.Marshal(users)
	if err != nil {
		return &models.PersistenceError{Op: "encode users", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &models.PersistenceError{Op: "create data dir", Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".users-*.csv")
	if err != nil {
		return &models.PersistenceError{Op: "create temp users", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &models.PersistenceError{Op: "write users", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &models.PersistenceError{Op: "close users", Err: err}
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return &models.PersistenceError{Op: "chmod users", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &models.PersistenceError{Op: "replace users", Err: err}
	}
	return nil
}
