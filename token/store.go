// Package token persists the access/refresh token pair for the API client.
package token

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/hatcher/taskpilot/pkg/csync"
)

// Store holds the current token pair. Pure key/value semantics: no validation
// of token contents happens here, and no other component persists tokens.
type Store interface {
	// Set replaces both tokens. An empty refresh token means "absent".
	Set(access, refresh string) error
	// Access returns the stored access token, or "" when absent.
	Access() string
	// Refresh returns the stored refresh token, or "" when absent.
	Refresh() string
	// Clear removes both tokens.
	Clear() error
}

type pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// MemoryStore is a non-durable Store for tests and throwaway sessions.
type MemoryStore struct {
	p *csync.Value[pair]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{p: csync.NewValue(pair{})}
}

func (s *MemoryStore) Set(access, refresh string) error {
	s.p.Set(pair{AccessToken: access, RefreshToken: refresh})
	return nil
}

func (s *MemoryStore) Access() string {
	return s.p.Get().AccessToken
}

func (s *MemoryStore) Refresh() string {
	return s.p.Get().RefreshToken
}

func (s *MemoryStore) Clear() error {
	s.p.Set(pair{})
	return nil
}

// FileStore keeps the token pair in a JSON file so a session survives process
// restarts. Writes are whole-file replacements; concurrent processes get
// last-write-wins semantics.
type FileStore struct {
	mu   sync.RWMutex
	path string
	p    pair
}

// NewFileStore opens (or creates on first Set) the token file at path.
// An unreadable or malformed file is treated as "no tokens stored".
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		path, err = defaultTokenFile()
		if err != nil {
			return nil, err
		}
	}
	s := &FileStore{path: path}
	data, err := os.ReadFile(path)
	if err == nil {
		var p pair
		if json.Unmarshal(data, &p) == nil {
			s.p = p
		}
	}
	return s, nil
}

func defaultTokenFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.WithMessage(err, "failed to locate user config dir for token store")
	}
	return filepath.Join(dir, "taskpilot", "tokens.json"), nil
}

func (s *FileStore) Set(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = pair{AccessToken: access, RefreshToken: refresh}
	return s.flush()
}

func (s *FileStore) Access() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.AccessToken
}

func (s *FileStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.RefreshToken
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p = pair{}
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.WithMessagef(err, "failed to remove token file %s", s.path)
	}
	return nil
}

func (s *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.WithMessagef(err, "failed to create token dir for %s", s.path)
	}
	data, err := json.Marshal(s.p)
	if err != nil {
		return errors.WithMessage(err, "failed to marshal token pair")
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.WithMessagef(err, "failed to write token file %s", s.path)
	}
	return nil
}
