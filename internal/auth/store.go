// Package auth obtains and stores OAuth tokens for the Lingomate backend.
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Credentials is the persisted token set.
type Credentials struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	IDToken      string    `json:"idToken,omitempty"`
	TokenType    string    `json:"tokenType,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the access token is past its expiry, with a small
// margin so a token is not used in its final seconds.
func (c *Credentials) Expired() bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(c.ExpiresAt.Add(-30 * time.Second))
}

// TokenStore persists credentials between runs.
type TokenStore interface {
	Load() *Credentials
	Save(*Credentials)
	Clear()
}

// FileTokenStore keeps credentials in a 0600 JSON file. Read failures are
// treated as "not logged in"; write failures are logged and dropped so token
// persistence never blocks finishing a session.
type FileTokenStore struct {
	path   string
	mu     sync.Mutex
	logger *log.Logger
}

// NewFileTokenStore creates a store at the given path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path, logger: log.WithPrefix("auth")}
}

// Load reads the stored credentials, or nil when absent or unreadable.
func (s *FileTokenStore) Load() *Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read credentials", "err", err)
		}
		return nil
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		s.logger.Warn("corrupt credentials file, ignoring", "err", err)
		return nil
	}
	if creds.AccessToken == "" {
		return nil
	}
	return &creds
}

// Save writes the credentials atomically.
func (s *FileTokenStore) Save(creds *Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		s.logger.Warn("failed to marshal credentials", "err", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		s.logger.Warn("failed to create credentials directory", "err", err)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		s.logger.Warn("failed to write credentials", "err", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn("failed to persist credentials", "err", err)
	}
}

// Clear removes the stored credentials.
func (s *FileTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove credentials", "err", err)
	}
}

// MemoryTokenStore is an in-memory TokenStore for tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	creds *Credentials
}

func (s *MemoryTokenStore) Load() *Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

func (s *MemoryTokenStore) Save(creds *Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
}
