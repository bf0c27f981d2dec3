package authclient

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Storage keys for the two persisted entries.
const (
	StorageKeyAccessToken  = "token"
	StorageKeyRefreshToken = "refreshToken"
)

// Credential is the persisted bearer credential. The access token is opaque
// to this package except for its locally decodable claims payload; the
// refresh token is only ever stored and cleared alongside it.
type Credential struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Identity decodes the access token's claims payload.
func (c *Credential) Identity() (*Identity, error) {
	return DecodeIdentity(c.AccessToken)
}

// ExpiresAt reports the access token's exp claim when one is present.
func (c *Credential) ExpiresAt() (time.Time, bool) {
	return CredentialExpiry(c.AccessToken)
}

// MemoryStore is a process-local CredentialStore, useful for tests and
// short-lived tools.
type MemoryStore struct {
	mu         sync.RWMutex
	credential *Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = &Credential{AccessToken: accessToken, RefreshToken: refreshToken}
	return nil
}

func (s *MemoryStore) Load() (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credential == nil || s.credential.AccessToken == "" {
		return nil, nil
	}
	cred := *s.credential
	return &cred, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = nil
	return nil
}

func (s *MemoryStore) HasAccessToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential != nil && s.credential.AccessToken != ""
}

// FileStore persists the credential as a two-key JSON document, the native
// analog of origin-scoped browser storage. Writes are atomic so a crashed
// save never leaves a torn credential behind.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger Logger
}

// FileStoreOption customizes FileStore construction.
type FileStoreOption func(*FileStore)

// WithFileStoreLogger overrides the logger used for save/clear failures.
func WithFileStoreLogger(logger Logger) FileStoreOption {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewFileStore(path string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		path:   path,
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s
}

// DefaultCredentialPath resolves the per-user credential file location.
func DefaultCredentialPath(appName string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to resolve user config dir")
	}
	return filepath.Join(dir, appName, "credentials.json"), nil
}

func (s *FileStore) Save(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := map[string]string{
		StorageKeyAccessToken: accessToken,
	}
	if refreshToken != "" {
		entries[StorageKeyRefreshToken] = refreshToken
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to encode credential")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to create credential dir")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to write credential")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to persist credential")
	}

	return nil
}

func (s *FileStore) Load() (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil || entries == nil {
		return nil, err
	}

	access := entries[StorageKeyAccessToken]
	if access == "" {
		return nil, nil
	}

	return &Credential{
		AccessToken:  access,
		RefreshToken: entries[StorageKeyRefreshToken],
	}, nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to clear credential")
	}
	return nil
}

func (s *FileStore) HasAccessToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		s.logger.Error("credential store read error: %v", err)
		return false
	}
	return entries != nil && entries[StorageKeyAccessToken] != ""
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read credential")
	}

	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		// an unreadable credential file is equivalent to no session
		s.logger.Error("credential store decode error: %v", err)
		return nil, nil
	}
	return entries, nil
}
