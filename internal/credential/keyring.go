// Package credential persists the bearer token between runs.
package credential

import (
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"
)

const serviceName = "dayboard"

// TokenKey is the fixed storage key for the bearer token.
const TokenKey = "authToken"

// ErrNotFound is returned when no token is stored.
var ErrNotFound = errors.New("token not found")

// TokenStore reads and writes the single persisted bearer token.
type TokenStore interface {
	// Get returns the stored token or ErrNotFound.
	Get() (string, error)
	// Set replaces the stored token.
	Set(token string) error
	// Delete removes the stored token. Deleting a missing token is not an error.
	Delete() error
}

// KeyringStore keeps the token in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// OpenKeyring returns a KeyringStore. fileDir is used by the encrypted file
// backend when no OS keychain is available.
func OpenKeyring(fileDir string) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("dayboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

// Get retrieves the token from the keyring.
func (s *KeyringStore) Get() (string, error) {
	item, err := s.ring.Get(TokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", TokenKey, err)
	}
	if len(item.Data) == 0 {
		return "", ErrNotFound
	}
	return string(item.Data), nil
}

// Set stores the token in the keyring.
func (s *KeyringStore) Set(token string) error {
	err := s.ring.Set(keyring.Item{
		Key:  TokenKey,
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", TokenKey, err)
	}
	return nil
}

// Delete removes the token from the keyring.
func (s *KeyringStore) Delete() error {
	err := s.ring.Remove(TokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", TokenKey, err)
	}
	return nil
}

// MemoryStore is an in-process TokenStore.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns a store pre-loaded with token (may be empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

// Get returns the token or ErrNotFound.
func (s *MemoryStore) Get() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNotFound
	}
	return s.token, nil
}

// Set replaces the token.
func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Delete clears the token.
func (s *MemoryStore) Delete() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// Lookup returns the stored token and whether one is present. Errors other
// than ErrNotFound are treated as absence.
func Lookup(s TokenStore) (string, bool) {
	token, err := s.Get()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}
