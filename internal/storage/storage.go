// Package storage persists the session's bearer token under a single fixed key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/straye-as/crm-console/internal/config"
	"go.uber.org/zap"
)

// TokenStore defines the interface for bearer token persistence.
// Load returns an empty string when no token is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// NewTokenStore creates a token store based on configuration.
// For memory mode the token lives only as long as the process.
// For file mode the token is written below FilePath, for redis mode it is
// kept in redis under TokenKey.
func NewTokenStore(cfg *config.SessionConfig, logger *zap.Logger) (TokenStore, error) {
	switch cfg.Store {
	case "memory", "":
		return NewMemoryTokenStore(), nil
	case "file":
		return NewFileTokenStore(cfg.FilePath, cfg.TokenKey)
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis address required for redis token store")
		}
		return NewRedisTokenStore(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported token store: %s", cfg.Store)
	}
}

// MemoryTokenStore implements TokenStore in process memory
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore creates an empty in-memory token store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

// Load returns the stored token
func (s *MemoryTokenStore) Load(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// Save replaces the stored token
func (s *MemoryTokenStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear removes the stored token
func (s *MemoryTokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileTokenStore implements TokenStore on the local filesystem.
// The token is kept in a single file named after the token key.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore creates a file token store, creating basePath if needed
func NewFileTokenStore(basePath, key string) (*FileTokenStore, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return nil, fmt.Errorf("invalid token key: %q", key)
	}
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	return &FileTokenStore{
		path: filepath.Join(basePath, key),
	}, nil
}

// Load reads the token file
func (s *FileTokenStore) Load(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the token file with owner-only permissions
func (s *FileTokenStore) Save(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp) // Cleanup on error
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// Clear deletes the token file
func (s *FileTokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // Already cleared
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
