package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// FileStore keeps tokens in a YAML credentials file, for the CLI.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type credentials struct {
	Sessions map[string]credential `yaml:"sessions"`
}

type credential struct {
	Token     string    `yaml:"token"`
	ExpiresAt time.Time `yaml:"expires_at,omitempty"`
}

// NewFileStore returns a FileStore writing to path. The file is created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) read() (credentials, error) {
	creds := credentials{Sessions: map[string]credential{}}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return creds, fmt.Errorf("reading credentials %s: %w", f.path, err)
	}
	if err := yaml.Unmarshal(b, &creds); err != nil {
		return creds, fmt.Errorf("parsing credentials %s: %w", f.path, err)
	}
	if creds.Sessions == nil {
		creds.Sessions = map[string]credential{}
	}
	return creds, nil
}

func (f *FileStore) write(creds credentials) error {
	b, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("writing credentials %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, clientID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.read()
	if err != nil {
		return "", err
	}
	c, ok := creds.Sessions[clientID]
	if !ok {
		return "", nil
	}
	if !c.ExpiresAt.IsZero() && !time.Now().Before(c.ExpiresAt) {
		return "", nil
	}
	return c.Token, nil
}

func (f *FileStore) Save(_ context.Context, clientID, token string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.read()
	if err != nil {
		return err
	}
	c := credential{Token: token}
	if ttl > 0 {
		c.ExpiresAt = time.Now().Add(ttl).UTC()
	}
	creds.Sessions[clientID] = c
	return f.write(creds)
}

func (f *FileStore) Delete(_ context.Context, clientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := creds.Sessions[clientID]; !ok {
		return nil
	}
	delete(creds.Sessions, clientID)
	return f.write(creds)
}
