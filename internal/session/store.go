package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned by SetToken for a JWT whose exp claim has passed.
var ErrTokenExpired = errors.New("session token already expired")

// Store persists bearer tokens keyed by client ID.
type Store interface {
	Load(ctx context.Context, clientID string) (string, error)
	Save(ctx context.Context, clientID, token string, ttl time.Duration) error
	Delete(ctx context.Context, clientID string) error
}

// Session is the auth context for one client. The Store is the only place the
// token lives; every read goes through it.
type Session struct {
	store    Store
	clientID string
	now      func() time.Time
	mu       sync.Mutex
}

// New returns the Session of clientID backed by store.
func New(store Store, clientID string) *Session {
	return &Session{store: store, clientID: clientID, now: time.Now}
}

// ClientID returns the key this session is stored under.
func (s *Session) ClientID() string {
	return s.clientID
}

// GetToken returns the current token, or "" when signed out.
// An expired JWT is cleared and reported as signed out.
func (s *Session) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.store.Load(ctx, s.clientID)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", nil
	}

	if exp, ok := ExpiresAt(token); ok && !s.now().Before(exp) {
		if err := s.store.Delete(ctx, s.clientID); err != nil {
			return "", err
		}
		return "", nil
	}
	return token, nil
}

// SetToken replaces the current token. Tokens carrying an exp claim are stored
// only until that time.
func (s *Session) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.ClearToken(ctx)
	}

	var ttl time.Duration
	if exp, ok := ExpiresAt(token); ok {
		ttl = exp.Sub(s.now())
		if ttl <= 0 {
			return ErrTokenExpired
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(ctx, s.clientID, token, ttl)
}

// ClearToken signs the client out.
func (s *Session) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, s.clientID)
}

// ExpiresAt reads the exp claim of a JWT without verifying its signature;
// the backend that issued it remains the authority on validity.
func ExpiresAt(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Load(_ context.Context, clientID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[clientID]
	if !ok {
		return "", nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, clientID)
		return "", nil
	}
	return e.token, nil
}

func (m *MemoryStore) Save(_ context.Context, clientID, token string, ttl time.Duration) error {
	if clientID == "" {
		return fmt.Errorf("saving session: empty client id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{token: token}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[clientID] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, clientID)
	return nil
}
