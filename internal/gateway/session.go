package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SessionState is what survives between runs: the bearer token and the
// profile returned at login.
type SessionState struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// SessionStore persists a SessionState.
type SessionStore interface {
	Load() (SessionState, error)
	Save(SessionState) error
	Clear() error
}

// FileStore keeps the session as a JSON file readable only by the owner.
type FileStore struct {
	Path string
}

func (f FileStore) Load() (SessionState, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return SessionState{}, nil
	}
	if err != nil {
		return SessionState{}, fmt.Errorf("read session: %w", err)
	}
	var s SessionState
	if err := json.Unmarshal(data, &s); err != nil {
		return SessionState{}, fmt.Errorf("parse session %s: %w", f.Path, err)
	}
	return s, nil
}

func (f FileStore) Save(s SessionState) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

func (f FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// MemoryStore holds the session in memory. The server uses it to forward
// a caller's token.
type MemoryStore struct {
	mu    sync.Mutex
	state SessionState
}

func (m *MemoryStore) Load() (SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryStore) Save(s SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = SessionState{}
	return nil
}

// Session is the authentication context handed to the Client. It reads
// the store once at construction and writes through on every change.
type Session struct {
	mu    sync.RWMutex
	store SessionStore
	state SessionState
}

// NewSession loads the stored state.
func NewSession(store SessionStore) (*Session, error) {
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{store: store, state: state}, nil
}

// NewTokenSession returns an in-memory session holding token.
func NewTokenSession(token string) *Session {
	s := SessionState{Token: token}
	return &Session{store: &MemoryStore{state: s}, state: s}
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns the cached profile, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// LoggedIn reports whether a token is held.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Set replaces the token and profile and persists them.
func (s *Session) Set(token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := SessionState{Token: token, User: user}
	if err := s.store.Save(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// SetUser updates the cached profile, keeping the token.
func (s *Session) SetUser(user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := SessionState{Token: s.state.Token, User: user}
	if err := s.store.Save(next); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Clear forgets the token and profile.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionState{}
	return s.store.Clear()
}
