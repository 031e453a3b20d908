package session

import (
	"errors"
	"sync"
)

// TokenKey is the storage key of the persisted credential
const TokenKey = "token"

var ErrEmptyToken = errors.New("token is empty")

// Session owns the bearer credential. It is the TokenSource of the API
// client, so every outbound request sees the current token.
type Session struct {
	mu      sync.RWMutex
	storage Storage
	token   string
	loaded  bool
}

func New(storage Storage) *Session {
	return &Session{storage: storage}
}

// Token returns the in-memory token, reading through to storage once
func (s *Session) Token() string {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.token
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.token, _ = s.storage.Get(TokenKey)
		s.loaded = true
	}
	return s.token
}

// HasToken reports whether a credential is available
func (s *Session) HasToken() bool {
	return s.Token() != ""
}

// Begin stores a freshly issued token in memory and in storage
func (s *Session) Begin(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(TokenKey, token); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	return nil
}

// End forgets the token in memory and removes it from storage
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.loaded = true
	return s.storage.Remove(TokenKey)
}
