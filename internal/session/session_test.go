package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Session Tests
// ============================================

func TestSession_ReadsPersistedToken(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(TokenKey, "persisted"))

	s := New(storage)

	assert.Equal(t, "persisted", s.Token())
	assert.True(t, s.HasToken())
}

func TestSession_BeginAndEnd(t *testing.T) {
	storage := NewMemoryStorage()
	s := New(storage)

	assert.False(t, s.HasToken())

	require.NoError(t, s.Begin("fresh"))
	assert.Equal(t, "fresh", s.Token())
	stored, ok := storage.Get(TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "fresh", stored)

	require.NoError(t, s.End())
	assert.Empty(t, s.Token())
	_, ok = storage.Get(TokenKey)
	assert.False(t, ok)
}

func TestSession_BeginRejectsEmptyToken(t *testing.T) {
	s := New(NewMemoryStorage())

	assert.ErrorIs(t, s.Begin(""), ErrEmptyToken)
	assert.False(t, s.HasToken())
}

// ============================================
// FileStorage Tests
// ============================================

func TestFileStorage_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first := NewFileStorage(path)
	require.NoError(t, first.Set(TokenKey, "abc"))

	// A second instance sees the same data, as a new CLI invocation would
	second := NewFileStorage(path)
	v, ok := second.Get(TokenKey)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	require.NoError(t, second.Remove(TokenKey))
	_, ok = first.Get(TokenKey)
	assert.False(t, ok)
}

func TestFileStorage_MissingFile(t *testing.T) {
	s := NewFileStorage(filepath.Join(t.TempDir(), "absent.json"))

	_, ok := s.Get(TokenKey)
	assert.False(t, ok)
	assert.NoError(t, s.Remove(TokenKey))
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewFileStorage(path)

	_, ok := s.Get(TokenKey)
	assert.False(t, ok)
	assert.Error(t, s.Set(TokenKey, "x"))
}
