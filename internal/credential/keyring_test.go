package credential

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore("")

	_, err := s.Get()
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set("abc"))
	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.NoError(t, s.Delete())
	_, ok := Lookup(s)
	assert.False(t, ok)

	// Deleting twice is fine.
	require.NoError(t, s.Delete())
}

func TestKeyringStore_ArrayBackend(t *testing.T) {
	s := &KeyringStore{ring: keyring.NewArrayKeyring(nil)}

	_, err := s.Get()
	require.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Set("token-1"))
	token, ok := Lookup(s)
	require.True(t, ok)
	assert.Equal(t, "token-1", token)

	require.NoError(t, s.Delete())
	require.NoError(t, s.Delete())
	_, ok = Lookup(s)
	assert.False(t, ok)
}
