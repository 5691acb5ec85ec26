package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New()
	now := time.Now()
	require.NoError(t, s.Save("conflict:c1", []byte("payload"), now))

	value, storedAt, ok, err := s.Load("conflict:c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), value)
	require.WithinDuration(t, now, storedAt, time.Millisecond)
	require.Equal(t, 1, s.Count())
}

func TestLoadMissingKeyIsNotFound(t *testing.T) {
	s := New()
	_, _, ok, err := s.Load("nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRemoveDeletesRecord(t *testing.T) {
	s := New()
	require.NoError(t, s.Save("k", []byte("v"), time.Now()))
	require.NoError(t, s.Remove("k"))
	_, _, ok, _ := s.Load("k")
	require.False(t, ok)
	require.Equal(t, 0, s.Count())
}
