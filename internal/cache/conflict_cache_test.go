package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

func TestSaveAndLoad(t *testing.T) {
	c := New(nil)
	info := store.ConflictInfo{ConflictID: "c1", Subject: "Rust", Predicate: "creator"}
	require.NoError(t, c.Save(info))

	got, ok := c.Load("c1")
	require.True(t, ok)
	require.Equal(t, "Rust", got.Subject)
}

func TestLoadMissingReturnsNotOK(t *testing.T) {
	c := New(nil)
	_, ok := c.Load("nope")
	require.False(t, ok)
}

func TestRemoveEvictsEntry(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Save(store.ConflictInfo{ConflictID: "c1"}))
	c.Remove("c1")
	_, ok := c.Load("c1")
	require.False(t, ok)
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	c := New(nil)
	for i := 0; i < capacity+10; i++ {
		require.NoError(t, c.Save(store.ConflictInfo{ConflictID: fmt.Sprintf("c%d", i)}))
	}
	_, ok := c.Load("c0")
	require.False(t, ok, "oldest entries should be evicted once capacity is exceeded")
	_, ok = c.Load(fmt.Sprintf("c%d", capacity+9))
	require.True(t, ok, "most recently inserted entry must survive")
}

type stubDurable struct {
	data map[string][]byte
	at   map[string]time.Time
}

func newStubDurable() *stubDurable {
	return &stubDurable{data: map[string][]byte{}, at: map[string]time.Time{}}
}

func (d *stubDurable) Save(key string, value []byte, storedAt time.Time) error {
	d.data[key] = value
	d.at[key] = storedAt
	return nil
}

func (d *stubDurable) Load(key string) ([]byte, time.Time, bool, error) {
	v, ok := d.data[key]
	return v, d.at[key], ok, nil
}

func (d *stubDurable) Remove(key string) error {
	delete(d.data, key)
	delete(d.at, key)
	return nil
}

func TestDurableBackendRoundTrip(t *testing.T) {
	d := newStubDurable()
	c := New(d)
	require.NoError(t, c.Save(store.ConflictInfo{ConflictID: "c1", Subject: "Rust"}))
	require.Contains(t, d.data, "conflict:c1")

	c2 := New(d)
	got, ok := c2.Load("c1")
	require.True(t, ok)
	require.Equal(t, "Rust", got.Subject)
}
