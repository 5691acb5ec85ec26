package vecindex

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/ncruces/go-sqlite3/driver"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "vec.db")
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDisabledIndexDegradesQueryToEmpty(t *testing.T) {
	db := openDB(t)
	idx := Open(db, 4)
	if idx.Enabled() {
		t.Skip("sqlite-vec extension available in this environment; disabled-path test not applicable")
	}
	matches, err := idx.Query(context.Background(), []float64{0.1, 0.2, 0.3, 0.4}, 5)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestUpsertAndQueryRoundTrip(t *testing.T) {
	db := openDB(t)
	idx := Open(db, 3)
	if !idx.Enabled() {
		t.Skip("sqlite-vec extension not available in this environment")
	}
	require.NoError(t, idx.Upsert(context.Background(), "e1", []float64{1, 0, 0}))
	require.NoError(t, idx.Upsert(context.Background(), "e2", []float64{0, 1, 0}))

	matches, err := idx.Query(context.Background(), []float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	require.Equal(t, "e1", matches[0].EntryID)
}
