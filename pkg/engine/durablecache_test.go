package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shevchenkoxx/lore-mcp/internal/policy"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
	"github.com/shevchenkoxx/lore-mcp/pkg/docstore"
)

func TestDurableCacheSurvivesEngineRebuild(t *testing.T) {
	t.Cleanup(policy.Reset)
	dsn := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	durable := docstore.New()
	e := New(st, WithDurableCache(durable))

	_, err = e.Relate(RelateInput{Subject: "Rust", Predicate: "creator", Object: "Graydon Hoare"})
	require.NoError(t, err)
	res, err := e.Relate(RelateInput{Subject: "Rust", Predicate: "creator", Object: "Someone Else"})
	require.NoError(t, err)
	conflictID := res.Data.(relateResult).Conflict.ConflictID

	// Rebuild the engine over the same durable backend, simulating a
	// process restart with the conflict still pending resolution.
	e2 := New(st, WithDurableCache(durable))
	resolveRes, err := e2.ResolveConflict(conflictID, store.ResolveReject)
	require.NoError(t, err)
	require.Contains(t, resolveRes.Text, "rejected")
}
