package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shevchenkoxx/lore-mcp/internal/policy"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	t.Cleanup(policy.Reset)
	return New(st)
}

func ptr[T any](v T) *T { return &v }

// Scenario 1: store then query by topic substring; history shows one CREATE.
func TestScenarioStoreThenQuery(t *testing.T) {
	e := newTestEngine(t)
	res, err := e.Store(StoreInput{Topic: "ts-quirk", Content: "Zod v4 changes", Tags: []string{"typescript"}})
	require.NoError(t, err)
	require.NotEmpty(t, res.ResourceURI)

	q, err := e.Query(context.Background(), QueryInput{Text: "ts"})
	require.NoError(t, err)
	page := q.Data.(queryResult)
	require.Len(t, page.Items, 1)
	require.Equal(t, "ts-quirk", page.Items[0].Entry.Topic)

	h, err := e.History(10, store.EntityTypeEntry)
	require.NoError(t, err)
	hist := h.Data.(historyResult)
	require.Len(t, hist.Items, 1)
	require.Equal(t, store.OpCreate, hist.Items[0].Op)
}

// Scenario 2: store A, store B, undo(1) reverts only B; sequential undo(1)
// reverts both.
func TestScenarioSequentialUndo(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Store(StoreInput{Topic: "A", Content: "entry A"})
	require.NoError(t, err)
	_, err = e.Store(StoreInput{Topic: "B", Content: "entry B"})
	require.NoError(t, err)

	_, err = e.Undo(1)
	require.NoError(t, err)

	q, err := e.Query(context.Background(), QueryInput{Text: "A"})
	require.NoError(t, err)
	page := q.Data.(queryResult)
	require.Len(t, page.Items, 1)
	require.Equal(t, "A", page.Items[0].Entry.Topic)

	q, err = e.Query(context.Background(), QueryInput{Text: "B"})
	require.NoError(t, err)
	require.Empty(t, q.Data.(queryResult).Items)

	_, err = e.Undo(1)
	require.NoError(t, err)
	q, err = e.Query(context.Background(), QueryInput{Text: "A"})
	require.NoError(t, err)
	require.Empty(t, q.Data.(queryResult).Items)
}

// Scenario 3: merge entities, query graph, undo restores original triples
// and alias resolution.
func TestScenarioMergeEntitiesAndUndo(t *testing.T) {
	e := newTestEngine(t)
	jsRes, err := e.UpsertEntity("JavaScript")
	require.NoError(t, err)
	js := jsRes.Data.(upsertEntityResult).Entity

	jsAbbrevRes, err := e.UpsertEntity("JS")
	require.NoError(t, err)
	jsAbbrev := jsAbbrevRes.Data.(upsertEntityResult).Entity

	_, err = e.Relate(RelateInput{Subject: "JS", Predicate: "has", Object: "closures"})
	require.NoError(t, err)
	_, err = e.Relate(RelateInput{Subject: "closures", Predicate: "in", Object: "JS"})
	require.NoError(t, err)

	mergeRes, err := e.MergeEntities(js.ID, jsAbbrev.ID)
	require.NoError(t, err)
	merged := mergeRes.Data.(mergeResult)
	require.Equal(t, 2, merged.MergedCount)

	graphRes, err := e.QueryGraph(QueryGraphInput{Subject: "JavaScript"})
	require.NoError(t, err)
	graph := graphRes.Data.(queryGraphResult)
	require.Len(t, graph.Items, 1)
	require.Equal(t, "closures", graph.Items[0].Object)

	_, err = e.Undo(1)
	require.NoError(t, err)

	graphRes, err = e.QueryGraph(QueryGraphInput{Subject: "JS"})
	require.NoError(t, err)
	graph = graphRes.Data.(queryGraphResult)
	require.Len(t, graph.Items, 1)

	resolveRes, err := e.UpsertEntity("JS")
	require.NoError(t, err)
	resolved := resolveRes.Data.(upsertEntityResult)
	require.False(t, resolved.Created)
	require.Equal(t, jsAbbrev.ID, resolved.Entity.ID)
}

// Scenario 4: relate detects a conflict; reject leaves the store unchanged.
func TestScenarioConflictDetectionAndReject(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Relate(RelateInput{Subject: "Rust", Predicate: "creator", Object: "Graydon Hoare"})
	require.NoError(t, err)

	res, err := e.Relate(RelateInput{Subject: "Rust", Predicate: "creator", Object: "Someone Else", Confidence: ptr(0.5)})
	require.NoError(t, err)
	rr := res.Data.(relateResult)
	require.NotNil(t, rr.Conflict)
	require.Equal(t, "Graydon Hoare", rr.Conflict.Existing.Object)
	require.ElementsMatch(t, []store.ConflictResolution{store.ResolveReplace, store.ResolveRetainBoth, store.ResolveReject}, rr.Conflict.Allowed)

	_, err = e.ResolveConflict(rr.Conflict.ConflictID, store.ResolveReject)
	require.NoError(t, err)

	graphRes, err := e.QueryGraph(QueryGraphInput{Subject: "Rust", Predicate: "creator"})
	require.NoError(t, err)
	graph := graphRes.Data.(queryGraphResult)
	require.Len(t, graph.Items, 1)
	require.Equal(t, "Graydon Hoare", graph.Items[0].Object)
}

// Scenario 5: confidence floor rejects low-confidence stores and accepts
// high-confidence ones.
func TestScenarioPolicyConfidenceFloor(t *testing.T) {
	e := newTestEngine(t)
	policy.Set(policy.Config{MinConfidence: 0.5})

	_, err := e.Store(StoreInput{Topic: "low", Content: "low confidence", Confidence: ptr(0.3)})
	require.Error(t, err)

	_, err = e.Store(StoreInput{Topic: "high", Content: "high confidence", Confidence: ptr(0.8)})
	require.NoError(t, err)
}

// Scenario 6: ingesting two paragraphs creates two entries; re-ingesting the
// identical content is fully deduplicated.
func TestScenarioIngestAndReingest(t *testing.T) {
	e := newTestEngine(t)
	content := repeat("A", 300) + "\n\n" + repeat("B", 300)

	res, err := e.Ingest(content, "")
	require.NoError(t, err)
	first := res.Data.(ingestResult)
	require.Equal(t, 2, first.EntriesCreated)
	require.Equal(t, 0, first.DuplicatesSkipped)

	res, err = e.Ingest(content, "")
	require.NoError(t, err)
	second := res.Data.(ingestResult)
	require.Equal(t, 0, second.EntriesCreated)
	require.Equal(t, 2, second.DuplicatesSkipped)
}

func repeat(s string, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = s[0]
	}
	return string(out)
}
