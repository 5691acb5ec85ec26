package retriever

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestQueryWithoutSemanticRedistributesWeight(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateEntry(store.EntryInput{Topic: "Go concurrency", Content: "goroutines and channels"})
	require.NoError(t, err)
	_, err = s.CreateEntry(store.EntryInput{Topic: "Rust ownership", Content: "borrow checker"})
	require.NoError(t, err)

	r := New(s, nil, nil)
	res, err := r.Query(context.Background(), Query{Text: "concurrency", Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, "Go concurrency", res.Items[0].Entry.Topic)
	require.Zero(t, res.Items[0].SemanticScore)
	require.Empty(t, res.NextCursor)
}

func TestQueryEmptyTextIsValidationError(t *testing.T) {
	s := newTestStore(t)
	r := New(s, nil, nil)
	_, err := r.Query(context.Background(), Query{Text: ""})
	require.Error(t, err)
}

func TestQueryPaginatesDeterministically(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.CreateEntry(store.EntryInput{Topic: "widget", Content: "a widget entry"})
		require.NoError(t, err)
	}
	r := New(s, nil, nil)

	first, err := r.Query(context.Background(), Query{Text: "widget", Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := r.Query(context.Background(), Query{Text: "widget", Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	for _, item := range second.Items {
		for _, prior := range first.Items {
			require.NotEqual(t, prior.Entry.ID, item.Entry.ID)
		}
	}

	third, err := r.Query(context.Background(), Query{Text: "widget", Limit: 2, Cursor: second.NextCursor})
	require.NoError(t, err)
	require.Len(t, third.Items, 1)
	require.Empty(t, third.NextCursor)
}

func TestQueryInvalidCursorFallsBackToFirstPage(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateEntry(store.EntryInput{Topic: "widget", Content: "a widget entry"})
	require.NoError(t, err)
	r := New(s, nil, nil)

	res, err := r.Query(context.Background(), Query{Text: "widget", Limit: 10, Cursor: "not-a-real-cursor!!"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
}

type fakeEmbedder struct{ vec []float64 }

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vec, nil
}

type fakeIndex struct{ matches []VectorMatch }

func (f fakeIndex) Query(ctx context.Context, vector []float64, topK int) ([]VectorMatch, error) {
	return f.matches, nil
}

func TestQueryWithSemanticCollaboratorsMergesScores(t *testing.T) {
	s := newTestStore(t)
	e, err := s.CreateEntry(store.EntryInput{Topic: "lonely vector hit", Content: "no lexical overlap here"})
	require.NoError(t, err)

	r := New(s, fakeEmbedder{vec: []float64{0.1, 0.2}}, fakeIndex{matches: []VectorMatch{{EntryID: e.ID, Score: 0.9}}})
	res, err := r.Query(context.Background(), Query{Text: "something else entirely", Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, e.ID, res.Items[0].Entry.ID)
	require.Greater(t, res.Items[0].SemanticScore, 0.0)
}

func TestQueryGraphExpansionPullsInRelatedEntry(t *testing.T) {
	s := newTestStore(t)
	seed, err := s.CreateEntry(store.EntryInput{Topic: "alpha", Content: "seed entry"})
	require.NoError(t, err)
	related, err := s.CreateEntry(store.EntryInput{Topic: "beta", Content: "unrelated body text"})
	require.NoError(t, err)
	_, err = s.CreateTriple(store.TripleInput{Subject: "alpha", Predicate: "relatesTo", Object: "beta"})
	require.NoError(t, err)

	r := New(s, nil, nil)
	res, err := r.Query(context.Background(), Query{Text: "alpha", Limit: 10})
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, item := range res.Items {
		ids[item.Entry.ID] = true
	}
	require.True(t, ids[seed.ID])
	require.True(t, ids[related.ID])
}

func TestQueryMinScoreFiltersWeakMatches(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateEntry(store.EntryInput{Topic: "gamma", Content: "mentions gamma only in the body text somewhere"})
	require.NoError(t, err)

	r := New(s, nil, nil)
	res, err := r.Query(context.Background(), Query{Text: "gamma", Limit: 10, MinScore: 0.9})
	require.NoError(t, err)
	require.Empty(t, res.Items)
}
