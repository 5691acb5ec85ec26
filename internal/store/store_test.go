package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	e, err := s.CreateEntry(EntryInput{Topic: "ts-quirk", Content: "Zod v4 changes", Tags: []string{"typescript"}})
	require.NoError(t, err)
	require.Len(t, e.ID, 26)

	got, err := s.GetEntry(e.ID)
	require.NoError(t, err)
	require.Equal(t, e.Topic, got.Topic)
	require.Equal(t, []string{"typescript"}, got.Tags)
}

func TestEntryContentBoundary(t *testing.T) {
	s := newTestStore(t)
	ok := make([]byte, maxContentLen)
	_, err := s.CreateEntry(EntryInput{Topic: "t", Content: string(ok)})
	require.NoError(t, err)

	tooLong := make([]byte, maxContentLen+1)
	_, err = s.CreateEntry(EntryInput{Topic: "t", Content: string(tooLong)})
	require.Error(t, err)
	require.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestDeleteIsInvisibleToQueries(t *testing.T) {
	s := newTestStore(t)
	e, err := s.CreateEntry(EntryInput{Topic: "a", Content: "b"})
	require.NoError(t, err)
	require.NoError(t, s.DeleteEntry(e.ID))

	_, err = s.GetEntry(e.ID)
	require.Error(t, err)

	results, err := s.QueryEntries(EntryQuery{Topic: "a"})
	require.NoError(t, err)
	require.Empty(t, results)

	tx, err := s.History(10, EntityTypeEntry)
	require.NoError(t, err)
	require.Equal(t, OpDelete, tx[0].Op)
}

func TestUndoOfCreateThenDelete(t *testing.T) {
	s := newTestStore(t)
	a, err := s.CreateEntry(EntryInput{Topic: "A", Content: "a"})
	require.NoError(t, err)
	b, err := s.CreateEntry(EntryInput{Topic: "B", Content: "b"})
	require.NoError(t, err)

	reverted, err := s.Undo(1)
	require.NoError(t, err)
	require.Len(t, reverted, 1)

	_, err = s.GetEntry(b.ID)
	require.Error(t, err)
	_, err = s.GetEntry(a.ID)
	require.NoError(t, err)

	_, err = s.Undo(1)
	require.NoError(t, err)
	_, err = s.GetEntry(a.ID)
	require.Error(t, err)
}

func TestUndoEmptyLogReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	reverted, err := s.Undo(1)
	require.NoError(t, err)
	require.Empty(t, reverted)
}

func TestUpsertTripleSecondCallUpdatesObject(t *testing.T) {
	s := newTestStore(t)
	_, created, err := s.UpsertTriple(TripleInput{Subject: "s", Predicate: "p", Object: "o"})
	require.NoError(t, err)
	require.True(t, created)

	triple, created, err := s.UpsertTriple(TripleInput{Subject: "s", Predicate: "p", Object: "o2"})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "o2", triple.Object)
}

func TestMergeEntitiesAndUndo(t *testing.T) {
	s := newTestStore(t)
	js, err := s.CreateEntity("JavaScript")
	require.NoError(t, err)
	shortJS, err := s.CreateEntity("JS")
	require.NoError(t, err)

	_, err = s.CreateTriple(TripleInput{Subject: "JS", Predicate: "has", Object: "closures"})
	require.NoError(t, err)
	_, err = s.CreateTriple(TripleInput{Subject: "closures", Predicate: "in", Object: "JS"})
	require.NoError(t, err)

	merged, err := s.MergeEntities(js.ID, shortJS.ID)
	require.NoError(t, err)
	require.Equal(t, 2, merged)

	triples, err := s.QueryTriples(TripleQuery{Subject: "JavaScript"})
	require.NoError(t, err)
	require.Len(t, triples, 1)
	require.Equal(t, "closures", triples[0].Object)

	_, err = s.Undo(1)
	require.NoError(t, err)

	triples, err = s.QueryTriples(TripleQuery{Subject: "JS"})
	require.NoError(t, err)
	require.Len(t, triples, 1)

	resolved, err := s.Resolve("JS")
	require.NoError(t, err)
	require.Equal(t, shortJS.ID, resolved.ID)
}

func TestBoundaryTripleLength(t *testing.T) {
	s := newTestStore(t)
	exact := string(make([]byte, maxTripleLen))
	_, err := s.CreateTriple(TripleInput{Subject: exact, Predicate: "p", Object: "o"})
	require.NoError(t, err)

	over := string(make([]byte, maxTripleLen+1))
	_, err = s.CreateTriple(TripleInput{Subject: over, Predicate: "p", Object: "o"})
	require.Error(t, err)
}
