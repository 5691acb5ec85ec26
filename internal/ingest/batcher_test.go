package ingest

import (
	"path/filepath"
	"strings"
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

func TestIngestSyncTwoParagraphs(t *testing.T) {
	s := newTestStore(t)
	content := strings.Repeat("A", 300) + "\n\n" + strings.Repeat("B", 300)

	res, err := Ingest(s, content, "")
	require.NoError(t, err)
	require.True(t, res.Sync)
	require.Equal(t, 2, res.EntriesCreated)
	require.Equal(t, 0, res.DuplicatesSkipped)

	entries, err := s.QueryEntries(store.EntryQuery{Tags: []string{"ingested"}})
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestIngestSyncIdempotentOnReplay(t *testing.T) {
	s := newTestStore(t)
	content := strings.Repeat("A", 300) + "\n\n" + strings.Repeat("B", 300)

	_, err := Ingest(s, content, "")
	require.NoError(t, err)

	res, err := Ingest(s, content, "")
	require.NoError(t, err)
	require.Equal(t, 0, res.EntriesCreated)
	require.Equal(t, 2, res.DuplicatesSkipped)
}

func TestIngestSyncLinksKnownEntityMentions(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateEntity("Rust")
	require.NoError(t, err)

	content := strings.Repeat("pad ", 80) + "Rust is a systems programming language."

	_, err = Ingest(s, content, "")
	require.NoError(t, err)

	triples, err := s.QueryTriples(store.TripleQuery{Predicate: "mentions", Object: "Rust"})
	require.NoError(t, err)
	require.Len(t, triples, 1)
}

func TestIngestAsyncThresholdCreatesPendingTask(t *testing.T) {
	s := newTestStore(t)
	var paragraphs []string
	for i := 0; i < 25; i++ {
		paragraphs = append(paragraphs, strings.Repeat("x", 300))
	}
	content := strings.Join(paragraphs, "\n\n")

	res, err := Ingest(s, content, "")
	require.NoError(t, err)
	require.False(t, res.Sync)
	require.NotEmpty(t, res.TaskID)

	task, err := s.GetIngestionTask(res.TaskID)
	require.NoError(t, err)
	require.Equal(t, store.IngestionPending, task.Status)
}

func TestProcessBatchResumesFromProcessedCounter(t *testing.T) {
	s := newTestStore(t)
	var paragraphs []string
	for i := 0; i < 25; i++ {
		paragraphs = append(paragraphs, strings.Repeat("x", 300)+string(rune('a'+i)))
	}
	content := strings.Join(paragraphs, "\n\n")

	res, err := Ingest(s, content, "")
	require.NoError(t, err)

	remaining, created, err := ProcessBatch(s, res.TaskID)
	require.NoError(t, err)
	require.Equal(t, 15, remaining)
	require.Equal(t, 10, created)

	task, err := s.GetIngestionTask(res.TaskID)
	require.NoError(t, err)
	require.Equal(t, 10, task.ProcessedItems)
	require.Equal(t, store.IngestionProcessing, task.Status)

	remaining, _, err = ProcessBatch(s, res.TaskID)
	require.NoError(t, err)
	require.Equal(t, 5, remaining)

	remaining, _, err = ProcessBatch(s, res.TaskID)
	require.NoError(t, err)
	require.Equal(t, 0, remaining)

	task, err = s.GetIngestionTask(res.TaskID)
	require.NoError(t, err)
	require.Equal(t, store.IngestionCompleted, task.Status)
}
