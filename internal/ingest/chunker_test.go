package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkSplitsOnBlankLineRuns(t *testing.T) {
	a := strings.Repeat("A", 300)
	b := strings.Repeat("B", 300)
	content := a + "\n\n" + b
	chunks := Chunk(content)
	require.Len(t, chunks, 2)
	require.Equal(t, a, chunks[0])
	require.Equal(t, b, chunks[1])
}

func TestChunkNeverSplitsAParagraph(t *testing.T) {
	long := strings.Repeat("x", 800)
	chunks := Chunk(long)
	require.Len(t, chunks, 1)
	require.Equal(t, long, chunks[0])
}

func TestChunkGreedilyConcatenatesSmallParagraphs(t *testing.T) {
	content := "one\n\ntwo\n\nthree"
	chunks := Chunk(content)
	require.Len(t, chunks, 1)
	require.Equal(t, "one\n\ntwo\n\nthree", chunks[0])
}

func TestFirstLineTopicTruncatesAndDefaults(t *testing.T) {
	require.Equal(t, "hello", FirstLineTopic("hello\nworld"))
	require.Equal(t, "ingested", FirstLineTopic("\n\n"))
	require.Equal(t, strings.Repeat("y", 100), FirstLineTopic(strings.Repeat("y", 150)))
}
