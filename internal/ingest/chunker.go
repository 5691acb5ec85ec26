// Package ingest implements the synchronous and asynchronous text-to-entries
// ingestion pipeline: paragraph chunking, content-hash-free exact dedup,
// and resumable batch processing.
package ingest

import (
	"regexp"
	"strings"
)

const maxChunkChars = 500

var blankRunRe = regexp.MustCompile(`\r?\n[ \t]*\r?\n[ \t\r\n]*`)

// Chunk splits content into paragraphs at every blank line (a line break
// followed by an empty or whitespace-only line; longer runs count as one),
// then greedily concatenates paragraphs into chunks of up to 500
// characters, never splitting a paragraph across chunks.
func Chunk(content string) []string {
	paragraphs := splitParagraphs(content)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	current := ""
	for _, p := range paragraphs {
		switch {
		case current == "":
			current = p
		case len(current)+2+len(p) <= maxChunkChars:
			current = current + "\n\n" + p
		default:
			chunks = append(chunks, current)
			current = p
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

func splitParagraphs(content string) []string {
	parts := blankRunRe.Split(content, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FirstLineTopic derives the default topic for an ingested chunk: its
// first line, truncated to 100 characters, or "ingested" when empty.
func FirstLineTopic(chunk string) string {
	line := chunk
	if i := strings.IndexAny(chunk, "\r\n"); i >= 0 {
		line = chunk[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "ingested"
	}
	if len(line) > 100 {
		return line[:100]
	}
	return line
}
