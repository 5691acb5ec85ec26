package retriever

import (
	"strings"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/log"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

const (
	scoreExactTopic      = 1.0
	scoreSubstringTopic  = 0.8
	scoreSubstringBody   = 0.5
	scoreSubstringTags   = 0.3
)

// lexicalScore runs the lexical scorer: FTS5-backed BM25 ranking when
// available, otherwise a tiered substring fallback. Never returns an error
// to the caller -- a query failure degrades to the substring fallback, and
// a fallback failure degrades to an empty result.
func lexicalScore(st *store.Store, query string, depth int) map[string]float64 {
	logger := log.WithComponent("retriever.lexical")
	if query == "" || depth <= 0 {
		return nil
	}
	if st.FTSEnabled() {
		if scores, err := lexicalScoreFTS(st, query, depth); err == nil {
			return scores
		} else {
			logger.Warn().Err(err).Msg("fts5 lexical query failed; falling back to substring ranking")
		}
	}
	scores, err := lexicalScoreSubstring(st, query, depth)
	if err != nil {
		logger.Warn().Err(err).Msg("substring lexical fallback failed")
		return nil
	}
	return scores
}

func lexicalScoreFTS(st *store.Store, query string, depth int) (map[string]float64, error) {
	ftsQuery := sanitizeFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	rows, err := st.DB().Query(
		`SELECT entries_fts.id, bm25(entries_fts) AS rank
		 FROM entries_fts WHERE entries_fts MATCH ? ORDER BY rank LIMIT ?`, ftsQuery, depth)
	if err != nil {
		return nil, errs.Dependency("fts5 match query", err)
	}
	defer rows.Close()

	type hit struct {
		id   string
		rank float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.rank); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return map[string]float64{}, nil
	}

	best := hits[0].rank
	for _, h := range hits {
		if h.rank < best {
			best = h.rank
		}
	}
	out := make(map[string]float64, len(hits))
	for _, h := range hits {
		if best == 0 {
			out[h.id] = 1.0
			continue
		}
		out[h.id] = h.rank / best
	}
	return out, nil
}

func lexicalScoreSubstring(st *store.Store, query string, depth int) (map[string]float64, error) {
	escaped := escapeLike(query)
	pattern := "%" + escaped + "%"
	rows, err := st.DB().Query(
		`SELECT id, topic, content, tags FROM entries
		 WHERE deleted_at IS NULL AND (topic LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\' OR tags LIKE ? ESCAPE '\')
		 ORDER BY created_at DESC LIMIT ?`,
		pattern, pattern, pattern, depth)
	if err != nil {
		return nil, errs.Internal("substring lexical query", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	lowerQuery := strings.ToLower(query)
	for rows.Next() {
		var id, topic, content, tags string
		if err := rows.Scan(&id, &topic, &content, &tags); err != nil {
			return nil, err
		}
		out[id] = tierScore(lowerQuery, topic, content, tags)
	}
	return out, rows.Err()
}

func tierScore(lowerQuery, topic, content, tags string) float64 {
	lowerTopic := strings.ToLower(topic)
	switch {
	case lowerTopic == lowerQuery:
		return scoreExactTopic
	case strings.Contains(lowerTopic, lowerQuery):
		return scoreSubstringTopic
	case strings.Contains(strings.ToLower(content), lowerQuery):
		return scoreSubstringBody
	case strings.Contains(strings.ToLower(tags), lowerQuery):
		return scoreSubstringTags
	default:
		return 0
	}
}
