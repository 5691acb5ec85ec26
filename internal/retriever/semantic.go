package retriever

import (
	"context"

	"github.com/shevchenkoxx/lore-mcp/internal/log"
)

// semanticScore embeds the query and performs a top-k nearest-neighbor
// lookup. If either collaborator is absent or either call fails, it
// returns nil, ok=false so the caller redistributes the semantic weight
// rather than failing the query.
func semanticScore(ctx context.Context, embedder Embedder, index VectorIndex, query string, depth int) (scores map[string]float64, ok bool) {
	logger := log.WithComponent("retriever.semantic")
	if embedder == nil || index == nil {
		return nil, false
	}
	vec, err := embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn().Err(err).Msg("embedding collaborator failed; degrading semantic scorer")
		return nil, false
	}
	matches, err := index.Query(ctx, vec, depth)
	if err != nil {
		logger.Warn().Err(err).Msg("vector index collaborator failed; degrading semantic scorer")
		return nil, false
	}
	out := make(map[string]float64, len(matches))
	for _, m := range matches {
		out[m.EntryID] = m.Score
	}
	return out, true
}

// adjustForMissingSemantic redistributes the semantic weight when the
// scorer degrades to empty: 60% to lexical, 40% to graph.
func adjustForMissingSemantic(w Weights) Weights {
	return Weights{
		Lexical:  w.Lexical + 0.6*w.Semantic,
		Semantic: 0,
		Graph:    w.Graph + 0.4*w.Semantic,
	}
}
