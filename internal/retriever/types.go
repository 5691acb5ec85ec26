// Package retriever implements the hybrid lexical/semantic/graph retrieval
// pipeline: parallel scorers, weighted fusion, deterministic ordering, and
// opaque cursor pagination.
package retriever

import (
	"context"

	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

// Weights controls the contribution of each scorer to the fused score.
type Weights struct {
	Lexical  float64
	Semantic float64
	Graph    float64
}

// DefaultWeights are the pipeline's defaults absent overrides.
func DefaultWeights() Weights {
	return Weights{Lexical: 0.3, Semantic: 0.5, Graph: 0.2}
}

// Embedder turns a query string into a vector, the external collaborator
// the semantic scorer depends on.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorMatch is one nearest-neighbor hit from a VectorIndex.
type VectorMatch struct {
	EntryID string
	Score   float64 // raw similarity in [0,1]
}

// VectorIndex performs top-k nearest-neighbor lookups, the other external
// collaborator the semantic scorer depends on.
type VectorIndex interface {
	Query(ctx context.Context, vector []float64, topK int) ([]VectorMatch, error)
}

// candidateScore accumulates one entry's per-component scores before
// fusion.
type candidateScore struct {
	lexical  float64
	semantic float64
	graph    float64
	hops     int
}

// ScoredEntry is one fused, hydrated result row.
type ScoredEntry struct {
	Entry          store.Entry `json:"entry"`
	Score          float64     `json:"score"`
	LexicalScore   float64     `json:"lexical_score"`
	SemanticScore  float64     `json:"semantic_score"`
	GraphScore     float64     `json:"graph_score"`
	GraphHops      int         `json:"graph_hops"`
}

// Query is the hybrid retriever's input.
type Query struct {
	Text     string
	Limit    int
	Cursor   string
	Weights  *Weights
	MinScore float64
}

// Result is the hybrid retriever's output page.
type Result struct {
	Items        []ScoredEntry
	NextCursor   string
	RetrievalMS  int64
}
