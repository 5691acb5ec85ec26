package retriever

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
	"github.com/shevchenkoxx/lore-mcp/pkg/pool"
)

const defaultLimit = 20

// Retriever runs the hybrid lexical/semantic/graph pipeline over a store.
// Embedder and Index may be nil, in which case the semantic scorer degrades
// and its weight is redistributed to lexical and graph.
type Retriever struct {
	Store    *store.Store
	Embedder Embedder
	Index    VectorIndex
}

// New builds a Retriever. embedder and index may be nil.
func New(st *store.Store, embedder Embedder, index VectorIndex) *Retriever {
	return &Retriever{Store: st, Embedder: embedder, Index: index}
}

// Query runs one retrieval: parallel lexical and semantic scoring, a
// graph expansion seeded from their union, weighted fusion, deterministic
// ordering, a minimum-score filter, and cursor-based pagination.
//
// Offset-based pagination is not supported; callers presenting an offset
// parameter must be rejected upstream before reaching Query.
func (r *Retriever) Query(ctx context.Context, q Query) (Result, error) {
	start := time.Now()
	if q.Text == "" {
		return Result{}, errs.Validation("query text is required")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	weights := DefaultWeights()
	if q.Weights != nil {
		weights = *q.Weights
	}
	depth := limit * 3

	var lexical map[string]float64
	var semantic map[string]float64
	var semanticOK bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lexical = lexicalScore(r.Store, q.Text, depth)
		return nil
	})
	g.Go(func() error {
		semantic, semanticOK = semanticScore(gctx, r.Embedder, r.Index, q.Text, depth)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if !semanticOK {
		weights = adjustForMissingSemantic(weights)
		semantic = nil
	}

	seeds := make(map[string]struct{}, len(lexical)+len(semantic))
	for id := range lexical {
		seeds[id] = struct{}{}
	}
	for id := range semantic {
		seeds[id] = struct{}{}
	}
	seedIDs := pool.GetStringSlice()
	defer pool.PutStringSlice(seedIDs)
	for id := range seeds {
		seedIDs = append(seedIDs, id)
	}
	graph := graphScore(r.Store, seedIDs)

	fused := fuse(lexical, semantic, graph, weights)
	if q.MinScore > 0 {
		for id, c := range fused {
			if totalScore(c, weights) < q.MinScore {
				delete(fused, id)
			}
		}
	}
	ordered := orderedIDs(fused, weights)

	page, next := paginate(ordered, q.Cursor, limit)
	byID, err := r.Store.EntriesByIDs(page)
	if err != nil {
		return Result{}, err
	}

	items := make([]ScoredEntry, 0, len(page))
	for _, id := range page {
		e, ok := byID[id]
		if !ok {
			continue // row deleted between scoring and hydration
		}
		c := fused[id]
		items = append(items, ScoredEntry{
			Entry:         e,
			Score:         totalScore(c, weights),
			LexicalScore:  c.lexical,
			SemanticScore: c.semantic,
			GraphScore:    c.graph,
			GraphHops:     c.hops,
		})
	}

	return Result{
		Items:       items,
		NextCursor:  next,
		RetrievalMS: time.Since(start).Milliseconds(),
	}, nil
}
