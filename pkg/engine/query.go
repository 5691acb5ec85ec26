package engine

import (
	"context"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/retriever"
)

// QueryInput is the payload for the hybrid query operation.
type QueryInput struct {
	Text     string
	Limit    int
	Cursor   string
	Weights  *retriever.Weights
	MinScore float64
	// Offset, if non-nil, is rejected with a validation error: offset-based
	// pagination is not supported, only cursor-based.
	Offset *int
}

type queryResult struct {
	Items       []retriever.ScoredEntry `json:"items"`
	NextCursor  string                  `json:"next_cursor,omitempty"`
	RetrievalMS int64                   `json:"retrieval_ms"`
}

// Query runs the hybrid lexical/semantic/graph retrieval pipeline.
func (e *Engine) Query(ctx context.Context, in QueryInput) (Result, error) {
	if in.Offset != nil {
		return Result{}, errs.Validation("offset is not supported; use cursor")
	}
	res, err := e.retriever.Query(ctx, retriever.Query{
		Text: in.Text, Limit: in.Limit, Cursor: in.Cursor, Weights: in.Weights, MinScore: in.MinScore,
	})
	if err != nil {
		return Result{}, err
	}
	payload := queryResult{Items: res.Items, NextCursor: res.NextCursor, RetrievalMS: res.RetrievalMS}
	return envelope("query returned results", "query", payload), nil
}
