package engine

import (
	"github.com/shevchenkoxx/lore-mcp/internal/conflict"
	"github.com/shevchenkoxx/lore-mcp/internal/policy"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
	"github.com/shevchenkoxx/lore-mcp/pkg/response"
)

// RelateInput is the payload for the relate operation.
type RelateInput struct {
	Subject    string
	Predicate  string
	Object     string
	Source     *string
	Actor      *string
	Confidence *float64
}

type relateResult struct {
	Triple   *store.Triple       `json:"triple,omitempty"`
	Conflict *store.ConflictInfo `json:"conflict,omitempty"`
}

// Relate inserts a new triple, or returns a ConflictInfo when an active
// triple already holds the same subject+predicate with a different object.
func (e *Engine) Relate(in RelateInput) (Result, error) {
	if err := checkPolicy("relate", policy.Params{
		"subject": in.Subject, "predicate": in.Predicate, "object": in.Object, "confidence": in.Confidence,
	}); err != nil {
		return Result{}, err
	}
	info, err := conflict.Detect(e.store, in.Subject, in.Predicate, in.Object)
	if err != nil {
		return Result{}, err
	}
	if info != nil {
		info.Candidate.Source = in.Source
		info.Candidate.Actor = in.Actor
		info.Candidate.Confidence = in.Confidence
		if err := e.cache.Save(*info); err != nil {
			return Result{}, err
		}
		return envelope("conflict detected for "+in.Subject+" "+in.Predicate, "conflicts/"+info.ConflictID,
			relateResult{Conflict: info}), nil
	}
	triple, err := e.store.CreateTriple(store.TripleInput{
		Subject: in.Subject, Predicate: in.Predicate, Object: in.Object,
		Source: in.Source, Actor: in.Actor, Confidence: in.Confidence,
	})
	if err != nil {
		return Result{}, err
	}
	uri := "triples/" + triple.ID
	e.notify(uri)
	return envelope("related "+in.Subject+" "+in.Predicate+" "+in.Object, uri, relateResult{Triple: triple}), nil
}

// QueryGraphInput filters the triple graph.
type QueryGraphInput struct {
	Subject   string
	Predicate string
	Object    string
	Limit     int
}

type queryGraphResult struct {
	Items      []store.Triple `json:"items"`
	NextCursor *string        `json:"next_cursor"`
}

// QueryGraph returns triples matching the given substring filters. This
// resource is not cursor-paginated; next_cursor is always null.
func (e *Engine) QueryGraph(in QueryGraphInput) (Result, error) {
	triples, err := e.store.QueryTriples(store.TripleQuery{
		Subject: in.Subject, Predicate: in.Predicate, Object: in.Object, Limit: in.Limit,
	})
	if err != nil {
		return Result{}, err
	}
	return envelope("graph query returned results", "query_graph", queryGraphResult{Items: triples, NextCursor: nil}), nil
}

// GraphView returns a node/edge rendering of the triples matching the given
// filters, for clients that visualize the graph rather than list rows.
func (e *Engine) GraphView(in QueryGraphInput) (Result, error) {
	triples, err := e.store.QueryTriples(store.TripleQuery{
		Subject: in.Subject, Predicate: in.Predicate, Object: in.Object, Limit: in.Limit,
	})
	if err != nil {
		return Result{}, err
	}
	sg := response.FromTriples(triples)
	return envelope("graph view returned results", "graph_view", sg), nil
}

// UpdateTripleInput overlays fields onto an existing triple.
type UpdateTripleInput struct {
	Predicate  *string
	Object     *string
	Source     **string
	Actor      **string
	Confidence **float64
}

// UpdateTriple overlays the given fields onto triple id.
func (e *Engine) UpdateTriple(id string, in UpdateTripleInput) (Result, error) {
	triple, err := e.store.UpdateTriple(id, store.TripleUpdate{
		Predicate: in.Predicate, Object: in.Object, Source: in.Source, Actor: in.Actor, Confidence: in.Confidence,
	})
	if err != nil {
		return Result{}, err
	}
	uri := "triples/" + triple.ID
	e.notify(uri)
	return envelope("updated triple "+triple.ID, uri, triple), nil
}

type upsertTripleResult struct {
	Triple  *store.Triple `json:"triple"`
	Created bool          `json:"created"`
}

// UpsertTriple inserts a new (subject,predicate) triple or updates the
// existing one's object.
func (e *Engine) UpsertTriple(in RelateInput) (Result, error) {
	triple, created, err := e.store.UpsertTriple(store.TripleInput{
		Subject: in.Subject, Predicate: in.Predicate, Object: in.Object,
		Source: in.Source, Actor: in.Actor, Confidence: in.Confidence,
	})
	if err != nil {
		return Result{}, err
	}
	uri := "triples/" + triple.ID
	e.notify(uri)
	verb := "updated"
	if created {
		verb = "created"
	}
	return envelope(verb+" triple "+triple.ID, uri, upsertTripleResult{Triple: triple, Created: created}), nil
}
