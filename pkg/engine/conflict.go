package engine

import (
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

// ResolveConflict applies a previously cached ConflictInfo's resolution:
// replace overwrites the existing triple's object with the candidate's,
// retain_both inserts the candidate alongside it, and reject leaves the
// store unchanged.
func (e *Engine) ResolveConflict(conflictID string, strategy store.ConflictResolution) (Result, error) {
	info, ok := e.cache.Load(conflictID)
	if !ok {
		return Result{}, errs.NotFoundf("conflict %q not found or expired", conflictID)
	}

	switch strategy {
	case store.ResolveReject:
		e.cache.Remove(conflictID)
		return envelope("conflict "+conflictID+" rejected; store unchanged", "conflicts/"+conflictID, nil), nil

	case store.ResolveReplace:
		object := info.Candidate.Object
		update := store.TripleUpdate{Object: &object}
		if info.Candidate.Source != nil {
			update.Source = &info.Candidate.Source
		}
		if info.Candidate.Actor != nil {
			update.Actor = &info.Candidate.Actor
		}
		if info.Candidate.Confidence != nil {
			update.Confidence = &info.Candidate.Confidence
		}
		triple, err := e.store.UpdateTriple(info.Existing.ID, update)
		if err != nil {
			return Result{}, err
		}
		e.cache.Remove(conflictID)
		uri := "triples/" + triple.ID
		e.notify(uri)
		return envelope("conflict "+conflictID+" resolved by replace", uri, triple), nil

	case store.ResolveRetainBoth:
		triple, err := e.store.CreateTriple(store.TripleInput{
			Subject: info.Candidate.Subject, Predicate: info.Candidate.Predicate, Object: info.Candidate.Object,
			Source: info.Candidate.Source, Actor: info.Candidate.Actor, Confidence: info.Candidate.Confidence,
		})
		if err != nil {
			return Result{}, err
		}
		e.cache.Remove(conflictID)
		uri := "triples/" + triple.ID
		e.notify(uri)
		return envelope("conflict "+conflictID+" resolved by retaining both", uri, triple), nil

	default:
		return Result{}, errs.Validation("strategy must be one of replace, retain_both, reject")
	}
}
