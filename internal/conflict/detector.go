// Package conflict detects contradictory triples: two active triples
// sharing (subject, predicate) but disagreeing on object.
package conflict

import (
	"github.com/shevchenkoxx/lore-mcp/internal/idgen"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

// TripleLookup is the subset of the storage layer the detector needs. The
// store package's *Store satisfies it.
type TripleLookup interface {
	ActiveTriplesBySubjectPredicate(subject, predicate string) ([]store.Triple, error)
}

// Detect checks whether an incoming (subject, predicate, object) candidate
// contradicts any active triple with the same subject and predicate. A
// contradiction is reported as a ConflictInfo, never as an error; the only
// error returned is a failed triple lookup, passed through unchanged.
func Detect(lookup TripleLookup, subject, predicate, object string) (*store.ConflictInfo, error) {
	existing, err := lookup.ActiveTriplesBySubjectPredicate(subject, predicate)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Object == object {
			continue // same-object is not a conflict
		}
		return &store.ConflictInfo{
			ConflictID: idgen.New(),
			Subject:    subject,
			Predicate:  predicate,
			Existing:   t,
			Candidate: store.Triple{
				Subject:   subject,
				Predicate: predicate,
				Object:    object,
			},
			Allowed: []store.ConflictResolution{
				store.ResolveReplace,
				store.ResolveRetainBoth,
				store.ResolveReject,
			},
		}, nil
	}
	return nil, nil
}
