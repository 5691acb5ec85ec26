package conflict

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

type fakeLookup struct {
	triples []store.Triple
}

func (f fakeLookup) ActiveTriplesBySubjectPredicate(subject, predicate string) ([]store.Triple, error) {
	var out []store.Triple
	for _, t := range f.triples {
		if t.Subject == subject && t.Predicate == predicate {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestDetectConflict(t *testing.T) {
	lookup := fakeLookup{triples: []store.Triple{
		{ID: "t1", Subject: "Rust", Predicate: "creator", Object: "Graydon Hoare"},
	}}
	ci, err := Detect(lookup, "Rust", "creator", "Someone Else")
	require.NoError(t, err)
	require.NotNil(t, ci)
	require.Equal(t, "Graydon Hoare", ci.Existing.Object)
	require.ElementsMatch(t, []store.ConflictResolution{
		store.ResolveReplace, store.ResolveRetainBoth, store.ResolveReject,
	}, ci.Allowed)
}

func TestSameObjectIsNotConflict(t *testing.T) {
	lookup := fakeLookup{triples: []store.Triple{
		{ID: "t1", Subject: "Rust", Predicate: "creator", Object: "Graydon Hoare"},
	}}
	ci, err := Detect(lookup, "Rust", "creator", "Graydon Hoare")
	require.NoError(t, err)
	require.Nil(t, ci)
}

func TestNoExistingTripleIsNotConflict(t *testing.T) {
	ci, err := Detect(fakeLookup{}, "Rust", "creator", "Graydon Hoare")
	require.NoError(t, err)
	require.Nil(t, ci)
}
