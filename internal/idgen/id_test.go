package idgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLength(t *testing.T) {
	id := New()
	require.Len(t, id, 26)
}

func TestSameMillisecondStrictlyIncreasing(t *testing.T) {
	g := &generator{}
	const ms = 1_700_000_000_000
	prev := g.next(ms)
	for i := 0; i < 200; i++ {
		id := g.next(ms)
		require.Greater(t, id, prev, "ids minted in the same millisecond must strictly increase")
		prev = id
	}
}

func TestLaterMillisecondSortsAfter(t *testing.T) {
	g := &generator{}
	first := g.next(1_700_000_000_000)
	second := g.next(1_700_000_000_001)
	require.Greater(t, second, first)
}

func TestAlphabetIsCrockford(t *testing.T) {
	id := New()
	for _, c := range id {
		require.Contains(t, crockford, string(c))
	}
}
