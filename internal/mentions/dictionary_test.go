package mentions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanFindsNameAndAlias(t *testing.T) {
	dict, err := Compile([]RegisteredEntity{
		{ID: "e1", Name: "Rust", Aliases: []string{"rust-lang"}},
		{ID: "e2", Name: "Graydon Hoare"},
	})
	require.NoError(t, err)

	matches := dict.Scan("Graydon Hoare created Rust in his spare time.")
	require.Len(t, matches, 2)

	var names []string
	for _, m := range matches {
		names = append(names, m.EntityName)
	}
	require.ElementsMatch(t, []string{"Graydon Hoare", "Rust"}, names)
}

func TestScanOnEmptyDictionaryReturnsNil(t *testing.T) {
	dict, err := Compile(nil)
	require.NoError(t, err)
	require.Nil(t, dict.Scan("anything at all"))
}

func TestCompileSkipsStopwordOnlyAliases(t *testing.T) {
	dict, err := Compile([]RegisteredEntity{
		{ID: "e1", Name: "Is", Aliases: []string{"The Thing"}},
	})
	require.NoError(t, err)

	require.Empty(t, dict.Scan("is this what we wanted?"))
	require.NotEmpty(t, dict.Scan("I finally found the thing we wanted."))
}

func TestCanonicalizePreservesJoiners(t *testing.T) {
	require.Equal(t, "jean-luc picard", Canonicalize("Jean-Luc Picard"))
	require.Equal(t, "at&t", Canonicalize("AT&T"))
}
