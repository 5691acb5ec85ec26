// Package mentions scans free text for known canonical entity names using
// a single Aho-Corasick automaton, so ingestion can link new entries to
// entities already resolved in the store without re-running dictionary
// lookups per token.
package mentions

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
)

var english = stopwords.MustGet("en")

// isJoiner reports punctuation that commonly appears inside names, kept
// during canonicalization so multiword entities stay coherent (e.g.
// "O'Brien", "Jean-Luc", "AT&T").
func isJoiner(r rune) bool {
	switch r {
	case '\'', '’', '‘',
		'-', '–', '—',
		'·', '.', '_', '/', '#', '&':
		return true
	default:
		return false
	}
}

func isSeparator(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || isJoiner(r) {
		return false
	}
	return true
}

// Canonicalize folds text to lowercase, preserves letters/digits/joiners,
// and collapses everything else to single spaces. Used for both pattern
// compilation and document scanning so the two stay in lockstep.
func Canonicalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	lastWasSpace := true
	for _, ch := range s {
		c := unicode.ToLower(ch)
		if c == '’' || c == '‘' {
			c = '\''
		}
		if c == '–' || c == '—' {
			c = '-'
		}
		if unicode.IsLetter(c) || unicode.IsDigit(c) || isJoiner(c) {
			out.WriteRune(c)
			lastWasSpace = false
		} else if !lastWasSpace {
			out.WriteRune(' ')
			lastWasSpace = true
		}
	}
	result := out.String()
	if len(result) > 0 && result[len(result)-1] == ' ' {
		result = result[:len(result)-1]
	}
	return result
}

// RegisteredEntity is one canonical entity's known surface forms.
type RegisteredEntity struct {
	ID      string
	Name    string
	Aliases []string
}

// Dictionary matches canonical entity names and aliases against free text
// via a single Aho-Corasick automaton.
type Dictionary struct {
	ac           *ahocorasick.Automaton
	patternToIDs [][]string
	patternIndex map[string]int
	idToName     map[string]string
	patterns     []string
}

// Compile builds a Dictionary from the store's canonical entities.
func Compile(entities []RegisteredEntity) (*Dictionary, error) {
	d := &Dictionary{
		patternToIDs: [][]string{},
		patternIndex: make(map[string]int),
		idToName:     make(map[string]string),
		patterns:     []string{},
	}

	for _, e := range entities {
		d.idToName[e.ID] = e.Name
		surfaces := append([]string{e.Name}, e.Aliases...)
		for _, surface := range surfaces {
			key := Canonicalize(surface)
			if key == "" || isStopword(key) {
				continue
			}
			if idx, exists := d.patternIndex[key]; exists {
				d.patternToIDs[idx] = appendUnique(d.patternToIDs[idx], e.ID)
				continue
			}
			idx := len(d.patterns)
			d.patterns = append(d.patterns, key)
			d.patternIndex[key] = idx
			d.patternToIDs = append(d.patternToIDs, []string{e.ID})
		}
	}

	if len(d.patterns) == 0 {
		return d, nil
	}

	automaton, err := ahocorasick.NewBuilder().
		AddStrings(d.patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	d.ac = automaton
	return d, nil
}

// Match is a detected entity mention, with byte offsets into the original
// (non-canonicalized) text.
type Match struct {
	EntityID    string
	EntityName  string
	Start       int
	End         int
	MatchedText string
}

// Scan finds every known entity mention in text, in O(n) via the
// automaton, mapping canonicalized match offsets back to the original
// byte positions.
func (d *Dictionary) Scan(text string) []Match {
	if d.ac == nil {
		return nil
	}
	canonical := Canonicalize(text)
	canonToOrig := buildOffsetMap(text)

	raw := d.ac.FindAllOverlapping([]byte(canonical))
	out := make([]Match, 0, len(raw))
	for _, m := range raw {
		origStart := mapOffset(m.Start, canonToOrig, len(text))
		origEnd := mapOffset(m.End, canonToOrig, len(text))
		if origStart >= len(text) || origEnd > len(text) || origStart >= origEnd {
			continue
		}
		ids := d.patternToIDs[m.PatternID]
		for _, id := range ids {
			out = append(out, Match{
				EntityID:    id,
				EntityName:  d.idToName[id],
				Start:       origStart,
				End:         origEnd,
				MatchedText: text[origStart:origEnd],
			})
		}
	}
	return out
}

func buildOffsetMap(original string) []int {
	mapping := make([]int, 0, len(original)+1)
	lastWasSpace := true
	origPos := 0

	for _, ch := range original {
		runeLen := utf8.RuneLen(ch)
		c := unicode.ToLower(ch)
		if c == '’' || c == '‘' {
			c = '\''
		}
		if c == '–' || c == '—' {
			c = '-'
		}
		if unicode.IsLetter(c) || unicode.IsDigit(c) || isJoiner(c) {
			canonLen := utf8.RuneLen(c)
			for i := 0; i < canonLen; i++ {
				mapping = append(mapping, origPos)
			}
			lastWasSpace = false
		} else if !lastWasSpace {
			mapping = append(mapping, origPos)
			lastWasSpace = true
		}
		origPos += runeLen
	}
	mapping = append(mapping, origPos)
	return mapping
}

func mapOffset(canonOffset int, mapping []int, originalLen int) int {
	if canonOffset >= len(mapping) {
		return originalLen
	}
	if canonOffset < 0 {
		return 0
	}
	return mapping[canonOffset]
}

// isStopword reports whether a single-token canonicalized surface form is a
// common English word, via github.com/orsinium-labs/stopwords. Multi-word
// surface forms always pass through unfiltered — a stopword is only a false
// -positive risk as a standalone entity name or alias (e.g. an
// auto-generated single-word alias that collides with a common word), never
// as one component of a longer name.
func isStopword(key string) bool {
	if strings.Contains(key, " ") {
		return false
	}
	return english.Contains(key)
}

func appendUnique(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}
