package retriever

import "strings"

// sanitizeFTSQuery tokenizes query by whitespace and wraps each token in
// double quotes, doubling any embedded quote, so the resulting string is
// always a sequence of balanced-quote FTS5 tokens regardless of input.
func sanitizeFTSQuery(query string) string {
	tokens := strings.Fields(query)
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(tok, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

// escapeLike escapes SQL LIKE metacharacters so user input matches
// literally when wrapped in surrounding wildcards.
func escapeLike(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
