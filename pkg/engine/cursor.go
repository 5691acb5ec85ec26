package engine

import "encoding/base64"

func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// decodeCursor decodes a cursor token, reporting ok=false for empty or
// malformed input so the caller falls back to the first page silently.
func decodeCursor(cursor string) (id string, ok bool) {
	if cursor == "" {
		return "", false
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", false
	}
	return string(b), true
}
