package retriever

import "encoding/base64"

// encodeCursor produces an opaque cursor token for id.
func encodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// decodeCursor decodes a cursor token. Any malformed input is reported as
// ok=false so the caller can silently fall back to the first page rather
// than trap callers with stale tokens.
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

// paginate slices the ordered id list starting just after the cursor's id
// (or from the start when the cursor is empty, invalid, or not present),
// returning the page and a next cursor when more results follow.
func paginate(ids []string, cursor string, limit int) (page []string, next string) {
	start := 0
	if id, ok := decodeCursor(cursor); ok {
		for i, candidate := range ids {
			if candidate == id {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(ids) {
		end = len(ids)
	}
	if start >= len(ids) {
		return nil, ""
	}
	page = ids[start:end]
	if end < len(ids) {
		next = encodeCursor(page[len(page)-1])
	}
	return page, next
}
