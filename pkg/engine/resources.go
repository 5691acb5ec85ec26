package engine

import "github.com/shevchenkoxx/lore-mcp/internal/store"

const defaultResourceLimit = 50

// resourceLimit resolves the caller's requested page size to the default
// when unset, matching the store layer's own default/cap behavior.
func resourceLimit(limit int) int {
	if limit <= 0 {
		return defaultResourceLimit
	}
	if limit > 200 {
		return 200
	}
	return limit
}

type entriesPage struct {
	Items      []store.Entry `json:"items"`
	Count      int           `json:"count"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// ListEntries is the paginated entries read resource, newest id first.
func (e *Engine) ListEntries(limit int, cursor string) (Result, error) {
	limit = resourceLimit(limit)
	afterID, _ := decodeCursor(cursor)
	items, err := e.store.ListEntries(limit+1, afterID)
	if err != nil {
		return Result{}, err
	}
	page, next := trimEntries(items, limit)
	return envelope("entries resource page", "entries", entriesPage{Items: page, Count: len(page), NextCursor: next}), nil
}

func trimEntries(items []store.Entry, limit int) ([]store.Entry, string) {
	if limit <= 0 || len(items) <= limit {
		return items, ""
	}
	page := items[:limit]
	return page, encodeCursor(page[len(page)-1].ID)
}

type triplesPage struct {
	Items      []store.Triple `json:"items"`
	Count      int            `json:"count"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ListTriples is the paginated triples read resource, newest id first.
func (e *Engine) ListTriples(limit int, cursor string) (Result, error) {
	limit = resourceLimit(limit)
	afterID, _ := decodeCursor(cursor)
	items, err := e.store.ListTriples(limit+1, afterID)
	if err != nil {
		return Result{}, err
	}
	page, next := trimTriples(items, limit)
	return envelope("triples resource page", "triples", triplesPage{Items: page, Count: len(page), NextCursor: next}), nil
}

func trimTriples(items []store.Triple, limit int) ([]store.Triple, string) {
	if limit <= 0 || len(items) <= limit {
		return items, ""
	}
	page := items[:limit]
	return page, encodeCursor(page[len(page)-1].ID)
}

type transactionsPage struct {
	Items      []store.Transaction `json:"items"`
	Count      int                 `json:"count"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// ListTransactions is the paginated transactions read resource, newest id
// first.
func (e *Engine) ListTransactions(limit int, cursor string) (Result, error) {
	limit = resourceLimit(limit)
	afterID, _ := decodeCursor(cursor)
	items, err := e.store.ListTransactions(limit+1, afterID)
	if err != nil {
		return Result{}, err
	}
	page, next := trimTransactions(items, limit)
	return envelope("transactions resource page", "transactions", transactionsPage{Items: page, Count: len(page), NextCursor: next}), nil
}

func trimTransactions(items []store.Transaction, limit int) ([]store.Transaction, string) {
	if limit <= 0 || len(items) <= limit {
		return items, ""
	}
	page := items[:limit]
	return page, encodeCursor(page[len(page)-1].ID)
}
