package engine

import "github.com/shevchenkoxx/lore-mcp/internal/store"

type undoResult struct {
	Reverted []string `json:"reverted"`
}

// Undo reverts the n most recent non-reverted transactions, most-recent
// first.
func (e *Engine) Undo(n int) (Result, error) {
	reverted, err := e.store.Undo(n)
	if err != nil {
		return Result{}, err
	}
	if len(reverted) > 0 {
		e.notify("transactions")
	}
	return envelope("reverted transactions", "undo", undoResult{Reverted: reverted}), nil
}

type historyResult struct {
	Items []store.Transaction `json:"items"`
}

// History returns the most recent transactions, optionally scoped to an
// entity type.
func (e *Engine) History(limit int, entityType store.EntityType) (Result, error) {
	items, err := e.store.History(limit, entityType)
	if err != nil {
		return Result{}, err
	}
	return envelope("history returned results", "history", historyResult{Items: items}), nil
}
