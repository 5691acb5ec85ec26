package engine

import "github.com/shevchenkoxx/lore-mcp/internal/store"

type upsertEntityResult struct {
	Entity  *store.CanonicalEntity `json:"entity"`
	Created bool                   `json:"created"`
}

// UpsertEntity resolves name exactly, creating a new canonical entity (with
// an auto-lowercased alias) when no exact match exists.
func (e *Engine) UpsertEntity(name string) (Result, error) {
	entity, created, err := e.store.UpsertEntity(name)
	if err != nil {
		return Result{}, err
	}
	uri := "entities/" + entity.ID
	if created {
		e.notify(uri)
	}
	verb := "resolved"
	if created {
		verb = "created"
	}
	return envelope(verb+" entity "+entity.Name, uri, upsertEntityResult{Entity: entity, Created: created}), nil
}

type mergeResult struct {
	KeepID      string `json:"keep_id"`
	MergeID     string `json:"merge_id"`
	MergedCount int    `json:"merged_count"`
}

// MergeEntities folds mergeID's triples, entries, and aliases into keepID
// and deletes the merged entity row, in one atomic batch.
func (e *Engine) MergeEntities(keepID, mergeID string) (Result, error) {
	merged, err := e.store.MergeEntities(keepID, mergeID)
	if err != nil {
		return Result{}, err
	}
	uri := "entities/" + keepID
	e.notify(uri)
	return envelope("merged entity "+mergeID+" into "+keepID, uri,
		mergeResult{KeepID: keepID, MergeID: mergeID, MergedCount: merged}), nil
}
