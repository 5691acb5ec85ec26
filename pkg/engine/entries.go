package engine

import (
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/policy"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

// StoreInput is the payload for the store operation.
type StoreInput struct {
	Topic      string
	Content    string
	Tags       []string
	Source     *string
	Actor      *string
	Confidence *float64
	Category   *string
}

// Store validates policy, persists a new entry, and notifies on commit.
func (e *Engine) Store(in StoreInput) (Result, error) {
	if err := checkPolicy("store", policy.Params{
		"topic": in.Topic, "content": in.Content, "confidence": in.Confidence,
	}); err != nil {
		return Result{}, err
	}
	entry, err := e.store.CreateEntry(store.EntryInput{
		Topic: in.Topic, Content: in.Content, Tags: in.Tags,
		Source: in.Source, Actor: in.Actor, Confidence: in.Confidence, Category: in.Category,
	})
	if err != nil {
		return Result{}, err
	}
	uri := "entries/" + entry.ID
	e.notify(uri)
	return envelope("stored entry "+entry.ID, uri, entry), nil
}

// UpdateInput overlays fields onto an existing entry.
type UpdateInput struct {
	Topic      *string
	Content    *string
	Tags       *[]string
	Source     **string
	Actor      **string
	Confidence **float64
}

// Update overlays the given fields onto entry id.
func (e *Engine) Update(id string, in UpdateInput) (Result, error) {
	entry, err := e.store.UpdateEntry(id, store.EntryUpdate{
		Topic: in.Topic, Content: in.Content, Tags: in.Tags,
		Source: in.Source, Actor: in.Actor, Confidence: in.Confidence,
	})
	if err != nil {
		return Result{}, err
	}
	uri := "entries/" + entry.ID
	e.notify(uri)
	return envelope("updated entry "+entry.ID, uri, entry), nil
}

// DeleteInput names the row to soft-delete.
type DeleteInput struct {
	ID         string
	EntityType string // "entry" or "triple"
}

// deleteResult is the payload for the delete operation.
type deleteResult struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	Deleted    bool   `json:"deleted"`
}

// Delete soft-deletes an entry or a triple.
func (e *Engine) Delete(in DeleteInput) (Result, error) {
	var uri string
	switch in.EntityType {
	case "entry":
		if err := e.store.DeleteEntry(in.ID); err != nil {
			return Result{}, err
		}
		uri = "entries/" + in.ID
	case "triple":
		if err := e.store.DeleteTriple(in.ID); err != nil {
			return Result{}, err
		}
		uri = "triples/" + in.ID
	default:
		return Result{}, errs.Validation("entity_type must be one of entry, triple")
	}
	e.notify(uri)
	res := deleteResult{ID: in.ID, EntityType: in.EntityType, Deleted: true}
	return envelope("deleted "+in.EntityType+" "+in.ID, uri, res), nil
}
