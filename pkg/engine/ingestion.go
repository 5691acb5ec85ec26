package engine

import (
	"github.com/shevchenkoxx/lore-mcp/internal/ingest"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

type ingestResult struct {
	TaskID            string `json:"task_id"`
	EntriesCreated    int    `json:"entries_created,omitempty"`
	DuplicatesSkipped int    `json:"duplicates_skipped,omitempty"`
}

// Ingest chunks and stores content, synchronously for small inputs and as a
// resumable background task above the sync thresholds.
func (e *Engine) Ingest(content, source string) (Result, error) {
	res, err := ingest.Ingest(e.store, content, source)
	if err != nil {
		return Result{}, err
	}
	uri := "ingestion/" + res.TaskID
	e.notify(uri)
	if res.Sync {
		return envelope("ingestion completed synchronously", uri, ingestResult{
			TaskID: res.TaskID, EntriesCreated: res.EntriesCreated, DuplicatesSkipped: res.DuplicatesSkipped,
		}), nil
	}
	return envelope("ingestion task queued", uri, ingestResult{TaskID: res.TaskID}), nil
}

type ingestionStatusResult struct {
	ID             string                `json:"id"`
	Status         store.IngestionStatus `json:"status"`
	TotalItems     int                   `json:"total_items"`
	ProcessedItems int                   `json:"processed_items"`
	Error          *string               `json:"error,omitempty"`
}

// IngestionStatus reports the lifecycle state of a background ingestion task.
func (e *Engine) IngestionStatus(taskID string) (Result, error) {
	task, err := e.store.GetIngestionTask(taskID)
	if err != nil {
		return Result{}, err
	}
	return envelope("ingestion task status", "ingestion/"+task.ID, ingestionStatusResult{
		ID: task.ID, Status: task.Status, TotalItems: task.TotalItems,
		ProcessedItems: task.ProcessedItems, Error: task.Error,
	}), nil
}
