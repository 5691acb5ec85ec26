package store

import (
	"database/sql"

	"github.com/shevchenkoxx/lore-mcp/internal/clock"
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/idgen"
)

// CreateIngestionTask inserts a new task with the given status and input
// blob (either an external pointer or an inline JSON blob of content and
// source).
func (s *Store) CreateIngestionTask(status IngestionStatus, inputURI string, totalItems int) (*IngestionTask, error) {
	now := clock.Now()
	task := &IngestionTask{
		ID:         idgen.New(),
		Status:     status,
		InputURI:   inputURI,
		TotalItems: totalItems,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.db.Exec(
		`INSERT INTO ingestion_tasks (id, status, input_uri, total_items, processed_items, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, NULL, ?, ?)`,
		task.ID, string(task.Status), task.InputURI, task.TotalItems, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, errs.Internal("insert ingestion task", err)
	}
	return task, nil
}

// GetIngestionTask fetches a task by id.
func (s *Store) GetIngestionTask(id string) (*IngestionTask, error) {
	row := s.db.QueryRow(
		`SELECT id, status, input_uri, total_items, processed_items, error, created_at, updated_at
		 FROM ingestion_tasks WHERE id = ?`, id)
	task, err := scanIngestionTask(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFoundf("ingestion task %q not found", id)
	}
	if err != nil {
		return nil, errs.Internal("scan ingestion task", err)
	}
	return task, nil
}

// SetIngestionStatus moves a task's status forward.
func (s *Store) SetIngestionStatus(id string, status IngestionStatus, taskErr *string) error {
	_, err := s.db.Exec(
		`UPDATE ingestion_tasks SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(status), nullStr(taskErr), clock.Now(), id,
	)
	if err != nil {
		return errs.Internal("update ingestion task status", err)
	}
	return nil
}

// AdvanceIngestionProcessed sets processed_items, which must be monotone
// non-decreasing; callers advance it by one per chunk committed so a
// crashed batch can resume from the last committed count.
func (s *Store) AdvanceIngestionProcessed(id string, processed int) error {
	_, err := s.db.Exec(
		`UPDATE ingestion_tasks SET processed_items = ?, updated_at = ? WHERE id = ?`,
		processed, clock.Now(), id,
	)
	if err != nil {
		return errs.Internal("advance ingestion task", err)
	}
	return nil
}

// EntryExistsByContent reports whether an active entry with exactly this
// content already exists, for ingestion's content-hash-free exact dedup.
func (s *Store) EntryExistsByContent(content string) (bool, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM entries WHERE content = ? AND deleted_at IS NULL LIMIT 1`, content).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errs.Internal("check entry by content", err)
	}
	return true, nil
}

func scanIngestionTask(row scanner) (*IngestionTask, error) {
	var t IngestionTask
	var statusStr string
	var taskErr sql.NullString
	if err := row.Scan(&t.ID, &statusStr, &t.InputURI, &t.TotalItems, &t.ProcessedItems, &taskErr, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = IngestionStatus(statusStr)
	t.Error = ptrStr(taskErr)
	return &t, nil
}
