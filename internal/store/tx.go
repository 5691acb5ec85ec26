package store

import (
	"database/sql"
	"encoding/json"

	"github.com/shevchenkoxx/lore-mcp/internal/clock"
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/idgen"
)

// withTx runs fn inside a single database transaction while holding the
// store's mutation mutex, so the data mutation and its transaction-log row
// commit as one atomic batch and no two mutations interleave.
func (s *Store) withTx(fn func(*sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errs.Dependency("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errs.Dependency("commit transaction", err)
	}
	return nil
}

// recordTx appends one transaction-log row. before/after are marshaled to
// JSON when non-nil; callers pass nil for the side an op doesn't carry
// (CREATE has no before, DELETE has no after).
func recordTx(tx *sql.Tx, op Op, entityType EntityType, entityID string, before, after any) (string, error) {
	id := idgen.New()
	beforeJSON, err := marshalSnapshot(before)
	if err != nil {
		return "", errs.Internal("marshal before snapshot", err)
	}
	afterJSON, err := marshalSnapshot(after)
	if err != nil {
		return "", errs.Internal("marshal after snapshot", err)
	}
	_, err = tx.Exec(
		`INSERT INTO transactions (id, op, entity_type, entity_id, before_snapshot, after_snapshot, reverted_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`,
		id, string(op), string(entityType), entityID, beforeJSON, afterJSON, clock.Now(),
	)
	if err != nil {
		return "", errs.Internal("insert transaction", err)
	}
	return id, nil
}

func marshalSnapshot(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
