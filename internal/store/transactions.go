package store

import (
	"database/sql"
	"encoding/json"

	"github.com/shevchenkoxx/lore-mcp/internal/clock"
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/idgen"
	"github.com/shevchenkoxx/lore-mcp/internal/log"
)

type pendingUndo struct {
	ID             string
	Op             Op
	EntityType     EntityType
	EntityID       string
	BeforeSnapshot *string
	AfterSnapshot  *string
}

// Undo reverses the n most recent non-reverted, non-REVERT transactions,
// ordered (created_at desc, id desc), in one atomic batch. Returns the ids
// of the REVERT transactions it appended.
func (s *Store) Undo(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	var reverted []string
	err := s.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query(
			`SELECT id, op, entity_type, entity_id, before_snapshot, after_snapshot
			 FROM transactions WHERE reverted_by IS NULL AND op != 'REVERT'
			 ORDER BY created_at DESC, id DESC LIMIT ?`, n)
		if err != nil {
			return errs.Internal("select undo candidates", err)
		}
		var pending []pendingUndo
		for rows.Next() {
			var p pendingUndo
			var opStr, etStr string
			var before, after sql.NullString
			if err := rows.Scan(&p.ID, &opStr, &etStr, &p.EntityID, &before, &after); err != nil {
				rows.Close()
				return errs.Internal("scan transaction", err)
			}
			p.Op, p.EntityType = Op(opStr), EntityType(etStr)
			p.BeforeSnapshot, p.AfterSnapshot = ptrStr(before), ptrStr(after)
			pending = append(pending, p)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return errs.Internal("iterate transactions", err)
		}
		rows.Close()

		for _, p := range pending {
			revertID, err := applyUndo(tx, p)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(`UPDATE transactions SET reverted_by = ? WHERE id = ?`, revertID, p.ID); err != nil {
				return errs.Internal("stamp reverted_by", err)
			}
			reverted = append(reverted, revertID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reverted, nil
}

// applyUndo inverts a single transaction and appends the matching REVERT
// row with swapped snapshots, returning the REVERT transaction's id.
func applyUndo(tx *sql.Tx, p pendingUndo) (string, error) {
	switch p.Op {
	case OpCreate:
		if err := setDeleted(tx, p.EntityType, p.EntityID, true); err != nil {
			return "", err
		}
	case OpDelete:
		if err := setDeleted(tx, p.EntityType, p.EntityID, false); err != nil {
			return "", err
		}
	case OpUpdate:
		if err := restoreBefore(tx, p.EntityType, p.EntityID, p.BeforeSnapshot); err != nil {
			return "", err
		}
	case OpMerge:
		var snap MergeSnapshot
		if p.BeforeSnapshot != nil {
			if err := json.Unmarshal([]byte(*p.BeforeSnapshot), &snap); err != nil {
				return "", errs.Internal("unmarshal merge snapshot", err)
			}
		}
		if err := undoMergeTx(tx, snap); err != nil {
			return "", err
		}
	default:
		log.WithComponent("store").Warn().Str("op", string(p.Op)).Msg("undo of unknown operation kind; recording no-op revert")
	}

	revertID := idgen.New()
	if _, err := tx.Exec(
		`INSERT INTO transactions (id, op, entity_type, entity_id, before_snapshot, after_snapshot, reverted_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`,
		revertID, string(OpRevert), string(p.EntityType), p.EntityID, strPtrVal(p.AfterSnapshot), strPtrVal(p.BeforeSnapshot), clock.Now(),
	); err != nil {
		return "", errs.Internal("insert revert transaction", err)
	}
	return revertID, nil
}

func strPtrVal(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func setDeleted(tx *sql.Tx, et EntityType, id string, deleted bool) error {
	var value any
	if deleted {
		value = clock.Now()
	} else {
		value = nil
	}
	switch et {
	case EntityTypeEntry:
		if _, err := tx.Exec(`UPDATE entries SET deleted_at = ? WHERE id = ?`, value, id); err != nil {
			return errs.Internal("undo set deleted_at on entry", err)
		}
	case EntityTypeTriple:
		if _, err := tx.Exec(`UPDATE triples SET deleted_at = ? WHERE id = ?`, value, id); err != nil {
			return errs.Internal("undo set deleted_at on triple", err)
		}
	case EntityTypeEntity:
		if deleted {
			if _, err := tx.Exec(`DELETE FROM canonical_entities WHERE id = ?`, id); err != nil {
				return errs.Internal("undo delete entity", err)
			}
		}
		// entities have no soft-delete column; undoing an entity DELETE
		// never occurs since entities are only ever removed via merge.
	case EntityTypeAlias:
		if deleted {
			if _, err := tx.Exec(`DELETE FROM entity_aliases WHERE id = ?`, id); err != nil {
				return errs.Internal("undo delete alias", err)
			}
		}
	}
	return nil
}

func restoreBefore(tx *sql.Tx, et EntityType, id string, before *string) error {
	if before == nil {
		return nil
	}
	switch et {
	case EntityTypeEntry:
		var e Entry
		if err := json.Unmarshal([]byte(*before), &e); err != nil {
			return errs.Internal("unmarshal entry snapshot", err)
		}
		tagsJSON, err := json.Marshal(e.Tags)
		if err != nil {
			return errs.Internal("marshal tags", err)
		}
		if _, err := tx.Exec(
			`UPDATE entries SET topic=?, content=?, tags=?, source=?, actor=?, confidence=?, updated_at=? WHERE id = ?`,
			e.Topic, e.Content, string(tagsJSON), nullStr(e.Source), nullStr(e.Actor), nullFloat(e.Confidence), e.UpdatedAt, id,
		); err != nil {
			return errs.Internal("restore entry", err)
		}
	case EntityTypeTriple:
		var t Triple
		if err := json.Unmarshal([]byte(*before), &t); err != nil {
			return errs.Internal("unmarshal triple snapshot", err)
		}
		if _, err := tx.Exec(
			`UPDATE triples SET predicate=?, object=?, source=?, actor=?, confidence=? WHERE id = ?`,
			t.Predicate, t.Object, nullStr(t.Source), nullStr(t.Actor), nullFloat(t.Confidence), id,
		); err != nil {
			return errs.Internal("restore triple", err)
		}
	}
	return nil
}

// History returns the most recent transactions, optionally filtered by
// entity type.
func (s *Store) History(limit int, entityType EntityType) ([]Transaction, error) {
	limit = clampLimit(limit)
	sqlStr := `SELECT id, op, entity_type, entity_id, before_snapshot, after_snapshot, reverted_by, created_at
	           FROM transactions`
	var args []any
	if entityType != "" {
		sqlStr += ` WHERE entity_type = ?`
		args = append(args, string(entityType))
	}
	sqlStr += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errs.Internal("query history", err)
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, errs.Internal("scan transaction", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ListTransactions returns transactions ordered by id descending for the
// paginated read resource.
func (s *Store) ListTransactions(limit int, afterID string) ([]Transaction, error) {
	limit = clampLimit(limit)
	sqlStr := `SELECT id, op, entity_type, entity_id, before_snapshot, after_snapshot, reverted_by, created_at
	           FROM transactions`
	var args []any
	if afterID != "" {
		sqlStr += ` WHERE id < ?`
		args = append(args, afterID)
	}
	sqlStr += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errs.Internal("list transactions", err)
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, errs.Internal("scan transaction", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTransaction(row scanner) (*Transaction, error) {
	var t Transaction
	var opStr, etStr string
	var before, after, revertedBy sql.NullString
	if err := row.Scan(&t.ID, &opStr, &etStr, &t.EntityID, &before, &after, &revertedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Op, t.EntityType = Op(opStr), EntityType(etStr)
	t.BeforeSnapshot, t.AfterSnapshot, t.RevertedBy = ptrStr(before), ptrStr(after), ptrStr(revertedBy)
	return &t, nil
}
