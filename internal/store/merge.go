package store

import (
	"database/sql"
	"strings"

	"github.com/shevchenkoxx/lore-mcp/internal/clock"
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/idgen"
)

// MergeSnapshot is the MERGE transaction's snapshot shape: the exact set of
// row ids touched by the merge, so undo can reverse them per-row instead of
// bulk-rewriting by name (which would also move the kept entity's own
// references).
type MergeSnapshot struct {
	KeepID         string   `json:"keep_id"`
	KeepName       string   `json:"keep_name"`
	MergeID        string   `json:"merge_id"`
	MergeName      string   `json:"merge_name"`
	MergeCreatedAt string   `json:"merge_created_at"`
	SubjTripleIDs  []string `json:"subj_triple_ids"`
	ObjTripleIDs   []string `json:"obj_triple_ids"`
	MergeEntryIDs  []string `json:"merge_entry_ids"`
	MergeAliasIDs  []string `json:"merge_alias_ids"`
	NewAliasID     string   `json:"new_alias_id"`
}

// MergeEntities absorbs mergeID into keepID, rewriting all textual and
// relational references in one atomic batch and recording a reversible
// snapshot.
func (s *Store) MergeEntities(keepID, mergeID string) (mergedCount int, err error) {
	if keepID == mergeID {
		return 0, errs.Validation("cannot merge an entity with itself")
	}
	err = s.withTx(func(tx *sql.Tx) error {
		keep, err := getEntityTx(tx, keepID)
		if err != nil {
			return err
		}
		merge, err := getEntityTx(tx, mergeID)
		if err != nil {
			return err
		}

		snap := MergeSnapshot{
			KeepID:         keep.ID,
			KeepName:       keep.Name,
			MergeID:        merge.ID,
			MergeName:      merge.Name,
			MergeCreatedAt: merge.CreatedAt,
		}
		snap.SubjTripleIDs, err = idsWhere(tx, `SELECT id FROM triples WHERE subject = ? AND deleted_at IS NULL`, merge.Name)
		if err != nil {
			return err
		}
		snap.ObjTripleIDs, err = idsWhere(tx, `SELECT id FROM triples WHERE object = ? AND deleted_at IS NULL`, merge.Name)
		if err != nil {
			return err
		}
		snap.MergeEntryIDs, err = idsWhere(tx, `SELECT id FROM entries WHERE canonical_entity_id = ? AND deleted_at IS NULL`, merge.ID)
		if err != nil {
			return err
		}
		snap.MergeAliasIDs, err = idsWhere(tx, `SELECT id FROM entity_aliases WHERE canonical_entity_id = ?`, merge.ID)
		if err != nil {
			return err
		}
		snap.NewAliasID = idgen.New()

		union := make(map[string]struct{}, len(snap.SubjTripleIDs)+len(snap.ObjTripleIDs))
		for _, id := range snap.SubjTripleIDs {
			union[id] = struct{}{}
		}
		for _, id := range snap.ObjTripleIDs {
			union[id] = struct{}{}
		}

		if _, err := recordTx(tx, OpMerge, EntityTypeEntity, merge.ID, snap, snap); err != nil {
			return err
		}

		if _, err := tx.Exec(`UPDATE triples SET subject = ? WHERE subject = ? AND deleted_at IS NULL`, keep.Name, merge.Name); err != nil {
			return errs.Internal("rewrite triple subjects", err)
		}
		if _, err := tx.Exec(`UPDATE triples SET object = ? WHERE object = ? AND deleted_at IS NULL`, keep.Name, merge.Name); err != nil {
			return errs.Internal("rewrite triple objects", err)
		}
		if _, err := tx.Exec(`UPDATE entries SET canonical_entity_id = ? WHERE canonical_entity_id = ? AND deleted_at IS NULL`, keep.ID, merge.ID); err != nil {
			return errs.Internal("reassign entries", err)
		}
		if _, err := tx.Exec(`UPDATE entity_aliases SET canonical_entity_id = ? WHERE canonical_entity_id = ?`, keep.ID, merge.ID); err != nil {
			return errs.Internal("reassign aliases", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO entity_aliases (id, alias, canonical_entity_id, created_at) VALUES (?, ?, ?, ?)`,
			snap.NewAliasID, strings.ToLower(merge.Name), keep.ID, clock.Now(),
		); err != nil {
			return errs.Internal("insert merge alias", err)
		}
		if _, err := tx.Exec(`DELETE FROM canonical_entities WHERE id = ?`, merge.ID); err != nil {
			return errs.Internal("delete merged entity", err)
		}

		mergedCount = len(union)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return mergedCount, nil
}

// undoMergeTx reverses a MERGE using the row-id lists recorded in snap:
// recreates the merged entity with its original created_at, rewrites only
// the recorded triples back, reassigns only the recorded entries/aliases
// back, and removes the alias introduced during the merge.
func undoMergeTx(tx *sql.Tx, snap MergeSnapshot) error {
	if _, err := tx.Exec(
		`INSERT INTO canonical_entities (id, name, created_at) VALUES (?, ?, ?)`,
		snap.MergeID, snap.MergeName, snap.MergeCreatedAt,
	); err != nil {
		return errs.Internal("recreate merged entity", err)
	}
	if err := rewriteTripleField(tx, "subject", snap.SubjTripleIDs, snap.MergeName); err != nil {
		return err
	}
	if err := rewriteTripleField(tx, "object", snap.ObjTripleIDs, snap.MergeName); err != nil {
		return err
	}
	if err := reassignIDs(tx, "entries", "canonical_entity_id", snap.MergeEntryIDs, snap.MergeID); err != nil {
		return err
	}
	if err := reassignIDs(tx, "entity_aliases", "canonical_entity_id", snap.MergeAliasIDs, snap.MergeID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM entity_aliases WHERE id = ?`, snap.NewAliasID); err != nil {
		return errs.Internal("remove merge alias", err)
	}
	return nil
}

func rewriteTripleField(tx *sql.Tx, column string, ids []string, value string) error {
	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE triples SET `+column+` = ? WHERE id = ?`, value, id); err != nil {
			return errs.Internal("rewrite triple "+column, err)
		}
	}
	return nil
}

func reassignIDs(tx *sql.Tx, table, column string, ids []string, value string) error {
	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE `+table+` SET `+column+` = ? WHERE id = ?`, value, id); err != nil {
			return errs.Internal("reassign "+table, err)
		}
	}
	return nil
}

func idsWhere(tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, errs.Internal("collect ids", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errs.Internal("scan id", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func getEntityTx(tx *sql.Tx, id string) (*CanonicalEntity, error) {
	var ent CanonicalEntity
	row := tx.QueryRow(`SELECT id, name, created_at FROM canonical_entities WHERE id = ?`, id)
	if err := row.Scan(&ent.ID, &ent.Name, &ent.CreatedAt); err == sql.ErrNoRows {
		return nil, errs.NotFoundf("entity %q not found", id)
	} else if err != nil {
		return nil, errs.Internal("scan entity", err)
	}
	return &ent, nil
}
