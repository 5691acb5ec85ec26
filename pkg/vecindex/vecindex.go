// Package vecindex implements the retriever's VectorIndex collaborator
// in-process, over the sqlite-vec vec0 virtual table.
package vecindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/log"
	"github.com/shevchenkoxx/lore-mcp/internal/retriever"
)

// Index is an in-process nearest-neighbor index backed by a vec0 virtual
// table, with a side table mapping rowids to entry ids (vec0 rowids are
// plain integers; entry ids are ULID-style strings).
type Index struct {
	db      *sql.DB
	dims    int
	enabled bool
}

// Open creates the backing tables and probes for vec0 support. If the
// extension is unavailable, the index is disabled and Query always returns
// an empty result with no error. The retriever then gets no semantic scores
// and, since no error is reported, keeps the semantic weight rather than
// redistributing it.
func Open(db *sql.DB, dims int) *Index {
	idx := &Index{db: db, dims: dims}
	idx.enabled = idx.detect()
	if idx.enabled {
		if err := idx.createSchema(); err != nil {
			log.Logger.Warn().Err(err).Msg("failed to create vec0 schema; disabling vector index")
			idx.enabled = false
		}
	} else {
		log.Logger.Warn().Msg("sqlite-vec extension not available; semantic scoring disabled")
	}
	return idx
}

func (idx *Index) detect() bool {
	_, err := idx.db.Exec(fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS vec_probe USING vec0(embedding float[%d])", idx.dims))
	if err != nil {
		return false
	}
	_, _ = idx.db.Exec("DROP TABLE IF EXISTS vec_probe")
	return true
}

func (idx *Index) createSchema() error {
	stmts := []string{
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_entries USING vec0(embedding float[%d])`, idx.dims),
		`CREATE TABLE IF NOT EXISTS vec_entry_map (rowid INTEGER PRIMARY KEY, entry_id TEXT NOT NULL UNIQUE)`,
	}
	for _, s := range stmts {
		if _, err := idx.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Enabled reports whether the vec0 extension was detected at Open time.
func (idx *Index) Enabled() bool { return idx.enabled }

// Upsert replaces the stored vector for entryID.
func (idx *Index) Upsert(ctx context.Context, entryID string, vector []float64) error {
	if !idx.enabled {
		return errs.Dependency("vector index not available", nil)
	}
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Internal("begin vector upsert", err)
	}
	defer tx.Rollback()

	var rowID int64
	err = tx.QueryRowContext(ctx, `SELECT rowid FROM vec_entry_map WHERE entry_id = ?`, entryID).Scan(&rowID)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx, `INSERT INTO vec_entry_map (entry_id) VALUES (?)`, entryID)
		if err != nil {
			return errs.Internal("insert vector map row", err)
		}
		rowID, err = res.LastInsertId()
		if err != nil {
			return errs.Internal("read inserted vector map rowid", err)
		}
	case err != nil:
		return errs.Internal("lookup vector map row", err)
	}

	blob, err := json.Marshal(vector)
	if err != nil {
		return errs.Internal("marshal vector", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO vec_entries(rowid, embedding) VALUES (?, ?)
		 ON CONFLICT(rowid) DO UPDATE SET embedding = excluded.embedding`, rowID, string(blob)); err != nil {
		return errs.Internal("upsert vector", err)
	}
	if err := tx.Commit(); err != nil {
		return errs.Internal("commit vector upsert", err)
	}
	return nil
}

// Delete removes entryID's vector, if present.
func (idx *Index) Delete(ctx context.Context, entryID string) error {
	if !idx.enabled {
		return nil
	}
	_, err := idx.db.ExecContext(ctx, `DELETE FROM vec_entries WHERE rowid = (SELECT rowid FROM vec_entry_map WHERE entry_id = ?)`, entryID)
	if err != nil {
		return errs.Internal("delete vector", err)
	}
	_, err = idx.db.ExecContext(ctx, `DELETE FROM vec_entry_map WHERE entry_id = ?`, entryID)
	if err != nil {
		return errs.Internal("delete vector map row", err)
	}
	return nil
}

// Query performs a top-k nearest-neighbor search, satisfying
// retriever.VectorIndex. An unavailable extension yields an empty result and
// no error, so the query proceeds without semantic scores.
func (idx *Index) Query(ctx context.Context, vector []float64, topK int) ([]retriever.VectorMatch, error) {
	if !idx.enabled {
		return nil, nil
	}
	blob, err := json.Marshal(vector)
	if err != nil {
		return nil, errs.Internal("marshal query vector", err)
	}
	rows, err := idx.db.QueryContext(ctx,
		`SELECT m.entry_id, v.distance
		 FROM vec_entries v JOIN vec_entry_map m ON m.rowid = v.rowid
		 WHERE v.embedding MATCH ? AND k = ?
		 ORDER BY v.distance`, string(blob), topK)
	if err != nil {
		return nil, errs.Dependency("vector query failed", err)
	}
	defer rows.Close()

	var out []retriever.VectorMatch
	for rows.Next() {
		var entryID string
		var distance float64
		if err := rows.Scan(&entryID, &distance); err != nil {
			return nil, errs.Internal("scan vector match", err)
		}
		out = append(out, retriever.VectorMatch{EntryID: entryID, Score: 1.0 / (1.0 + distance)})
	}
	return out, rows.Err()
}
