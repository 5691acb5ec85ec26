package store

import (
	"database/sql"

	"github.com/shevchenkoxx/lore-mcp/internal/clock"
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/idgen"
)

// TripleInput is the payload for creating a triple.
type TripleInput struct {
	Subject    string
	Predicate  string
	Object     string
	Source     *string
	Actor      *string
	Confidence *float64
}

// TripleUpdate overlays fields onto an existing triple; nil means
// unchanged.
type TripleUpdate struct {
	Predicate  *string
	Object     *string
	Source     **string
	Actor      **string
	Confidence **float64
}

func validateTriple(subject, predicate, object string) error {
	for _, f := range []string{subject, predicate, object} {
		if len(f) > maxTripleLen {
			return errs.Validationf("triple field exceeds %d characters", maxTripleLen)
		}
	}
	return nil
}

// CreateTriple validates and inserts a new triple.
func (s *Store) CreateTriple(in TripleInput) (*Triple, error) {
	if err := validateTriple(in.Subject, in.Predicate, in.Object); err != nil {
		return nil, err
	}
	t := &Triple{
		ID:         idgen.New(),
		Subject:    in.Subject,
		Predicate:  in.Predicate,
		Object:     in.Object,
		Source:     in.Source,
		Actor:      in.Actor,
		Confidence: in.Confidence,
		Status:     "active",
		CreatedAt:  clock.Now(),
	}
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO triples (id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
			t.ID, t.Subject, t.Predicate, t.Object, nullStr(t.Source), nullStr(t.Actor),
			nullFloat(t.Confidence), t.Status, t.CreatedAt,
		); err != nil {
			return errs.Internal("insert triple", err)
		}
		_, err := recordTx(tx, OpCreate, EntityTypeTriple, t.ID, nil, t)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTriple fetches an active triple by id.
func (s *Store) GetTriple(id string) (*Triple, error) {
	row := s.db.QueryRow(
		`SELECT id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at
		 FROM triples WHERE id = ? AND deleted_at IS NULL`, id)
	tr, err := scanTriple(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFoundf("triple %q not found", id)
	}
	if err != nil {
		return nil, errs.Internal("scan triple", err)
	}
	return tr, nil
}

// UpdateTriple overlays fields onto the current row.
func (s *Store) UpdateTriple(id string, in TripleUpdate) (*Triple, error) {
	var updated *Triple
	err := s.withTx(func(tx *sql.Tx) error {
		before, err := getTripleTx(tx, id)
		if err != nil {
			return err
		}
		after := *before
		if in.Predicate != nil {
			after.Predicate = *in.Predicate
		}
		if in.Object != nil {
			after.Object = *in.Object
		}
		if in.Source != nil {
			after.Source = *in.Source
		}
		if in.Actor != nil {
			after.Actor = *in.Actor
		}
		if in.Confidence != nil {
			after.Confidence = *in.Confidence
		}
		if err := validateTriple(after.Subject, after.Predicate, after.Object); err != nil {
			return err
		}
		if _, err := tx.Exec(
			`UPDATE triples SET predicate=?, object=?, source=?, actor=?, confidence=? WHERE id = ?`,
			after.Predicate, after.Object, nullStr(after.Source), nullStr(after.Actor), nullFloat(after.Confidence), id,
		); err != nil {
			return errs.Internal("update triple", err)
		}
		if _, err := recordTx(tx, OpUpdate, EntityTypeTriple, id, before, &after); err != nil {
			return err
		}
		updated = &after
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTriple soft-deletes a triple.
func (s *Store) DeleteTriple(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		before, err := getTripleTx(tx, id)
		if err != nil {
			return err
		}
		now := clock.Now()
		if _, err := tx.Exec(`UPDATE triples SET deleted_at = ? WHERE id = ?`, now, id); err != nil {
			return errs.Internal("delete triple", err)
		}
		_, err = recordTx(tx, OpDelete, EntityTypeTriple, id, before, nil)
		return err
	})
}

// UpsertTriple finds the active triple matching subject+predicate exactly
// and updates its object/provenance, or inserts a new triple.
func (s *Store) UpsertTriple(in TripleInput) (triple *Triple, created bool, err error) {
	if err := validateTriple(in.Subject, in.Predicate, in.Object); err != nil {
		return nil, false, err
	}
	err = s.withTx(func(tx *sql.Tx) error {
		row := tx.QueryRow(
			`SELECT id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at
			 FROM triples WHERE subject = ? AND predicate = ? AND deleted_at IS NULL`,
			in.Subject, in.Predicate)
		existing, scanErr := scanTriple(row)
		if scanErr == sql.ErrNoRows {
			t := &Triple{
				ID:         idgen.New(),
				Subject:    in.Subject,
				Predicate:  in.Predicate,
				Object:     in.Object,
				Source:     in.Source,
				Actor:      in.Actor,
				Confidence: in.Confidence,
				Status:     "active",
				CreatedAt:  clock.Now(),
			}
			if _, err := tx.Exec(
				`INSERT INTO triples (id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
				t.ID, t.Subject, t.Predicate, t.Object, nullStr(t.Source), nullStr(t.Actor),
				nullFloat(t.Confidence), t.Status, t.CreatedAt,
			); err != nil {
				return errs.Internal("insert triple", err)
			}
			if _, err := recordTx(tx, OpCreate, EntityTypeTriple, t.ID, nil, t); err != nil {
				return err
			}
			triple, created = t, true
			return nil
		}
		if scanErr != nil {
			return errs.Internal("scan triple", scanErr)
		}
		after := *existing
		after.Object = in.Object
		if in.Source != nil {
			after.Source = in.Source
		}
		if in.Actor != nil {
			after.Actor = in.Actor
		}
		if in.Confidence != nil {
			after.Confidence = in.Confidence
		}
		if _, err := tx.Exec(
			`UPDATE triples SET object=?, source=?, actor=?, confidence=? WHERE id = ?`,
			after.Object, nullStr(after.Source), nullStr(after.Actor), nullFloat(after.Confidence), after.ID,
		); err != nil {
			return errs.Internal("update triple", err)
		}
		if _, err := recordTx(tx, OpUpdate, EntityTypeTriple, after.ID, existing, &after); err != nil {
			return err
		}
		triple, created = &after, false
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return triple, created, nil
}

// TripleQuery filters triples for query_graph.
type TripleQuery struct {
	Subject   string
	Predicate string
	Object    string
	Limit     int
}

// QueryTriples returns active triples matching the given substring filters.
func (s *Store) QueryTriples(q TripleQuery) ([]Triple, error) {
	limit := clampLimit(q.Limit)
	sqlStr := `SELECT id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at
	           FROM triples WHERE deleted_at IS NULL`
	var args []any
	if q.Subject != "" {
		sqlStr += ` AND subject LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(q.Subject)+"%")
	}
	if q.Predicate != "" {
		sqlStr += ` AND predicate LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(q.Predicate)+"%")
	}
	if q.Object != "" {
		sqlStr += ` AND object LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(q.Object)+"%")
	}
	sqlStr += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errs.Internal("query triples", err)
	}
	defer rows.Close()
	var out []Triple
	for rows.Next() {
		t, err := scanTriple(rows)
		if err != nil {
			return nil, errs.Internal("scan triple", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ListTriples returns triples ordered by id descending for the paginated
// read resource.
func (s *Store) ListTriples(limit int, afterID string) ([]Triple, error) {
	limit = clampLimit(limit)
	sqlStr := `SELECT id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at
	           FROM triples WHERE deleted_at IS NULL`
	var args []any
	if afterID != "" {
		sqlStr += ` AND id < ?`
		args = append(args, afterID)
	}
	sqlStr += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errs.Internal("list triples", err)
	}
	defer rows.Close()
	var out []Triple
	for rows.Next() {
		t, err := scanTriple(rows)
		if err != nil {
			return nil, errs.Internal("scan triple", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ActiveTriplesForSubjectOrObject returns active triples where subject or
// object equals term, used by the graph scorer's single-hop expansion.
func (s *Store) ActiveTriplesForSubjectOrObject(term string) ([]Triple, error) {
	rows, err := s.db.Query(
		`SELECT id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at
		 FROM triples WHERE deleted_at IS NULL AND (subject = ? OR object = ?)`, term, term)
	if err != nil {
		return nil, errs.Internal("query triples by term", err)
	}
	defer rows.Close()
	var out []Triple
	for rows.Next() {
		t, err := scanTriple(rows)
		if err != nil {
			return nil, errs.Internal("scan triple", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// ActiveTriplesBySubjectPredicate returns active triples sharing the given
// subject and predicate, used by the conflict detector.
func (s *Store) ActiveTriplesBySubjectPredicate(subject, predicate string) ([]Triple, error) {
	rows, err := s.db.Query(
		`SELECT id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at
		 FROM triples WHERE deleted_at IS NULL AND subject = ? AND predicate = ?`, subject, predicate)
	if err != nil {
		return nil, errs.Internal("query triples by subject+predicate", err)
	}
	defer rows.Close()
	var out []Triple
	for rows.Next() {
		t, err := scanTriple(rows)
		if err != nil {
			return nil, errs.Internal("scan triple", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTriple(row scanner) (*Triple, error) {
	var t Triple
	var source, actor, deletedAt sql.NullString
	var confidence sql.NullFloat64
	if err := row.Scan(
		&t.ID, &t.Subject, &t.Predicate, &t.Object, &source, &actor, &confidence,
		&t.Status, &t.CreatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	t.Source = ptrStr(source)
	t.Actor = ptrStr(actor)
	t.Confidence = ptrFloat(confidence)
	t.DeletedAt = ptrStr(deletedAt)
	return &t, nil
}

func getTripleTx(tx *sql.Tx, id string) (*Triple, error) {
	row := tx.QueryRow(
		`SELECT id, subject, predicate, object, source, actor, confidence, status, created_at, deleted_at
		 FROM triples WHERE id = ? AND deleted_at IS NULL`, id)
	t, err := scanTriple(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFoundf("triple %q not found", id)
	}
	if err != nil {
		return nil, errs.Internal("scan triple", err)
	}
	return t, nil
}
