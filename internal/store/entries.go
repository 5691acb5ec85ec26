package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shevchenkoxx/lore-mcp/internal/clock"
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/idgen"
)

const (
	maxTopicLen   = 1000
	maxContentLen = 100_000
	maxTripleLen  = 2000
	defaultLimit  = 50
	maxLimit      = 200
)

// EntryInput is the payload for creating an entry.
type EntryInput struct {
	Topic             string
	Content           string
	Tags              []string
	Source            *string
	Actor             *string
	Confidence        *float64
	Category          *string
	CanonicalEntityID *string
}

// EntryUpdate is a field-level overlay: a nil pointer means "leave
// unchanged", a non-nil pointer to a nil-valued field means "set to null".
type EntryUpdate struct {
	Topic      *string
	Content    *string
	Tags       *[]string
	Source     **string
	Actor      **string
	Confidence **float64
}

func validateEntry(topic, content string) error {
	if len(topic) > maxTopicLen {
		return errs.Validationf("topic exceeds %d characters", maxTopicLen)
	}
	if len(content) > maxContentLen {
		return errs.Validationf("content exceeds %d characters", maxContentLen)
	}
	return nil
}

// CreateEntry validates and inserts a new entry, recording a CREATE
// transaction in the same atomic batch.
func (s *Store) CreateEntry(in EntryInput) (*Entry, error) {
	if err := validateEntry(in.Topic, in.Content); err != nil {
		return nil, err
	}
	now := clock.Now()
	e := &Entry{
		ID:                idgen.New(),
		Topic:             in.Topic,
		Content:           in.Content,
		Tags:              in.Tags,
		Source:            in.Source,
		Actor:             in.Actor,
		Confidence:        in.Confidence,
		Status:            "active",
		Category:          in.Category,
		CanonicalEntityID: in.CanonicalEntityID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	tagsJSON, err := json.Marshal(e.Tags)
	if err != nil {
		return nil, errs.Internal("marshal tags", err)
	}

	err = s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO entries (id, topic, content, tags, source, actor, confidence, valid_from, valid_to, status, category, canonical_entity_id, created_at, updated_at, deleted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?, ?, ?, ?, NULL)`,
			e.ID, e.Topic, e.Content, string(tagsJSON), nullStr(e.Source), nullStr(e.Actor),
			nullFloat(e.Confidence), e.Status, nullStr(e.Category), nullStr(e.CanonicalEntityID),
			e.CreatedAt, e.UpdatedAt,
		)
		if err != nil {
			return errs.Internal("insert entry", err)
		}
		_, err = recordTx(tx, OpCreate, EntityTypeEntry, e.ID, nil, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetEntry fetches an entry by id, failing not_found if missing or
// soft-deleted.
func (s *Store) GetEntry(id string) (*Entry, error) {
	row := s.db.QueryRow(
		`SELECT id, topic, content, tags, source, actor, confidence, valid_from, valid_to,
		        status, category, canonical_entity_id, created_at, updated_at, deleted_at
		 FROM entries WHERE id = ? AND deleted_at IS NULL`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFoundf("entry %q not found", id)
	}
	if err != nil {
		return nil, errs.Internal("scan entry", err)
	}
	return e, nil
}

// UpdateEntry overlays the given fields onto the current row.
func (s *Store) UpdateEntry(id string, in EntryUpdate) (*Entry, error) {
	var updated *Entry
	err := s.withTx(func(tx *sql.Tx) error {
		before, err := getEntryTx(tx, id)
		if err != nil {
			return err
		}
		after := *before
		if in.Topic != nil {
			after.Topic = *in.Topic
		}
		if in.Content != nil {
			after.Content = *in.Content
		}
		if in.Tags != nil {
			after.Tags = *in.Tags
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
		if err := validateEntry(after.Topic, after.Content); err != nil {
			return err
		}
		after.UpdatedAt = clock.Now()

		tagsJSON, err := json.Marshal(after.Tags)
		if err != nil {
			return errs.Internal("marshal tags", err)
		}
		_, err = tx.Exec(
			`UPDATE entries SET topic=?, content=?, tags=?, source=?, actor=?, confidence=?, updated_at=? WHERE id = ?`,
			after.Topic, after.Content, string(tagsJSON), nullStr(after.Source), nullStr(after.Actor),
			nullFloat(after.Confidence), after.UpdatedAt, id,
		)
		if err != nil {
			return errs.Internal("update entry", err)
		}
		if _, err := recordTx(tx, OpUpdate, EntityTypeEntry, id, before, &after); err != nil {
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

// DeleteEntry soft-deletes an entry, recording a DELETE transaction whose
// before snapshot is the row as it existed.
func (s *Store) DeleteEntry(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		before, err := getEntryTx(tx, id)
		if err != nil {
			return err
		}
		now := clock.Now()
		if _, err := tx.Exec(`UPDATE entries SET deleted_at = ? WHERE id = ?`, now, id); err != nil {
			return errs.Internal("delete entry", err)
		}
		_, err = recordTx(tx, OpDelete, EntityTypeEntry, id, before, nil)
		return err
	})
}

// EntryQuery filters entries for the store query operation.
type EntryQuery struct {
	Topic   string
	Content string
	Tags    []string
	Limit   int
}

// QueryEntries returns active entries matching the given filters, newest
// first.
func (s *Store) QueryEntries(q EntryQuery) ([]Entry, error) {
	limit := clampLimit(q.Limit)
	sqlStr := `SELECT id, topic, content, tags, source, actor, confidence, valid_from, valid_to,
	                  status, category, canonical_entity_id, created_at, updated_at, deleted_at
	           FROM entries WHERE deleted_at IS NULL`
	var args []any
	if q.Topic != "" {
		sqlStr += ` AND topic LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(q.Topic)+"%")
	}
	if q.Content != "" {
		sqlStr += ` AND content LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(q.Content)+"%")
	}
	// Over-fetch so post-fetch tag filtering doesn't starve the page.
	fetchLimit := limit
	if len(q.Tags) > 0 {
		fetchLimit = maxLimit
	}
	sqlStr += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, fetchLimit)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errs.Internal("query entries", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errs.Internal("scan entry", err)
		}
		if len(q.Tags) > 0 && !hasAllTags(e.Tags, q.Tags) {
			continue
		}
		out = append(out, *e)
		if len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}

// ListEntries returns entries ordered by id descending for the paginated
// read resource, starting strictly after afterID when non-empty.
func (s *Store) ListEntries(limit int, afterID string) ([]Entry, error) {
	limit = clampLimit(limit)
	sqlStr := `SELECT id, topic, content, tags, source, actor, confidence, valid_from, valid_to,
	                  status, category, canonical_entity_id, created_at, updated_at, deleted_at
	           FROM entries WHERE deleted_at IS NULL`
	var args []any
	if afterID != "" {
		sqlStr += ` AND id < ?`
		args = append(args, afterID)
	}
	sqlStr += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errs.Internal("list entries", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errs.Internal("scan entry", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// EntriesByIDs hydrates a set of entry ids, preserving no particular order.
func (s *Store) EntriesByIDs(ids []string) (map[string]Entry, error) {
	out := make(map[string]Entry, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	sqlStr := fmt.Sprintf(
		`SELECT id, topic, content, tags, source, actor, confidence, valid_from, valid_to,
		        status, category, canonical_entity_id, created_at, updated_at, deleted_at
		 FROM entries WHERE deleted_at IS NULL AND id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := s.db.Query(sqlStr, args...)
	if err != nil {
		return nil, errs.Internal("hydrate entries", err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errs.Internal("scan entry", err)
		}
		out[e.ID] = *e
	}
	return out, rows.Err()
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var e Entry
	var tagsJSON string
	var source, actor, validFrom, validTo, category, canonicalID, deletedAt sql.NullString
	var confidence sql.NullFloat64
	if err := row.Scan(
		&e.ID, &e.Topic, &e.Content, &tagsJSON, &source, &actor, &confidence,
		&validFrom, &validTo, &e.Status, &category, &canonicalID, &e.CreatedAt, &e.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		e.Tags = nil
	}
	e.Source = ptrStr(source)
	e.Actor = ptrStr(actor)
	e.Confidence = ptrFloat(confidence)
	e.ValidFrom = ptrStr(validFrom)
	e.ValidTo = ptrStr(validTo)
	e.Category = ptrStr(category)
	e.CanonicalEntityID = ptrStr(canonicalID)
	e.DeletedAt = ptrStr(deletedAt)
	return &e, nil
}

// getEntryTx fetches an active entry for mutation inside an open
// transaction, so update/delete observe a consistent snapshot.
func getEntryTx(tx *sql.Tx, id string) (*Entry, error) {
	row := tx.QueryRow(
		`SELECT id, topic, content, tags, source, actor, confidence, valid_from, valid_to,
		        status, category, canonical_entity_id, created_at, updated_at, deleted_at
		 FROM entries WHERE id = ? AND deleted_at IS NULL`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFoundf("entry %q not found", id)
	}
	if err != nil {
		return nil, errs.Internal("scan entry", err)
	}
	return e, nil
}
