package store

import (
	"database/sql"
	"strings"

	"github.com/shevchenkoxx/lore-mcp/internal/clock"
	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/idgen"
)

// CreateEntity mints a canonical entity and auto-creates a lowercase alias
// of its name in the same atomic batch.
func (s *Store) CreateEntity(name string) (*CanonicalEntity, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("entity name must not be empty")
	}
	ent := &CanonicalEntity{
		ID:        idgen.New(),
		Name:      name,
		CreatedAt: clock.Now(),
	}
	alias := strings.ToLower(name)

	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO canonical_entities (id, name, created_at) VALUES (?, ?, ?)`,
			ent.ID, ent.Name, ent.CreatedAt,
		); err != nil {
			return errs.Internal("insert entity", err)
		}
		aliasID := idgen.New()
		if _, err := tx.Exec(
			`INSERT INTO entity_aliases (id, alias, canonical_entity_id, created_at) VALUES (?, ?, ?, ?)`,
			aliasID, alias, ent.ID, ent.CreatedAt,
		); err != nil {
			return errs.Internal("insert alias", err)
		}
		_, err := recordTx(tx, OpCreate, EntityTypeEntity, ent.ID, nil, ent)
		return err
	})
	if err != nil {
		return nil, err
	}
	ent.Aliases = []string{alias}
	return ent, nil
}

// AddAlias attaches a new lowercased alias to an existing entity.
func (s *Store) AddAlias(entityID, alias string) (*EntityAlias, error) {
	normalized := strings.ToLower(alias)
	a := &EntityAlias{
		ID:                idgen.New(),
		Alias:             normalized,
		CanonicalEntityID: entityID,
		CreatedAt:         clock.Now(),
	}
	err := s.withTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(`SELECT 1 FROM canonical_entities WHERE id = ?`, entityID).Scan(&exists); err == sql.ErrNoRows {
			return errs.NotFoundf("entity %q not found", entityID)
		} else if err != nil {
			return errs.Internal("check entity existence", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO entity_aliases (id, alias, canonical_entity_id, created_at) VALUES (?, ?, ?, ?)`,
			a.ID, a.Alias, a.CanonicalEntityID, a.CreatedAt,
		); err != nil {
			return errs.Internal("insert alias", err)
		}
		_, err := recordTx(tx, OpCreate, EntityTypeAlias, a.ID, nil, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetEntity fetches a canonical entity with its aliases.
func (s *Store) GetEntity(id string) (*CanonicalEntity, error) {
	var ent CanonicalEntity
	row := s.db.QueryRow(`SELECT id, name, created_at FROM canonical_entities WHERE id = ?`, id)
	if err := row.Scan(&ent.ID, &ent.Name, &ent.CreatedAt); err == sql.ErrNoRows {
		return nil, errs.NotFoundf("entity %q not found", id)
	} else if err != nil {
		return nil, errs.Internal("scan entity", err)
	}
	aliases, err := s.aliasesFor(id)
	if err != nil {
		return nil, err
	}
	ent.Aliases = aliases
	return &ent, nil
}

func (s *Store) aliasesFor(entityID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT alias FROM entity_aliases WHERE canonical_entity_id = ?`, entityID)
	if err != nil {
		return nil, errs.Internal("query aliases", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, errs.Internal("scan alias", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListCanonicalEntities returns every canonical entity with its aliases,
// for callers (such as the mention scanner) that need the full dictionary
// rather than a single lookup.
func (s *Store) ListCanonicalEntities() ([]CanonicalEntity, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM canonical_entities ORDER BY id`)
	if err != nil {
		return nil, errs.Internal("query entities", err)
	}
	defer rows.Close()

	var out []CanonicalEntity
	for rows.Next() {
		var ent CanonicalEntity
		if err := rows.Scan(&ent.ID, &ent.Name, &ent.CreatedAt); err != nil {
			return nil, errs.Internal("scan entity", err)
		}
		out = append(out, ent)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Internal("iterate entities", err)
	}
	for i := range out {
		aliases, err := s.aliasesFor(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Aliases = aliases
	}
	return out, nil
}

// Resolve looks up a canonical entity by name: an exact alias match first,
// falling back to a substring match on alias with wildcard escaping.
func (s *Store) Resolve(name string) (*CanonicalEntity, error) {
	normalized := strings.ToLower(name)

	row := s.db.QueryRow(
		`SELECT e.id, e.name, e.created_at FROM canonical_entities e
		 JOIN entity_aliases a ON a.canonical_entity_id = e.id
		 WHERE a.alias = ? LIMIT 1`, normalized)
	var ent CanonicalEntity
	err := row.Scan(&ent.ID, &ent.Name, &ent.CreatedAt)
	if err == nil {
		return &ent, nil
	}
	if err != sql.ErrNoRows {
		return nil, errs.Internal("resolve entity exact", err)
	}

	row = s.db.QueryRow(
		`SELECT e.id, e.name, e.created_at FROM canonical_entities e
		 JOIN entity_aliases a ON a.canonical_entity_id = e.id
		 WHERE a.alias LIKE ? ESCAPE '\' LIMIT 1`, "%"+escapeLike(normalized)+"%")
	err = row.Scan(&ent.ID, &ent.Name, &ent.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errs.NotFoundf("no entity resolves to %q", name)
	}
	if err != nil {
		return nil, errs.Internal("resolve entity fuzzy", err)
	}
	return &ent, nil
}

// UpsertEntity resolves name via exact match only (so fuzzy near-misses
// never collide) and creates a new entity when none exists.
func (s *Store) UpsertEntity(name string) (ent *CanonicalEntity, created bool, err error) {
	normalized := strings.ToLower(name)
	row := s.db.QueryRow(
		`SELECT e.id, e.name, e.created_at FROM canonical_entities e
		 JOIN entity_aliases a ON a.canonical_entity_id = e.id
		 WHERE a.alias = ? LIMIT 1`, normalized)
	var existing CanonicalEntity
	scanErr := row.Scan(&existing.ID, &existing.Name, &existing.CreatedAt)
	if scanErr == nil {
		aliases, aerr := s.aliasesFor(existing.ID)
		if aerr != nil {
			return nil, false, aerr
		}
		existing.Aliases = aliases
		return &existing, false, nil
	}
	if scanErr != sql.ErrNoRows {
		return nil, false, errs.Internal("upsert entity lookup", scanErr)
	}
	created_, cerr := s.CreateEntity(name)
	if cerr != nil {
		return nil, false, cerr
	}
	return created_, true, nil
}
