package store

import "database/sql"

// coreSchema creates the primary relational tables. It is safe to run
// against an existing database: every statement is IF NOT EXISTS.
const coreSchema = `
CREATE TABLE IF NOT EXISTS entries (
	id TEXT PRIMARY KEY,
	topic TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	source TEXT,
	actor TEXT,
	confidence REAL,
	valid_from TEXT,
	valid_to TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	category TEXT,
	canonical_entity_id TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	deleted_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_entries_topic ON entries(topic);
CREATE INDEX IF NOT EXISTS idx_entries_active ON entries(id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_entries_canonical ON entries(canonical_entity_id);

CREATE TABLE IF NOT EXISTS triples (
	id TEXT PRIMARY KEY,
	subject TEXT NOT NULL,
	predicate TEXT NOT NULL,
	object TEXT NOT NULL,
	source TEXT,
	actor TEXT,
	confidence REAL,
	status TEXT NOT NULL DEFAULT 'active',
	created_at TEXT NOT NULL,
	deleted_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_triples_created ON triples(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_triples_subj_pred ON triples(subject, predicate) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_triples_object ON triples(object) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS canonical_entities (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entities_name ON canonical_entities(name);

CREATE TABLE IF NOT EXISTS entity_aliases (
	id TEXT PRIMARY KEY,
	alias TEXT NOT NULL,
	canonical_entity_id TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_aliases_alias ON entity_aliases(alias);
CREATE INDEX IF NOT EXISTS idx_aliases_entity ON entity_aliases(canonical_entity_id);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	op TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	before_snapshot TEXT,
	after_snapshot TEXT,
	reverted_by TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tx_created ON transactions(created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_tx_entity_type ON transactions(entity_type);

CREATE TABLE IF NOT EXISTS ingestion_tasks (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	input_uri TEXT NOT NULL,
	total_items INTEGER NOT NULL DEFAULT 0,
	processed_items INTEGER NOT NULL DEFAULT 0,
	error TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ingestion_status ON ingestion_tasks(status);
`

// ftsSchema creates the entries_fts virtual table and the triggers that
// keep it synchronized with the entries table. Only executed when the
// embedded engine's FTS5 support has been probed successfully.
const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
	id UNINDEXED, topic, content, tags
);
CREATE TRIGGER IF NOT EXISTS entries_fts_insert AFTER INSERT ON entries BEGIN
	INSERT INTO entries_fts(id, topic, content, tags)
	VALUES (new.id, new.topic, new.content, new.tags);
END;
CREATE TRIGGER IF NOT EXISTS entries_fts_delete AFTER DELETE ON entries BEGIN
	DELETE FROM entries_fts WHERE id = old.id;
END;
CREATE TRIGGER IF NOT EXISTS entries_fts_update AFTER UPDATE ON entries BEGIN
	UPDATE entries_fts SET topic = new.topic, content = new.content, tags = new.tags
	WHERE id = old.id;
END;
`

// detectFTS5 probes whether the driver's SQLite build includes the fts5
// extension by attempting to create a throwaway virtual table, mirroring
// how vector-search availability is probed elsewhere in the ecosystem.
func detectFTS5(db *sql.DB) bool {
	if _, err := db.Exec(`CREATE VIRTUAL TABLE IF NOT EXISTS fts5_probe USING fts5(x)`); err != nil {
		return false
	}
	_, _ = db.Exec(`DROP TABLE IF EXISTS fts5_probe`)
	return true
}
