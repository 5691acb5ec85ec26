package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/shevchenkoxx/lore-mcp/internal/log"
)

// Store is the storage layer for the knowledge engine. Every mutation that
// writes a transaction-log row is serialized behind a single mutex so that
// the data row and its log row commit as one atomic batch, per the
// single-writer-per-session concurrency model. Ingestion-task bookkeeping
// writes do not take the mutex.
type Store struct {
	mu         sync.Mutex
	db         *sql.DB
	ftsEnabled bool
}

// Open opens (creating if necessary) a SQLite database at dsn and ensures
// the schema, detecting FTS5 support along the way.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = OFF",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(coreSchema); err != nil {
		return nil, fmt.Errorf("apply core schema: %w", err)
	}

	s := &Store{db: db}
	s.ftsEnabled = detectFTS5(db)
	if s.ftsEnabled {
		if _, err := db.Exec(ftsSchema); err != nil {
			log.WithComponent("store").Warn().Err(err).Msg("fts5 probe succeeded but schema failed; disabling lexical index")
			s.ftsEnabled = false
		}
	} else {
		log.WithComponent("store").Info().Msg("fts5 unavailable; lexical scorer will use substring fallback")
	}

	return s, nil
}

// FTSEnabled reports whether the lexical full-text index is active.
func (s *Store) FTSEnabled() bool {
	return s.ftsEnabled
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for read-only callers (the retriever's scorers)
// that do not need the mutation mutex.
func (s *Store) DB() *sql.DB {
	return s.db
}
