// Package store provides SQLite-backed persistence for the knowledge
// engine: entries, triples, canonical entities, aliases, the transaction
// log, and ingestion tasks.
package store

// Entry is a free-text knowledge record.
type Entry struct {
	ID                string   `json:"id"`
	Topic             string   `json:"topic"`
	Content           string   `json:"content"`
	Tags              []string `json:"tags"`
	Source            *string  `json:"source,omitempty"`
	Actor             *string  `json:"actor,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty"`
	ValidFrom         *string  `json:"valid_from,omitempty"`
	ValidTo           *string  `json:"valid_to,omitempty"`
	Status            string   `json:"status"`
	Category          *string  `json:"category,omitempty"`
	CanonicalEntityID *string  `json:"canonical_entity_id,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
	DeletedAt         *string  `json:"deleted_at,omitempty"`
}

// Triple is a directed subject-predicate-object relationship.
type Triple struct {
	ID         string   `json:"id"`
	Subject    string   `json:"subject"`
	Predicate  string   `json:"predicate"`
	Object     string   `json:"object"`
	Source     *string  `json:"source,omitempty"`
	Actor      *string  `json:"actor,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Status     string   `json:"status"`
	CreatedAt  string   `json:"created_at"`
	DeletedAt  *string  `json:"deleted_at,omitempty"`
}

// CanonicalEntity is a named concept that one or more aliases map to.
type CanonicalEntity struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedAt string   `json:"created_at"`
	Aliases   []string `json:"aliases,omitempty"`
}

// EntityAlias maps a normalized string to a canonical entity.
type EntityAlias struct {
	ID                string `json:"id"`
	Alias             string `json:"alias"`
	CanonicalEntityID string `json:"canonical_entity_id"`
	CreatedAt         string `json:"created_at"`
}

// Op is a transaction operation kind.
type Op string

const (
	OpCreate Op = "CREATE"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
	OpMerge  Op = "MERGE"
	OpRevert Op = "REVERT"
)

// EntityType scopes a transaction to the table it mutated.
type EntityType string

const (
	EntityTypeEntry  EntityType = "entry"
	EntityTypeTriple EntityType = "triple"
	EntityTypeEntity EntityType = "entity"
	EntityTypeAlias  EntityType = "alias"
)

// Transaction is the append-only log row recording one committed mutation.
type Transaction struct {
	ID             string     `json:"id"`
	Op             Op         `json:"op"`
	EntityType     EntityType `json:"entity_type"`
	EntityID       string     `json:"entity_id"`
	BeforeSnapshot *string    `json:"before_snapshot,omitempty"`
	AfterSnapshot  *string    `json:"after_snapshot,omitempty"`
	RevertedBy     *string    `json:"reverted_by,omitempty"`
	CreatedAt      string     `json:"created_at"`
}

// IngestionStatus is the lifecycle state of an IngestionTask.
type IngestionStatus string

const (
	IngestionPending    IngestionStatus = "pending"
	IngestionProcessing IngestionStatus = "processing"
	IngestionCompleted  IngestionStatus = "completed"
	IngestionFailed     IngestionStatus = "failed"
)

// IngestionTask tracks a pending or running bulk ingestion.
type IngestionTask struct {
	ID             string          `json:"id"`
	Status         IngestionStatus `json:"status"`
	InputURI       string          `json:"input_uri"`
	TotalItems     int             `json:"total_items"`
	ProcessedItems int             `json:"processed_items"`
	Error          *string         `json:"error,omitempty"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// ConflictResolution is one of the allowed ways a client may resolve a
// ConflictInfo.
type ConflictResolution string

const (
	ResolveReplace    ConflictResolution = "replace"
	ResolveRetainBoth ConflictResolution = "retain_both"
	ResolveReject     ConflictResolution = "reject"
)

// ConflictInfo describes a detected triple contradiction. It is ephemeral
// and never written to the primary tables.
type ConflictInfo struct {
	ConflictID string               `json:"conflict_id"`
	Subject    string               `json:"subject"`
	Predicate  string               `json:"predicate"`
	Existing   Triple               `json:"existing"`
	Candidate  Triple               `json:"candidate"`
	Allowed    []ConflictResolution `json:"allowed_resolutions"`
}
