// Package engine wires storage, conflict detection, policy, retrieval, and
// ingestion into the operation surface a protocol front-end would expose.
package engine

import (
	"context"

	"github.com/shevchenkoxx/lore-mcp/internal/cache"
	"github.com/shevchenkoxx/lore-mcp/internal/conflict"
	"github.com/shevchenkoxx/lore-mcp/internal/ingest"
	"github.com/shevchenkoxx/lore-mcp/internal/log"
	"github.com/shevchenkoxx/lore-mcp/internal/policy"
	"github.com/shevchenkoxx/lore-mcp/internal/retriever"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

// Embedder and VectorIndex re-export the retriever's external collaborator
// interfaces so callers wiring an Engine never need to import internal/retriever.
type (
	Embedder    = retriever.Embedder
	VectorIndex = retriever.VectorIndex
)

// ChangeNotifier is invoked with the affected resource URI(s) after each
// committed mutation.
type ChangeNotifier interface {
	Notify(uris ...string)
}

// Result is the success envelope every operation returns: a short human
// text plus a machine-readable resource blob tagged with a URI and media
// type.
type Result struct {
	Text        string `json:"text"`
	ResourceURI string `json:"resource_uri,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
	Data        any    `json:"data,omitempty"`
}

func envelope(text, uri string, data any) Result {
	return Result{Text: text, ResourceURI: uri, MediaType: "application/json", Data: data}
}

type noopNotifier struct{}

func (noopNotifier) Notify(uris ...string) {}

// Engine is the process-level orchestrator: one store, one conflict cache,
// one retriever, and a notifier invoked on every committed mutation.
type Engine struct {
	store     *store.Store
	cache     *cache.Cache
	retriever *retriever.Retriever
	scheduler *ingest.Scheduler
	notifier  ChangeNotifier
}

// Store exposes the underlying storage layer for callers that need direct
// access (CLI status reporting, protocol-layer resource registration).
func (e *Engine) Store() *store.Store { return e.store }

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithEmbedder supplies the semantic scorer's embedding collaborator.
func WithEmbedder(e Embedder) Option {
	return func(eng *Engine) { eng.retriever.Embedder = e }
}

// WithVectorIndex supplies the semantic scorer's nearest-neighbor collaborator.
func WithVectorIndex(v VectorIndex) Option {
	return func(eng *Engine) { eng.retriever.Index = v }
}

// WithDurableCache backs the conflict cache with a session-local durable store.
func WithDurableCache(d cache.Durable) Option {
	return func(eng *Engine) { eng.cache = cache.New(d) }
}

// WithNotifier overrides the default no-op change notifier.
func WithNotifier(n ChangeNotifier) Option {
	return func(eng *Engine) { eng.notifier = n }
}

// New builds an Engine over an already-opened store.
func New(st *store.Store, opts ...Option) *Engine {
	eng := &Engine{
		store:     st,
		cache:     cache.New(nil),
		retriever: retriever.New(st, nil, nil),
		notifier:  noopNotifier{},
	}
	eng.scheduler = ingest.NewScheduler(st, notifierAdapter{eng})
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// notifierAdapter forwards the ingest scheduler's notifications to the
// engine's current ChangeNotifier, including one set by WithNotifier after
// the scheduler was built.
type notifierAdapter struct{ eng *Engine }

func (n notifierAdapter) Notify(uris ...string) { n.eng.notify(uris...) }

func (e *Engine) notify(uris ...string) {
	e.notifier.Notify(uris...)
}

// RunIngestionScheduler drives a pending ingestion task to completion,
// notifying after every batch that creates at least one entry; a batch that
// only skips duplicates sends no notification. It blocks until the task
// completes, fails, or ctx is cancelled.
func (e *Engine) RunIngestionScheduler(ctx context.Context, taskID string) {
	e.scheduler.Run(ctx, taskID)
}

func checkPolicy(op string, params policy.Params) error {
	logger := log.WithComponent("engine.policy")
	if err := policy.Check(op, params); err != nil {
		logger.Warn().Str("op", op).Msg("policy rejected mutation")
		return err
	}
	return nil
}
