package ingest

import (
	"context"
	"time"

	"github.com/shevchenkoxx/lore-mcp/internal/log"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

// Notifier receives change notifications for resource URIs affected by
// processed ingestion work.
type Notifier interface {
	Notify(uris ...string)
}

// Scheduler drives a task's asynchronous batches to completion, re-enqueuing
// itself with a short delay whenever a batch reports remaining work. It
// assumes single-writer invocation per task, per the cooperative scheduling
// model described for the async ingestion path.
type Scheduler struct {
	store    *store.Store
	notifier Notifier
	delay    time.Duration
}

// NewScheduler constructs a Scheduler with the standard ~1s re-enqueue
// delay.
func NewScheduler(st *store.Store, notifier Notifier) *Scheduler {
	return &Scheduler{store: st, notifier: notifier, delay: time.Second}
}

// Run drives taskID's batches until completion, failure, or ctx
// cancellation.
func (s *Scheduler) Run(ctx context.Context, taskID string) {
	logger := log.WithTaskID(taskID)
	for {
		remaining, created, err := ProcessBatch(s.store, taskID)
		if err != nil {
			logger.Error().Err(err).Msg("ingestion batch failed")
			return
		}
		if created > 0 && s.notifier != nil {
			s.notifier.Notify("entries", "transactions")
		}
		if remaining <= 0 {
			logger.Debug().Msg("ingestion task completed")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.delay):
		}
	}
}
