package retriever

import (
	"github.com/shevchenkoxx/lore-mcp/internal/log"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

const graphHops = 1

// graphScore expands one hop out from the topics of the current seed
// candidates: it finds active triples touching any seed topic, collects
// the terms on the opposite side, and scores entries whose topic matches
// one of those terms and is not already a seed.
func graphScore(st *store.Store, seedIDs []string) map[string]int {
	logger := log.WithComponent("retriever.graph")
	if len(seedIDs) == 0 {
		return nil
	}
	seeds, err := st.EntriesByIDs(seedIDs)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to hydrate seed entries for graph expansion")
		return nil
	}

	seedTopics := make(map[string]struct{}, len(seeds))
	seedSet := make(map[string]struct{}, len(seedIDs))
	for _, id := range seedIDs {
		seedSet[id] = struct{}{}
	}
	for _, e := range seeds {
		seedTopics[e.Topic] = struct{}{}
	}

	terms := make(map[string]struct{})
	for topic := range seedTopics {
		triples, err := st.ActiveTriplesForSubjectOrObject(topic)
		if err != nil {
			logger.Warn().Err(err).Msg("triple lookup failed during graph expansion")
			continue
		}
		for _, t := range triples {
			if t.Subject == topic {
				terms[t.Object] = struct{}{}
			}
			if t.Object == topic {
				terms[t.Subject] = struct{}{}
			}
		}
	}
	if len(terms) == 0 {
		return nil
	}

	out := make(map[string]int)
	for term := range terms {
		entries, err := st.QueryEntries(store.EntryQuery{Topic: term, Limit: maxLimit})
		if err != nil {
			logger.Warn().Err(err).Msg("entry lookup by topic failed during graph expansion")
			continue
		}
		for _, e := range entries {
			if e.Topic != term {
				continue // topic filter is substring; require exact equality per spec
			}
			if _, isSeed := seedSet[e.ID]; isSeed {
				continue
			}
			out[e.ID] = graphHops
		}
	}
	return out
}

const maxLimit = 200
