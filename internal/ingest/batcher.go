package ingest

import (
	"encoding/json"

	"github.com/shevchenkoxx/lore-mcp/internal/errs"
	"github.com/shevchenkoxx/lore-mcp/internal/mentions"
	"github.com/shevchenkoxx/lore-mcp/internal/store"
)

const (
	syncMaxChars   = 5000
	syncMaxChunks  = 20
	asyncInlineCap = 900_000
	batchSize      = 10
)

// Result is the outcome of an ingest call: either the synchronous path's
// final counts, or the asynchronous path's task id.
type Result struct {
	TaskID            string
	Sync              bool
	EntriesCreated    int
	DuplicatesSkipped int
}

type inlineBlob struct {
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// Ingest runs the synchronous path for small inputs (content length <=
// 5000 chars and chunk count <= 20), otherwise creates a pending task for
// the asynchronous path.
func Ingest(st *store.Store, content, source string) (Result, error) {
	chunks := Chunk(content)
	if len(content) <= syncMaxChars && len(chunks) <= syncMaxChunks {
		return ingestSync(st, content, chunks, source)
	}
	return ingestAsync(st, content, chunks, source)
}

func ingestSync(st *store.Store, content string, chunks []string, source string) (Result, error) {
	task, err := st.CreateIngestionTask(store.IngestionProcessing, describeSyncURI(content, source), len(chunks))
	if err != nil {
		return Result{}, err
	}

	dict, err := loadMentionDictionary(st)
	if err != nil {
		return Result{}, err
	}

	created, dupes := 0, 0
	for i, chunk := range chunks {
		wasCreated, err := createChunkIfNew(st, dict, chunk, source, task.ID)
		if err != nil {
			failMsg := err.Error()
			_ = st.SetIngestionStatus(task.ID, store.IngestionFailed, &failMsg)
			return Result{}, err
		}
		if wasCreated {
			created++
		} else {
			dupes++
		}
		if err := st.AdvanceIngestionProcessed(task.ID, i+1); err != nil {
			return Result{}, err
		}
	}
	if err := st.SetIngestionStatus(task.ID, store.IngestionCompleted, nil); err != nil {
		return Result{}, err
	}
	return Result{TaskID: task.ID, Sync: true, EntriesCreated: created, DuplicatesSkipped: dupes}, nil
}

func ingestAsync(st *store.Store, content string, chunks []string, source string) (Result, error) {
	if len(content) > asyncInlineCap {
		return Result{}, errs.Validationf("content exceeds the %d byte inline cap; pre-chunk before ingesting", asyncInlineCap)
	}
	blob, err := json.Marshal(inlineBlob{Content: content, Source: source})
	if err != nil {
		return Result{}, errs.Internal("marshal ingestion blob", err)
	}
	task, err := st.CreateIngestionTask(store.IngestionPending, string(blob), len(chunks))
	if err != nil {
		return Result{}, err
	}
	return Result{TaskID: task.ID, Sync: false}, nil
}

// ProcessBatch processes up to 10 chunks of a pending/processing task,
// resuming from its processed_items counter. Returns the number of chunks
// still remaining and how many entries this batch created.
func ProcessBatch(st *store.Store, taskID string) (remaining int, created int, err error) {
	task, err := st.GetIngestionTask(taskID)
	if err != nil {
		return 0, 0, err
	}
	if task.Status == store.IngestionCompleted || task.Status == store.IngestionFailed {
		return 0, 0, nil
	}

	var blob inlineBlob
	if err := json.Unmarshal([]byte(task.InputURI), &blob); err != nil {
		msg := "unparseable ingestion input"
		_ = st.SetIngestionStatus(taskID, store.IngestionFailed, &msg)
		return 0, 0, errs.Validation(msg)
	}

	if task.Status == store.IngestionPending {
		if err := st.SetIngestionStatus(taskID, store.IngestionProcessing, nil); err != nil {
			return 0, 0, err
		}
	}

	chunks := Chunk(blob.Content)
	total := len(chunks)
	start := task.ProcessedItems
	end := start + batchSize
	if end > total {
		end = total
	}

	dict, err := loadMentionDictionary(st)
	if err != nil {
		return 0, 0, err
	}

	for i := start; i < end; i++ {
		wasCreated, err := createChunkIfNew(st, dict, chunks[i], blob.Source, taskID)
		if err != nil {
			msg := err.Error()
			_ = st.SetIngestionStatus(taskID, store.IngestionFailed, &msg)
			return 0, created, err
		}
		if wasCreated {
			created++
		}
		if err := st.AdvanceIngestionProcessed(taskID, i+1); err != nil {
			return 0, created, err
		}
	}

	remaining = total - end
	if remaining <= 0 {
		if err := st.SetIngestionStatus(taskID, store.IngestionCompleted, nil); err != nil {
			return 0, created, err
		}
	}
	return remaining, created, nil
}

func createChunkIfNew(st *store.Store, dict *mentions.Dictionary, chunk, source, taskID string) (created bool, err error) {
	exists, err := st.EntryExistsByContent(chunk)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	src := source
	if src == "" {
		src = "ingestion:" + taskID
	}
	entry, err := st.CreateEntry(store.EntryInput{
		Topic:   FirstLineTopic(chunk),
		Content: chunk,
		Tags:    []string{"ingested"},
		Source:  &src,
	})
	if err != nil {
		return false, err
	}
	linkMentions(st, dict, entry.ID, chunk, src)
	return true, nil
}

// loadMentionDictionary compiles the current canonical entity table into a
// scanner. A batch that mentions no known entities yet gets an empty, safe
// dictionary rather than an error.
func loadMentionDictionary(st *store.Store) (*mentions.Dictionary, error) {
	entities, err := st.ListCanonicalEntities()
	if err != nil {
		return nil, err
	}
	registered := make([]mentions.RegisteredEntity, 0, len(entities))
	for _, e := range entities {
		registered = append(registered, mentions.RegisteredEntity{ID: e.ID, Name: e.Name, Aliases: e.Aliases})
	}
	return mentions.Compile(registered)
}

// linkMentions scans chunk for known entity names and records a "mentions"
// triple per distinct hit. Triple-creation errors are discarded without
// logging; a missed mention link never fails the ingest.
func linkMentions(st *store.Store, dict *mentions.Dictionary, entryID, chunk, source string) {
	seen := make(map[string]bool)
	for _, m := range dict.Scan(chunk) {
		if seen[m.EntityID] {
			continue
		}
		seen[m.EntityID] = true
		_, _ = st.CreateTriple(store.TripleInput{
			Subject:   entryID,
			Predicate: "mentions",
			Object:    m.EntityName,
			Source:    &source,
		})
	}
}

func describeSyncURI(content, source string) string {
	b, _ := json.Marshal(inlineBlob{Content: content, Source: source})
	return string(b)
}
