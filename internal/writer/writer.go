// Package writer implements the bulk ingest pipeline (C6): turning a batch
// of caller-supplied (smiles, extra_data) records into indexed documents.
// Each record runs independently through molecule preparation, scaffold
// matching, and document encoding; a failure on one record never aborts the
// batch. The whole batch commits to the backing engine in a single bulk
// call, and a best-effort change notification goes out over Kafka after
// commit.
package writer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cheminee/search-engine/internal/infrastructure/messaging/kafka"
	"github.com/cheminee/search-engine/internal/infrastructure/search/opensearch"
	"github.com/cheminee/search-engine/internal/logging"
	"github.com/cheminee/search-engine/internal/molprep"
	"github.com/cheminee/search-engine/internal/scaffold"
	"github.com/cheminee/search-engine/internal/schema"
	"github.com/cheminee/search-engine/pkg/types/common"
)

// DefaultChunkSize and DefaultMaxParallelChunks bound AddRecords' batched
// parallel document construction when a caller doesn't override them via
// Config.
const (
	DefaultChunkSize         = 200
	DefaultMaxParallelChunks = 4
)

// Record is one caller-supplied molecule to add: a line-notation string
// plus arbitrary extra data to merge into the stored document.
type Record struct {
	SMILES    string
	ExtraData map[string]interface{}
}

// RecordStatus reports the outcome of preparing and encoding one Record.
// Index is the record's position in the slice passed to AddRecords, so
// callers can correlate failures back to their input regardless of
// reordering inside a chunk.
type RecordStatus struct {
	Index    int
	SMILES   string
	OK       bool
	Error    string
	Document string // canonical SMILES actually indexed, when OK
}

// AddResult summarises one AddRecords call: per-record status plus the
// count of documents actually committed to the index.
type AddResult struct {
	Statuses  []RecordStatus
	Succeeded int
	Failed    int
}

// changeEventAdd and changeEventDelete name the kind of change a published
// change notification carries.
const changeEventAdd = "add"
const changeEventDelete = "delete"

// Config holds the writer's concurrency and notification tunables.
type Config struct {
	ChunkSize         int
	MaxParallelChunks int
	NotificationTopic string
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.MaxParallelChunks <= 0 {
		c.MaxParallelChunks = DefaultMaxParallelChunks
	}
	return c
}

// Writer implements the bulk add/delete pipeline (C6) for one index. It is
// cheap to construct and holds no per-call state, so one Writer can be
// shared across concurrent requests to the same index.
type Writer struct {
	indexName string
	preparer  *molprep.Preparer
	scaffolds *scaffold.Registry
	indexer   *opensearch.Indexer
	producer  *kafka.Producer // nil disables change notifications
	cfg       Config
	logger    logging.Logger
}

// New constructs a Writer for indexName. producer may be nil, in which case
// post-commit notifications are skipped entirely rather than erroring.
func New(indexName string, preparer *molprep.Preparer, scaffolds *scaffold.Registry, indexer *opensearch.Indexer, producer *kafka.Producer, cfg Config, logger logging.Logger) *Writer {
	return &Writer{
		indexName: indexName,
		preparer:  preparer,
		scaffolds: scaffolds,
		indexer:   indexer,
		producer:  producer,
		cfg:       cfg.withDefaults(),
		logger:    logger.Named("writer"),
	}
}

// preparedDoc is one record's pipeline output, carried from the chunk
// construction stage to the single commit stage.
type preparedDoc struct {
	docID  string
	body   map[string]interface{}
	status RecordStatus
}

// AddRecords runs every record through C2 (prepare) → C3 (scaffolds_of) →
// C4 (encode), building each chunk's documents in parallel, then commits
// the whole batch in one bulk call. A per-record failure anywhere in the
// pipeline is recorded in the returned status vector and excluded from the
// commit; it never aborts the rest of the batch.
func (w *Writer) AddRecords(ctx context.Context, records []Record) (AddResult, error) {
	if len(records) == 0 {
		return AddResult{}, nil
	}

	prepared := make([]preparedDoc, len(records))
	chunks := chunkIndices(len(records), w.cfg.ChunkSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.MaxParallelChunks)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			for _, i := range chunk {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				prepared[i] = w.prepareOne(i, records[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AddResult{}, err
	}

	result := AddResult{Statuses: make([]RecordStatus, len(records))}
	docs := make(map[string]interface{}, len(records))
	for i, p := range prepared {
		result.Statuses[i] = p.status
		if !p.status.OK {
			result.Failed++
			continue
		}
		docs[p.docID] = p.body
	}

	if len(docs) > 0 {
		bulkResult, err := w.indexer.BulkIndex(ctx, w.indexName, docs)
		if err != nil {
			return result, err
		}
		result.Succeeded = bulkResult.Succeeded
		result.Failed += bulkResult.Failed
		w.markBulkFailures(&result, bulkResult.Errors)
	}

	w.notify(ctx, changeEventAdd, result.Succeeded)
	w.logger.Info("batch committed",
		logging.String("index", w.indexName),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

func (w *Writer) prepareOne(index int, rec Record) preparedDoc {
	status := RecordStatus{Index: index, SMILES: rec.SMILES}

	prepped, err := w.preparer.Process(rec.SMILES)
	if err != nil {
		status.Error = err.Error()
		return preparedDoc{status: status}
	}

	scaffoldIDs := w.scaffolds.ScaffoldsOf(prepped.Mol)
	doc, err := schema.EncodeDocument(prepped.CanonicalSMILES, prepped.Fingerprint.Bits, prepped.Descriptors, scaffoldIDs, rec.ExtraData)
	if err != nil {
		status.Error = err.Error()
		return preparedDoc{status: status}
	}

	status.OK = true
	status.Document = prepped.CanonicalSMILES
	return preparedDoc{
		docID:  string(common.NewID()),
		body:   schema.ToIndexDocument(doc),
		status: status,
	}
}

func (w *Writer) markBulkFailures(result *AddResult, errs []common.BulkItemError) {
	if len(errs) == 0 {
		return
	}
	w.logger.Warn("bulk commit reported partial failures",
		logging.String("index", w.indexName),
		logging.Int("count", len(errs)),
		logging.Any("first_reason", errs[0].Reason))
}

// DeleteByQueryString removes every document matched by a Lucene
// query_string expression (the grammar C7's builders produce) from the
// index, the bulk-delete contract bulk-delete-by-identity-query extends to
// any query type.
func (w *Writer) DeleteByQueryString(ctx context.Context, queryString string) (int64, error) {
	deleted, err := w.indexer.DeleteByQueryString(ctx, w.indexName, queryString)
	if err != nil {
		return 0, err
	}
	w.notify(ctx, changeEventDelete, int(deleted))
	return deleted, nil
}

func (w *Writer) notify(ctx context.Context, event string, count int) {
	if w.producer == nil || w.cfg.NotificationTopic == "" || count == 0 {
		return
	}
	msg := &common.ProducerMessage{
		Topic:     w.cfg.NotificationTopic,
		Key:       []byte(w.indexName),
		Value:     []byte(`{"index":"` + w.indexName + `","event":"` + event + `","count":"` + itoa(count) + `"}`),
		Timestamp: time.Now(),
	}
	if err := w.producer.Publish(ctx, msg); err != nil {
		w.logger.Warn("change notification publish failed",
			logging.String("index", w.indexName), logging.Err(err))
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// chunkIndices splits [0, n) into contiguous index slices of at most size.
func chunkIndices(n, size int) [][]int {
	var chunks [][]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		idx := make([]int, end-start)
		for i := range idx {
			idx[i] = start + i
		}
		chunks = append(chunks, idx)
	}
	return chunks
}
