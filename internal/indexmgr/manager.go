package indexmgr

import (
	"context"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/cheminee/search-engine/internal/infrastructure/database/redis"
	"github.com/cheminee/search-engine/internal/infrastructure/search/opensearch"
	"github.com/cheminee/search-engine/internal/logging"
	"github.com/cheminee/search-engine/internal/schema"
	"github.com/cheminee/search-engine/pkg/errors"
)

// writerLockTTL bounds how long a create/merge/delete holds the per-index
// writer lock before another caller is told the index is busy.
const writerLockTTL = 30 * time.Second

// Handle is what callers receive from Open/Create: the index name and the
// schema it was registered with, enough to drive the writer and query
// builders without a second catalog round-trip.
type Handle struct {
	Name      string
	Schema    string
	SortBy    string
	CreatedAt time.Time
}

// Manager implements the index manager (C5): named indexes backed by the
// inverted-index engine, a durable catalog row per index, and a per-index
// writer lock serializing create/merge/delete against concurrent writers.
type Manager struct {
	catalog Catalog
	client  *opensearch.Client
	indexer *opensearch.Indexer
	locks   redis.LockFactory
	logger  logging.Logger
}

// New constructs a Manager over an already-connected catalog, search client
// and indexer, and a Redis-backed lock factory.
func New(catalog Catalog, client *opensearch.Client, indexer *opensearch.Indexer, locks redis.LockFactory, logger logging.Logger) *Manager {
	return &Manager{
		catalog: catalog,
		client:  client,
		indexer: indexer,
		locks:   locks,
		logger:  logger.Named("indexmgr"),
	}
}

// Create registers a new index under name with the given schema, bulk
// sort_by hint, and creates the backing engine index. When force is true an
// existing index of the same name is deleted first; otherwise an existing
// index is reported as CodeIndexAlreadyExists. Creation is serialized by a
// per-index writer lock so two concurrent create() calls for the same name
// cannot race the catalog insert against the engine index creation.
func (m *Manager) Create(ctx context.Context, name, schemaName string, force bool, sortBy string) (Handle, error) {
	if _, ok := schema.Get(schemaName); !ok {
		return Handle{}, errors.SchemaUnknown(schemaName)
	}

	lock := m.locks.NewMutex("index:"+name, redis.WithLockTTL(writerLockTTL))
	if err := lock.Lock(ctx); err != nil {
		return Handle{}, errors.WriterBusy(name)
	}
	defer lock.Unlock(ctx)

	exists, err := m.catalog.Exists(ctx, name)
	if err != nil {
		return Handle{}, err
	}
	if exists {
		if !force {
			return Handle{}, errors.IndexAlreadyExists(name)
		}
		if err := m.destroy(ctx, name); err != nil {
			return Handle{}, err
		}
	}

	mapping, err := BuildMapping(schemaName)
	if err != nil {
		return Handle{}, err
	}
	if err := m.indexer.CreateIndex(ctx, name, mapping); err != nil {
		return Handle{}, err
	}
	if err := m.catalog.Create(ctx, name, schemaName, sortBy); err != nil {
		_ = m.indexer.DeleteIndex(ctx, name)
		return Handle{}, err
	}

	entry, err := m.catalog.Get(ctx, name)
	if err != nil {
		return Handle{}, err
	}
	m.logger.Info("index created", logging.String("name", name), logging.String("schema", schemaName))
	return toHandle(entry), nil
}

// Open returns the Handle for an existing index, or CodeIndexNotFound.
func (m *Manager) Open(ctx context.Context, name string) (Handle, error) {
	entry, err := m.catalog.Get(ctx, name)
	if err != nil {
		return Handle{}, err
	}
	return toHandle(entry), nil
}

// Exists reports whether name is registered in the catalog.
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	return m.catalog.Exists(ctx, name)
}

// List returns every registered index, sorted by name.
func (m *Manager) List(ctx context.Context) ([]Handle, error) {
	entries, err := m.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	handles := make([]Handle, len(entries))
	for i, e := range entries {
		handles[i] = toHandle(e)
	}
	return handles, nil
}

// Delete removes both the catalog row and the backing engine index for
// name, serialized by the same per-index writer lock create() uses.
func (m *Manager) Delete(ctx context.Context, name string) error {
	lock := m.locks.NewMutex("index:"+name, redis.WithLockTTL(writerLockTTL))
	if err := lock.Lock(ctx); err != nil {
		return errors.WriterBusy(name)
	}
	defer lock.Unlock(ctx)

	if _, err := m.catalog.Get(ctx, name); err != nil {
		return err
	}
	return m.destroy(ctx, name)
}

func (m *Manager) destroy(ctx context.Context, name string) error {
	if err := m.indexer.DeleteIndex(ctx, name); err != nil {
		return err
	}
	if err := m.catalog.Delete(ctx, name); err != nil {
		return err
	}
	m.logger.Info("index deleted", logging.String("name", name))
	return nil
}

// Merge forces a segment merge of the named index down to a single segment,
// serialized by the writer lock so it cannot run concurrently with a write
// batch or another merge. The opensearch-go v2 Indexer has no forcemerge
// wrapper, so Merge issues the request directly against the underlying
// client the way the teacher's Searcher.RawQuery helpers do.
func (m *Manager) Merge(ctx context.Context, name string) error {
	lock := m.locks.NewMutex("index:"+name, redis.WithLockTTL(writerLockTTL))
	if err := lock.Lock(ctx); err != nil {
		return errors.WriterBusy(name)
	}
	defer lock.Unlock(ctx)

	if _, err := m.catalog.Get(ctx, name); err != nil {
		return err
	}

	maxSegments := 1
	req := opensearchapi.IndicesForcemergeRequest{
		Index:          []string{name},
		MaxNumSegments: &maxSegments,
	}
	resp, err := req.Do(ctx, m.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.CodeSegment, "forcemerge request failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return errors.Segment("forcemerge returned error status for index " + name)
	}
	m.logger.Info("index merged", logging.String("name", name))
	return nil
}

func toHandle(e Entry) Handle {
	return Handle{Name: e.Name, Schema: e.Schema, SortBy: e.SortBy, CreatedAt: e.CreatedAt}
}
