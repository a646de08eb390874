// Package appwiring builds the full set of live components (catalog,
// search engine client, lock factory, scaffold registry, similarity
// encoder) from a loaded Config. Both cmd/cheminee's direct commands and
// internal/httpapi's server share this construction so the CLI and the
// HTTP surface can never wire the same dependency two different ways.
package appwiring

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cheminee/search-engine/internal/cluster"
	"github.com/cheminee/search-engine/internal/config"
	"github.com/cheminee/search-engine/internal/indexmgr"
	"github.com/cheminee/search-engine/internal/infrastructure/database/postgres"
	"github.com/cheminee/search-engine/internal/infrastructure/database/redis"
	"github.com/cheminee/search-engine/internal/infrastructure/messaging/kafka"
	"github.com/cheminee/search-engine/internal/infrastructure/search/milvus"
	"github.com/cheminee/search-engine/internal/infrastructure/search/opensearch"
	"github.com/cheminee/search-engine/internal/kernel"
	"github.com/cheminee/search-engine/internal/logging"
	"github.com/cheminee/search-engine/internal/molprep"
	"github.com/cheminee/search-engine/internal/scaffold"
	"github.com/cheminee/search-engine/internal/writer"
)

// Deps bundles every live component a CLI command or HTTP handler needs.
// Nothing here is per-request state, so one Deps backs the whole process.
type Deps struct {
	Config    *config.Config
	Logger    logging.Logger
	Engine    *kernel.Engine
	Preparer  *molprep.Preparer
	Scaffolds *scaffold.Registry
	Indexes   *indexmgr.Manager
	Searcher  *opensearch.Searcher
	Indexer   *opensearch.Indexer
	Producer  *kafka.Producer
	Encoder   cluster.Encoder

	pgPool     *pgxpool.Pool
	redisConn  *redis.Client
	osConn     *opensearch.Client
	milvusConn *milvus.Client
}

// WriterConfig adapts config.WriterConfig's field names to writer.Config's.
func (d *Deps) WriterConfig() writer.Config {
	return writer.Config{
		ChunkSize:         d.Config.Writer.ChunkSize,
		MaxParallelChunks: d.Config.Writer.MaxParallelChunk,
		NotificationTopic: d.Config.Kafka.Topic,
	}
}

// NewWriter builds a writer for indexName over the shared preparer,
// scaffold registry, indexer and notification producer.
func (d *Deps) NewWriter(indexName string) *writer.Writer {
	return writer.New(indexName, d.Preparer, d.Scaffolds, d.Indexer, d.Producer, d.WriterConfig(), d.Logger)
}

// Build connects to every backing store named in cfg and assembles a Deps.
// Kafka and Milvus are optional: a Kafka connection failure disables
// post-commit notifications (best-effort by design) and a Milvus failure
// falls back to the dependency-free local cluster encoder. Postgres,
// Redis and OpenSearch are load-bearing and any failure to reach them is
// fatal.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Deps, error) {
	d := &Deps{Config: cfg, Logger: logger}

	pgPool, err := postgres.NewConnectionPool(cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("appwiring: connect postgres: %w", err)
	}
	d.pgPool = pgPool
	catalog := indexmgr.NewPostgresCatalog(pgPool)

	redisConn, err := redis.NewClient(&redis.RedisConfig{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}, logger)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("appwiring: connect redis: %w", err)
	}
	d.redisConn = redisConn
	locks := redis.NewLockFactory(redisConn, logger)

	osConn, err := opensearch.NewClient(opensearch.ClientConfig{
		Addresses:           cfg.OpenSearch.Addresses,
		Username:            cfg.OpenSearch.User,
		Password:            cfg.OpenSearch.Password,
		MaxIdleConnsPerHost: 10,
	}, logger)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("appwiring: connect opensearch: %w", err)
	}
	d.osConn = osConn

	indexer := opensearch.NewIndexer(osConn, opensearch.IndexerConfig{
		BulkBatchSize: cfg.OpenSearch.BulkBatchSize,
		BulkWorkers:   cfg.OpenSearch.BulkWorkers,
		RefreshPolicy: cfg.OpenSearch.RefreshPolicy,
	}, logger)
	searcher := opensearch.NewSearcher(osConn, opensearch.SearcherConfig{}, logger)

	manager := indexmgr.New(catalog, osConn, indexer, locks, logger)

	engine := kernel.NewEngine()
	preparer := molprep.NewWithEngine(engine)
	scaffolds := scaffold.Global()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		BatchSize:  cfg.Kafka.BatchSize,
		MaxRetries: cfg.Kafka.ProducerRetries,
	}, logger)
	if err != nil {
		logger.Warn("kafka producer unavailable, change notifications disabled", logging.Err(err))
		producer = nil
	}

	encoder, milvusConn := buildEncoder(ctx, cfg, logger)

	d.Engine = engine
	d.Preparer = preparer
	d.Scaffolds = scaffolds
	d.Indexes = manager
	d.Searcher = searcher
	d.Indexer = indexer
	d.Producer = producer
	d.Encoder = encoder
	d.milvusConn = milvusConn

	return d, nil
}

// buildEncoder wires the Milvus-backed cluster encoder when the
// deployment has a cluster collection to search, and falls back to the
// local deterministic encoder otherwise — either because the operator
// asked for it (Similarity.UseLocalEncoder) or because Milvus could not
// be reached.
func buildEncoder(ctx context.Context, cfg *config.Config, logger logging.Logger) (cluster.Encoder, *milvus.Client) {
	if cfg.Similarity.UseLocalEncoder {
		return cluster.NewLocalEncoder(cfg.Milvus.NumClusters), nil
	}

	milvusConn, err := milvus.NewClient(milvus.ClientConfig{
		Address: cfg.Milvus.Addr,
		DBName:  cfg.Milvus.DBName,
	}, logger)
	if err != nil {
		logger.Warn("milvus unavailable, falling back to local cluster encoder", logging.Err(err))
		return cluster.NewLocalEncoder(cfg.Milvus.NumClusters), nil
	}

	collMgr := milvus.NewCollectionManager(milvusConn, milvus.CollectionConfig{}, logger)
	searcher := milvus.NewSearcher(milvusConn, collMgr, milvus.SearcherConfig{
		DefaultNProbe: cfg.Milvus.NProbe,
	}, logger)
	collectionName := cfg.Milvus.CollectionPrefix + "clusters"
	return cluster.NewMilvusEncoder(searcher, collectionName), milvusConn
}

// Close releases every connection Build opened. Safe to call on a
// partially-built Deps (e.g. when Build itself failed partway through).
func (d *Deps) Close() error {
	if d.Producer != nil {
		_ = d.Producer.Close()
	}
	if d.milvusConn != nil {
		_ = d.milvusConn.Close()
	}
	if d.osConn != nil {
		_ = d.osConn.Close()
	}
	if d.redisConn != nil {
		_ = d.redisConn.Close()
	}
	if d.pgPool != nil {
		d.pgPool.Close()
	}
	return nil
}
