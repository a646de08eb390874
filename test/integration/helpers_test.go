// Package integration drives spec §8's end-to-end scenarios against real
// Postgres, OpenSearch, and Redis containers — the same infrastructure
// internal/appwiring wires up for the running binary, minus Kafka (the
// writer tolerates a nil producer, and none of these scenarios depend on
// change notifications actually being delivered).
package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cheminee/search-engine/internal/indexmgr"
	pgmigrate "github.com/cheminee/search-engine/internal/infrastructure/database/postgres"
	"github.com/cheminee/search-engine/internal/infrastructure/database/redis"
	"github.com/cheminee/search-engine/internal/infrastructure/search/opensearch"
	"github.com/cheminee/search-engine/internal/kernel"
	"github.com/cheminee/search-engine/internal/logging"
	"github.com/cheminee/search-engine/internal/molprep"
	"github.com/cheminee/search-engine/internal/scaffold"
	"github.com/cheminee/search-engine/internal/writer"
)

// env bundles every live dependency one scenario test needs, torn down
// together via env.close.
type env struct {
	t         *testing.T
	pool      *pgxpool.Pool
	manager   *indexmgr.Manager
	indexer   *opensearch.Indexer
	searcher  *opensearch.Searcher
	preparer  *molprep.Preparer
	scaffolds *scaffold.Registry
	engine    *kernel.Engine
	logger    logging.Logger

	close func()
}

// newEnv starts Postgres, OpenSearch, and Redis containers, runs the
// catalog migration, and wires the same indexmgr.Manager/writer stack the
// running binary uses. Callers must defer env.close().
func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewNopLogger()

	pgC, pgURL := startPostgres(ctx, t)
	osC, osAddr := startOpenSearch(ctx, t)
	redisC, redisAddr := startRedis(ctx, t)

	if err := pgmigrate.RunMigrations(pgURL, "file://../../migrations/postgres"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	catalog := indexmgr.NewPostgresCatalog(pool)

	osClient, err := opensearch.NewClient(opensearch.ClientConfig{
		Addresses: []string{osAddr},
	}, logger)
	if err != nil {
		t.Fatalf("connect opensearch: %v", err)
	}
	indexer := opensearch.NewIndexer(osClient, opensearch.IndexerConfig{
		BulkBatchSize: 100,
		BulkWorkers:   1,
		RefreshPolicy: "true", // every scenario asserts immediately after a write
	}, logger)
	searcher := opensearch.NewSearcher(osClient, opensearch.SearcherConfig{DefaultPageSize: 50, MaxPageSize: 1000}, logger)

	redisClient, err := redis.NewClient(&redis.RedisConfig{Addr: redisAddr}, logger)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	locks := redis.NewLockFactory(redisClient, logger)

	manager := indexmgr.New(catalog, osClient, indexer, locks, logger)

	engine := kernel.NewEngine()
	preparer := molprep.NewWithEngine(engine)
	scaffolds := scaffold.New()

	e := &env{
		t:         t,
		pool:      pool,
		manager:   manager,
		indexer:   indexer,
		searcher:  searcher,
		preparer:  preparer,
		scaffolds: scaffolds,
		engine:    engine,
		logger:    logger,
	}
	e.close = func() {
		pool.Close()
		_ = redisClient.Close()
		_ = osClient.Close()
		terminate(ctx, t, pgC)
		terminate(ctx, t, osC)
		terminate(ctx, t, redisC)
	}
	return e
}

// newWriter builds a Writer for indexName with a nil Kafka producer: these
// scenarios only assert on search results, never on delivered notifications.
func (e *env) newWriter(indexName string) *writer.Writer {
	return writer.New(indexName, e.preparer, e.scaffolds, e.indexer, nil, writer.Config{}, e.logger)
}

func terminate(ctx context.Context, t *testing.T, c testcontainers.Container) {
	t.Helper()
	if c == nil {
		return
	}
	if err := c.Terminate(ctx); err != nil {
		t.Logf("terminate container: %v", err)
	}
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "cheminee",
			"POSTGRES_PASSWORD": "cheminee",
			"POSTGRES_DB":       "cheminee",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}
	url := fmt.Sprintf("postgres://cheminee:cheminee@%s:%s/cheminee?sslmode=disable", host, port.Port())
	return c, url
}

func startOpenSearch(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "opensearchproject/opensearch:2.11.0",
		ExposedPorts: []string{"9200/tcp"},
		Env: map[string]string{
			"discovery.type":              "single-node",
			"plugins.security.disabled":   "true",
			"OPENSEARCH_JAVA_OPTS":        "-Xms512m -Xmx512m",
			"DISABLE_INSTALL_DEMO_CONFIG": "true",
		},
		WaitingFor: wait.ForHTTP("/").WithPort("9200/tcp").WithStartupTimeout(120 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start opensearch container: %v", err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("opensearch host: %v", err)
	}
	port, err := c.MappedPort(ctx, "9200/tcp")
	if err != nil {
		t.Fatalf("opensearch port: %v", err)
	}
	return c, fmt.Sprintf("http://%s:%s", host, port.Port())
}

func startRedis(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := c.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	return c, fmt.Sprintf("%s:%s", host, port.Port())
}
