// Package config provides configuration loading, defaults, and validation for
// the search engine.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultStorageBaseDir = "./data/indexes"

	DefaultPostgresHost     = "localhost"
	DefaultPostgresPort     = 5432
	DefaultPostgresDBName   = "cheminee_catalog"
	DefaultPostgresMaxConns = 25

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaBroker = "localhost:9092"
	DefaultKafkaTopic  = "cheminee.index-changes"

	DefaultOpenSearchAddr = "https://localhost:9200"

	DefaultMilvusAddr        = "localhost:19530"
	DefaultMilvusNumClusters = 512
	DefaultMilvusNProbe      = 16

	DefaultSearchPercent   = 0.1
	DefaultTanimotoMinimum = 0.4

	DefaultWriterChunkSize        = 1000
	DefaultWriterMaxParallelChunk = 8
	DefaultWriterMaxTautomerFanout = 16

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills each zero-value field that has a platform default below;
// fields without one (credentials, Redis DB, Kafka batch size) stay as given.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	if cfg.Storage.BaseDir == "" {
		cfg.Storage.BaseDir = DefaultStorageBaseDir
	}
	if cfg.Storage.MaxOpenIdxers == 0 {
		cfg.Storage.MaxOpenIdxers = 32
	}

	// ── Postgres ──────────────────────────────────────────────────────────────
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = DefaultPostgresHost
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Postgres.DBName == "" {
		cfg.Postgres.DBName = DefaultPostgresDBName
	}
	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = DefaultPostgresMaxConns
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.LockTTL == 0 {
		cfg.Redis.LockTTL = 30 * time.Second
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 60 * time.Second
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}

	// ── OpenSearch ────────────────────────────────────────────────────────────
	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{DefaultOpenSearchAddr}
	}
	if cfg.OpenSearch.BulkBatchSize == 0 {
		cfg.OpenSearch.BulkBatchSize = 500
	}
	if cfg.OpenSearch.BulkWorkers == 0 {
		cfg.OpenSearch.BulkWorkers = 4
	}
	if cfg.OpenSearch.RefreshPolicy == "" {
		cfg.OpenSearch.RefreshPolicy = "false"
	}

	// ── Milvus ────────────────────────────────────────────────────────────────
	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = DefaultMilvusAddr
	}
	if cfg.Milvus.NumClusters == 0 {
		cfg.Milvus.NumClusters = DefaultMilvusNumClusters
	}
	if cfg.Milvus.NProbe == 0 {
		cfg.Milvus.NProbe = DefaultMilvusNProbe
	}

	// ── Similarity ────────────────────────────────────────────────────────────
	if cfg.Similarity.SearchPercent == 0 {
		cfg.Similarity.SearchPercent = DefaultSearchPercent
	}
	if cfg.Similarity.TanimotoMinimum == 0 {
		cfg.Similarity.TanimotoMinimum = DefaultTanimotoMinimum
	}
	if cfg.Similarity.MaxFanoutWorkers == 0 {
		cfg.Similarity.MaxFanoutWorkers = 8
	}

	// ── Writer ────────────────────────────────────────────────────────────────
	if cfg.Writer.ChunkSize == 0 {
		cfg.Writer.ChunkSize = DefaultWriterChunkSize
	}
	if cfg.Writer.MaxParallelChunk == 0 {
		cfg.Writer.MaxParallelChunk = DefaultWriterMaxParallelChunk
	}
	if cfg.Writer.MaxTautomerFanout == 0 {
		cfg.Writer.MaxTautomerFanout = DefaultWriterMaxTautomerFanout
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
