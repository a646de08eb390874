package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)

	assert.Equal(t, DefaultStorageBaseDir, cfg.Storage.BaseDir)

	assert.Equal(t, DefaultPostgresHost, cfg.Postgres.Host)
	assert.Equal(t, DefaultPostgresPort, cfg.Postgres.Port)
	assert.Equal(t, DefaultPostgresDBName, cfg.Postgres.DBName)
	assert.Equal(t, DefaultPostgresMaxConns, cfg.Postgres.MaxConns)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)

	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)

	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)

	assert.Equal(t, []string{DefaultOpenSearchAddr}, cfg.OpenSearch.Addresses)
	assert.Equal(t, "false", cfg.OpenSearch.RefreshPolicy)

	assert.Equal(t, DefaultMilvusAddr, cfg.Milvus.Addr)
	assert.Equal(t, DefaultMilvusNumClusters, cfg.Milvus.NumClusters)
	assert.Equal(t, DefaultMilvusNProbe, cfg.Milvus.NProbe)

	assert.Equal(t, DefaultSearchPercent, cfg.Similarity.SearchPercent)
	assert.Equal(t, DefaultTanimotoMinimum, cfg.Similarity.TanimotoMinimum)

	assert.Equal(t, DefaultWriterChunkSize, cfg.Writer.ChunkSize)
	assert.Equal(t, DefaultWriterMaxParallelChunk, cfg.Writer.MaxParallelChunk)
	assert.Equal(t, DefaultWriterMaxTautomerFanout, cfg.Writer.MaxTautomerFanout)

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Postgres.Host = "custom-host"

	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "custom-host", cfg.Postgres.Host)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
}

func TestApplyDefaults_PreserveSliceValues(t *testing.T) {
	cfg := &Config{}
	brokers := []string{"kafka-1:9092", "kafka-2:9092"}
	cfg.Kafka.Brokers = brokers

	ApplyDefaults(cfg)

	assert.Equal(t, brokers, cfg.Kafka.Brokers)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaults_ThenValidatePasses(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.NoError(t, cfg.Validate())
}
