package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8080
  mode: "debug"
storage:
  base_dir: "./data/indexes"
postgres:
  host: "localhost"
  port: 5432
  user: "user"
  password: "password"
  db_name: "db"
redis:
  addr: "localhost:6379"
opensearch:
  addresses: ["https://localhost:9200"]
milvus:
  addr: "localhost:19530"
  num_clusters: 512
kafka:
  brokers: ["localhost:9092"]
  topic: "cheminee.index-changes"
similarity:
  search_percent: 2
  tanimoto_minimum: 0.5
writer:
  chunk_size: 1000
  max_parallel_chunks: 8
log:
  level: "info"
  format: "json"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		os.Setenv(k, v)
	}
	t.Cleanup(func() {
		for k := range vars {
			os.Unsetenv(k)
		}
	})
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load("non_existent_config.yaml")
	assert.Error(t, err)
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "invalid_yaml: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	invalidConfig := `
server:
  port: 70000
  mode: "debug"
`
	path := createTempConfigFile(t, invalidConfig)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	setEnvVars(t, map[string]string{
		"CHEMINEE_SERVER_PORT": "9999",
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_EnvOverride_NestedKey(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	setEnvVars(t, map[string]string{
		"CHEMINEE_POSTGRES_HOST": "db-host",
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db-host", cfg.Postgres.Host)
}

func TestLoad_DefaultValuesApplied(t *testing.T) {
	minimalYAML := `
server:
  port: 8080
  mode: "debug"
storage:
  base_dir: "./data/indexes"
postgres:
  host: "localhost"
  port: 5432
  user: "user"
  password: "password"
  db_name: "db"
  max_conns: 10
redis:
  addr: "localhost:6379"
opensearch:
  addresses: ["https://localhost:9200"]
milvus:
  addr: "localhost:19530"
  num_clusters: 512
kafka:
  brokers: ["localhost:9092"]
  topic: "cheminee.index-changes"
`
	path := createTempConfigFile(t, minimalYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	setEnvVars(t, map[string]string{
		"CHEMINEE_SERVER_PORT":          "8080",
		"CHEMINEE_SERVER_MODE":          "debug",
		"CHEMINEE_STORAGE_BASE_DIR":     "./data/indexes",
		"CHEMINEE_POSTGRES_HOST":        "localhost",
		"CHEMINEE_POSTGRES_PORT":        "5432",
		"CHEMINEE_POSTGRES_USER":        "user",
		"CHEMINEE_POSTGRES_PASSWORD":    "password",
		"CHEMINEE_POSTGRES_DB_NAME":     "db",
		"CHEMINEE_POSTGRES_MAX_CONNS":   "10",
		"CHEMINEE_REDIS_ADDR":           "localhost:6379",
		"CHEMINEE_OPENSEARCH_ADDRESSES": "https://localhost:9200",
		"CHEMINEE_MILVUS_ADDR":          "localhost:19530",
		"CHEMINEE_MILVUS_NUM_CLUSTERS":  "512",
		"CHEMINEE_KAFKA_BROKERS":        "localhost:9092",
		"CHEMINEE_KAFKA_TOPIC":          "cheminee.index-changes",
	})

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
}

func TestMustLoad_Success(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() {
		MustLoad(path)
	})
}

func TestMustLoad_Panic(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad("non_existent.yaml")
	})
}

func TestWatch_InvokesCallbackOnChange(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	changed := make(chan *Config, 1)
	Watch(path, func(c *Config) { changed <- c })

	updated := validConfigYAML + "\n# trigger reload\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	select {
	case cfg := <-changed:
		assert.Equal(t, 8080, cfg.Server.Port)
	case <-time.After(2 * time.Second):
		t.Skip("filesystem watch did not fire within timeout; fsnotify behavior is platform-dependent")
	}
}
