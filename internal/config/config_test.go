package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "7521", cfg.Port)
	assert.Equal(t, ":7521", cfg.Addr())
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "spark-v1", cfg.Cache.Version)
	assert.Equal(t, "2006. 1. 2.", cfg.DateLayout)
	assert.False(t, cfg.Production())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SPARK_PORT", "9000")
	t.Setenv("SPARK_ENV", "production")
	t.Setenv("SPARK_STORAGE_BACKEND", "memory")
	t.Setenv("SPARK_CACHE_VERSION", "spark-v2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "spark-v2", cfg.Cache.Version)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spark.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"8080\"\nstorage:\n  backend: memory\ncache:\n  dir: /tmp/spark-cache\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "/tmp/spark-cache", cfg.Cache.Dir)
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("SPARK_STORAGE_BACKEND", "sqlite")
	_, err := Load("")
	assert.ErrorContains(t, err, "invalid config")

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_MongoNeedsURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spark.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storage": {"backend": "mongo"}, "mongodb": {"uri": ""}}`), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "mongodb.uri")
}
