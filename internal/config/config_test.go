package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MINIO_PREFIX", "tenant-a")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATA_VALIDATION", "true")
	t.Setenv("SCHEMA_DIR", "/tmp/schemas")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "tenant-a", cfg.MinIO.Prefix)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.True(t, cfg.Schema.DataValidation)
	assert.Equal(t, "/tmp/schemas", cfg.Schema.Dir)
	assert.Equal(t, SchemaBackendFS, cfg.Schema.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "STORE_DRIVER", "DATA_VALIDATION", "SCHEMA_DIR", "SCHEMA_BACKEND", "CORS_ALLOW_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.False(t, cfg.Schema.DataValidation)
	assert.Equal(t, "allowed_schemas", cfg.Schema.Dir)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsDevelopment())
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, (&AppConfig{Env: "development"}).IsDevelopment())
	assert.True(t, (&AppConfig{Env: "DEV"}).IsDevelopment())
	assert.False(t, (&AppConfig{Env: "production"}).IsDevelopment())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"
	def := []string{"x"}

	t.Setenv(key, " , ")
	assert.Equal(t, def, getEnvList(key, def))

	t.Setenv(key, "a,b")
	assert.Equal(t, []string{"a", "b"}, getEnvList(key, def))
}
