package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("MONGO_DBNAME", "reviews")
	t.Setenv("IP", "127.0.0.1")
	t.Setenv("PORT", "8080")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "reviews", cfg.MongoDBName)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, DefaultStore, cfg.Store)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("SECRET_KEY", "legacy")
	t.Setenv("MOVIEREVIEW_SECRET_KEY", "prefixed")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.SecretKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := []byte(`
secret_key: from-file
store: sqlite
sqlite_path: /tmp/reviews.db
session_store: redis
redis_url: redis://cache:6379/1
session_ttl: 2h
port: 9000
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.SecretKey)
	assert.Equal(t, "sqlite", cfg.Store)
	assert.Equal(t, "/tmp/reviews.db", cfg.SQLitePath)
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, path, cfg.ConfigPath)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			SecretKey:    "k",
			Store:        "mongo",
			MongoURI:     DefaultMongoURI,
			MongoDBName:  DefaultMongoDBName,
			Port:         DefaultPort,
			SessionStore: "cookie",
			SessionTTL:   time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing secret", func(c *Config) { c.SecretKey = "" }, "secret_key is required"},
		{"unknown store", func(c *Config) { c.Store = "postgres" }, "store must be"},
		{"sqlite without path", func(c *Config) { c.Store = "sqlite"; c.SQLitePath = "" }, "sqlite_path is required"},
		{"unknown session store", func(c *Config) { c.SessionStore = "memcached" }, "session_store must be"},
		{"redis without url", func(c *Config) { c.SessionStore = "redis"; c.RedisURL = "" }, "redis_url is required"},
		{"bad port", func(c *Config) { c.Port = 0 }, "port must be"},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, "session_ttl must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
