package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every key Load reads, for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "LOG_LEVEL", "LOG_PRETTY", "LOG_FILE", "RATE_LIMITER_TYPE", "RATE_LIMIT", "RATE_LIMIT_WINDOW",
		"DATASTORE_TYPE", "IPDB_PATH", "DICT_PATH", "MYSQL_DSN", "CACHE_TYPE", "CACHE_TTL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "SOURCE_V4_PATH", "SOURCE_V6_PATH",
		"DICT_GO_PATH", "DICT_GO_PACKAGE", "EXPORT_MYSQL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	// keep a developer's .env out of the test
	t.Chdir(t.TempDir())
}

// TestLoad_Defaults tests the default configuration
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Port)
	}
	if cfg.DatastoreType != "blob" || cfg.IPDBPath != "./data/ip.db" || cfg.DictPath != "./data/dict.json" {
		t.Errorf("unexpected datastore defaults %+v", cfg)
	}
	if cfg.RateLimitType != "memory" || cfg.RateLimit != 1 || cfg.RateLimitWindow != time.Second {
		t.Errorf("unexpected rate limit defaults %+v", cfg)
	}
	if cfg.CacheType != "none" || cfg.CacheTTL != time.Hour {
		t.Errorf("unexpected cache defaults %+v", cfg)
	}
	if cfg.DictGoPackage != "locationdb" || cfg.ExportMySQL {
		t.Errorf("unexpected compiler defaults %+v", cfg)
	}
}

// TestLoad_Environment tests values read from the environment
func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_PRETTY", "false")
	t.Setenv("RATE_LIMITER_TYPE", "redis")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "5")
	t.Setenv("DATASTORE_TYPE", "mysql")
	t.Setenv("MYSQL_DSN", "root:pw@tcp(localhost:3306)/iplocation")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	if cfg.Port != "8080" || cfg.LogLevel != "debug" || cfg.LogPretty {
		t.Errorf("unexpected server settings %+v", cfg)
	}
	if cfg.RateLimitType != "redis" || cfg.RateLimit != 10 || cfg.RateLimitWindow != 5*time.Second {
		t.Errorf("unexpected rate limit settings %+v", cfg)
	}
	if cfg.DatastoreType != "mysql" || cfg.MySQLDSN == "" {
		t.Errorf("unexpected datastore settings %+v", cfg)
	}
	if cfg.CacheType != "redis" || cfg.CacheTTL != 90*time.Second || cfg.RedisDB != 2 {
		t.Errorf("unexpected cache settings %+v", cfg)
	}
}

// TestLoad_EnvFile tests reading an env file without overriding the environment
func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	os.WriteFile(path, []byte("PORT=9090\nIPDB_PATH=/srv/ip.db\n"), 0644)
	t.Setenv("IPDB_PATH", "/override/ip.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port from file, got %s", cfg.Port)
	}
	if cfg.IPDBPath != "/override/ip.db" {
		t.Errorf("expected the environment to win, got %s", cfg.IPDBPath)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for a missing explicit env file")
	}
}

// TestConfig_Validate tests validation failures
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{"non-numeric port", "PORT", "http", "Port"},
		{"unknown log level", "LOG_LEVEL", "verbose", "LogLevel"},
		{"unknown limiter", "RATE_LIMITER_TYPE", "leaky", "RateLimitType"},
		{"zero rate", "RATE_LIMIT", "0", "RateLimit"},
		{"bad rate", "RATE_LIMIT", "ten", "RateLimit"},
		{"bad window", "RATE_LIMIT_WINDOW", "soon", "RateLimitWindow"},
		{"unknown datastore", "DATASTORE_TYPE", "csv", "DatastoreType"},
		{"mysql without DSN", "DATASTORE_TYPE", "mysql", "MySQLDSN"},
		{"unknown cache", "CACHE_TYPE", "memcached", "CacheType"},
		{"bad redis address", "REDIS_ADDR", "localhost", "RedisAddr"},
		{"redis db out of range", "REDIS_DB", "16", "RedisDB"},
		{"bad package name", "DICT_GO_PACKAGE", "Location-DB", "DictGoPackage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("unexpected load error: %v", err)
			}
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error about %s, got %v", tt.field, err)
			}
		})
	}
}

// TestConfig_ValidateCompile tests the compiler settings
func TestConfig_ValidateCompile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOURCE_V4_PATH", "v4.csv")
	t.Setenv("REDIS_ADDR", "localhost")
	t.Setenv("RATE_LIMIT", "ten")
	loaded, err := Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if err := loaded.ValidateCompile(); err != nil {
		t.Errorf("server-only settings must not fail the compiler: %v", err)
	}


	cfg := &Config{IPDBPath: "ip.db"}
	if err := cfg.ValidateCompile(); err == nil {
		t.Error("expected error without sources")
	}

	cfg.SourceV6Path = "v6.csv"
	if err := cfg.ValidateCompile(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.ExportMySQL = true
	if err := cfg.ValidateCompile(); err == nil {
		t.Error("expected error for export without DSN")
	}
}
