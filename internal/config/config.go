package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the configuration of the server and of the compiler command.
// Values come from the environment, optionally seeded from a .env file.
type Config struct {
	// Server configuration
	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"oneof=debug info warn error disabled"`
	LogPretty bool
	LogFile   string

	// Rate limiting: RateLimit requests per RateLimitWindow per client
	RateLimitType   string        `validate:"oneof=memory redis"`
	RateLimit       int           `validate:"min=1"`
	RateLimitWindow time.Duration `validate:"gt=0"`

	// Datastore configuration
	DatastoreType string `validate:"oneof=blob mysql"`
	IPDBPath      string `validate:"required_if=DatastoreType blob"`
	DictPath      string `validate:"required"`
	MySQLDSN      string `validate:"required_if=DatastoreType mysql"`

	// Lookup cache
	CacheType string        `validate:"oneof=none redis"`
	CacheTTL  time.Duration `validate:"gte=0"`

	// Redis configuration, shared by the cache and the rate limiter
	RedisAddr     string `validate:"required,hostname_port"`
	RedisPassword string
	RedisDB       int `validate:"gte=0,lte=15"`

	// Compiler configuration
	SourceV4Path  string
	SourceV6Path  string
	DictGoPath    string
	DictGoPackage string `validate:"omitempty,alphanum,lowercase"`
	ExportMySQL   bool
}

var validate = validator.New()

// Load reads the configuration from the environment. Variables already set
// take precedence over the env files. With no files given, ./.env is read if
// it exists. Load does not validate: each command checks the settings it
// uses with Validate or ValidateCompile.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	cfg := &Config{
		Port:      getEnv("PORT", "3000"),
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
		LogFile:   getEnv("LOG_FILE", ""),

		RateLimitType:   strings.ToLower(getEnv("RATE_LIMITER_TYPE", "memory")),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 1),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Second),

		DatastoreType: strings.ToLower(getEnv("DATASTORE_TYPE", "blob")),
		IPDBPath:      getEnv("IPDB_PATH", "./data/ip.db"),
		DictPath:      getEnv("DICT_PATH", "./data/dict.json"),
		MySQLDSN:      getEnv("MYSQL_DSN", ""),

		CacheType: strings.ToLower(getEnv("CACHE_TYPE", "none")),
		CacheTTL:  getEnvAsDuration("CACHE_TTL", time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		SourceV4Path:  getEnv("SOURCE_V4_PATH", ""),
		SourceV6Path:  getEnv("SOURCE_V6_PATH", ""),
		DictGoPath:    getEnv("DICT_GO_PATH", ""),
		DictGoPackage: getEnv("DICT_GO_PACKAGE", "locationdb"),
		ExportMySQL:   getEnvAsBool("EXPORT_MYSQL", false),
	}

	return cfg, nil
}

// Validate checks every field the server uses against its constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateCompile checks the settings the compiler command needs
func (c *Config) ValidateCompile() error {
	if c.SourceV4Path == "" && c.SourceV6Path == "" {
		return errors.New("invalid configuration: SOURCE_V4_PATH or SOURCE_V6_PATH is required")
	}
	if c.IPDBPath == "" {
		return errors.New("invalid configuration: IPDB_PATH is required")
	}
	if c.ExportMySQL && c.MySQLDSN == "" {
		return errors.New("invalid configuration: EXPORT_MYSQL requires MYSQL_DSN")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer.
// Returns -1 for unparsable values so that validation reports them.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return -1
	}
	return value
}

// getEnvAsBool reads an environment variable as a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration reads an environment variable as a duration. A bare
// number is a count of seconds. Returns -1 for unparsable values.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return -1
	}
	return value
}
