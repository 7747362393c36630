// Package config provides configuration loading for the fieldlift tool.
package config

import (
	"os"
	"strconv"
)

// Config holds the full runtime configuration for a migration run.
type Config struct {
	// StoreURL is the base URL of the document store collection.
	StoreURL string

	// PageSize is the number of documents requested per select page.
	PageSize int

	// ChunkSize is the number of update instructions submitted per write.
	ChunkSize int

	// SourceField is the legacy single-valued field being migrated.
	SourceField string

	// TargetField is the multi-valued field receiving the migrated value.
	TargetField string

	// HTTPTimeoutSecs bounds each individual store request.
	HTTPTimeoutSecs int

	// RateLimit is the maximum store requests per second.
	RateLimit float64

	// ArchiveEnabled turns on postmortem archiving of failed chunk
	// payloads and the final run report.
	ArchiveEnabled bool

	// ArchiveBucket is the object-store bucket used for archiving.
	ArchiveBucket string
}

// Defaults for the recognized options.
const (
	DefaultStoreURL  = "http://localhost:8983/solr/records"
	DefaultPageSize  = 20
	DefaultChunkSize = 10

	DefaultSourceField = "category"
	DefaultTargetField = "categories"
)

// Load loads configuration from environment.
func Load() *Config {
	return &Config{
		StoreURL:        getEnv("FIELDLIFT_STORE_URL", DefaultStoreURL),
		PageSize:        getEnvInt("FIELDLIFT_PAGE_SIZE", DefaultPageSize),
		ChunkSize:       getEnvInt("FIELDLIFT_CHUNK_SIZE", DefaultChunkSize),
		SourceField:     getEnv("FIELDLIFT_SOURCE_FIELD", DefaultSourceField),
		TargetField:     getEnv("FIELDLIFT_TARGET_FIELD", DefaultTargetField),
		HTTPTimeoutSecs: getEnvInt("FIELDLIFT_HTTP_TIMEOUT_SECS", 30),
		RateLimit:       getEnvFloat("FIELDLIFT_RATE_LIMIT", 10.0),
		ArchiveEnabled:  getEnvBool("FIELDLIFT_ARCHIVE", false),
		ArchiveBucket:   getEnv("FIELDLIFT_ARCHIVE_BUCKET", "fieldlift"),
	}
}

// Validate validates the configuration and normalizes out-of-range values.
func (c *Config) Validate() error {
	if c.StoreURL == "" {
		return &ValidationError{Field: "storeUrl", Message: "required"}
	}
	if c.SourceField == "" {
		return &ValidationError{Field: "sourceField", Message: "required"}
	}
	if c.TargetField == "" {
		return &ValidationError{Field: "targetField", Message: "required"}
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.HTTPTimeoutSecs <= 0 {
		c.HTTPTimeoutSecs = 30
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 10.0
	}
	return nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
