package config

import (
	"os"
	"strconv"
	"strings"
)

// Storage backends
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	CORSOrigins string
	// Identity provider
	JWKSURL      string
	AuthAudience string
	// Storage
	StorageBackend  string
	PurgeWebhookURL string // Empty = log purged keys only
	// Tree walk bounds
	MaxCascadeNodes int
	MaxTreeDepth    int
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool // Enables debug-level logs
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: tablePrefix,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// Identity provider
		JWKSURL:      getEnv("AUTH_JWKS_URL", ""),
		AuthAudience: getEnv("AUTH_AUDIENCE", ""),
		// Storage
		StorageBackend:  strings.ToLower(getEnv("STORAGE_BACKEND", BackendPostgres)),
		PurgeWebhookURL: getEnv("PURGE_WEBHOOK_URL", ""),
		// Tree walk bounds
		MaxCascadeNodes: getEnvInt("MAX_CASCADE_NODES", DefaultMaxCascadeNodes),
		MaxTreeDepth:    getEnvInt("MAX_TREE_DEPTH", DefaultMaxTreeDepth),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// IsProd reports whether the server runs against production tables
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads a positive integer, falling back on parse errors
func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
