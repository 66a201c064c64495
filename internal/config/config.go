package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DirectoryPostgres      = "postgres"
	DirectoryElasticsearch = "elasticsearch"
)

type Config struct {
	Port                  string
	DBUrl                 string
	JWTSecret             string
	RedisURL              string
	ElasticsearchURL      string
	DirectoryBackend      string
	WorkerIndex           string
	BookingExpiryInterval int
	SupabaseURL           string
	SupabaseBucket        string
	SupabaseServiceKey    string
	AppEnv                string
	EnableDocs            bool
	AdminEmail            string
	AdminPasswordHash     string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	jwtSecret, exists := os.LookupEnv("JWT_SECRET")
	if !exists || jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	backend := strings.ToLower(strings.TrimSpace(getEnv("DIRECTORY_BACKEND", DirectoryPostgres)))
	if backend != DirectoryPostgres && backend != DirectoryElasticsearch {
		return nil, fmt.Errorf("DIRECTORY_BACKEND must be %q or %q, got %q", DirectoryPostgres, DirectoryElasticsearch, backend)
	}

	elasticsearchURL := getEnv("ELASTICSEARCH_URL", "")
	if backend == DirectoryElasticsearch && elasticsearchURL == "" {
		return nil, fmt.Errorf("ELASTICSEARCH_URL is required when DIRECTORY_BACKEND=%s", DirectoryElasticsearch)
	}

	expiryInterval, err := getEnvInt("BOOKING_EXPIRY_INTERVAL_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		DBUrl:                 getEnv("DB_URL", ""),
		JWTSecret:             jwtSecret,
		RedisURL:              getEnv("REDIS_URL", ""),
		ElasticsearchURL:      elasticsearchURL,
		DirectoryBackend:      backend,
		WorkerIndex:           getEnv("WORKER_INDEX", "workers"),
		BookingExpiryInterval: expiryInterval,
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseBucket:        getEnv("SUPABASE_BUCKET", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		AppEnv:                normalizeEnv(getEnv("APP_ENV", "production")),
		EnableDocs:            getEnvBool("ENABLE_API_DOCS", false),
		AdminEmail:            strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
		AdminPasswordHash:     getEnv("ADMIN_PASSWORD_HASH", ""),
	}, nil
}

// getEnv treats a set but blank variable as unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return parsed, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}

// IsProduction reports whether error responses must omit diagnostic details.
// Only development, staging and test deployments expose them; a nil config or
// an unrecognised environment is treated as production.
func (c *Config) IsProduction() bool {
	if c == nil {
		return true
	}
	switch c.AppEnv {
	case "development", "staging", "test":
		return false
	default:
		return true
	}
}

func (c *Config) StorageConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseBucket != "" && c.SupabaseServiceKey != ""
}

func (c *Config) AdminConfigured() bool {
	return c.AdminEmail != "" && c.AdminPasswordHash != ""
}
