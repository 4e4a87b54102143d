package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Redis    RedisConfig
	S3       S3Config
	Coupons  CouponConfig
	Payments PaymentsConfig
	Search   SearchConfig
	Chat     ChatConfig
	OpenAI   OpenAIConfig
	Events   EventsConfig
	Basket   BasketConfig
	Catalog  CatalogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host         string
	Port         int
	AllowOrigins []string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration for admin routes.
type AuthConfig struct {
	APIKey string
}

// RedisConfig holds the catalog cache configuration.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// S3Config holds AWS S3 configuration for product images.
type S3Config struct {
	Enabled       bool
	Bucket        string
	Region        string
	Prefix        string // Path prefix within bucket (e.g., "images/")
	PublicBaseURL string
}

// CouponConfig holds coupon file locations.
type CouponConfig struct {
	Files     []string
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Prefix  string
}

// PaymentsConfig holds payment provider configuration.
type PaymentsConfig struct {
	Enabled   bool
	SecretKey string
	Currency  string
}

// SearchConfig holds vector search configuration.
type SearchConfig struct {
	Enabled          bool
	WeaviateHost     string
	WeaviateScheme   string
	ClassName        string
	EmbeddingModel   string
	IndexRatePerSec  float64
	IndexConcurrency int
	IndexTimeout     time.Duration
}

// ChatConfig holds shopping assistant configuration.
type ChatConfig struct {
	Enabled   bool
	Model     string
	MaxTokens int
}

// OpenAIConfig holds credentials for the embedding and chat API.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

// EventsConfig holds product event delivery configuration.
type EventsConfig struct {
	Mode    string // "local" or "kafka"
	Brokers []string
	Topic   string
	GroupID string
}

// BasketConfig holds basket token and persistence settings.
type BasketConfig struct {
	CookieName      string
	CookieMaxAge    time.Duration
	CookieSecure    bool
	MaxWriteRetries int
}

// CatalogConfig holds listing page size limits.
type CatalogConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			AllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "restore"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		S3: S3Config{
			Enabled:       getEnvAsBool("S3_ENABLED", false),
			Bucket:        getEnv("S3_BUCKET", ""),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Prefix:        getEnv("S3_PREFIX", "images/"),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		},
		Coupons: CouponConfig{
			Files:     getEnvAsList("COUPON_FILES", nil),
			S3Enabled: getEnvAsBool("COUPON_S3_ENABLED", false),
			S3Bucket:  getEnv("COUPON_S3_BUCKET", ""),
			S3Region:  getEnv("COUPON_S3_REGION", "us-east-1"),
			S3Prefix:  getEnv("COUPON_S3_PREFIX", "coupons/"),
		},
		Payments: PaymentsConfig{
			Enabled:   getEnvAsBool("PAYMENTS_ENABLED", false),
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:  getEnv("PAYMENTS_CURRENCY", "usd"),
		},
		Search: SearchConfig{
			Enabled:          getEnvAsBool("SEARCH_ENABLED", false),
			WeaviateHost:     getEnv("WEAVIATE_HOST", "localhost:8081"),
			WeaviateScheme:   getEnv("WEAVIATE_SCHEME", "http"),
			ClassName:        getEnv("SEARCH_CLASS_NAME", "Product"),
			EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			IndexRatePerSec:  getEnvAsFloat("SEARCH_INDEX_RATE", 5),
			IndexConcurrency: getEnvAsInt("SEARCH_INDEX_CONCURRENCY", 4),
			IndexTimeout:     getEnvAsDuration("SEARCH_INDEX_TIMEOUT", 30*time.Second),
		},
		Chat: ChatConfig{
			Enabled:   getEnvAsBool("CHAT_ENABLED", false),
			Model:     getEnv("CHAT_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvAsInt("CHAT_MAX_TOKENS", 1024),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Events: EventsConfig{
			Mode:    getEnv("EVENTS_MODE", "local"),
			Brokers: getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_PRODUCT_TOPIC", "restore.products"),
			GroupID: getEnv("KAFKA_GROUP_ID", "restore-indexer"),
		},
		Basket: BasketConfig{
			CookieName:      getEnv("BASKET_COOKIE_NAME", "basketId"),
			CookieMaxAge:    getEnvAsDuration("BASKET_COOKIE_MAX_AGE", 30*24*time.Hour),
			CookieSecure:    getEnvAsBool("BASKET_COOKIE_SECURE", true),
			MaxWriteRetries: getEnvAsInt("BASKET_MAX_WRITE_RETRIES", 3),
		},
		Catalog: CatalogConfig{
			DefaultPageSize: getEnvAsInt("CATALOG_DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:     getEnvAsInt("CATALOG_MAX_PAGE_SIZE", 50),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
		if c.S3.PublicBaseURL == "" {
			return fmt.Errorf("S3 public base URL is required when S3 is enabled")
		}
	}

	if c.Coupons.S3Enabled && c.Coupons.S3Bucket == "" {
		return fmt.Errorf("coupon S3 bucket is required when coupon S3 is enabled")
	}

	if c.Payments.Enabled && c.Payments.SecretKey == "" {
		return fmt.Errorf("stripe secret key is required when payments are enabled")
	}

	if c.Search.Enabled {
		if c.Search.WeaviateHost == "" {
			return fmt.Errorf("weaviate host is required when search is enabled")
		}
		if c.Search.IndexConcurrency < 1 {
			return fmt.Errorf("search index concurrency must be at least 1")
		}
		if c.Search.IndexRatePerSec <= 0 {
			return fmt.Errorf("search index rate must be positive")
		}
	}

	if (c.Search.Enabled || c.Chat.Enabled) && c.OpenAI.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required when search or chat is enabled")
	}

	switch c.Events.Mode {
	case "local":
	case "kafka":
		if len(c.Events.Brokers) == 0 || c.Events.Topic == "" {
			return fmt.Errorf("kafka brokers and topic are required when events mode is kafka")
		}
	default:
		return fmt.Errorf("invalid events mode: %s (must be local or kafka)", c.Events.Mode)
	}

	if c.Basket.CookieName == "" {
		return fmt.Errorf("basket cookie name is required")
	}

	if c.Basket.MaxWriteRetries < 1 {
		return fmt.Errorf("basket max write retries must be at least 1")
	}

	if c.Catalog.DefaultPageSize < 1 || c.Catalog.MaxPageSize < c.Catalog.DefaultPageSize {
		return fmt.Errorf("invalid catalog page sizes: default %d, max %d", c.Catalog.DefaultPageSize, c.Catalog.MaxPageSize)
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
