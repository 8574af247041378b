package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for a service process. It is built once
// at startup and passed into component constructors; nothing reads the
// environment after Load returns.
type Config struct {
	// Server configuration
	Port           string
	ServiceName    string
	GinMode        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Upstream services (gateway only)
	Upstream UpstreamConfig

	// Gateway URL, used by downstream services for their CORS allow-list
	GatewayURL string

	// Rate limiting
	RateLimit RateLimitConfig

	// Kafka configuration
	Kafka KafkaConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	CacheTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	ExpiresIn        time.Duration
	RefreshExpiresIn time.Duration
}

// UpstreamConfig holds the base URLs of the backend services the gateway
// proxies to.
type UpstreamConfig struct {
	UserServiceURL      string
	InventoryServiceURL string
	OrderServiceURL     string
	ProxyTimeout        time.Duration
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	AuthRequests    int           `json:"auth_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers         []string
	OrderEventTopic string
	ConsumerGroup   string
}

// Load loads configuration from environment variables
func Load(serviceName string) *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		ServiceName:    serviceName,
		GinMode:        getEnv("GIN_MODE", "debug"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 35*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "smartstock_db"),
			User:     getEnv("DB_USER", "smartstock_user"),
			Password: getEnv("DB_PASSWORD", "smartstock_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			CacheTTL: getDurationEnv("REDIS_CACHE_TTL", 5*time.Minute),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			RefreshSecret:    getEnv("JWT_REFRESH_SECRET", "your-super-secret-refresh-key"),
			ExpiresIn:        getDurationEnv("JWT_EXPIRES_IN", time.Hour),
			RefreshExpiresIn: getDurationEnv("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour),
		},

		// Upstream services
		Upstream: UpstreamConfig{
			UserServiceURL:      getEnv("USER_SERVICE_URL", "http://localhost:8081"),
			InventoryServiceURL: getEnv("INVENTORY_SERVICE_URL", "http://localhost:8082"),
			OrderServiceURL:     getEnv("ORDER_SERVICE_URL", "http://localhost:8083"),
			ProxyTimeout:        getDurationEnv("PROXY_TIMEOUT", 30*time.Second),
		},

		GatewayURL: getEnv("GATEWAY_URL", "http://localhost:8080"),

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 15*time.Minute),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 100),
			AuthRequests:    getIntEnv("RATE_LIMIT_AUTH_REQUESTS", 30),
			AdminRequests:   getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 300),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Brokers:         getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrderEventTopic: getEnv("KAFKA_ORDER_EVENT_TOPIC", "order-events"),
			ConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "inventory-service"),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values. DATABASE_URL wins over the discrete DB_* vars.
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	} else {
		cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	}
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}
