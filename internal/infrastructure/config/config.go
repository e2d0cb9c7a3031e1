package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment    string               `mapstructure:"environment"`
	LogLevel       string               `mapstructure:"log_level"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Storage        StorageConfig        `mapstructure:"storage"`
	Redis          RedisConfig          `mapstructure:"redis"`
	JWT            JWTConfig            `mapstructure:"jwt"`
	Security       SecurityConfig       `mapstructure:"security"`
	AI             AIConfig             `mapstructure:"ai"`
	Analytics      AnalyticsConfig      `mapstructure:"analytics"`
	Email          EmailConfig          `mapstructure:"email"`
	Events         EventsConfig         `mapstructure:"events"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Tracing        TracingConfig        `mapstructure:"tracing"`
	Cache          CacheConfig          `mapstructure:"cache"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
	MaxBodyBytes    int64    `mapstructure:"max_body_bytes"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	QueryTimeout    int    `mapstructure:"query_timeout"`
	MaxRetries      int    `mapstructure:"max_retries"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// StorageConfig selects the repository implementation
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "memory" or "postgres"
}

type RedisConfig struct {
	URL        string `mapstructure:"url"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	MaxRetries int    `mapstructure:"max_retries"`
	PoolSize   int    `mapstructure:"pool_size"`
	Enabled    bool   `mapstructure:"enabled"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	AccessTTL  int    `mapstructure:"access_token_ttl"`
	RefreshTTL int    `mapstructure:"refresh_token_ttl"`
	Issuer     string `mapstructure:"issuer"`
}

type SecurityConfig struct {
	MaxLoginAttempts     int  `mapstructure:"max_login_attempts"`
	EnableTokenBlacklist bool `mapstructure:"enable_token_blacklist"`
	AuthRateLimitPerMin  int  `mapstructure:"auth_rate_limit_per_min"`
	AIRequestsPerHour    int  `mapstructure:"ai_requests_per_hour"`
}

// AIConfig contains AI provider configuration
type AIConfig struct {
	Primary        string          `mapstructure:"primary"` // "openai", "gemini", "anthropic" or "none"
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	MaxRetries     int             `mapstructure:"max_retries"`
	OpenAI         ProviderConfig  `mapstructure:"openai"`
	Gemini         ProviderConfig  `mapstructure:"gemini"`
	Anthropic      ProviderConfig  `mapstructure:"anthropic"`
	Breaker        BreakerSettings `mapstructure:"breaker"`
}

// ProviderConfig contains one AI provider's credentials and model settings
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type BreakerSettings struct {
	MaxFailures     int `mapstructure:"max_failures"`
	OpenTimeoutSecs int `mapstructure:"open_timeout_seconds"`
}

type AnalyticsConfig struct {
	GroupBy         string `mapstructure:"group_by"` // "name" or "id"
	ForecastMaxDays int    `mapstructure:"forecast_max_days"`
}

type EmailConfig struct {
	Provider  string `mapstructure:"provider"` // "sendgrid" or "log"
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

type EventsConfig struct {
	Driver   string `mapstructure:"driver"` // "amqp" or "log"
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type ReconciliationConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Schedule    string `mapstructure:"schedule"`
	AutoCorrect bool   `mapstructure:"auto_correct"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	CollectorURL   string  `mapstructure:"collector_url"`
	SampleRate     float64 `mapstructure:"sample_rate"`
	Insecure       bool    `mapstructure:"insecure"`
	ServiceVersion string  `mapstructure:"service_version"`
}

type CacheConfig struct {
	AnalysisTTLSeconds int   `mapstructure:"analysis_ttl_seconds"`
	CategoryMaxItems   int64 `mapstructure:"category_max_items"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 60)
	viper.SetDefault("server.shutdown_timeout", 30)
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.rate_limit_per_min", 100)
	viper.SetDefault("server.max_body_bytes", 1<<20)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "fintrack")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.conn_max_lifetime", 3600)
	viper.SetDefault("database.query_timeout", 30)
	viper.SetDefault("database.max_retries", 3)
	viper.SetDefault("database.auto_migrate", true)

	viper.SetDefault("storage.driver", "memory")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.enabled", false)

	viper.SetDefault("jwt.access_token_ttl", 86400)    // 1 day
	viper.SetDefault("jwt.refresh_token_ttl", 2592000) // 30 days
	viper.SetDefault("jwt.issuer", "fintrack_service")

	viper.SetDefault("security.max_login_attempts", 10)
	viper.SetDefault("security.enable_token_blacklist", true)
	viper.SetDefault("security.auth_rate_limit_per_min", 10)
	viper.SetDefault("security.ai_requests_per_hour", 30)

	viper.SetDefault("ai.primary", "gemini")
	viper.SetDefault("ai.timeout_seconds", 30)
	viper.SetDefault("ai.max_retries", 2)
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.max_tokens", 1500)
	viper.SetDefault("ai.openai.temperature", 0.4)
	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.max_tokens", 1500)
	viper.SetDefault("ai.gemini.temperature", 0.4)
	viper.SetDefault("ai.anthropic.model", "claude-3-5-haiku-latest")
	viper.SetDefault("ai.anthropic.max_tokens", 1500)
	viper.SetDefault("ai.anthropic.temperature", 0.4)
	viper.SetDefault("ai.breaker.max_failures", 5)
	viper.SetDefault("ai.breaker.open_timeout_seconds", 60)

	viper.SetDefault("analytics.group_by", "name")
	viper.SetDefault("analytics.forecast_max_days", 30)

	viper.SetDefault("email.provider", "log")
	viper.SetDefault("email.from_email", "alerts@fintrack.local")
	viper.SetDefault("email.from_name", "FinTrack")

	viper.SetDefault("events.driver", "log")
	viper.SetDefault("events.exchange", "fintrack.events")

	viper.SetDefault("reconciliation.enabled", true)
	viper.SetDefault("reconciliation.schedule", "0 3 * * *")
	viper.SetDefault("reconciliation.auto_correct", false)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.collector_url", "localhost:4317")
	viper.SetDefault("tracing.sample_rate", 0.1)
	viper.SetDefault("tracing.insecure", true)
	viper.SetDefault("tracing.service_version", "1.0.0")

	viper.SetDefault("cache.analysis_ttl_seconds", 300)
	viper.SetDefault("cache.category_max_items", 1000)
}

func overrideFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("server.port", p)
		}
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
		viper.Set("storage.driver", "postgres")
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		viper.Set("jwt.secret", jwtSecret)
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		viper.Set("redis.url", redisURL)
		viper.Set("redis.enabled", true)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		viper.Set("ai.openai.api_key", key)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		viper.Set("ai.gemini.api_key", key)
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		viper.Set("ai.anthropic.api_key", key)
	}
	if primary := os.Getenv("AI_PRIMARY"); primary != "" {
		viper.Set("ai.primary", strings.ToLower(primary))
	}

	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		viper.Set("email.api_key", key)
		viper.Set("email.provider", "sendgrid")
	}

	if amqpURL := os.Getenv("AMQP_URL"); amqpURL != "" {
		viper.Set("events.url", amqpURL)
		viper.Set("events.driver", "amqp")
	}

	if collector := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); collector != "" {
		viper.Set("tracing.collector_url", collector)
		viper.Set("tracing.enabled", true)
	}
}

func validate(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if config.IsProduction() && len(config.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters in production")
	}

	switch config.Storage.Driver {
	case "memory":
	case "postgres":
		if config.Database.URL == "" && (config.Database.Host == "" || config.Database.Name == "") {
			return fmt.Errorf("database configuration is incomplete")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	switch config.AI.Primary {
	case "openai", "gemini", "anthropic", "none":
	default:
		return fmt.Errorf("unknown AI provider %q", config.AI.Primary)
	}

	if config.Analytics.GroupBy != "name" && config.Analytics.GroupBy != "id" {
		return fmt.Errorf("analytics.group_by must be name or id")
	}
	if config.AI.TimeoutSeconds <= 0 {
		return fmt.Errorf("ai.timeout_seconds must be positive")
	}

	return nil
}
