package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Typesense     TypesenseConfig
	OTEL          OTELConfig
	Locator       LocatorConfig
	Notifications NotificationsConfig
	Import        ImportConfig
	CORS          CORSConfig
}

// AppConfig holds process-wide settings
type AppConfig struct {
	Env string
}

// IsDevelopment reports whether development-only surfaces may be exposed
func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	Namespace string
}

// TypesenseConfig holds Typesense configuration. An empty URL disables the
// treatment index and lookups go straight to Postgres.
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// LocatorConfig holds clinic locator tuning
type LocatorConfig struct {
	Debounce              time.Duration
	NearMeRadiusMeters    float64
	UnboundedRadiusMeters float64
	ResultLimit           int
	MinQueryLength        int
	DefaultLatitude       float64
	DefaultLongitude      float64
	SessionTTL            time.Duration
	MaxSessions           int
}

// NotificationsConfig holds lead notification channels
type NotificationsConfig struct {
	PushChannel string

	TelegramBaseURL  string
	TelegramBotToken string
	TelegramChatID   string

	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppRecipient     string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	LeadEmailTo  []string
}

// ImportConfig holds directory import settings
type ImportConfig struct {
	SeedFile  string
	BatchSize int
	Workers   int
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env: getEnv("APP_ENV", "production"),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "dentisalud"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnvAsInt("REDIS_PORT", 6379),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			Namespace: getEnv("REDIS_NAMESPACE", "dentisalud"),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", ""),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "dentisalud-funnel"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Locator: LocatorConfig{
			Debounce:              getEnvAsDuration("LOCATOR_DEBOUNCE", 400*time.Millisecond),
			NearMeRadiusMeters:    getEnvAsFloat("LOCATOR_NEAR_ME_RADIUS_METERS", 10000),
			UnboundedRadiusMeters: getEnvAsFloat("LOCATOR_UNBOUNDED_RADIUS_METERS", 10000000),
			ResultLimit:           getEnvAsInt("LOCATOR_RESULT_LIMIT", 50),
			MinQueryLength:        getEnvAsInt("LOCATOR_MIN_QUERY_LENGTH", 3),
			DefaultLatitude:       getEnvAsFloat("LOCATOR_DEFAULT_LAT", 40.416),
			DefaultLongitude:      getEnvAsFloat("LOCATOR_DEFAULT_LON", -3.703),
			SessionTTL:            getEnvAsDuration("LOCATOR_SESSION_TTL", 30*time.Minute),
			MaxSessions:           getEnvAsInt("LOCATOR_MAX_SESSIONS", 10000),
		},
		Notifications: NotificationsConfig{
			PushChannel:           getEnv("LEAD_PUSH_CHANNEL", "telegram"),
			TelegramBaseURL:       getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
			TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID:        getEnv("TELEGRAM_CHAT_ID", ""),
			WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			WhatsAppRecipient:     getEnv("WHATSAPP_LEAD_RECIPIENT", ""),
			SMTPHost:              getEnv("SMTP_HOST", ""),
			SMTPPort:              getEnvAsInt("SMTP_PORT", 587),
			SMTPUser:              getEnv("SMTP_USER", ""),
			SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
			SMTPFrom:              getEnv("SMTP_FROM", "web@dentisalud.es"),
			LeadEmailTo:           getEnvAsList("LEAD_EMAIL_TO", nil),
		},
		Import: ImportConfig{
			SeedFile:  getEnv("DIRECTORY_SEED_FILE", "data/medical_directory.json"),
			BatchSize: getEnvAsInt("DIRECTORY_IMPORT_BATCH_SIZE", 50),
			Workers:   getEnvAsInt("DIRECTORY_IMPORT_WORKERS", 4),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the locator cannot run with
func (c *Config) Validate() error {
	if c.Locator.ResultLimit <= 0 {
		return fmt.Errorf("LOCATOR_RESULT_LIMIT must be positive, got %d", c.Locator.ResultLimit)
	}
	if c.Locator.NearMeRadiusMeters <= 0 || c.Locator.UnboundedRadiusMeters <= 0 {
		return fmt.Errorf("locator radii must be positive")
	}
	if c.Locator.Debounce < 0 {
		return fmt.Errorf("LOCATOR_DEBOUNCE must not be negative")
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("DIRECTORY_IMPORT_BATCH_SIZE must be positive, got %d", c.Import.BatchSize)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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
