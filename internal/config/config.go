package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	Parser    ParserConfig
	CORS      CORSConfig
	Queue     QueueConfig
	Limits    LimitsConfig
	Sync      SyncConfig
	Bootstrap BootstrapConfig
	Email     EmailConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// BootstrapConfig holds the first tenant and admin created on an empty database.
type BootstrapConfig struct {
	TenantName    string `mapstructure:"tenant_name"`
	TenantSlug    string `mapstructure:"tenant_slug"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
}

// QueueConfig holds retry queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// LimitsConfig caps collection sizes and pages per submission.
type LimitsConfig struct {
	MaxPages          int `mapstructure:"max_pages"`
	MaxVehicles       int `mapstructure:"max_vehicles"`
	MaxDrivers        int `mapstructure:"max_drivers"`
	MaxDeductibles    int `mapstructure:"max_deductibles"`
	MaxLienholders    int `mapstructure:"max_lienholders"`
	MaxAccidents      int `mapstructure:"max_accidents"`
	MaxTickets        int `mapstructure:"max_tickets"`
	MaxClaims         int `mapstructure:"max_claims"`
	MaxScheduledItems int `mapstructure:"max_scheduled_items"`
}

// SyncConfig is the synchronization posture applied after processing and edits.
type SyncConfig struct {
	AutoCreateDeductibles     bool `mapstructure:"auto_create_deductibles"`
	RemoveOrphanedDeductibles bool `mapstructure:"remove_orphaned_deductibles"`
	RemoveOrphanedLienholders bool `mapstructure:"remove_orphaned_lienholders"`
	ClearOrphanedDriverRefs   bool `mapstructure:"clear_orphaned_driver_refs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single recognition provider.
type ParserProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds recognition provider settings with primary/secondary
// fallback, plus page fan-out limits shared by all providers.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`

	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Concurrency       int `mapstructure:"concurrency"`
	CacheTTLSecs      int `mapstructure:"cache_ttl_secs"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the COVERSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COVERSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "coverscan")
	v.SetDefault("db.password", "coverscan_secret")
	v.SetDefault("db.name", "coverscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "coverscan")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "coverscan-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:3001,http://127.0.0.1:3001")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 5)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@coverscan.io")
	v.SetDefault("email.from_name", "CoverScan")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Bootstrap defaults (dev only; set real values in production)
	v.SetDefault("bootstrap.tenant_name", "CoverScan Dev")
	v.SetDefault("bootstrap.tenant_slug", "coverscan")
	v.SetDefault("bootstrap.admin_email", "admin@coverscan.io")
	v.SetDefault("bootstrap.admin_password", "")
	v.SetDefault("bootstrap.admin_name", "Administrator")

	// Limits defaults
	v.SetDefault("limits.max_pages", 20)
	v.SetDefault("limits.max_vehicles", 6)
	v.SetDefault("limits.max_drivers", 8)
	v.SetDefault("limits.max_deductibles", 6)
	v.SetDefault("limits.max_lienholders", 6)
	v.SetDefault("limits.max_accidents", 20)
	v.SetDefault("limits.max_tickets", 20)
	v.SetDefault("limits.max_claims", 10)
	v.SetDefault("limits.max_scheduled_items", 15)

	// Sync posture defaults
	v.SetDefault("sync.auto_create_deductibles", true)
	v.SetDefault("sync.remove_orphaned_deductibles", false)
	v.SetDefault("sync.remove_orphaned_lienholders", false)
	v.SetDefault("sync.clear_orphaned_driver_refs", true)

	// Parser defaults
	v.SetDefault("parser.primary.provider", "claude")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.model", "claude-sonnet-4-20250514")
	v.SetDefault("parser.primary.timeout_secs", 120)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.model", "")
	v.SetDefault("parser.secondary.timeout_secs", 120)
	v.SetDefault("parser.requests_per_minute", 30)
	v.SetDefault("parser.concurrency", 3)
	v.SetDefault("parser.cache_ttl_secs", 3600)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "COVERSCAN_SERVER_PORT",
		"server.read_timeout":  "COVERSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout": "COVERSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":   "COVERSCAN_SERVER_ENVIRONMENT",
		"db.host":              "COVERSCAN_DB_HOST",
		"db.port":              "COVERSCAN_DB_PORT",
		"db.user":              "COVERSCAN_DB_USER",
		"db.password":          "COVERSCAN_DB_PASSWORD",
		"db.name":              "COVERSCAN_DB_NAME",
		"db.sslmode":           "COVERSCAN_DB_SSLMODE",
		"db.max_open":          "COVERSCAN_DB_MAX_OPEN",
		"db.max_idle":          "COVERSCAN_DB_MAX_IDLE",
		"jwt.secret":           "COVERSCAN_JWT_SECRET",
		"jwt.access_expiry":    "COVERSCAN_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":   "COVERSCAN_JWT_REFRESH_EXPIRY",
		"jwt.issuer":           "COVERSCAN_JWT_ISSUER",
		"s3.region":            "COVERSCAN_S3_REGION",
		"s3.bucket":            "COVERSCAN_S3_BUCKET",
		"s3.endpoint":          "COVERSCAN_S3_ENDPOINT",
		"s3.access_key":        "COVERSCAN_S3_ACCESS_KEY",
		"s3.secret_key":        "COVERSCAN_S3_SECRET_KEY",
		"s3.max_file_size_mb":  "COVERSCAN_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":    "COVERSCAN_S3_PRESIGN_EXPIRY",
		"log.level":            "COVERSCAN_LOG_LEVEL",
		"log.format":           "COVERSCAN_LOG_FORMAT",
		"cors.allowed_origins":             "COVERSCAN_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":         "COVERSCAN_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":                "COVERSCAN_QUEUE_MAX_RETRIES",
		"queue.concurrency":                "COVERSCAN_QUEUE_CONCURRENCY",
		"parser.primary.provider":          "COVERSCAN_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":           "COVERSCAN_PARSER_PRIMARY_API_KEY",
		"parser.primary.model":             "COVERSCAN_PARSER_PRIMARY_MODEL",
		"parser.primary.timeout_secs":      "COVERSCAN_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":        "COVERSCAN_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":         "COVERSCAN_PARSER_SECONDARY_API_KEY",
		"parser.secondary.model":           "COVERSCAN_PARSER_SECONDARY_MODEL",
		"parser.secondary.timeout_secs":    "COVERSCAN_PARSER_SECONDARY_TIMEOUT_SECS",
		"parser.requests_per_minute":       "COVERSCAN_PARSER_REQUESTS_PER_MINUTE",
		"parser.concurrency":               "COVERSCAN_PARSER_CONCURRENCY",
		"parser.cache_ttl_secs":            "COVERSCAN_PARSER_CACHE_TTL_SECS",
		"email.provider":                   "COVERSCAN_EMAIL_PROVIDER",
		"email.region":                     "COVERSCAN_EMAIL_REGION",
		"email.from_address":               "COVERSCAN_EMAIL_FROM_ADDRESS",
		"email.from_name":                  "COVERSCAN_EMAIL_FROM_NAME",
		"email.frontend_url":               "COVERSCAN_EMAIL_FRONTEND_URL",
		"bootstrap.tenant_name":            "COVERSCAN_BOOTSTRAP_TENANT_NAME",
		"bootstrap.tenant_slug":            "COVERSCAN_BOOTSTRAP_TENANT_SLUG",
		"bootstrap.admin_email":            "COVERSCAN_BOOTSTRAP_ADMIN_EMAIL",
		"bootstrap.admin_password":         "COVERSCAN_BOOTSTRAP_ADMIN_PASSWORD",
		"bootstrap.admin_name":             "COVERSCAN_BOOTSTRAP_ADMIN_NAME",
		"limits.max_pages":                 "COVERSCAN_LIMITS_MAX_PAGES",
		"limits.max_vehicles":              "COVERSCAN_LIMITS_MAX_VEHICLES",
		"limits.max_drivers":               "COVERSCAN_LIMITS_MAX_DRIVERS",
		"limits.max_deductibles":           "COVERSCAN_LIMITS_MAX_DEDUCTIBLES",
		"limits.max_lienholders":           "COVERSCAN_LIMITS_MAX_LIENHOLDERS",
		"limits.max_accidents":             "COVERSCAN_LIMITS_MAX_ACCIDENTS",
		"limits.max_tickets":               "COVERSCAN_LIMITS_MAX_TICKETS",
		"limits.max_claims":                "COVERSCAN_LIMITS_MAX_CLAIMS",
		"limits.max_scheduled_items":       "COVERSCAN_LIMITS_MAX_SCHEDULED_ITEMS",
		"sync.auto_create_deductibles":     "COVERSCAN_SYNC_AUTO_CREATE_DEDUCTIBLES",
		"sync.remove_orphaned_deductibles": "COVERSCAN_SYNC_REMOVE_ORPHANED_DEDUCTIBLES",
		"sync.remove_orphaned_lienholders": "COVERSCAN_SYNC_REMOVE_ORPHANED_LIENHOLDERS",
		"sync.clear_orphaned_driver_refs":  "COVERSCAN_SYNC_CLEAR_ORPHANED_DRIVER_REFS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if COVERSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("COVERSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Parser = ParserConfig{
		Primary: ParserProviderConfig{
			Provider:    v.GetString("parser.primary.provider"),
			APIKey:      v.GetString("parser.primary.api_key"),
			Model:       v.GetString("parser.primary.model"),
			TimeoutSecs: v.GetInt("parser.primary.timeout_secs"),
		},
		Secondary: ParserProviderConfig{
			Provider:    v.GetString("parser.secondary.provider"),
			APIKey:      v.GetString("parser.secondary.api_key"),
			Model:       v.GetString("parser.secondary.model"),
			TimeoutSecs: v.GetInt("parser.secondary.timeout_secs"),
		},
		RequestsPerMinute: v.GetInt("parser.requests_per_minute"),
		Concurrency:       v.GetInt("parser.concurrency"),
		CacheTTLSecs:      v.GetInt("parser.cache_ttl_secs"),
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Limits = LimitsConfig{
		MaxPages:          v.GetInt("limits.max_pages"),
		MaxVehicles:       v.GetInt("limits.max_vehicles"),
		MaxDrivers:        v.GetInt("limits.max_drivers"),
		MaxDeductibles:    v.GetInt("limits.max_deductibles"),
		MaxLienholders:    v.GetInt("limits.max_lienholders"),
		MaxAccidents:      v.GetInt("limits.max_accidents"),
		MaxTickets:        v.GetInt("limits.max_tickets"),
		MaxClaims:         v.GetInt("limits.max_claims"),
		MaxScheduledItems: v.GetInt("limits.max_scheduled_items"),
	}

	cfg.Sync = SyncConfig{
		AutoCreateDeductibles:     v.GetBool("sync.auto_create_deductibles"),
		RemoveOrphanedDeductibles: v.GetBool("sync.remove_orphaned_deductibles"),
		RemoveOrphanedLienholders: v.GetBool("sync.remove_orphaned_lienholders"),
		ClearOrphanedDriverRefs:   v.GetBool("sync.clear_orphaned_driver_refs"),
	}

	cfg.Bootstrap = BootstrapConfig{
		TenantName:    v.GetString("bootstrap.tenant_name"),
		TenantSlug:    v.GetString("bootstrap.tenant_slug"),
		AdminEmail:    v.GetString("bootstrap.admin_email"),
		AdminPassword: v.GetString("bootstrap.admin_password"),
		AdminName:     v.GetString("bootstrap.admin_name"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	return cfg, nil
}
