package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"

	insecureJWTSecret = "your-secret-key"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName    string `mapstructure:"SERVICE_NAME"`
	HTTPPort       string `mapstructure:"HTTP_PORT"`
	GRPCPort       string `mapstructure:"GRPC_PORT"`
	StorageBackend string `mapstructure:"STORAGE_BACKEND"`

	MongoURI      string        `mapstructure:"MONGO_URI"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	MongoTimeout  time.Duration `mapstructure:"MONGO_TIMEOUT"`

	RedisAddress    string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	ProfileCacheTTL time.Duration `mapstructure:"PROFILE_CACHE_TTL"`

	NATSURL string `mapstructure:"NATS_URL"`

	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	// UploadsDir receives images when no MinIO endpoint is configured.
	UploadsDir string `mapstructure:"UPLOADS_DIR"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPSender   string `mapstructure:"SMTP_SENDER"`

	SeedDemoUsers    int `mapstructure:"SEED_DEMO_USERS"`
	SeedDemoListings int `mapstructure:"SEED_DEMO_LISTINGS"`

	HealthCheckInterval    time.Duration `mapstructure:"HEALTH_CHECK_INTERVAL"`
	PrometheusMetricsPort  string        `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTExporterOTLPEndpoint string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	LogFormat              string        `mapstructure:"LOG_FORMAT"`
}

// Load reads an optional .env file, then environment variables, on top of defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "pet-listing-service")
	v.SetDefault("HTTP_PORT", "5000")
	v.SetDefault("GRPC_PORT", "50052")
	v.SetDefault("STORAGE_BACKEND", BackendMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "petme")
	v.SetDefault("MONGO_TIMEOUT", "5s")
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PROFILE_CACHE_TTL", "5m")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "pet-images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SENDER", "")
	v.SetDefault("SEED_DEMO_USERS", 0)
	v.SetDefault("SEED_DEMO_LISTINGS", 0)
	v.SetDefault("HEALTH_CHECK_INTERVAL", "15s")
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9093")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	switch c.StorageBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			problems = append(problems, "MONGO_URI is required for the mongo backend")
		}
		if c.MongoDatabase == "" {
			problems = append(problems, "MONGO_DATABASE is required for the mongo backend")
		}
	case BackendMemory:
		if c.SeedDemoListings > 0 && c.SeedDemoUsers <= 0 {
			problems = append(problems, "SEED_DEMO_LISTINGS needs SEED_DEMO_USERS")
		}
	default:
		problems = append(problems, fmt.Sprintf("STORAGE_BACKEND must be %q or %q, got %q", BackendMongo, BackendMemory, c.StorageBackend))
	}
	if c.StorageBackend != BackendMemory && (c.SeedDemoUsers > 0 || c.SeedDemoListings > 0) {
		problems = append(problems, "demo seeding is only available with the memory backend")
	}
	if c.GRPCPort != "" && c.HealthCheckInterval <= 0 {
		problems = append(problems, "HEALTH_CHECK_INTERVAL must be positive")
	}
	if c.HTTPPort == "" {
		problems = append(problems, "HTTP_PORT is required")
	}
	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// InsecureJWTSecret reports whether the well-known placeholder secret is in use.
func (c *Config) InsecureJWTSecret() bool {
	return c.JWTSecret == insecureJWTSecret
}

// MailerEnabled reports whether enough SMTP settings are present to send mail.
func (c *Config) MailerEnabled() bool {
	return c.SMTPHost != "" && c.SMTPSender != ""
}
