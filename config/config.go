package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort         string
	ServerHost         string
	CORSAllowedOrigins []string

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	MigrationsDir string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Auth configuration
	JWTSecret  string
	SessionTTL time.Duration
	TokenTTL   time.Duration

	// Serverless function endpoints
	ImageUploadEndpoint     string
	ImageDeleteEndpoint     string
	DetectAllergensEndpoint string
	FunctionTimeout         time.Duration
	FunctionMaxRetries      int

	// Object storage used when no image functions are configured
	S3BucketName string
	AWSRegion    string
	ImageCDNURL  string

	// Rate limits per user
	MutationsPerHour int
	UploadsPerHour   int
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	v := newViper()
	cfg := &Config{Environment: env}

	switch env {
	case CI:
		loadFromEnv(v, cfg)
	case Development, Test, Production:
		// Docker secrets take precedence over plain environment variables
		loadFromEnv(v, cfg)
		overrideFromSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "kitchenkin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "kitchenkin.db")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("TOKEN_TTL", "720h")
	v.SetDefault("FUNCTION_TIMEOUT", "60s")
	v.SetDefault("FUNCTION_MAX_RETRIES", 2)
	v.SetDefault("RATE_LIMIT_MUTATIONS_PER_HOUR", 60)
	v.SetDefault("RATE_LIMIT_UPLOADS_PER_HOUR", 20)
	return v
}

func loadFromEnv(v *viper.Viper, cfg *Config) {
	cfg.ServerPort = v.GetString("SERVER_PORT")
	cfg.ServerHost = v.GetString("SERVER_HOST")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.DBDriver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DBHost = v.GetString("DB_HOST")
	cfg.DBPort = v.GetString("DB_PORT")
	cfg.DBUser = v.GetString("DB_USER")
	cfg.DBPassword = v.GetString("DB_PASSWORD")
	cfg.DBName = v.GetString("DB_NAME")
	cfg.DBSSLMode = v.GetString("DB_SSL_MODE")
	cfg.SQLitePath = v.GetString("SQLITE_PATH")
	cfg.MigrationsDir = v.GetString("MIGRATIONS_DIR")

	cfg.RedisURL = v.GetString("REDIS_URL")
	cfg.RedisHost = v.GetString("REDIS_HOST")
	cfg.RedisPort = v.GetString("REDIS_PORT")
	cfg.RedisPassword = v.GetString("REDIS_PASSWORD")
	cfg.RedisDB = v.GetInt("REDIS_DB")

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	cfg.SessionTTL = v.GetDuration("SESSION_TTL")
	cfg.TokenTTL = v.GetDuration("TOKEN_TTL")

	cfg.ImageUploadEndpoint = v.GetString("IMAGE_UPLOAD_ENDPOINT")
	cfg.ImageDeleteEndpoint = v.GetString("IMAGE_DELETE_ENDPOINT")
	cfg.DetectAllergensEndpoint = v.GetString("DETECT_ALLERGENS_ENDPOINT")
	cfg.FunctionTimeout = v.GetDuration("FUNCTION_TIMEOUT")
	cfg.FunctionMaxRetries = v.GetInt("FUNCTION_MAX_RETRIES")

	cfg.S3BucketName = v.GetString("S3_BUCKET_NAME")
	cfg.AWSRegion = v.GetString("AWS_REGION")
	cfg.ImageCDNURL = strings.TrimSuffix(v.GetString("IMAGE_CDN_URL"), "/")

	cfg.MutationsPerHour = v.GetInt("RATE_LIMIT_MUTATIONS_PER_HOUR")
	cfg.UploadsPerHour = v.GetInt("RATE_LIMIT_UPLOADS_PER_HOUR")
}

// overrideFromSecrets replaces sensitive values with Docker secrets when they are mounted
func overrideFromSecrets(cfg *Config) {
	if s := readSecret("db_user"); s != "" {
		cfg.DBUser = s
	}
	if s := readSecret("db_password"); s != "" {
		cfg.DBPassword = s
	}
	if s := readSecret("jwt_secret"); s != "" {
		cfg.JWTSecret = s
	}
	if s := readSecret("redis_password"); s != "" {
		cfg.RedisPassword = s
	}
	if s := readSecret("redis_url"); s != "" {
		cfg.RedisURL = s
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PostgresDSN builds the connection string for the configured postgres database
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
