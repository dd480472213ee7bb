package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a configuration
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	require := func(field, value, message string) {
		if value == "" {
			errs = append(errs, ValidationError{Field: field, Message: message})
		}
	}

	require("SERVER_PORT", cfg.ServerPort, "is required")
	require("JWT_SECRET", cfg.JWTSecret, "is required")

	switch cfg.DBDriver {
	case "postgres":
		require("DB_HOST", cfg.DBHost, "is required for postgres")
		require("DB_NAME", cfg.DBName, "is required for postgres")
		require("DB_USER", cfg.DBUser, "is required for postgres")
		if cfg.Environment == CI || cfg.Environment == Production {
			require("DB_PASSWORD", cfg.DBPassword, fmt.Sprintf("is required in %s", cfg.Environment))
		}
	case "sqlite":
		require("SQLITE_PATH", cfg.SQLitePath, "is required for sqlite")
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not supported in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if cfg.RedisURL == "" && cfg.RedisHost == "" {
		errs = append(errs, ValidationError{Field: "REDIS_URL", Message: "REDIS_URL or REDIS_HOST is required"})
	}

	if cfg.SessionTTL <= 0 {
		errs = append(errs, ValidationError{Field: "SESSION_TTL", Message: "must be positive"})
	}

	if cfg.Environment == Production {
		if len(cfg.JWTSecret) < 32 {
			errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "must be at least 32 characters in production"})
		}
		if cfg.ImageUploadEndpoint == "" && cfg.S3BucketName == "" {
			errs = append(errs, ValidationError{Field: "IMAGE_UPLOAD_ENDPOINT", Message: "IMAGE_UPLOAD_ENDPOINT or S3_BUCKET_NAME is required in production"})
		}
		require("DETECT_ALLERGENS_ENDPOINT", cfg.DetectAllergensEndpoint, "is required in production")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
