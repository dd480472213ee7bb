package config

import (
	"os"
	"strings"
)

// Environment selects how configuration is loaded and validated
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// ParseEnvironment maps an ENV value to an Environment. Unknown and empty
// values mean development.
func ParseEnvironment(raw string) Environment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return Production
	case "test", "testing":
		return Test
	case "ci":
		return CI
	default:
		return Development
	}
}

// GetEnvironment reads the environment from ENV. CI=true always wins so
// pipelines never pick up Docker secrets.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// IsProduction reports whether secrets and strict validation are required
func (e Environment) IsProduction() bool {
	return e == Production
}
