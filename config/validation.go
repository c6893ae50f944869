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

// ValidateConfig checks that the loaded configuration is usable in the
// current environment. Production refuses to start on half-configured
// secrets; everything else only needs a JWT secret and a consistent
// database section.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"}.Error())
	}

	if cfg.UsePostgres() {
		if cfg.DBPort == "" {
			errs = append(errs, ValidationError{"DB_PORT", "is required when DB_HOST is set"}.Error())
		}
		if cfg.DBUser == "" {
			errs = append(errs, ValidationError{"DB_USER", "is required when DB_HOST is set"}.Error())
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "is required when DB_HOST is set"}.Error())
		}
	} else if IsProduction() {
		errs = append(errs, ValidationError{"DB_HOST", "is required in production"}.Error())
	}

	if IsProduction() && cfg.RedisHost == "" && cfg.RedisURL == "" {
		errs = append(errs, ValidationError{"REDIS_HOST", "redis is required in production"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
