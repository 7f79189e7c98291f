package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// The API key is not required here; commands that call the API check it
// through ValidateAPIKey.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateAPI()...)
	errors = append(errors, c.validateFetch()...)
	errors = append(errors, c.validateCheckpoint()...)
	errors = append(errors, c.validateCluster()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateAPIKey reports a missing API key.
func (c *Config) ValidateAPIKey() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return ValidationErrors{{
			Field:   "api.key",
			Message: "API key is required (set YT_API_KEY or api.key)",
		}}
	}
	return nil
}

func (c *Config) validateAPI() ValidationErrors {
	var errors ValidationErrors

	if c.API.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "api.base_url",
			Message: "base_url is required",
		})
	}

	if c.API.TimeoutSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "api.timeout_seconds",
			Message: "timeout_seconds must be positive",
		})
	}

	if c.API.RequestsPerSecond < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.requests_per_second",
			Message: "requests_per_second cannot be negative",
		})
	}

	if c.API.PageSize < 1 || c.API.PageSize > 100 {
		errors = append(errors, ValidationError{
			Field:   "api.page_size",
			Message: "page_size must be between 1 and 100",
		})
	}

	if c.API.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "api.max_retries",
			Message: "max_retries cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateFetch() ValidationErrors {
	var errors ValidationErrors

	validOrders := map[string]bool{"time": true, "chronological": true, "relevance": true, "": true}
	if !validOrders[c.Fetch.Order] {
		errors = append(errors, ValidationError{
			Field:   "fetch.order",
			Message: "order must be 'time' or 'relevance'",
		})
	}

	if c.Fetch.MaxTopLevel < 0 {
		errors = append(errors, ValidationError{
			Field:   "fetch.max_top_level",
			Message: "max_top_level cannot be negative",
		})
	}

	if c.Fetch.MaxTotal < 0 {
		errors = append(errors, ValidationError{
			Field:   "fetch.max_total",
			Message: "max_total cannot be negative",
		})
	}

	if c.Fetch.CheckpointInterval <= 0 {
		errors = append(errors, ValidationError{
			Field:   "fetch.checkpoint_interval",
			Message: "checkpoint_interval must be positive",
		})
	}

	return errors
}

func (c *Config) validateCheckpoint() ValidationErrors {
	var errors ValidationErrors

	switch c.Checkpoint.Backend {
	case "none":
	case "file", "sqlite", "":
		if c.Checkpoint.Path == "" {
			errors = append(errors, ValidationError{
				Field:   "checkpoint.path",
				Message: "path is required for file and sqlite backends",
			})
		}
	case "mysql":
		errors = append(errors, c.validateDatabase("checkpoint.database", &c.Checkpoint.Database)...)
	default:
		errors = append(errors, ValidationError{
			Field:   "checkpoint.backend",
			Message: "backend must be 'file', 'mysql', 'sqlite', or 'none'",
		})
	}

	return errors
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateCluster() ValidationErrors {
	var errors ValidationErrors

	switch c.Cluster.Embedder {
	case "hash", "":
		if c.Cluster.Dimensions <= 0 {
			errors = append(errors, ValidationError{
				Field:   "cluster.dimensions",
				Message: "dimensions must be positive",
			})
		}
	case "http":
		if c.Cluster.Endpoint == "" {
			errors = append(errors, ValidationError{
				Field:   "cluster.endpoint",
				Message: "endpoint is required for the http embedder",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "cluster.embedder",
			Message: "embedder must be 'hash' or 'http'",
		})
	}

	if c.Cluster.Sim <= 0 || c.Cluster.Sim > 1 {
		errors = append(errors, ValidationError{
			Field:   "cluster.sim",
			Message: "sim must be in (0, 1]",
		})
	}

	if c.Cluster.MinSamples < 1 {
		errors = append(errors, ValidationError{
			Field:   "cluster.min_samples",
			Message: "min_samples must be at least 1",
		})
	}

	if c.Cluster.BatchSize < 0 {
		errors = append(errors, ValidationError{
			Field:   "cluster.batch_size",
			Message: "batch_size cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
