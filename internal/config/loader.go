package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadOrDefault behaves like Load, except that a missing file yields the
// defaults when required is false. Any other read error is still returned.
func LoadOrDefault(configPath string, required bool) (*Config, error) {
	if !required {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			substituteEnvVars(cfg)
			return cfg, nil
		}
	}
	return Load(configPath)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)
	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.API.Key = expandEnvVar(cfg.API.Key)
	cfg.API.BaseURL = expandEnvVar(cfg.API.BaseURL)

	cfg.Checkpoint.Path = expandEnvVar(cfg.Checkpoint.Path)
	cfg.Checkpoint.Database.Host = expandEnvVar(cfg.Checkpoint.Database.Host)
	cfg.Checkpoint.Database.User = expandEnvVar(cfg.Checkpoint.Database.User)
	cfg.Checkpoint.Database.Password = expandEnvVar(cfg.Checkpoint.Database.Password)
	cfg.Checkpoint.Database.Database = expandEnvVar(cfg.Checkpoint.Database.Database)

	cfg.Cluster.Endpoint = expandEnvVar(cfg.Cluster.Endpoint)
	cfg.Metrics.Textfile = expandEnvVar(cfg.Metrics.Textfile)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
// Unset variables are left untouched, except a value that is nothing but an
// unset reference, which expands to empty.
func expandEnvVar(s string) string {
	expanded := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if value, exists := os.LookupEnv(varName(match)); exists {
			return value
		}
		return match
	})
	if envVarPattern.FindString(expanded) == expanded && expanded != "" {
		if _, exists := os.LookupEnv(varName(expanded)); !exists {
			return ""
		}
	}
	return expanded
}

func varName(match string) string {
	if strings.HasPrefix(match, "${") {
		return match[2 : len(match)-1]
	}
	return match[1:]
}
