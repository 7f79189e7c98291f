// Package config provides configuration structures and loading for ytcomments.
package config

// Config represents the complete application configuration.
type Config struct {
	API        APIConfig        `yaml:"api" mapstructure:"api"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	Cluster    ClusterConfig    `yaml:"cluster" mapstructure:"cluster"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// APIConfig represents the YouTube Data API client settings.
type APIConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 = unlimited
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	PageSize          int     `yaml:"page_size" mapstructure:"page_size"` // 1..100
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// FetchConfig represents the collection run options.
type FetchConfig struct {
	Order              string `yaml:"order" mapstructure:"order"` // time or relevance
	NoReplies          bool   `yaml:"no_replies" mapstructure:"no_replies"`
	MaxTopLevel        int    `yaml:"max_top_level" mapstructure:"max_top_level"` // 0 = unlimited
	MaxTotal           int    `yaml:"max_total" mapstructure:"max_total"`         // 0 = unlimited
	CheckpointInterval int    `yaml:"checkpoint_interval" mapstructure:"checkpoint_interval"`
	Resume             bool   `yaml:"resume" mapstructure:"resume"`
}

// CheckpointConfig selects where traversal state is persisted.
type CheckpointConfig struct {
	Backend  string         `yaml:"backend" mapstructure:"backend"` // file, mysql, sqlite or none
	Path     string         `yaml:"path" mapstructure:"path"`       // JSON file or SQLite database path
	Table    string         `yaml:"table" mapstructure:"table"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// ClusterConfig represents the clustering step settings.
type ClusterConfig struct {
	Embedder   string  `yaml:"embedder" mapstructure:"embedder"` // hash or http
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Model      string  `yaml:"model" mapstructure:"model"`
	Dimensions int     `yaml:"dimensions" mapstructure:"dimensions"`
	BatchSize  int     `yaml:"batch_size" mapstructure:"batch_size"`
	Sim        float64 `yaml:"sim" mapstructure:"sim"`
	MinSamples int     `yaml:"min_samples" mapstructure:"min_samples"`
}

// MetricsConfig represents metrics export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"` // Prometheus textfile path, empty disables
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Key:               "${YT_API_KEY}",
			BaseURL:           "https://www.googleapis.com/youtube/v3",
			TimeoutSeconds:    30,
			RequestsPerSecond: 5,
			Burst:             1,
			PageSize:          100,
			MaxRetries:        3,
		},
		Fetch: FetchConfig{
			Order:              "time",
			CheckpointInterval: 500,
		},
		Checkpoint: CheckpointConfig{
			Backend: "file",
			Path:    "state.json",
			Table:   "comment_checkpoint",
			Database: DatabaseConfig{
				Port:               3306,
				TLS:                "preferred",
				MaxConnections:     2,
				MaxIdleConnections: 1,
			},
		},
		Cluster: ClusterConfig{
			Embedder:   "hash",
			Model:      "all-MiniLM-L6-v2",
			Dimensions: 256,
			BatchSize:  64,
			Sim:        0.88,
			MinSamples: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Overrides contains CLI flag values that override config file settings.
// Only non-zero/non-empty values are applied.
type Overrides struct {
	LogLevel          string
	LogFormat         string
	APIKey            string
	CheckpointBackend string
	CheckpointPath    string
	MetricsTextfile   string
}

// ApplyOverrides applies CLI flag overrides to the configuration.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.APIKey != "" {
		c.API.Key = o.APIKey
	}
	if o.CheckpointBackend != "" {
		c.Checkpoint.Backend = o.CheckpointBackend
	}
	if o.CheckpointPath != "" {
		c.Checkpoint.Path = o.CheckpointPath
	}
	if o.MetricsTextfile != "" {
		c.Metrics.Textfile = o.MetricsTextfile
	}
}
