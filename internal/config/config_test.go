package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "https://www.googleapis.com/youtube/v3" {
		t.Errorf("unexpected base_url %s", cfg.API.BaseURL)
	}
	if cfg.API.PageSize != 100 {
		t.Errorf("expected page_size 100, got %d", cfg.API.PageSize)
	}
	if cfg.API.Key != "${YT_API_KEY}" {
		t.Errorf("expected api key placeholder, got %q", cfg.API.Key)
	}

	if cfg.Fetch.Order != "time" {
		t.Errorf("expected order 'time', got %s", cfg.Fetch.Order)
	}
	if cfg.Fetch.CheckpointInterval != 500 {
		t.Errorf("expected checkpoint_interval 500, got %d", cfg.Fetch.CheckpointInterval)
	}
	if cfg.Fetch.Resume {
		t.Errorf("expected resume disabled by default")
	}

	if cfg.Checkpoint.Backend != "file" {
		t.Errorf("expected checkpoint backend 'file', got %s", cfg.Checkpoint.Backend)
	}
	if cfg.Checkpoint.Path != "state.json" {
		t.Errorf("expected checkpoint path 'state.json', got %s", cfg.Checkpoint.Path)
	}
	if cfg.Checkpoint.Table != "comment_checkpoint" {
		t.Errorf("expected checkpoint table 'comment_checkpoint', got %s", cfg.Checkpoint.Table)
	}

	if cfg.Cluster.Sim != 0.88 {
		t.Errorf("expected sim 0.88, got %f", cfg.Cluster.Sim)
	}
	if cfg.Cluster.MinSamples != 3 {
		t.Errorf("expected min_samples 3, got %d", cfg.Cluster.MinSamples)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides(Overrides{
		LogLevel:          "debug",
		APIKey:            "abc",
		CheckpointBackend: "sqlite",
		CheckpointPath:    "/tmp/state.db",
	})

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level override, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected untouched format, got %s", cfg.Logging.Format)
	}
	if cfg.API.Key != "abc" {
		t.Errorf("expected api key override, got %s", cfg.API.Key)
	}
	if cfg.Checkpoint.Backend != "sqlite" || cfg.Checkpoint.Path != "/tmp/state.db" {
		t.Errorf("expected checkpoint overrides, got %s %s", cfg.Checkpoint.Backend, cfg.Checkpoint.Path)
	}
}

func TestApplyOverrides_Empty(t *testing.T) {
	cfg := DefaultConfig()
	before := *cfg
	cfg.ApplyOverrides(Overrides{})
	if *cfg != before {
		t.Errorf("empty overrides should not change the config")
	}
}
