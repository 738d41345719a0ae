package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"

	"github.com/skywatchd/skywatch/filter"
	"github.com/skywatchd/skywatch/source"
)

type Config struct {
	AppName  string `json:"app_name" toml:"app_name"`
	Version  string `json:"version" toml:"version"`
	LogLevel string `json:"log_level" toml:"log_level"`

	// MetricsAddress serves /metrics when set, e.g. ":9091".
	MetricsAddress string `json:"metrics_address" toml:"metrics_address"`
	// AdminAddress serves the filter admin API when set, e.g. ":8080".
	AdminAddress string `json:"admin_address" toml:"admin_address"`
	// CursorFile persists the stream position between runs when set.
	CursorFile string `json:"cursor_file" toml:"cursor_file"`

	Source    source.Config   `json:"source" toml:"source"`
	Directory DirectoryConfig `json:"directory" toml:"directory"`
	Watcher   WatcherConfig   `json:"watcher" toml:"watcher"`
	Sink      SinkConfig      `json:"sink" toml:"sink"`

	Filters []*filter.Filter `json:"filters" toml:"filters"`
}

type DirectoryConfig struct {
	BaseURL string   `json:"base_url" toml:"base_url"`
	Timeout Duration `json:"timeout" toml:"timeout"`
}

type WatcherConfig struct {
	BatchSize          int      `json:"batch_size" toml:"batch_size"`
	FlushInterval      Duration `json:"flush_interval" toml:"flush_interval"`
	CheckpointInterval Duration `json:"checkpoint_interval" toml:"checkpoint_interval"`
}

type SinkConfig struct {
	Type string `json:"type" toml:"type"`

	// PrettyPrint applies to the stdout sink.
	PrettyPrint bool `json:"pretty_print" toml:"pretty_print"`
	// DSN applies to the postgres sink.
	DSN string `json:"dsn" toml:"dsn"`
	// NoColor applies to the console sink.
	NoColor bool `json:"no_color" toml:"no_color"`
}

var sinkTypes = map[string]struct{}{
	"console":  {},
	"stdout":   {},
	"postgres": {},
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig

	switch {
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case strings.HasSuffix(path, ".toml"):
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks everything that would otherwise only fail at runtime:
// unknown sink types, missing DSN, and filter lists that the registry
// would reject.
func (c *Config) Validate() error {
	if _, ok := sinkTypes[c.Sink.Type]; !ok {
		return fmt.Errorf("unsupported sink type: %q", c.Sink.Type)
	}
	if c.Sink.Type == "postgres" && c.Sink.DSN == "" {
		return fmt.Errorf("postgres sink requires a dsn")
	}
	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// Registry builds the filter registry from the configured filters.
// Duplicate or empty names are rejected here, before anything starts.
func (c *Config) Registry() (*filter.Registry, error) {
	return filter.NewRegistry(c.Filters...)
}

var DefaultConfig = Config{
	AppName:  "skywatch",
	Version:  "0.1.0",
	LogLevel: "info",
	Sink: SinkConfig{
		Type: "console",
	},
	Watcher: WatcherConfig{
		BatchSize:          100,
		FlushInterval:      Duration(5 * time.Second),
		CheckpointInterval: Duration(time.Minute),
	},
}
