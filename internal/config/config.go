// Package config loads and validates the lantern configuration: index
// and learning store locations, the item sources with their rescan
// intervals, completion tuning, and logging. Precedence is defaults,
// then the YAML file, then LANTERN_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds understood by the source builder.
const (
	SourceKindDirectory = "directory"
	SourceKindPath      = "path"
)

// Config is the complete lantern configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Index      IndexConfig      `yaml:"index"`
	Learn      LearnConfig      `yaml:"learn"`
	Sources    []SourceConfig   `yaml:"sources"`
	Completion CompletionConfig `yaml:"completion"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// IndexConfig locates the on-disk index.
type IndexConfig struct {
	// Path is the bleve index directory. Empty selects an in-memory
	// index, which does not survive restarts.
	Path string `yaml:"path"`
}

// LearnConfig locates the learned-association store.
type LearnConfig struct {
	// Path is the SQLite database file. Empty selects an in-memory
	// store.
	Path string `yaml:"path"`
}

// SourceConfig describes one item source.
type SourceConfig struct {
	// Name is the source name and index partition key. Must be unique.
	Name string `yaml:"name"`
	// Kind selects the source implementation: "directory" or "path".
	Kind string `yaml:"kind"`
	// Root is the walk root; directory sources only.
	Root string `yaml:"root,omitempty"`
	// IntervalSeconds is the rescan period.
	IntervalSeconds int `yaml:"interval_seconds"`
	// MaxDepth limits directory recursion; 0 means unlimited.
	MaxDepth int `yaml:"max_depth,omitempty"`
	// Extensions admits only matching files; empty admits all.
	Extensions []string `yaml:"extensions,omitempty"`
	// Ignore holds extra ignore patterns, merged with the root's
	// .lanternignore file.
	Ignore []string `yaml:"ignore,omitempty"`
}

// Interval returns the rescan period as a duration.
func (s SourceConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// CompletionConfig tunes the autocomplete engine.
type CompletionConfig struct {
	// MinRelevance is the lexical score below which candidates are
	// dropped, in [0, 1].
	MinRelevance float64 `yaml:"min_relevance"`
	// MaxAlternates caps the alternates list.
	MaxAlternates int `yaml:"max_alternates"`
	// SourcePriority breaks score ties; earlier names win.
	SourcePriority []string `yaml:"source_priority,omitempty"`
}

// WatchConfig tunes filesystem-change rescan kicks.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
	// DebounceMS coalesces change bursts before kicking a rescan.
	DebounceMS int `yaml:"debounce_ms"`
}

// Debounce returns the debounce window as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// LoggingConfig tunes the log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File is the log file path; empty selects the default under the
	// data directory.
	File string `yaml:"file,omitempty"`
}

// NewConfig returns the defaults: home-directory sources, hourly
// rescans, on-disk stores under the data directory.
func NewConfig() *Config {
	dataDir := DataDir()
	home, _ := os.UserHomeDir()
	return &Config{
		Version: 1,
		Index:   IndexConfig{Path: filepath.Join(dataDir, "index")},
		Learn:   LearnConfig{Path: filepath.Join(dataDir, "learn.db")},
		Sources: []SourceConfig{
			{
				Name:            "home",
				Kind:            SourceKindDirectory,
				Root:            home,
				IntervalSeconds: 3600,
				MaxDepth:        3,
			},
			{
				Name:            "path",
				Kind:            SourceKindPath,
				IntervalSeconds: 3600,
			},
		},
		Completion: CompletionConfig{
			MinRelevance:  0.5,
			MaxAlternates: 9,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMS: 500,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DataDir is where lantern keeps its index, learning store, and logs.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lantern"
	}
	return filepath.Join(home, ".lantern")
}

// UserConfigPath returns the YAML config location, honoring
// XDG_CONFIG_HOME.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lantern", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lantern", "config.yaml")
	}
	return filepath.Join(home, ".config", "lantern", "config.yaml")
}

// Load builds the effective configuration. path selects an explicit
// file; empty falls back to the user config, and a missing file is not
// an error (defaults apply).
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if !explicit {
		path = UserConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No user config yet; defaults apply.
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies LANTERN_* environment variables, the
// highest-precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LANTERN_INDEX_PATH"); v != "" {
		c.Index.Path = v
	}
	if v := os.Getenv("LANTERN_LEARN_PATH"); v != "" {
		c.Learn.Path = v
	}
	if v := os.Getenv("LANTERN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LANTERN_MIN_RELEVANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Completion.MinRelevance = f
		}
	}
}

// Validate rejects configurations the runtime cannot honor.
func (c *Config) Validate() error {
	if c.Completion.MinRelevance < 0 || c.Completion.MinRelevance > 1 {
		return fmt.Errorf("completion.min_relevance must be in [0, 1], got %v",
			c.Completion.MinRelevance)
	}
	if c.Completion.MaxAlternates < 0 {
		return fmt.Errorf("completion.max_alternates must not be negative")
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative")
	}

	seen := make(map[string]struct{}, len(c.Sources))
	for _, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("source with empty name")
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = struct{}{}

		switch src.Kind {
		case SourceKindDirectory:
			if src.Root == "" {
				return fmt.Errorf("source %q: directory sources need a root", src.Name)
			}
		case SourceKindPath:
		default:
			return fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
		}

		if src.IntervalSeconds <= 0 {
			return fmt.Errorf("source %q: interval_seconds must be positive", src.Name)
		}
	}
	return nil
}

// WriteYAML persists the configuration, creating parent directories and
// backing up any existing file first.
func (c *Config) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := BackupConfig(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
