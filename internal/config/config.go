// Package config loads dirmerge configuration from an optional YAML file,
// merging file values over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up in the working directory
// when no --config flag is given.
const DefaultConfigFile = ".dirmerge.yaml"

// Config holds all tunable settings for a reconciliation run.
type Config struct {
	// Store is the path of the index database file.
	Store string `yaml:"store"`

	// Ignore lists glob patterns (matched against the slash-separated path
	// relative to each tree root) excluded from indexing on both sides.
	Ignore []string `yaml:"ignore"`

	// HashPrefixBytes bounds how much of each file is fingerprinted.
	// Files at or above this size are hashed over their prefix only.
	HashPrefixBytes int64 `yaml:"hash_prefix_bytes"`

	// LogLevel sets console verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// QueueSize bounds the channel between the scan producers and the
	// single index writer.
	QueueSize int `yaml:"queue_size"`
}

// Default returns the built-in configuration: OS metadata files ignored,
// 10 MiB hash prefix, info logging.
func Default() *Config {
	return &Config{
		Store: "dirmerge.db",
		Ignore: []string{
			".DS_Store",
			".sync*",
			"*Thumbs.db",
		},
		HashPrefixBytes: 10 * 1024 * 1024,
		LogLevel:        "info",
		QueueSize:       256,
	}
}

// Load reads configuration from path. A missing file returns the defaults
// without error; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if fileCfg.Store != "" {
		cfg.Store = fileCfg.Store
	}
	if len(fileCfg.Ignore) > 0 {
		cfg.Ignore = fileCfg.Ignore
	}
	if fileCfg.HashPrefixBytes > 0 {
		cfg.HashPrefixBytes = fileCfg.HashPrefixBytes
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.QueueSize > 0 {
		cfg.QueueSize = fileCfg.QueueSize
	}

	return cfg, nil
}
