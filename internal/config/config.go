package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/btree/internal/core/observability/log"
)

// Config is the engine configuration shared by the CLI and embedding hosts.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Fleet   FleetConfig   `yaml:"fleet"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type FleetConfig struct {
	// Concurrency bounds how many agents are stepped at once; 0 means one
	// goroutine per agent.
	Concurrency int `yaml:"concurrency"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info", Encoding: "console"},
		Fleet:   FleetConfig{Concurrency: 0},
		Metrics: MetricsConfig{Enabled: true, Namespace: "btree"},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML from r on top of Default and validates the result.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.encoding: unsupported %q", c.Log.Encoding)
	}
	if c.Fleet.Concurrency < 0 {
		return fmt.Errorf("fleet.concurrency: must not be negative, got %d", c.Fleet.Concurrency)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.New("metrics.namespace is required when metrics are enabled")
	}
	return nil
}

// LogOptions converts the log section for log.New.
func (c *Config) LogOptions() log.Options {
	level, _ := log.ParseLevel(c.Log.Level)
	return log.Options{Level: level, Encoding: c.Log.Encoding}
}
