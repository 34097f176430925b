// Package config loads YAML simulation configuration into the grouped
// structs consumed by Builder, the same strict-field idiom the teacher's
// cmd/default_config.go uses for defaults.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SandboxConfig groups root-sandbox identity parameters.
type SandboxConfig struct {
	ID   string `yaml:"id"`
	Seed int64  `yaml:"seed"`
}

// LoggingConfig groups logger construction parameters.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // logrus level name: trace, debug, info, warn, error (default "info")
	Format string `yaml:"format"` // "text" (default) or "json"
}

// StageConfig describes one Queue→Server stage of a tandem network.
type StageConfig struct {
	QueueCapacity      int     `yaml:"queue_capacity"`       // 0 = unbounded
	ServerCapacity     int     `yaml:"server_capacity"`      // 0 = unbounded
	ServiceRatePerHour float64 `yaml:"service_rate_per_hour"` // services per hour; exponential service time with mean 1/rate hours
}

// TandemConfig groups the reference tandem-queue network's parameters.
type TandemConfig struct {
	ArrivalRatePerHour float64       `yaml:"arrival_rate_per_hour"`
	WarmUpHours        float64       `yaml:"warm_up_hours"`
	RunHours           float64       `yaml:"run_hours"`
	Stages             []StageConfig `yaml:"stages"`
}

// WarmUpDuration converts WarmUpHours to a time.Duration.
func (t TandemConfig) WarmUpDuration() time.Duration {
	return time.Duration(t.WarmUpHours * float64(time.Hour))
}

// RunDuration converts RunHours to a time.Duration.
func (t TandemConfig) RunDuration() time.Duration {
	return time.Duration(t.RunHours * float64(time.Hour))
}

// NetworkConfig is the full structure of a simulation YAML file.
type NetworkConfig struct {
	Sandbox SandboxConfig `yaml:"sandbox"`
	Logging LoggingConfig `yaml:"logging"`
	Tandem  TandemConfig  `yaml:"tandem"`
}

// Load parses a NetworkConfig from the YAML file at path, with strict field
// checking: an unrecognized key is an error rather than silently ignored
// (same KnownFields(true) idiom the teacher uses for defaults.yaml).
func Load(path string) (*NetworkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a NetworkConfig from in-memory YAML bytes. An empty document
// yields the zero-value NetworkConfig.
func Parse(data []byte) (*NetworkConfig, error) {
	var cfg NetworkConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing YAML: %w", err)
	}
	return &cfg, nil
}
