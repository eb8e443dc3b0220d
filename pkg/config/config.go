// Package config loads roost configuration. Precedence is defaults,
// then an optional YAML file, then ROOST_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Store backends selectable via store_backend.
const (
	BackendBolt   = "bolt"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all roost configuration in a flat structure
type Config struct {
	// Server settings
	ListenAddr string `yaml:"listen_addr" envconfig:"LISTEN_ADDR"`

	// Storage settings
	StoreBackend string `yaml:"store_backend" envconfig:"STORE_BACKEND"`
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR"`
	RedisURI     string `yaml:"redis_uri" envconfig:"REDIS_URI"`
	ResetOnBoot  bool   `yaml:"reset_on_boot" envconfig:"RESET_ON_BOOT"`

	// Cluster settings
	DefaultNodeCPU     int `yaml:"default_node_cpu" envconfig:"DEFAULT_NODE_CPU"`
	LivenessWindowSecs int `yaml:"liveness_window_secs" envconfig:"LIVENESS_WINDOW_SECS"`

	// Background task settings
	DetectorIntervalSecs   int  `yaml:"detector_interval_secs" envconfig:"DETECTOR_INTERVAL_SECS"`
	RescheduleIntervalSecs int  `yaml:"reschedule_interval_secs" envconfig:"RESCHEDULE_INTERVAL_SECS"`
	HeartbeatIntervalSecs  int  `yaml:"heartbeat_interval_secs" envconfig:"HEARTBEAT_INTERVAL_SECS"`
	SimulateHeartbeats     bool `yaml:"simulate_heartbeats" envconfig:"SIMULATE_HEARTBEATS"`

	// Logging settings
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" envconfig:"LOG_JSON"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:             "127.0.0.1:8080",
		StoreBackend:           BackendBolt,
		DataDir:                "./roost-data",
		RedisURI:               "redis://localhost:6379/0",
		DefaultNodeCPU:         8,
		LivenessWindowSecs:     30,
		DetectorIntervalSecs:   10,
		RescheduleIntervalSecs: 15,
		HeartbeatIntervalSecs:  5,
		LogLevel:               "info",
	}
}

// Load builds the effective configuration. path names an optional YAML
// file; an empty path skips the file layer. Environment variables are
// applied last, so ROOST_LISTEN_ADDR wins over both the file and the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("roost", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can run with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendBolt, BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.StoreBackend == BackendBolt && c.DataDir == "" {
		return fmt.Errorf("data_dir is required for the bolt backend")
	}
	if c.DefaultNodeCPU <= 0 {
		return fmt.Errorf("default_node_cpu must be positive, got %d", c.DefaultNodeCPU)
	}
	if c.LivenessWindowSecs <= 0 {
		return fmt.Errorf("liveness_window_secs must be positive, got %d", c.LivenessWindowSecs)
	}
	if c.DetectorIntervalSecs <= 0 {
		return fmt.Errorf("detector_interval_secs must be positive, got %d", c.DetectorIntervalSecs)
	}
	if c.RescheduleIntervalSecs <= 0 {
		return fmt.Errorf("reschedule_interval_secs must be positive, got %d", c.RescheduleIntervalSecs)
	}
	if c.HeartbeatIntervalSecs <= 0 {
		return fmt.Errorf("heartbeat_interval_secs must be positive, got %d", c.HeartbeatIntervalSecs)
	}
	return nil
}

// LivenessWindow returns the heartbeat window as a duration.
func (c *Config) LivenessWindow() time.Duration {
	return time.Duration(c.LivenessWindowSecs) * time.Second
}

// DetectorInterval returns the failure detector sweep period.
func (c *Config) DetectorInterval() time.Duration {
	return time.Duration(c.DetectorIntervalSecs) * time.Second
}

// RescheduleInterval returns the rescheduler sweep period.
func (c *Config) RescheduleInterval() time.Duration {
	return time.Duration(c.RescheduleIntervalSecs) * time.Second
}

// HeartbeatInterval returns the heartbeat simulator period.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalSecs) * time.Second
}
