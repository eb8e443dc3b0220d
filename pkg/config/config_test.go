package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, BackendBolt, cfg.StoreBackend)
	assert.Equal(t, 8, cfg.DefaultNodeCPU)
	assert.Equal(t, 30*time.Second, cfg.LivenessWindow())
	assert.Equal(t, 10*time.Second, cfg.DetectorInterval())
	assert.Equal(t, 15*time.Second, cfg.RescheduleInterval())
	assert.Equal(t, 5*time.Second, cfg.HeartbeatInterval())
	assert.False(t, cfg.SimulateHeartbeats)
	assert.False(t, cfg.ResetOnBoot)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roost.yaml")
	data := []byte(`
listen_addr: 0.0.0.0:9090
store_backend: memory
default_node_cpu: 16
simulate_heartbeats: true
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, 16, cfg.DefaultNodeCPU)
	assert.True(t, cfg.SimulateHeartbeats)

	// Untouched fields keep their defaults
	assert.Equal(t, 30, cfg.LivenessWindowSecs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roost.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [not, a, string]"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roost.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store_backend: memory\nlog_level: debug\n"), 0644))

	t.Setenv("ROOST_STORE_BACKEND", "redis")
	t.Setenv("ROOST_LIVENESS_WINDOW_SECS", "60")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 60*time.Second, cfg.LivenessWindow())
	// File value survives where no env var is set
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.StoreBackend = "etcd" },
			wantErr: "unknown store backend",
		},
		{
			name: "bolt without data dir",
			mutate: func(c *Config) {
				c.StoreBackend = BackendBolt
				c.DataDir = ""
			},
			wantErr: "data_dir is required",
		},
		{
			name:    "zero node cpu",
			mutate:  func(c *Config) { c.DefaultNodeCPU = 0 },
			wantErr: "default_node_cpu",
		},
		{
			name:    "negative window",
			mutate:  func(c *Config) { c.LivenessWindowSecs = -1 },
			wantErr: "liveness_window_secs",
		},
		{
			name:    "zero detector interval",
			mutate:  func(c *Config) { c.DetectorIntervalSecs = 0 },
			wantErr: "detector_interval_secs",
		},
		{
			name:    "zero reschedule interval",
			mutate:  func(c *Config) { c.RescheduleIntervalSecs = 0 },
			wantErr: "reschedule_interval_secs",
		},
		{
			name:    "zero heartbeat interval",
			mutate:  func(c *Config) { c.HeartbeatIntervalSecs = 0 },
			wantErr: "heartbeat_interval_secs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMemoryBackendNeedsNoDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StoreBackend = BackendMemory
	cfg.DataDir = ""

	assert.NoError(t, cfg.Validate())
}
