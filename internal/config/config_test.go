package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
node:
  binary_path: /opt/minotari_node
miner:
  binary_path: /opt/xmrig
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Node.Type)
	assert.Equal(t, 5*time.Second, cfg.Node.HealthTimeout)
	assert.Equal(t, time.Second, cfg.Node.SyncInterval)
	assert.Equal(t, int64(350), cfg.Miner.BlocksPerDay)
	assert.Equal(t, "eco", cfg.Miner.Mode)
	assert.Equal(t, "com.tari.universe", cfg.App.ID)
	assert.False(t, cfg.Node.IsRemote())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
miner:
  enabled: false
`)
	t.Setenv("UNIVERSE_NODE_TYPE", "remote")
	t.Setenv("UNIVERSE_NODE_RPC_ADDRESS", "http://10.0.0.2:18142")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Node.IsRemote())
	assert.Equal(t, "http://10.0.0.2:18142", cfg.Node.RPCAddress)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:      AppConfig{ID: "app"},
			Node:     NodeConfig{Type: "local", RPCAddress: "http://x", BinaryPath: "/bin/node", PollInterval: time.Second},
			Miner:    MinerConfig{Enabled: true, BinaryPath: "/bin/xmrig", Mode: "eco", BlocksPerDay: 350, PollInterval: time.Second},
			Hardware: HardwareConfig{PollInterval: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad node type", func(c *Config) { c.Node.Type = "cloud" }, true},
		{"local without binary", func(c *Config) { c.Node.BinaryPath = "" }, true},
		{"remote without binary", func(c *Config) { c.Node.Type = "remote"; c.Node.BinaryPath = "" }, false},
		{"bad mining mode", func(c *Config) { c.Miner.Mode = "turbo" }, true},
		{"disabled miner skips checks", func(c *Config) { c.Miner.Enabled = false; c.Miner.BinaryPath = "" }, false},
		{"zero blocks per day", func(c *Config) { c.Miner.BlocksPerDay = 0 }, true},
		{"missing app id", func(c *Config) { c.App.ID = "" }, true},
		{"zero poll interval", func(c *Config) { c.Hardware.PollInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
