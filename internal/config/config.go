// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Node      NodeConfig      `mapstructure:"node"`
	Miner     MinerConfig     `mapstructure:"miner"`
	Hardware  HardwareConfig  `mapstructure:"hardware"`
	BlockScan BlockScanConfig `mapstructure:"blockscan"`
	Events    EventsConfig    `mapstructure:"events"`
	Health    HealthConfig    `mapstructure:"health"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	ID          string `mapstructure:"id"` // folder name under the user config dir
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// NodeConfig holds base node settings.
type NodeConfig struct {
	Type          string        `mapstructure:"type"` // local | remote
	RPCAddress    string        `mapstructure:"rpc_address"`
	BinaryPath    string        `mapstructure:"binary_path"`
	DataDir       string        `mapstructure:"data_dir"`
	Network       string        `mapstructure:"network"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	SyncInterval  time.Duration `mapstructure:"sync_interval"`
	StopGrace     time.Duration `mapstructure:"stop_grace"`
	WatchdogLimit int           `mapstructure:"watchdog_limit"`
}

// IsRemote reports whether the node is reached without a local process.
func (c *NodeConfig) IsRemote() bool {
	return c.Type == "remote"
}

// MinerConfig holds CPU miner (xmrig) settings.
type MinerConfig struct {
	BinaryPath    string        `mapstructure:"binary_path"`
	PoolURL       string        `mapstructure:"pool_url"`
	WalletAddress string        `mapstructure:"wallet_address"`
	Mode          string        `mapstructure:"mode"` // eco | ludicrous
	APIPort       int           `mapstructure:"api_port"`
	APIToken      string        `mapstructure:"api_token"`
	LogDir        string        `mapstructure:"log_dir"`
	BlocksPerDay  int64         `mapstructure:"blocks_per_day"`
	StatusTimeout time.Duration `mapstructure:"status_timeout"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	StopGrace     time.Duration `mapstructure:"stop_grace"`
	Enabled       bool          `mapstructure:"enabled"`
}

// HardwareConfig holds hardware telemetry settings.
type HardwareConfig struct {
	ConfigDir    string        `mapstructure:"config_dir"` // overrides the OS user config dir
	SysfsRoot    string        `mapstructure:"sysfs_root"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// BlockScanConfig holds block explorer settings used for orphan detection.
type BlockScanConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	CheckInterval     time.Duration `mapstructure:"check_interval"`
}

// EventsConfig holds outbound event delivery settings.
type EventsConfig struct {
	WebSocketAddr string `mapstructure:"websocket_addr"`
	LogEvents     bool   `mapstructure:"log_events"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("UNIVERSE")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "UNIVERSE_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "UNIVERSE_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "UNIVERSE_LOG_LEVEL", "LOG_LEVEL")

	// Node
	v.BindEnv("node.type", "UNIVERSE_NODE_TYPE")
	v.BindEnv("node.rpc_address", "UNIVERSE_NODE_RPC_ADDRESS")
	v.BindEnv("node.binary_path", "UNIVERSE_NODE_BINARY")
	v.BindEnv("node.network", "UNIVERSE_NETWORK")

	// Miner
	v.BindEnv("miner.binary_path", "UNIVERSE_MINER_BINARY")
	v.BindEnv("miner.pool_url", "UNIVERSE_MINER_POOL_URL")
	v.BindEnv("miner.wallet_address", "UNIVERSE_WALLET_ADDRESS")
	v.BindEnv("miner.mode", "UNIVERSE_MINER_MODE")
	v.BindEnv("miner.api_token", "UNIVERSE_MINER_API_TOKEN")

	// Block explorer
	v.BindEnv("blockscan.base_url", "UNIVERSE_BLOCKSCAN_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "UNIVERSE_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "UNIVERSE_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "UNIVERSE_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "universe")
	v.SetDefault("app.id", "com.tari.universe")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Node defaults
	v.SetDefault("node.type", "local")
	v.SetDefault("node.rpc_address", "http://127.0.0.1:18142")
	v.SetDefault("node.network", "mainnet")
	v.SetDefault("node.health_timeout", "5s")
	v.SetDefault("node.poll_interval", "5s")
	v.SetDefault("node.sync_interval", "1s")
	v.SetDefault("node.stop_grace", "10s")
	v.SetDefault("node.watchdog_limit", 3)

	// Miner defaults
	v.SetDefault("miner.enabled", true)
	v.SetDefault("miner.mode", "eco")
	v.SetDefault("miner.api_port", 18000)
	v.SetDefault("miner.blocks_per_day", 350)
	v.SetDefault("miner.status_timeout", "2s")
	v.SetDefault("miner.poll_interval", "1s")
	v.SetDefault("miner.stop_grace", "5s")

	// Hardware defaults
	v.SetDefault("hardware.sysfs_root", "/sys/class/drm")
	v.SetDefault("hardware.poll_interval", "5s")

	// Block explorer defaults
	v.SetDefault("blockscan.base_url", "https://textexplore.tari.com")
	v.SetDefault("blockscan.timeout", "10s")
	v.SetDefault("blockscan.requests_per_second", 2)
	v.SetDefault("blockscan.burst", 3)
	v.SetDefault("blockscan.check_interval", "10m")

	// Events defaults
	v.SetDefault("events.websocket_addr", "127.0.0.1:7100")
	v.SetDefault("events.log_events", false)

	// Health defaults
	v.SetDefault("health.port", 8080)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "universe")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Node.Type {
	case "local", "remote":
	default:
		return fmt.Errorf("invalid node.type: %q", c.Node.Type)
	}
	if c.Node.RPCAddress == "" {
		return fmt.Errorf("node.rpc_address is required")
	}
	if c.Node.Type == "local" && c.Node.BinaryPath == "" {
		return fmt.Errorf("node.binary_path is required for a local node")
	}
	if c.Miner.Enabled {
		if c.Miner.BinaryPath == "" {
			return fmt.Errorf("miner.binary_path is required when the miner is enabled")
		}
		switch c.Miner.Mode {
		case "eco", "ludicrous":
		default:
			return fmt.Errorf("invalid miner.mode: %q", c.Miner.Mode)
		}
	}
	if c.Miner.BlocksPerDay <= 0 {
		return fmt.Errorf("miner.blocks_per_day must be positive")
	}
	if c.App.ID == "" {
		return fmt.Errorf("app.id is required")
	}
	for name, d := range map[string]time.Duration{
		"node.poll_interval":     c.Node.PollInterval,
		"miner.poll_interval":    c.Miner.PollInterval,
		"hardware.poll_interval": c.Hardware.PollInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
