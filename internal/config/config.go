// Package config loads indexer configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Chain   ChainConfig   `mapstructure:"chain"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Storage StorageConfig `mapstructure:"storage"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

type ChainConfig struct {
	RPCURL            string        `mapstructure:"rpc_url"`
	ControllerAddress string        `mapstructure:"controller_address"`
	DeployBlock       int64         `mapstructure:"deploy_block"`
	Confirmations     uint64        `mapstructure:"confirmations"`
	BatchSize         uint64        `mapstructure:"batch_size"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
}

type PricingConfig struct {
	FatePair string             `mapstructure:"fate_pair"`
	Stables  []StablePoolConfig `mapstructure:"stables"`
}

type StablePoolConfig struct {
	Name           string `mapstructure:"name"`
	Pair           string `mapstructure:"pair"` // empty or zero address if not deployed
	StableIsToken0 bool   `mapstructure:"stable_is_token0"`
	StableScale    int32  `mapstructure:"stable_scale"` // 12 for 6-decimal stables, 0 for 18-decimal
}

type StorageConfig struct {
	Backend       string `mapstructure:"backend"` // "postgres" or "memory"
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"` // empty disables the claim archive
}

type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type RetryConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	MaxDelay     time.Duration `mapstructure:"max_delay"`
}

// Load reads the config file at configPath. Environment variables prefixed
// with FATE_ override file values (FATE_CHAIN_RPC_URL overrides
// chain.rpc_url).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("FATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults seeds the Harmony mainnet deployment the controller ships on.
func setDefaults(v *viper.Viper) {
	v.SetDefault("chain.confirmations", 12)
	v.SetDefault("chain.batch_size", 2000)
	v.SetDefault("chain.poll_interval", "10s")

	v.SetDefault("pricing.fate_pair", "0xdcd307ac265c4cf1fde5ffb7850de1ac03c15303")
	v.SetDefault("pricing.stables", []map[string]any{
		{
			"name":             "USDC",
			"pair":             "0xe4c5d745896bce117ab741de5df4869de8bbf32f",
			"stable_is_token0": true,
			"stable_scale":     12,
		},
	})

	v.SetDefault("storage.backend", "postgres")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", ":9090")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "json")

	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_delay", "200ms")
	v.SetDefault("retry.max_delay", "2s")
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if c.Chain.ControllerAddress == "" {
		return fmt.Errorf("chain.controller_address is required")
	}
	switch c.Storage.Backend {
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}
