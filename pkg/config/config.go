// Package config loads and validates the API server configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// APIServerConfig represents the GreenPay API server configuration.
type APIServerConfig struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Token          TokenConfig          `mapstructure:"token"`
	Aptos          AptosConfig          `mapstructure:"aptos"`
	Rewards        RewardsConfig        `mapstructure:"rewards"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// TokenConfig contains payment token metadata. Amounts are stored in the
// smallest indivisible unit; Decimals is the display conversion exponent.
type TokenConfig struct {
	Name     string `mapstructure:"name"`
	Symbol   string `mapstructure:"symbol"`
	Decimals int    `mapstructure:"decimals"`
}

// AptosConfig contains Aptos fullnode REST API settings. The chain client is
// only consulted by the background reconciler; user-facing operations never
// block on it.
type AptosConfig struct {
	NodeURL        string        `mapstructure:"node_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RewardsConfig contains settings for the external attribution API.
// APIKeyEnv names the environment variable holding the API key so the key
// itself never lives in the config file.
type RewardsConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	APIURL         string        `mapstructure:"api_url"`
	APIKeyEnv      string        `mapstructure:"api_key_env"`
	CampaignID     string        `mapstructure:"campaign_id"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ReconciliationConfig contains settings for ledger self-repair.
type ReconciliationConfig struct {
	InitialTimeout time.Duration `mapstructure:"initial_timeout"`
	Interval       time.Duration `mapstructure:"interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadAPIServer loads the API server configuration from file and environment.
func LoadAPIServer(configPath string) (*APIServerConfig, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setAPIServerDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config APIServerConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateAPIServer(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setAPIServerDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "greenpay")

	// Token defaults: Aptos APT, octas at 10^8
	viper.SetDefault("token.name", "Aptos Coin")
	viper.SetDefault("token.symbol", "APT")
	viper.SetDefault("token.decimals", 8)

	// Aptos fullnode defaults
	viper.SetDefault("aptos.node_url", "")
	viper.SetDefault("aptos.request_timeout", "15s")

	// Rewards defaults
	viper.SetDefault("rewards.enabled", false)
	viper.SetDefault("rewards.api_key_env", "PHOTON_API_KEY")
	viper.SetDefault("rewards.request_timeout", "10s")

	// Reconciliation defaults
	viper.SetDefault("reconciliation.initial_timeout", "2m")
	viper.SetDefault("reconciliation.interval", "5m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validateAPIServer(config *APIServerConfig) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Token.Decimals <= 0 {
		return fmt.Errorf("token.decimals must be positive")
	}
	if config.Rewards.Enabled && config.Rewards.APIURL == "" {
		return fmt.Errorf("rewards.api_url is required when rewards are enabled")
	}
	return nil
}
