// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Odds     OddsConfig     `mapstructure:"odds"`
	Wager    WagerConfig    `mapstructure:"wager"`
	Account  AccountConfig  `mapstructure:"account"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// RedisConfig holds the optional odds snapshot cache configuration.
// An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	OddsTTL  time.Duration `mapstructure:"odds_ttl"`
}

// OddsConfig holds odds provider configuration. The provider strategy is
// selected once at startup.
type OddsConfig struct {
	Provider     string        `mapstructure:"provider"` // mock or theoddsapi
	APIKey       string        `mapstructure:"api_key"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// WagerConfig holds stake bounds in cents.
type WagerConfig struct {
	MinStakeCents int64 `mapstructure:"min_stake_cents"`
	MaxStakeCents int64 `mapstructure:"max_stake_cents"`
}

// AccountConfig holds account defaults.
type AccountConfig struct {
	StartingBalanceCents int64 `mapstructure:"starting_balance_cents"`
}

// AdminConfig lists account IDs granted the admin flag at startup.
type AdminConfig struct {
	IDs []string `mapstructure:"ids"`
}

// SeedConfig controls event catalog seeding on startup.
// Modes: none, minimal, mock.
type SeedConfig struct {
	Mode string `mapstructure:"mode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables use underscore separator and uppercase,
	// e.g. SERVER_ADDR, DATABASE_HOST, ODDS_API_KEY.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - env vars can provide all config.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sportsbook")
	v.SetDefault("database.name", "sportsbook")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Redis defaults (cache disabled unless an address is set)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.odds_ttl", "10s")

	// Odds provider defaults
	v.SetDefault("odds.provider", "mock")
	v.SetDefault("odds.sync_interval", "10s")
	v.SetDefault("odds.tick_interval", "10s")

	// Stake bounds: $1.00 to $50,000.00
	v.SetDefault("wager.min_stake_cents", 100)
	v.SetDefault("wager.max_stake_cents", 5_000_000)

	// New accounts start with $1,000.00
	v.SetDefault("account.starting_balance_cents", 100_000)

	v.SetDefault("seed.mode", "mock")
}

// IsAdmin checks if an account ID is in the configured admin list.
func (c *Config) IsAdmin(accountID string) bool {
	for _, id := range c.Admin.IDs {
		if id == accountID {
			return true
		}
	}
	return false
}
