package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Paths      PathsConfig      `toml:"paths"`
	Resolver   ResolverConfig   `toml:"resolver"`
	Checkpoint CheckpointConfig `toml:"checkpoint"`
	Database   DatabaseConfig   `toml:"database"`
}

// PathsConfig contains the catalog input and output locations.
type PathsConfig struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`
}

// ResolverConfig contains settings for the batch resolution engine and its sessions.
type ResolverConfig struct {
	Strategy          string   `toml:"strategy"`
	BaseURL           string   `toml:"base_url"`
	ProxyURL          string   `toml:"proxy_url"`
	ProxyAuthFile     string   `toml:"proxy_auth_file"`
	MaxRetries        int      `toml:"max_retries"`
	MinDelayMS        int      `toml:"min_delay_ms"`
	MaxDelayMS        int      `toml:"max_delay_ms"`
	TimeoutMS         int      `toml:"timeout_ms"`
	PoolSize          int      `toml:"pool_size"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	UserAgents        []string `toml:"user_agents"`
}

// CheckpointConfig controls how often in-progress results are written.
type CheckpointConfig struct {
	Every  int    `toml:"every"`
	Suffix string `toml:"suffix"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	CacheEnabled bool   `toml:"cache_enabled"`
}

// MinDelay returns the lower jitter bound.
func (r ResolverConfig) MinDelay() time.Duration {
	return time.Duration(r.MinDelayMS) * time.Millisecond
}

// MaxDelay returns the upper jitter bound.
func (r ResolverConfig) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelayMS) * time.Millisecond
}

// Timeout returns the per-attempt resolver timeout.
func (r ResolverConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutMS) * time.Millisecond
}

// CheckpointPath returns the in-progress snapshot path for the configured output.
func (c *Config) CheckpointPath() string {
	return c.Paths.Output + c.Checkpoint.Suffix
}

// Validate reports the first setting that would prevent a run from starting.
func (c *Config) Validate() error {
	switch {
	case c.Paths.Input == "":
		return fmt.Errorf("%w: paths.input is empty", ErrInvalidConfig)
	case c.Paths.Output == "":
		return fmt.Errorf("%w: paths.output is empty", ErrInvalidConfig)
	case c.Resolver.PoolSize <= 0:
		return fmt.Errorf("%w: resolver.pool_size must be positive, got %d", ErrInvalidConfig, c.Resolver.PoolSize)
	case c.Resolver.MaxRetries <= 0:
		return fmt.Errorf("%w: resolver.max_retries must be positive, got %d", ErrInvalidConfig, c.Resolver.MaxRetries)
	case c.Resolver.MinDelayMS < 0 || c.Resolver.MaxDelayMS < 0:
		return fmt.Errorf("%w: resolver delays must not be negative", ErrInvalidConfig)
	case c.Resolver.MaxDelayMS < c.Resolver.MinDelayMS:
		return fmt.Errorf("%w: resolver.max_delay_ms (%d) is below min_delay_ms (%d)", ErrInvalidConfig, c.Resolver.MaxDelayMS, c.Resolver.MinDelayMS)
	case len(c.Resolver.UserAgents) == 0:
		return fmt.Errorf("%w: resolver.user_agents is empty", ErrInvalidConfig)
	case c.Checkpoint.Every <= 0:
		return fmt.Errorf("%w: checkpoint.every must be positive, got %d", ErrInvalidConfig, c.Checkpoint.Every)
	case c.Checkpoint.Suffix == "":
		return fmt.Errorf("%w: checkpoint.suffix is empty", ErrInvalidConfig)
	}

	switch c.Resolver.Strategy {
	case "scrape", "proxy":
	default:
		return fmt.Errorf("%w: unknown resolver.strategy %q", ErrInvalidConfig, c.Resolver.Strategy)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
