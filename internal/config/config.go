// Package config loads runtime settings from the environment and the
// network definitions used to reach the contracts.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds every setting read from the environment.
type Config struct {
	Port       int    `env:"PORT,default=8080"`
	DBPath     string `env:"DB_PATH,default=./data/splitme.db"`
	StaticPath string `env:"STATIC_PATH,default=./frontend/static"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,default=24h"`

	Network        string `env:"SPLITME_NETWORK,default=morphHolesky"`
	RPCURL         string `env:"MORPH_RPC_URL"`
	PrivateKey     string `env:"PRIVATE_KEY"`
	DeploymentsDir string `env:"DEPLOYMENTS_DIR,default=./deployments"`
	ArtifactsDir   string `env:"ARTIFACTS_DIR,default=./artifacts"`
	NetworksFile   string `env:"NETWORKS_FILE"`

	SyncSchedule   string        `env:"SYNC_SCHEDULE,default=@every 1m"`
	SyncStartBlock uint64        `env:"SYNC_START_BLOCK,default=0"`
	SyncTimeout    time.Duration `env:"SYNC_TIMEOUT,default=2m"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=20"`
}

// Load reads envFile when it exists and then decodes the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid TOKEN_TTL %s", c.TokenTTL)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.Network == "" {
		return errors.New("SPLITME_NETWORK is required")
	}
	return nil
}

// ResolveNetwork returns the selected network, with MORPH_RPC_URL taking
// precedence over the configured endpoint.
func (c *Config) ResolveNetwork() (Network, error) {
	networks, err := LoadNetworks(c.NetworksFile)
	if err != nil {
		return Network{}, err
	}
	n, ok := networks[c.Network]
	if !ok {
		return Network{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, c.Network)
	}
	if c.RPCURL != "" {
		n.RPCURL = c.RPCURL
	}
	return n, nil
}
