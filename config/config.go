package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const GeneralSource = "general"

type Config struct {
	Server  ServerConfig
	Remote  RemoteConfig
	Compare CompareConfig
	Valkey  ValkeyConfig
	Session SessionConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8080"`
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
}

// RemoteConfig describes the summary/classification service.
type RemoteConfig struct {
	BaseURL             string            `envconfig:"BALLOT_BASE_URL" default:"https://beyond-the-ballot-server.onrender.com"`
	Timeout             time.Duration     `envconfig:"BALLOT_TIMEOUT" default:"10s"`
	Entities            []string          `envconfig:"BALLOT_ENTITIES" default:"modi,rahul"`
	Titles              map[string]string `envconfig:"BALLOT_TITLES" default:"general:General Summary,modi:Modi's Tweets,rahul:Rahul Gandhi's Tweets"`
	HealthCheckInterval time.Duration     `envconfig:"HEALTHCHECK_INTERVAL" default:"15s"`
}

type CompareConfig struct {
	Left       string `envconfig:"COMPARE_LEFT" default:"modi"`
	LeftTitle  string `envconfig:"COMPARE_LEFT_TITLE" default:"Modi"`
	Right      string `envconfig:"COMPARE_RIGHT" default:"rahul"`
	RightTitle string `envconfig:"COMPARE_RIGHT_TITLE" default:"Rahul Gandhi"`
}

// ValkeyConfig is optional. When Address is empty the analyzer guard stays
// in-process.
type ValkeyConfig struct {
	Address  string `envconfig:"VALKEY_INIT_ADDRESS"`
	Password string `envconfig:"VALKEY_PASSWORD"`
	TLS      bool   `envconfig:"VALKEY_TLS" default:"false"`
}

type SessionConfig struct {
	IdleTimeout       time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	NewSessionTimeout time.Duration `envconfig:"SESSION_NEW_TIMEOUT" default:"2m"`
	SweepInterval     time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Info("[Config] configuration loaded",
		slog.String("base_url", cfg.Remote.BaseURL),
		slog.Any("entities", cfg.Remote.Entities))
	return &cfg, nil
}

// Validate checks the pieces envconfig cannot: a usable base URL, unique
// entity keys and comparison sides that exist in the route table.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		return fmt.Errorf("BALLOT_BASE_URL must not be empty")
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("BALLOT_TIMEOUT must be positive, got %s", c.Remote.Timeout)
	}

	seen := map[string]bool{GeneralSource: true}
	for _, entity := range c.Remote.Entities {
		if entity == "" || seen[entity] {
			return fmt.Errorf("invalid or duplicate entity %q in BALLOT_ENTITIES", entity)
		}
		seen[entity] = true
	}

	for _, side := range []string{c.Compare.Left, c.Compare.Right} {
		if !seen[side] {
			return fmt.Errorf("comparison source %q is not a configured data source", side)
		}
	}
	return nil
}

// SourceKeys lists every data-source key in selector order.
func (c *Config) SourceKeys() []string {
	keys := make([]string, 0, len(c.Remote.Entities)+1)
	keys = append(keys, GeneralSource)
	return append(keys, c.Remote.Entities...)
}

func (c *Config) Title(key string) string {
	if title, ok := c.Remote.Titles[key]; ok && title != "" {
		return title
	}
	return key
}
