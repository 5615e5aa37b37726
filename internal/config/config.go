package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	BackendHTTP  = "http"
	BackendMySQL = "mysql"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Debug       bool `env:"DEBUG_MODE" envDefault:"false"`

	Store Store `envPrefix:"STORE_"`
	Rcon  Rcon  `envPrefix:"RCON_"`
}

// Store describes where pending orders come from. The http backend talks to the
// store API, the mysql backend reads the store database directly.
type Store struct {
	Backend              string        `env:"BACKEND" envDefault:"http"`
	InstanceURL          string        `env:"INSTANCE_URL"`
	ServerToken          string        `env:"SERVER_TOKEN"`
	FetchIntervalSeconds int           `env:"FETCH_INTERVAL" envDefault:"60"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	DatabaseURL          string        `env:"DATABASE_URL"`
	ServerID             uint          `env:"SERVER_ID" envDefault:"1"`
}

func (s Store) FetchInterval() time.Duration {
	return time.Duration(s.FetchIntervalSeconds) * time.Second
}

type Rcon struct {
	Address  string        `env:"ADDRESS" envDefault:"127.0.0.1:28016"`
	Password string        `env:"PASSWORD"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Store.FetchIntervalSeconds < 1 {
		return fmt.Errorf("STORE_FETCH_INTERVAL must be at least 1 second, got %d", c.Store.FetchIntervalSeconds)
	}

	switch c.Store.Backend {
	case BackendHTTP:
		if c.Store.InstanceURL == "" {
			return errors.New("STORE_INSTANCE_URL is required for the http backend")
		}
	case BackendMySQL:
		if c.Store.DatabaseURL == "" {
			return errors.New("STORE_DATABASE_URL is required for the mysql backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Rcon.Address == "" {
		return errors.New("RCON_ADDRESS is required")
	}
	return nil
}
