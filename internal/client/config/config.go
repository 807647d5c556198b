package config

import (
	"os"
	"time"
)

// Store backends understood by credentials.Open.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds runtime settings for the mealkeeper client.
//
// Units: all *Timeout fields are time.Duration.
type Config struct {
	// APIBaseURL is the prefix for every remote call, e.g. http://host:8080/api.
	APIBaseURL string

	// RequestTimeout bounds each individual HTTP call.
	RequestTimeout time.Duration
	// RefreshTimeout bounds the shared refresh (refresh call + profile fetch).
	RefreshTimeout time.Duration
	// RefreshWaitTimeout bounds how long a caller waits for a refresh in flight.
	RefreshWaitTimeout time.Duration

	StoreBackend string
	// StorePath is the SQLite file for the sqlite backend.
	StorePath string
	// StoreSecret, when set, turns on at-rest encryption of every stored value.
	StoreSecret string
	RedisAddr   string
	RedisPrefix string

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 15 * time.Second
	c.RefreshTimeout = 10 * time.Second
	c.RefreshWaitTimeout = 20 * time.Second
	c.StoreBackend = BackendSQLite
	c.StorePath = "session.db"
	c.StoreSecret = ""
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "mealkeeper:"
	c.LogLevel = "info"
}

// LoadConfig builds a Config from defaults, then the optional config file,
// then command-line flags. Later sources win.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
