package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

const (
	TokenBackendSQLite = "sqlite"
	TokenBackendBolt   = "bolt"
)

// Config holds runtime settings for the bookcase CLI.
//
// Units: RequestTimeout and OnlineCheckInterval are time.Duration values.
type Config struct {
	APIBaseURL          string        `env:"API_URL"`
	CatalogURL          string        `env:"CATALOG_URL"`
	CatalogMaxResults   int           `env:"CATALOG_MAX_RESULTS"`
	DatabasePath        string        `env:"DB_PATH"`
	TokenBackend        string        `env:"TOKEN_BACKEND"`
	BoltPath            string        `env:"BOLT_PATH"`
	CookieName          string        `env:"COOKIE_NAME"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	LogLevel            string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/api/v1"
	c.CatalogURL = "https://www.googleapis.com/books/v1/volumes"
	c.CatalogMaxResults = 10
	c.DatabasePath = "bookcase.db"
	c.TokenBackend = TokenBackendSQLite
	c.BoltPath = "bookcase.bolt"
	c.CookieName = "access_token"
	c.RequestTimeout = 12 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.LogLevel = "warn"
}

// Load builds a Config from args (without the program name): defaults,
// then .env and environment, then the JSON file, then flags. Later sources
// take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.APIBaseURL)
	}
	if c.TokenBackend != TokenBackendSQLite && c.TokenBackend != TokenBackendBolt {
		return fmt.Errorf("invalid token backend %q (want %s or %s)", c.TokenBackend, TokenBackendSQLite, TokenBackendBolt)
	}
	// the volumes API caps maxResults at 40
	if c.CatalogMaxResults < 1 || c.CatalogMaxResults > 40 {
		return fmt.Errorf("catalog max results must be in 1..40, got %d", c.CatalogMaxResults)
	}
	if c.RequestTimeout <= 0 || c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("timeouts and intervals must be positive")
	}
	if c.CookieName == "" {
		return fmt.Errorf("cookie name must not be empty")
	}
	return nil
}
