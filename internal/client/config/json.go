package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/bookcase/internal/flagx"
	"github.com/dmitrijs2005/bookcase/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Absent fields keep the value
// from earlier sources.
type JsonConfig struct {
	APIBaseURL          *string         `json:"api_url"`
	CatalogURL          *string         `json:"catalog_url"`
	CatalogMaxResults   *int            `json:"catalog_max_results"`
	DatabasePath        *string         `json:"database_path"`
	TokenBackend        *string         `json:"token_backend"`
	BoltPath            *string         `json:"bolt_path"`
	CookieName          *string         `json:"cookie_name"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	LogLevel            *string         `json:"log_level"`
}

// parseJSON overlays cfg with the JSON file named by -c or -config. Without
// either flag it does nothing.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.CatalogURL, jc.CatalogURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.TokenBackend, jc.TokenBackend)
	setString(&cfg.BoltPath, jc.BoltPath)
	setString(&cfg.CookieName, jc.CookieName)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.CatalogMaxResults != nil {
		cfg.CatalogMaxResults = *jc.CatalogMaxResults
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
