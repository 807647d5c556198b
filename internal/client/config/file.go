package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/mealkeeper/internal/flagx"
	"github.com/dmitrijs2005/mealkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Pointer and zero
// fields are left out of the overlay, so a file may set only what it needs.
type FileConfig struct {
	APIBaseURL         string          `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout     *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	RefreshTimeout     *timex.Duration `json:"refresh_timeout" yaml:"refresh_timeout"`
	RefreshWaitTimeout *timex.Duration `json:"refresh_wait_timeout" yaml:"refresh_wait_timeout"`
	StoreBackend       string          `json:"store_backend" yaml:"store_backend"`
	StorePath          string          `json:"store_path" yaml:"store_path"`
	StoreSecret        string          `json:"store_secret" yaml:"store_secret"`
	RedisAddr          string          `json:"redis_addr" yaml:"redis_addr"`
	RedisPrefix        string          `json:"redis_prefix" yaml:"redis_prefix"`
	LogLevel           string          `json:"log_level" yaml:"log_level"`
}

// parseFile overlays cfg with the file named by -c / -config. YAML is used
// for .yaml and .yml files, JSON for everything else. No flag, no change.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.StoreBackend, fc.StoreBackend)
	setString(&cfg.StorePath, fc.StorePath)
	setString(&cfg.StoreSecret, fc.StoreSecret)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisPrefix, fc.RedisPrefix)
	setString(&cfg.LogLevel, fc.LogLevel)

	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RefreshTimeout != nil {
		cfg.RefreshTimeout = fc.RefreshTimeout.Duration
	}
	if fc.RefreshWaitTimeout != nil {
		cfg.RefreshWaitTimeout = fc.RefreshWaitTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
