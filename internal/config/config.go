// Package config loads server settings from an optional file and
// SITESTOCK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/site"
)

// Config holds every runtime setting.
type Config struct {
	Addr               string      `mapstructure:"addr"`
	DataDir            string      `mapstructure:"data_dir"`
	LogFile            string      `mapstructure:"log_file"`
	Production         bool        `mapstructure:"production"`
	LowStockThreshold  int         `mapstructure:"low_stock_threshold"`
	WarehousePartition string      `mapstructure:"warehouse_partition"`
	Sites              []site.Site `mapstructure:"sites"`
}

// Load reads path when non-empty, applies environment overrides and fills
// in defaults. Without a sites list the built-in sites are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("data_dir", "data")
	v.SetDefault("log_file", "")
	v.SetDefault("production", false)
	v.SetDefault("low_stock_threshold", model.LowStockThreshold)
	v.SetDefault("warehouse_partition", site.DefaultWarehousePartition)

	v.SetEnvPrefix("SITESTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if len(cfg.Sites) == 0 {
		cfg.Sites = site.DefaultSites()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.LowStockThreshold < 0 {
		errs = append(errs, errors.New("low_stock_threshold must not be negative"))
	}
	if _, err := c.Registry(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Registry builds the site registry the settings describe.
func (c *Config) Registry() (*site.Registry, error) {
	return site.NewRegistry(c.Sites, c.WarehousePartition)
}
