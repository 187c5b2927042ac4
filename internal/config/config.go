// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"vdi-cost/core/sizing"
	"vdi-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Database contains database settings
	Database DatabaseConfig `json:"database"`

	// Refresh contains price refresh settings
	Refresh RefreshConfig `json:"refresh"`

	// Sizing contains the deployment sizing constants
	Sizing sizing.Config `json:"sizing"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	// URL is the postgres connection string.
	// The DATABASE_URL environment variable takes precedence.
	URL string `json:"url"`
}

// RefreshConfig contains price refresh settings
type RefreshConfig struct {
	// Regions are the regions refreshed by a full catalog refresh
	Regions []string `json:"regions"`

	// Concurrency bounds how many regions are fetched at once
	Concurrency int `json:"concurrency"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{},
		Refresh: RefreshConfig{
			Regions: []string{
				"eastus", "eastus2", "westus", "westus2", "westus3",
				"centralus", "northcentralus", "southcentralus", "westcentralus",
			},
			Concurrency: 3,
		},
		Sizing:  sizing.Default(),
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DatabaseURL returns the effective database connection string
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return c.Database.URL
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
