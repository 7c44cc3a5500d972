// Package config holds the server and simulation settings. Settings
// come from a YAML file with zero-value defaults filled in, then
// environment overrides on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Sim    SimConfig    `yaml:"sim"`
	Save   SaveConfig   `yaml:"save"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type SimConfig struct {
	// CatalogPath points at a content YAML; empty uses the built-in set.
	CatalogPath string `yaml:"catalog_path"`
	// BaseTimeHours is the daily time budget.
	BaseTimeHours float64 `yaml:"base_time_hours"`
	// Seed fixes the random source; zero seeds from the clock.
	Seed uint64 `yaml:"seed"`
	// PassiveTickSeconds is the passive-income tick period.
	PassiveTickSeconds int `yaml:"passive_tick_seconds"`
}

type SaveConfig struct {
	Path string `yaml:"path"`
	Slot string `yaml:"slot"`
	// AutosaveSeconds is the interval between background saves; zero
	// disables autosave.
	AutosaveSeconds int `yaml:"autosave_seconds"`
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Sim.BaseTimeHours <= 0 {
		c.Sim.BaseTimeHours = 14
	}
	if c.Sim.PassiveTickSeconds <= 0 {
		c.Sim.PassiveTickSeconds = 1
	}
	if c.Save.Path == "" {
		c.Save.Path = "sidegig.db"
	}
	if c.Save.Slot == "" {
		c.Save.Slot = "main"
	}
	if c.Save.AutosaveSeconds < 0 {
		c.Save.AutosaveSeconds = 0
	}
}

// Default returns the zero-file configuration.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML config file and fills defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.ApplyDefaults()
	return &c, nil
}
