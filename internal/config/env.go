package config

import (
	"os"
	"strconv"
)

// FromEnv applies SIDEGIG_* environment overrides on top of a config.
// Unset or malformed variables leave the existing value alone.
func (c *Config) FromEnv() {
	if v := os.Getenv("SIDEGIG_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SIDEGIG_CATALOG"); v != "" {
		c.Sim.CatalogPath = v
	}
	if v := getEnvFloat("SIDEGIG_BASE_TIME_HOURS"); v > 0 {
		c.Sim.BaseTimeHours = v
	}
	if v := getEnvInt("SIDEGIG_SEED"); v > 0 {
		c.Sim.Seed = uint64(v)
	}
	if v := os.Getenv("SIDEGIG_SAVE_PATH"); v != "" {
		c.Save.Path = v
	}
	if v := os.Getenv("SIDEGIG_SAVE_SLOT"); v != "" {
		c.Save.Slot = v
	}
	if v := getEnvInt("SIDEGIG_AUTOSAVE_SECONDS"); v > 0 {
		c.Save.AutosaveSeconds = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvFloat(key string) float64 {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return num
}
