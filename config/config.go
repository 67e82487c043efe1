// Package config loads the abicall configuration.
//
// Configuration is a YAML file; every field is optional. Environment
// variables override the file:
//
//	CONTRACTABI_LOG_LEVEL   log.level
//	CONTRACTABI_ABI         abi
//	CONTRACTABI_WASM        wasm
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/contract-abi/errors"
)

// Environment variables that override file settings.
const (
	EnvLogLevel = "CONTRACTABI_LOG_LEVEL"
	EnvABI      = "CONTRACTABI_ABI"
	EnvWasm     = "CONTRACTABI_WASM"
)

// Config is the CLI configuration.
type Config struct {
	// ABI is the path of the contract ABI (JSON or YAML). Empty selects the
	// built-in test contract.
	ABI string `yaml:"abi"`

	// Wasm is the path of a guest contract implementing the ABI. Empty
	// serves the ABI with the built-in Go handlers.
	Wasm string `yaml:"wasm"`

	Log      LogConfig      `yaml:"log"`
	Scenario ScenarioConfig `yaml:"scenario"`
	VM       VMConfig       `yaml:"vm"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Development bool   `yaml:"development"`
	Compress    bool   `yaml:"compress"`
}

// ScenarioConfig controls scenario runs.
type ScenarioConfig struct {
	Parallelism int `yaml:"parallelism"`
}

// VMConfig controls the guest runtime.
type VMConfig struct {
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Scenario: ScenarioConfig{Parallelism: 4},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Load("read config "+path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.ParseFailed("config "+path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvABI); ok && v != "" {
		c.ABI = v
	}
	if v, ok := lookup(EnvWasm); ok && v != "" {
		c.Wasm = v
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Scenario.Parallelism < 0 {
		return errors.InvalidInput(errors.PhaseLoad,
			"scenario.parallelism must not be negative, got "+strconv.Itoa(c.Scenario.Parallelism))
	}
	if c.Wasm != "" && c.ABI == "" {
		return errors.InvalidInput(errors.PhaseLoad, "wasm requires abi")
	}
	return nil
}
