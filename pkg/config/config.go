// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads corectl/corecomm configuration: a viper-backed
// Config struct, mapstructure tags, a Duration decode hook, and a MustLoad
// that turns "no config file" into actionable instructions instead of a
// bare viper error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the corectl/corecomm process configuration.
//
// Precedence (highest to lowest): CLI flags (applied by corectl's root
// command after Load), the configuration file, then the defaults below.
// COREDEV_-prefixed environment variables can override only keys that a
// found configuration file sets; when no file is found, Load returns the
// defaults without consulting the environment.
type Config struct {
	Device  DeviceConfig  `mapstructure:"device" yaml:"device"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// DeviceConfig describes how to reach the device core.
type DeviceConfig struct {
	// Transport selects the Channel constructor: "tcp" or "unix".
	Transport string `mapstructure:"transport" yaml:"transport"`
	// Address is a host:port (tcp) or socket path (unix).
	Address string `mapstructure:"address" yaml:"address"`
	// DialTimeout is decoded from the configuration, but no channel
	// constructor applies it: Open dials without a deadline.
	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
}

// LoggingConfig controls corelog.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the serve-metrics command.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
}

// GetDefaultConfig returns the configuration used when no file is found.
func GetDefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Transport:   "tcp",
			Address:     "localhost:1381",
			DialTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9100",
		},
	}
}

// Load reads configuration from configPath (or the default search path when
// empty), environment variables, and falls back to GetDefaultConfig when no
// file is present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return GetDefaultConfig(), nil
	}

	cfg := GetDefaultConfig()
	if err := v.Unmarshal(cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

// MustLoad loads configuration, turning a missing explicit config file into
// an actionable error.
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
	}
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	return cfg, nil
}

// Validate checks invariants Load cannot express via mapstructure tags
// alone.
func Validate(cfg *Config) error {
	switch cfg.Device.Transport {
	case "tcp", "unix":
	default:
		return fmt.Errorf("config: device.transport must be \"tcp\" or \"unix\", got %q", cfg.Device.Transport)
	}
	if cfg.Device.Address == "" {
		return fmt.Errorf("config: device.address is required")
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("COREDEV")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read config file: %w", err)
	}
	return true, nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "corecomm")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "corecomm")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
