// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-xsuaa.
//
// go-xsuaa is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-xsuaa/internal/config"
	"github.com/jeremyhahn/go-xsuaa/pkg/logging"
)

// Viper keys bound to persistent flags and XSUAA_* environment variables
const (
	ConfigFileKey  = "config"
	OutputKey      = "output"
	VerboseKey     = "verbose"
	LogLevelKey    = "log.level"
	LogFormatKey   = "log.format"
	BindingFileKey = "binding.file"
	JWKSURLKey     = "jwks.url"
)

// Config holds global CLI configuration
type Config struct {
	v *viper.Viper

	// Stderr receives log output
	Stderr io.Writer
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("XSUAA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault(OutputKey, string(OutputFormatText))

	return &Config{v: v, Stderr: os.Stderr}
}

// ConfigFile is the path to the configuration file
func (c *Config) ConfigFile() string {
	return c.v.GetString(ConfigFileKey)
}

// OutputFormat controls output formatting (json, text, table)
func (c *Config) OutputFormat() string {
	return c.v.GetString(OutputKey)
}

// Verbose enables debug logging
func (c *Config) Verbose() bool {
	return c.v.GetBool(VerboseKey)
}

// Load reads the client configuration and applies flag overrides.
func (c *Config) Load() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigFile())
	if err != nil {
		return nil, err
	}

	if v := c.v.GetString(BindingFileKey); v != "" {
		cfg.Binding.File = v
	}
	if v := c.v.GetString(JWKSURLKey); v != "" {
		cfg.JWKS.URL = v
	}
	if v := c.v.GetString(LogLevelKey); v != "" {
		cfg.Logging.Level = v
	}
	if v := c.v.GetString(LogFormatKey); v != "" {
		cfg.Logging.Format = v
	}
	if c.Verbose() {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Logger creates the logger for cfg.
func (c *Config) Logger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: c.Stderr,
	})
}
