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

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-xsuaa/pkg/binding"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-xsuaa/pkg/validation"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "XSUAA_"

// Config represents the complete client configuration
type Config struct {
	Binding BindingConfig `yaml:"binding"`
	Token   TokenConfig   `yaml:"token"`
	JWKS    JWKSConfig    `yaml:"jwks"`
	HTTP    HTTPConfig    `yaml:"http"`
	TLS     TLSConfig     `yaml:"tls"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// BindingConfig selects where service bindings are read from
type BindingConfig struct {
	// File holds a VCAP_SERVICES style document. When empty the
	// VCAP_SERVICES environment variable is used.
	File string `yaml:"file"`

	// Service is the bound service type to trust, xsuaa by default.
	Service string `yaml:"service"`
}

// TokenConfig controls token validation
type TokenConfig struct {
	// AppID is the xsappname used to derive local scopes. Defaults to the
	// xsappname of the selected binding.
	AppID             string        `yaml:"app_id"`
	Issuer            string        `yaml:"issuer"`
	Audience          string        `yaml:"audience"`
	Algorithms        []string      `yaml:"algorithms"`
	Leeway            time.Duration `yaml:"leeway"`
	RequireExpiration bool          `yaml:"require_expiration"`
}

// JWKSConfig controls token key retrieval
type JWKSConfig struct {
	// URL of the token keys endpoint. Defaults to <binding url>/token_keys.
	URL             string        `yaml:"url"`
	TTL             time.Duration `yaml:"ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	FailureBackoff  time.Duration `yaml:"failure_backoff"`
}

// HTTPConfig controls the HTTP client used for key retrieval
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	RetryMax     int           `yaml:"retry_max"`
	RetryWaitMin time.Duration `yaml:"retry_wait_min"`
	RetryWaitMax time.Duration `yaml:"retry_wait_max"`
	MaxBodySize  int64         `yaml:"max_body_size"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls metrics collection
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Binding: BindingConfig{Service: "xsuaa"},
		Token: TokenConfig{
			Algorithms:        []string{string(jwt.RS256)},
			Leeway:            time.Minute,
			RequireExpiration: true,
		},
		JWKS: JWKSConfig{
			TTL:             15 * time.Minute,
			RefreshInterval: 30 * time.Second,
			FailureBackoff:  5 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			RetryMax:     2,
			RetryWaitMin: 200 * time.Millisecond,
			RetryWaitMax: 2 * time.Second,
			MaxBodySize:  1 << 20,
		},
		TLS:     TLSConfig{MinVersion: "TLS1.2"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads configuration from a YAML file on top of the defaults and
// applies environment variable overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by admin/user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies XSUAA_* environment variable overrides
func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Binding.File, "BINDING_FILE")
	setString(&cfg.Binding.Service, "BINDING_SERVICE")

	setString(&cfg.Token.AppID, "APP_ID")
	setString(&cfg.Token.Issuer, "ISSUER")
	setString(&cfg.Token.Audience, "AUDIENCE")
	if algs := os.Getenv(EnvPrefix + "ALGORITHMS"); algs != "" {
		cfg.Token.Algorithms = splitList(algs)
	}
	setDuration(&cfg.Token.Leeway, "LEEWAY")
	setBool(&cfg.Token.RequireExpiration, "REQUIRE_EXPIRATION")

	setString(&cfg.JWKS.URL, "JWKS_URL")
	setDuration(&cfg.JWKS.TTL, "JWKS_TTL")
	setDuration(&cfg.JWKS.RefreshInterval, "JWKS_REFRESH_INTERVAL")
	setDuration(&cfg.JWKS.FailureBackoff, "JWKS_FAILURE_BACKOFF")

	setDuration(&cfg.HTTP.Timeout, "HTTP_TIMEOUT")
	if v := os.Getenv(EnvPrefix + "HTTP_RETRY_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("Warning: invalid %sHTTP_RETRY_MAX value %q, using %d", EnvPrefix, v, cfg.HTTP.RetryMax)
		} else {
			cfg.HTTP.RetryMax = n
		}
	}

	setString(&cfg.TLS.CAFile, "TLS_CA_FILE")
	setString(&cfg.TLS.CertFile, "TLS_CERT_FILE")
	setString(&cfg.TLS.KeyFile, "TLS_KEY_FILE")
	setString(&cfg.TLS.MinVersion, "TLS_MIN_VERSION")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")

	setBool(&cfg.Metrics.Enabled, "METRICS_ENABLED")
}

func setString(dst *string, name string) {
	if v := os.Getenv(EnvPrefix + name); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name string) {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Warning: invalid %s%s value %q, using default %s: %v", EnvPrefix, name, v, *dst, err)
		return
	}
	*dst = d
}

func setBool(dst *bool, name string) {
	v := os.Getenv(EnvPrefix + name)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: invalid %s%s value %q, using default %t: %v", EnvPrefix, name, v, *dst, err)
		return
	}
	*dst = b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if binding.ParseServiceType(c.Binding.Service) == binding.ServiceUnknown {
		return fmt.Errorf("invalid binding service: %q (must be xsuaa or identity)", c.Binding.Service)
	}

	if len(c.Token.Algorithms) == 0 {
		return fmt.Errorf("at least one token algorithm must be allowed")
	}
	for _, alg := range c.Token.Algorithms {
		if _, err := jwt.ParseAlgorithm(alg); err != nil {
			return fmt.Errorf("invalid token algorithm: %w", err)
		}
	}
	if c.Token.Leeway < 0 {
		return fmt.Errorf("token leeway must not be negative: %s", c.Token.Leeway)
	}

	if c.JWKS.URL != "" {
		if err := validation.ValidateEndpointURL(c.JWKS.URL); err != nil {
			return fmt.Errorf("invalid jwks url: %w", err)
		}
	}
	if c.JWKS.TTL <= 0 {
		return fmt.Errorf("jwks ttl must be positive: %s", c.JWKS.TTL)
	}
	if c.JWKS.RefreshInterval < 0 {
		return fmt.Errorf("jwks refresh_interval must not be negative: %s", c.JWKS.RefreshInterval)
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive: %s", c.HTTP.Timeout)
	}
	if c.HTTP.RetryMax < 0 {
		return fmt.Errorf("http retry_max must not be negative: %d", c.HTTP.RetryMax)
	}
	if c.HTTP.RetryWaitMax > 0 && c.HTTP.RetryWaitMin > c.HTTP.RetryWaitMax {
		return fmt.Errorf("http retry_wait_min %s exceeds retry_wait_max %s", c.HTTP.RetryWaitMin, c.HTTP.RetryWaitMax)
	}

	if err := c.TLS.Validate(); err != nil {
		return err
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}

// AllowedAlgorithms returns the configured token algorithms.
func (c *TokenConfig) AllowedAlgorithms() []jwt.Algorithm {
	algs := make([]jwt.Algorithm, 0, len(c.Algorithms))
	for _, alg := range c.Algorithms {
		algs = append(algs, jwt.Algorithm(alg))
	}
	return algs
}
