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
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/go-cleanhttp"
)

// TLSConfig controls how the token keys endpoint is reached over TLS
type TLSConfig struct {
	// CAFile and ClientCAs add trusted roots on top of the system pool.
	CAFile    string   `yaml:"ca_file"`
	ClientCAs []string `yaml:"client_cas"`

	// CertFile and KeyFile present a client certificate, as required by
	// bindings with the x509 credential type.
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`

	MinVersion   string   `yaml:"min_version"` // TLS1.2, TLS1.3
	MaxVersion   string   `yaml:"max_version"`
	CipherSuites []string `yaml:"cipher_suites"`
}

// Validate checks the TLS settings without touching the filesystem.
func (cfg *TLSConfig) Validate() error {
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return fmt.Errorf("TLS cert_file and key_file must be set together")
	}
	for _, v := range []string{cfg.MinVersion, cfg.MaxVersion} {
		if v == "" {
			continue
		}
		if _, err := parseTLSVersion(v); err != nil {
			return err
		}
	}
	if _, err := parseCipherSuites(cfg.CipherSuites); err != nil {
		return fmt.Errorf("failed to parse cipher suites: %w", err)
	}
	return nil
}

// LoadTLSConfig builds the client tls.Config. It returns nil when every
// setting is left at its default.
func (cfg *TLSConfig) LoadTLSConfig() (*tls.Config, error) {
	if cfg.isDefault() {
		return nil, nil
	}

	minVersion := uint16(tls.VersionTLS12)
	if cfg.MinVersion != "" {
		v, err := parseTLSVersion(cfg.MinVersion)
		if err != nil {
			return nil, err
		}
		minVersion = v
	}

	// #nosec G402 - MinVersion is set via variable with TLS 1.2 default, gosec cannot detect this pattern
	tlsConfig := &tls.Config{
		MinVersion: minVersion,
	}

	if cfg.MaxVersion != "" {
		v, err := parseTLSVersion(cfg.MaxVersion)
		if err != nil {
			return nil, err
		}
		tlsConfig.MaxVersion = v
	}

	if len(cfg.CipherSuites) > 0 {
		suites, err := parseCipherSuites(cfg.CipherSuites)
		if err != nil {
			return nil, fmt.Errorf("failed to parse cipher suites: %w", err)
		}
		tlsConfig.CipherSuites = suites
	}

	if cfg.CAFile != "" || len(cfg.ClientCAs) > 0 {
		pool, err := loadCertPool(cfg.CAFile, cfg.ClientCAs)
		if err != nil {
			return nil, fmt.Errorf("failed to load CA certificates: %w", err)
		}
		tlsConfig.RootCAs = pool
	}

	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// HTTPClient returns a pooled HTTP client that uses the TLS settings.
func (cfg *TLSConfig) HTTPClient() (*http.Client, error) {
	tlsConfig, err := cfg.LoadTLSConfig()
	if err != nil {
		return nil, err
	}

	client := cleanhttp.DefaultPooledClient()
	if tlsConfig != nil {
		client.Transport.(*http.Transport).TLSClientConfig = tlsConfig
	}
	return client, nil
}

func (cfg *TLSConfig) isDefault() bool {
	return cfg.CAFile == "" && len(cfg.ClientCAs) == 0 &&
		cfg.CertFile == "" && cfg.KeyFile == "" &&
		(cfg.MinVersion == "" || cfg.MinVersion == "TLS1.2") &&
		cfg.MaxVersion == "" && len(cfg.CipherSuites) == 0
}

// parseTLSVersion converts a string to a tls version constant
func parseTLSVersion(version string) (uint16, error) {
	switch version {
	case "TLS1.2":
		return tls.VersionTLS12, nil
	case "TLS1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version: %s (must be TLS1.2 or TLS1.3)", version)
	}
}

// parseCipherSuites converts cipher suite names to IDs
func parseCipherSuites(suites []string) ([]uint16, error) {
	cipherSuiteMap := map[string]uint16{
		// TLS 1.3
		"TLS_AES_128_GCM_SHA256":       tls.TLS_AES_128_GCM_SHA256,
		"TLS_AES_256_GCM_SHA384":       tls.TLS_AES_256_GCM_SHA384,
		"TLS_CHACHA20_POLY1305_SHA256": tls.TLS_CHACHA20_POLY1305_SHA256,

		// TLS 1.2
		"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305":    tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
		"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305":  tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
	}

	result := make([]uint16, 0, len(suites))
	for _, name := range suites {
		id, ok := cipherSuiteMap[name]
		if !ok {
			return nil, fmt.Errorf("unknown cipher suite: %s", name)
		}
		result = append(result, id)
	}

	return result, nil
}

// loadCertPool adds CA certificates to the system pool
func loadCertPool(caFile string, additionalCAs []string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	paths := additionalCAs
	if caFile != "" {
		paths = append([]string{caFile}, additionalCAs...)
	}

	for _, caPath := range paths {
		// #nosec G304 - CA file paths from trusted config
		caCert, err := os.ReadFile(caPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file %s: %w", caPath, err)
		}
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", caPath)
		}
	}

	return pool, nil
}
