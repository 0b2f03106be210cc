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
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeremyhahn/go-xsuaa/pkg/binding"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-xsuaa/pkg/jwks"
	"github.com/jeremyhahn/go-xsuaa/pkg/logging"
	"github.com/jeremyhahn/go-xsuaa/pkg/metrics"
	"github.com/jeremyhahn/go-xsuaa/pkg/token"
	"github.com/jeremyhahn/go-xsuaa/pkg/verification"
)

// TokenKeysPath is appended to the binding url when no JWKS url is set.
const TokenKeysPath = "/token_keys"

// ErrNoBinding is returned when the descriptor has no binding for the
// configured service.
var ErrNoBinding = errors.New("config: no binding found for service")

// Authenticator bundles the components that verify tokens issued for the
// selected binding.
type Authenticator struct {
	Binding  *binding.Configuration
	Cache    *jwks.Cache
	Verifier *verification.Verifier
}

// Verify verifies an access token or Authorization header value.
func (a *Authenticator) Verify(ctx context.Context, accessToken string) (*token.Token, error) {
	return a.Verifier.Verify(ctx, accessToken)
}

// Close stops background work of the key cache.
func (a *Authenticator) Close() {
	if a.Cache != nil {
		a.Cache.Close()
	}
}

// LoadBindings reads the binding descriptor from the configured file or,
// when none is set, from VCAP_SERVICES.
func (cfg *BindingConfig) LoadBindings() (*binding.Bindings, error) {
	var (
		bindings *binding.Bindings
		err      error
	)
	if cfg.File != "" {
		// #nosec G304 - Binding file path is provided by admin/user
		data, readErr := os.ReadFile(cfg.File)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read binding file: %w", readErr)
		}
		bindings, err = binding.Parse(string(data))
	} else {
		bindings, err = binding.FromEnvironment()
	}
	if err != nil {
		return nil, err
	}

	for _, service := range bindings.Services() {
		metrics.SetBindingsLoaded(string(service), len(bindings.LoadAll(service)))
	}
	return bindings, nil
}

// SelectBinding returns the binding the application trusts for the
// configured service.
func (c *Config) SelectBinding() (*binding.Configuration, error) {
	bindings, err := c.Binding.LoadBindings()
	if err != nil {
		return nil, err
	}
	service := binding.ParseServiceType(c.Binding.Service)
	selected := bindings.Load(service)
	if selected == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBinding, service)
	}
	return selected, nil
}

// TokenKeysURL returns the configured JWKS url, or the token keys endpoint
// derived from the binding url.
func (c *Config) TokenKeysURL(b *binding.Configuration) (string, error) {
	if c.JWKS.URL != "" {
		return c.JWKS.URL, nil
	}
	if b == nil || b.URL() == "" {
		return "", fmt.Errorf("jwks url is not configured and the binding has no url")
	}
	return strings.TrimRight(b.URL(), "/") + TokenKeysPath, nil
}

// CreateFetcher creates the HTTP fetcher for token keys.
func (c *Config) CreateFetcher(logger *logging.Logger) (*jwks.HTTPFetcher, error) {
	client, err := c.TLS.HTTPClient()
	if err != nil {
		return nil, err
	}
	retryMax := c.HTTP.RetryMax
	if retryMax == 0 {
		retryMax = -1
	}
	return jwks.NewHTTPFetcher(jwks.FetcherOptions{
		Timeout:      c.HTTP.Timeout,
		RetryMax:     retryMax,
		RetryWaitMin: c.HTTP.RetryWaitMin,
		RetryWaitMax: c.HTTP.RetryWaitMax,
		MaxBodySize:  c.HTTP.MaxBodySize,
		HTTPClient:   client,
		Logger:       logger,
	}), nil
}

// CreateCache creates the key cache for b. The verification key of the
// binding, if any, is registered as the default key.
func (c *Config) CreateCache(b *binding.Configuration, logger *logging.Logger) (*jwks.Cache, error) {
	endpoint, err := c.TokenKeysURL(b)
	if err != nil {
		return nil, err
	}
	fetcher, err := c.CreateFetcher(logger)
	if err != nil {
		return nil, err
	}

	refreshInterval := c.JWKS.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = -1
	}
	cache, err := jwks.NewCache(endpoint, fetcher, jwks.CacheOptions{
		TTL:             c.JWKS.TTL,
		RefreshInterval: refreshInterval,
		FailureBackoff:  c.JWKS.FailureBackoff,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	if b != nil && b.VerificationKey() != "" {
		cache.Register(jwk.FromPEM(jwt.RS256, "", b.VerificationKey()))
	}
	return cache, nil
}

// CreateAuthenticator creates the token verification stack for the
// configured binding.
func (c *Config) CreateAuthenticator(logger *logging.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if c.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	selected, err := c.SelectBinding()
	if err != nil {
		return nil, err
	}

	cache, err := c.CreateCache(selected, logger)
	if err != nil {
		return nil, err
	}

	appID := c.Token.AppID
	if appID == "" {
		appID = selected.XSAppName()
	}

	leeway := c.Token.Leeway
	if leeway == 0 {
		leeway = -1
	}
	verifier, err := verification.NewVerifier(cache, &verification.Options{
		Algorithms:        c.Token.AllowedAlgorithms(),
		Leeway:            leeway,
		Issuer:            c.Token.Issuer,
		Audience:          c.Token.Audience,
		RequireExpiration: c.Token.RequireExpiration,
		ScopeConverter:    token.NewXSUAAScopeConverter(appID),
		Logger:            logger,
	})
	if err != nil {
		cache.Close()
		return nil, err
	}

	logger.Info("token verification configured",
		"service", selected.Service().String(),
		"plan", selected.Plan().String(),
		"binding", selected.Name(),
		"jwks", cache.Endpoint())

	return &Authenticator{Binding: selected, Cache: cache, Verifier: verifier}, nil
}
