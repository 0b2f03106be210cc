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
	"errors"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-xsuaa/internal/config"
	"github.com/jeremyhahn/go-xsuaa/pkg/binding"
	"github.com/jeremyhahn/go-xsuaa/pkg/correlation"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-xsuaa/pkg/health"
)

// ErrUnhealthy is returned by jwks check when no keys can be served.
var ErrUnhealthy = errors.New("token keys unavailable")

func newJWKSCommand(cfg *Config) *cobra.Command {
	jwksCmd := &cobra.Command{
		Use:   "jwks",
		Short: "Query token keys endpoints",
	}

	fetchCmd := &cobra.Command{
		Use:   "fetch [url]",
		Short: "Download and list the token keys",
		Long: `Download the token keys document and list its signature keys. Without
a url the endpoint of the selected binding is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCfg, selected, err := loadEndpointConfig(cfg, args)
			if err != nil {
				return err
			}
			endpoint, err := clientCfg.TokenKeysURL(selected)
			if err != nil {
				return err
			}

			fetcher, err := clientCfg.CreateFetcher(cfg.Logger(clientCfg))
			if err != nil {
				return err
			}
			ctx := correlation.WithCorrelationID(cmd.Context(), correlation.NewID())
			set, err := fetcher.Fetch(ctx, endpoint)
			if err != nil {
				return err
			}
			return printer(cmd, cfg).PrintKeyList(endpoint, set.Keys())
		},
	}

	var (
		lookupAlg string
		lookupKID string
	)
	lookupCmd := &cobra.Command{
		Use:   "lookup [url]",
		Short: "Resolve the key for an algorithm and key id",
		Long: `Resolve a key the way token verification does. An empty --kid
resolves to the verification key of the binding.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := jwt.ParseAlgorithm(lookupAlg)
			if err != nil {
				return err
			}

			clientCfg, selected, err := loadEndpointConfig(cfg, args)
			if err != nil {
				return err
			}
			cache, err := clientCfg.CreateCache(selected, cfg.Logger(clientCfg))
			if err != nil {
				return err
			}
			defer cache.Close()

			ctx := correlation.WithCorrelationID(cmd.Context(), correlation.NewID())
			key, err := cache.ResolveKey(ctx, alg, lookupKID)
			if err != nil {
				return err
			}
			return printer(cmd, cfg).PrintKey(key)
		},
	}
	lookupCmd.Flags().StringVar(&lookupAlg, "alg", string(jwt.RS256), "signature algorithm")
	lookupCmd.Flags().StringVar(&lookupKID, "kid", "", "key id")

	checkCmd := &cobra.Command{
		Use:   "check [url]",
		Short: "Report whether token keys can be served",
		Long: `Refresh the token keys once and report the readiness of the key cache.
Fails when no key, including the verification key of the binding, is
available.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCfg, selected, err := loadEndpointConfig(cfg, args)
			if err != nil {
				return err
			}
			logger := cfg.Logger(clientCfg)
			cache, err := clientCfg.CreateCache(selected, logger)
			if err != nil {
				return err
			}
			defer cache.Close()

			ctx := correlation.WithCorrelationID(cmd.Context(), correlation.NewID())
			if err := cache.Refresh(ctx); err != nil {
				logger.Warn("token keys refresh failed", "error", err.Error())
			}

			checker := health.NewChecker()
			checker.RegisterCheck("jwks", cache.Check)
			results := checker.Ready(ctx)
			if err := printer(cmd, cfg).PrintHealth(results); err != nil {
				return err
			}
			if health.AggregateStatus(results) == health.StatusUnhealthy {
				return ErrUnhealthy
			}
			return nil
		},
	}

	jwksCmd.AddCommand(fetchCmd, lookupCmd, checkCmd)
	return jwksCmd
}

// loadEndpointConfig loads the configuration. An explicit url replaces the
// configured one and no binding is needed; otherwise the selected binding
// is returned as well.
func loadEndpointConfig(cfg *Config, args []string) (*config.Config, *binding.Configuration, error) {
	clientCfg, err := cfg.Load()
	if err != nil {
		return nil, nil, err
	}
	if len(args) > 0 {
		clientCfg.JWKS.URL = args[0]
		return clientCfg, nil, nil
	}
	if clientCfg.JWKS.URL != "" {
		return clientCfg, nil, nil
	}
	selected, err := clientCfg.SelectBinding()
	if err != nil {
		return nil, nil, err
	}
	return clientCfg, selected, nil
}
