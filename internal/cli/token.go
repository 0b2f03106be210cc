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
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-xsuaa/pkg/correlation"
	"github.com/jeremyhahn/go-xsuaa/pkg/token"
)

func newTokenCommand(cfg *Config) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Decode and verify access tokens",
	}

	var decodeAppID string
	decodeCmd := &cobra.Command{
		Use:   "decode [token|-]",
		Short: "Decode a token without verifying it",
		Long: `Decode a token and print its header, scopes and principal. The
signature is not checked; the output must not be trusted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readTokenArg(cmd, args)
			if err != nil {
				return err
			}
			tok, err := token.New(token.TrimBearer(raw))
			if err != nil {
				return err
			}
			if decodeAppID != "" {
				tok = tok.WithScopeConverter(token.NewXSUAAScopeConverter(decodeAppID))
			}
			return printer(cmd, cfg).PrintToken(tok, false)
		},
	}
	decodeCmd.Flags().StringVar(&decodeAppID, "app-id", "", "xsappname used to derive local scopes")

	var verifyAppID string
	verifyCmd := &cobra.Command{
		Use:   "verify [token|-]",
		Short: "Verify a token against the keys of the selected binding",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readTokenArg(cmd, args)
			if err != nil {
				return err
			}

			clientCfg, err := cfg.Load()
			if err != nil {
				return err
			}
			if verifyAppID != "" {
				clientCfg.Token.AppID = verifyAppID
			}

			auth, err := clientCfg.CreateAuthenticator(cfg.Logger(clientCfg))
			if err != nil {
				return err
			}
			defer auth.Close()

			ctx := correlation.WithCorrelationID(cmd.Context(), correlation.NewID())
			tok, err := auth.Verify(ctx, raw)
			if err != nil {
				return err
			}
			return printer(cmd, cfg).PrintToken(tok, true)
		},
	}
	verifyCmd.Flags().StringVar(&verifyAppID, "app-id", "", "xsappname used to derive local scopes (default from binding)")

	tokenCmd.AddCommand(decodeCmd, verifyCmd)
	return tokenCmd
}
