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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree
func NewRootCommand() *cobra.Command {
	cfg := NewConfig()

	rootCmd := &cobra.Command{
		Use:   "xsuaa",
		Short: "go-xsuaa CLI - XSUAA binding and token inspection tool",
		Long: `go-xsuaa CLI inspects the XSUAA service bindings of an application,
decodes and verifies access tokens and queries token keys endpoints.

Bindings are read from the file given by --binding-file or from the
VCAP_SERVICES environment variable. Every flag can also be set through an
XSUAA_ prefixed environment variable, e.g. XSUAA_JWKS_URL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file")
	flags.StringP("output", "o", "text", "output format (text, json, table)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.String("binding-file", "", "binding descriptor file (default is $VCAP_SERVICES)")
	flags.String("jwks-url", "", "token keys endpoint (default is <binding url>/token_keys)")

	for key, flag := range map[string]string{
		ConfigFileKey:  "config",
		OutputKey:      "output",
		VerboseKey:     "verbose",
		LogLevelKey:    "log-level",
		LogFormatKey:   "log-format",
		BindingFileKey: "binding-file",
		JWKSURLKey:     "jwks-url",
	} {
		_ = cfg.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(newVersionCommand(cfg))
	rootCmd.AddCommand(newBindingCommand(cfg))
	rootCmd.AddCommand(newTokenCommand(cfg))
	rootCmd.AddCommand(newJWKSCommand(cfg))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		format, _ := rootCmd.PersistentFlags().GetString("output")
		printer := NewPrinter(format, rootCmd.ErrOrStderr())
		_ = printer.PrintError(err) // Error printing to stderr is best-effort
	}
	return err
}

// printer returns a printer for the command output
func printer(cmd *cobra.Command, cfg *Config) *Printer {
	return NewPrinter(cfg.OutputFormat(), cmd.OutOrStdout())
}

// readTokenArg returns the token given as argument, or read from stdin
// when the argument is missing or "-".
func readTokenArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read token from stdin: %w", err)
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", fmt.Errorf("no token given")
	}
	return tok, nil
}
