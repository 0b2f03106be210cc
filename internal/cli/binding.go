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

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-xsuaa/internal/config"
	"github.com/jeremyhahn/go-xsuaa/pkg/binding"
)

func newBindingCommand(cfg *Config) *cobra.Command {
	bindingCmd := &cobra.Command{
		Use:   "binding",
		Short: "Inspect service bindings",
		Long:  `Inspect the XSUAA and IAS service bindings of the application`,
	}

	var listService string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List bindings in document order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCfg, err := cfg.Load()
			if err != nil {
				return err
			}
			bindings, err := clientCfg.Binding.LoadBindings()
			if err != nil {
				return err
			}

			var list []*binding.Configuration
			if listService != "" {
				service, err := parseService(listService)
				if err != nil {
					return err
				}
				list = bindings.LoadAll(service)
			} else {
				for _, service := range bindings.Services() {
					list = append(list, bindings.LoadAll(service)...)
				}
			}
			return printer(cmd, cfg).PrintBindingList(list)
		},
	}
	listCmd.Flags().StringVar(&listService, "service", "", "only list bindings of this service (xsuaa, identity)")

	var (
		showService string
		showName    string
		showSecrets bool
	)
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the binding the application trusts",
		Long: `Show the binding selected for a service. With several bindings the one
on the application plan wins, otherwise the first in document order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCfg, err := cfg.Load()
			if err != nil {
				return err
			}
			if showService != "" {
				clientCfg.Binding.Service = showService
			}

			selected, err := selectBinding(clientCfg, showName)
			if err != nil {
				return err
			}
			return printer(cmd, cfg).PrintBinding(selected, showSecrets)
		},
	}
	showCmd.Flags().StringVar(&showService, "service", "", "service type (default from config, xsuaa)")
	showCmd.Flags().StringVar(&showName, "name", "", "show the binding with this name instead of the selected one")
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print secret credentials in clear text")

	bindingCmd.AddCommand(listCmd, showCmd)
	return bindingCmd
}

func parseService(name string) (binding.ServiceType, error) {
	service := binding.ParseServiceType(name)
	if service == binding.ServiceUnknown {
		return service, fmt.Errorf("unknown service: %q (must be xsuaa or identity)", name)
	}
	return service, nil
}

// selectBinding returns the named binding, or the selected one when name
// is empty.
func selectBinding(cfg *config.Config, name string) (*binding.Configuration, error) {
	if name == "" {
		return cfg.SelectBinding()
	}

	service, err := parseService(cfg.Binding.Service)
	if err != nil {
		return nil, err
	}
	bindings, err := cfg.Binding.LoadBindings()
	if err != nil {
		return nil, err
	}
	for _, b := range bindings.LoadAll(service) {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %s named %q", config.ErrNoBinding, service, name)
}
