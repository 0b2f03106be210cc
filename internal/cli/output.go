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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jeremyhahn/go-xsuaa/pkg/binding"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-xsuaa/pkg/health"
	"github.com/jeremyhahn/go-xsuaa/pkg/token"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// maskedValue replaces secret credential values in output.
const maskedValue = "********"

// secretProperties are never printed in clear text
var secretProperties = map[string]bool{
	binding.PropertyClientSecret: true,
	"key":                        true,
	"certificate":                true,
	"apiurl_secret":              true,
}

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintBindingList prints a list of bindings
func (p *Printer) PrintBindingList(bindings []*binding.Configuration) error {
	switch p.format {
	case OutputFormatJSON:
		list := make([]map[string]any, len(bindings))
		for i, b := range bindings {
			list[i] = bindingSummary(b)
		}
		return p.printJSON(map[string]any{
			"bindings": list,
		})
	case OutputFormatTable:
		if len(bindings) == 0 {
			fmt.Fprintln(p.writer, "No bindings found")
			return nil
		}
		fmt.Fprintf(p.writer, "%-8s %-25s %-12s %-30s %-20s\n", "SERVICE", "NAME", "PLAN", "CLIENT ID", "XSAPPNAME")
		fmt.Fprintln(p.writer, strings.Repeat("-", 99))
		for _, b := range bindings {
			fmt.Fprintf(p.writer, "%-8s %-25s %-12s %-30s %-20s\n",
				b.Service(), b.Name(), b.Plan(), b.ClientID(), b.XSAppName())
		}
		return nil
	case OutputFormatText:
		if len(bindings) == 0 {
			fmt.Fprintln(p.writer, "No bindings found")
			return nil
		}
		fmt.Fprintln(p.writer, "Bindings:")
		for _, b := range bindings {
			fmt.Fprintf(p.writer, "  - %s (%s, %s)\n", b.Name(), b.Service(), b.Plan())
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintBinding prints a binding with its credentials. Secrets are masked
// unless showSecrets is set.
func (p *Printer) PrintBinding(b *binding.Configuration, showSecrets bool) error {
	credentials := b.Properties()
	if !showSecrets {
		for name := range credentials {
			if secretProperties[name] {
				credentials[name] = maskedValue
			}
		}
	}

	switch p.format {
	case OutputFormatJSON:
		info := bindingSummary(b)
		info["label"] = b.Label()
		info["instance_name"] = b.InstanceName()
		info["tags"] = b.Tags()
		info["credentials"] = credentials
		return p.printJSON(info)
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintf(p.writer, "Service:       %s\n", b.Service())
		fmt.Fprintf(p.writer, "Plan:          %s\n", b.Plan())
		fmt.Fprintf(p.writer, "Name:          %s\n", b.Name())
		if b.Label() != "" {
			fmt.Fprintf(p.writer, "Label:         %s\n", b.Label())
		}
		if b.InstanceName() != "" {
			fmt.Fprintf(p.writer, "Instance Name: %s\n", b.InstanceName())
		}
		if tags := b.Tags(); len(tags) > 0 {
			fmt.Fprintf(p.writer, "Tags:          %s\n", strings.Join(tags, ", "))
		}
		fmt.Fprintln(p.writer, "Credentials:")
		for _, name := range sortedKeys(credentials) {
			value := credentials[name]
			if strings.Contains(value, "\n") {
				value = strings.SplitN(value, "\n", 2)[0] + " ..."
			}
			fmt.Fprintf(p.writer, "  %-20s %s\n", name+":", value)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintToken prints the header, derived attributes and claims of a token
func (p *Printer) PrintToken(tok *token.Token, verified bool) error {
	info := tokenSummary(tok)
	info["verified"] = verified

	switch p.format {
	case OutputFormatJSON:
		info["header"] = tok.Header()
		info["claims"] = tok.Decoded().Payload()
		return p.printJSON(info)
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintf(p.writer, "Verified:     %t\n", verified)
		fmt.Fprintf(p.writer, "Algorithm:    %s\n", tok.Algorithm())
		fmt.Fprintf(p.writer, "Key ID:       %s\n", tok.KeyID())
		fmt.Fprintf(p.writer, "Grant Type:   %s\n", tok.GrantType())
		fmt.Fprintf(p.writer, "Client ID:    %s\n", tok.ClientID())
		if principal, ok := info["principal"].(string); ok {
			fmt.Fprintf(p.writer, "Principal:    %s\n", principal)
		}
		if iss := tok.Issuer(); iss != "" {
			fmt.Fprintf(p.writer, "Issuer:       %s\n", iss)
		}
		if aud := tok.Audiences(); len(aud) > 0 {
			fmt.Fprintf(p.writer, "Audiences:    %s\n", strings.Join(aud, ", "))
		}
		if zid := tok.ZoneID(); zid != "" {
			fmt.Fprintf(p.writer, "Zone ID:      %s\n", zid)
		}
		if exp, ok := tok.ExpiresAt(); ok {
			fmt.Fprintf(p.writer, "Expires At:   %s\n", exp.UTC().Format(time.RFC3339))
		}
		fmt.Fprintln(p.writer, "Scopes:")
		for _, s := range tok.Scopes() {
			fmt.Fprintf(p.writer, "  - %s\n", s)
		}
		if local := tok.LocalScopes(); local != nil {
			fmt.Fprintln(p.writer, "Local Scopes:")
			for _, s := range local {
				fmt.Fprintf(p.writer, "  - %s\n", s)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKeyList prints the keys of a token keys endpoint
func (p *Printer) PrintKeyList(endpoint string, keys []*jwk.Key) error {
	switch p.format {
	case OutputFormatJSON:
		list := make([]map[string]any, len(keys))
		for i, k := range keys {
			list[i] = keySummary(k)
		}
		return p.printJSON(map[string]any{
			"endpoint": endpoint,
			"keys":     list,
		})
	case OutputFormatTable:
		if len(keys) == 0 {
			fmt.Fprintln(p.writer, "No keys found")
			return nil
		}
		fmt.Fprintf(p.writer, "%-8s %-30s %-5s %-45s\n", "ALG", "KID", "KTY", "THUMBPRINT")
		fmt.Fprintln(p.writer, strings.Repeat("-", 91))
		for _, k := range keys {
			fmt.Fprintf(p.writer, "%-8s %-30s %-5s %-45s\n", k.Algorithm(), k.ID(), k.Type(), thumbprintOrError(k))
		}
		return nil
	case OutputFormatText:
		if len(keys) == 0 {
			fmt.Fprintln(p.writer, "No keys found")
			return nil
		}
		fmt.Fprintf(p.writer, "Keys (%s):\n", endpoint)
		for _, k := range keys {
			fmt.Fprintf(p.writer, "  - %s (%s, %s)\n", k.ID(), k.Algorithm(), k.Type())
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintKey prints a single resolved key
func (p *Printer) PrintKey(k *jwk.Key) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(keySummary(k))
	case OutputFormatTable, OutputFormatText:
		fmt.Fprintf(p.writer, "Key ID:     %s\n", k.ID())
		fmt.Fprintf(p.writer, "Algorithm:  %s\n", k.Algorithm())
		fmt.Fprintf(p.writer, "Key Type:   %s\n", k.Type())
		if k.Use() != "" {
			fmt.Fprintf(p.writer, "Use:        %s\n", k.Use())
		}
		fmt.Fprintf(p.writer, "Thumbprint: %s\n", thumbprintOrError(k))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintHealth prints health check results and their aggregated status
func (p *Printer) PrintHealth(results []health.CheckResult) error {
	status := health.AggregateStatus(results)

	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]any{
			"status": status,
			"checks": results,
		})
	case OutputFormatTable:
		fmt.Fprintf(p.writer, "%-45s %-10s %s\n", "CHECK", "STATUS", "MESSAGE")
		fmt.Fprintln(p.writer, strings.Repeat("-", 91))
		for _, r := range results {
			fmt.Fprintf(p.writer, "%-45s %-10s %s\n", r.Name, r.Status, r.Message)
		}
		return nil
	case OutputFormatText:
		fmt.Fprintf(p.writer, "Status: %s\n", status)
		for _, r := range results {
			fmt.Fprintf(p.writer, "  - %s: %s (%s)\n", r.Name, r.Status, r.Message)
			if r.Error != "" {
				fmt.Fprintf(p.writer, "    error: %s\n", r.Error)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %s\n", err.Error())
		return nil
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data any) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func bindingSummary(b *binding.Configuration) map[string]any {
	return map[string]any{
		"service":   string(b.Service()),
		"plan":      string(b.Plan()),
		"name":      b.Name(),
		"client_id": b.ClientID(),
		"url":       b.URL(),
		"xsappname": b.XSAppName(),
	}
}

func tokenSummary(tok *token.Token) map[string]any {
	info := map[string]any{
		"algorithm":  tok.Algorithm(),
		"key_id":     tok.KeyID(),
		"grant_type": tok.GrantType().String(),
		"client_id":  tok.ClientID(),
		"scopes":     tok.Scopes(),
	}
	if principal, err := tok.Principal(); err == nil {
		info["principal"] = principal.Name()
	}
	if local := tok.LocalScopes(); local != nil {
		info["local_scopes"] = local
	}
	if exp, ok := tok.ExpiresAt(); ok {
		info["expires_at"] = exp.UTC().Format(time.RFC3339)
	}
	return info
}

func keySummary(k *jwk.Key) map[string]any {
	info := map[string]any{
		"kid":        k.ID(),
		"alg":        string(k.Algorithm()),
		"kty":        string(k.Type()),
		"use":        k.Use(),
		"default":    k.IsDefault(),
		"thumbprint": thumbprintOrError(k),
	}
	if _, err := k.PublicKey(); err != nil {
		info["error"] = err.Error()
	}
	return info
}

func thumbprintOrError(k *jwk.Key) string {
	tp, err := k.Thumbprint()
	if err != nil {
		return "(unusable)"
	}
	return tp
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
