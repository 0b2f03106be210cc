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

package token

import "strings"

// ScopeConverter maps scopes between their global form, as found in the
// scope claim, and the local form an application declares.
type ScopeConverter interface {
	// ToLocal converts a global scope to its local form.
	ToLocal(scope string) string
	// ToGlobal converts a local scope to its global form.
	ToGlobal(scope string) string
}

// XSUAAScopeConverter converts between local scopes and XSUAA global scopes
// of the form <appId>.<scope>.
type XSUAAScopeConverter struct {
	appID string
}

// NewXSUAAScopeConverter creates a converter for the given xsappname.
func NewXSUAAScopeConverter(appID string) *XSUAAScopeConverter {
	return &XSUAAScopeConverter{appID: appID}
}

// AppID returns the application id used as scope prefix.
func (c *XSUAAScopeConverter) AppID() string {
	return c.appID
}

// ToLocal strips the "<appId>." prefix. Scopes of other applications and
// unprefixed scopes such as openid are returned unchanged.
func (c *XSUAAScopeConverter) ToLocal(scope string) string {
	if c.appID == "" {
		return scope
	}
	return strings.TrimPrefix(scope, c.appID+".")
}

// ToGlobal prefixes the scope with "<appId>.".
func (c *XSUAAScopeConverter) ToGlobal(scope string) string {
	if c.appID == "" {
		return scope
	}
	return c.appID + "." + scope
}
