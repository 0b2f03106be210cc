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

package binding

import (
	"fmt"
	"maps"
	"slices"
)

// Configuration is one service binding: the credentials an application
// received for a single service instance. It is immutable once parsed.
type Configuration struct {
	service      ServiceType
	plan         Plan
	name         string
	label        string
	instanceName string
	tags         []string
	credentials  map[string]string
}

// NewConfiguration creates a Configuration from already normalized values.
// The credentials map is copied.
func NewConfiguration(service ServiceType, plan Plan, name string, credentials map[string]string) *Configuration {
	return &Configuration{
		service:     service,
		plan:        plan,
		name:        name,
		credentials: maps.Clone(credentials),
	}
}

// Service returns the service type the binding belongs to.
func (c *Configuration) Service() ServiceType {
	return c.service
}

// Plan returns the service plan of the binding.
func (c *Configuration) Plan() Plan {
	return c.plan
}

// Name returns the binding name, falling back to the instance name when
// the descriptor carries no explicit name.
func (c *Configuration) Name() string {
	if c.name != "" {
		return c.name
	}
	return c.instanceName
}

// Label returns the service label of the binding.
func (c *Configuration) Label() string {
	return c.label
}

// InstanceName returns the service instance name.
func (c *Configuration) InstanceName() string {
	return c.instanceName
}

// Tags returns a copy of the binding tags.
func (c *Configuration) Tags() []string {
	return slices.Clone(c.tags)
}

// Property returns a named credential property.
func (c *Configuration) Property(name string) (string, bool) {
	v, ok := c.credentials[name]
	return v, ok
}

// HasProperty reports whether the credentials contain the named property.
func (c *Configuration) HasProperty(name string) bool {
	_, ok := c.credentials[name]
	return ok
}

// Properties returns a copy of all credential properties.
func (c *Configuration) Properties() map[string]string {
	return maps.Clone(c.credentials)
}

// ClientID returns the OAuth client id of the binding.
func (c *Configuration) ClientID() string {
	return c.credentials[PropertyClientID]
}

// ClientSecret returns the OAuth client secret of the binding.
func (c *Configuration) ClientSecret() string {
	return c.credentials[PropertyClientSecret]
}

// URL returns the base URL of the identity service tenant.
func (c *Configuration) URL() string {
	return c.credentials[PropertyURL]
}

// UAADomain returns the domain tokens of this binding are issued under.
func (c *Configuration) UAADomain() string {
	return c.credentials[PropertyUAADomain]
}

// XSAppName returns the application id used to prefix global scopes.
func (c *Configuration) XSAppName() string {
	return c.credentials[PropertyXSAppName]
}

// VerificationKey returns the PEM encoded fallback verification key, if bound.
func (c *Configuration) VerificationKey() string {
	return c.credentials[PropertyVerificationKey]
}

// String returns a short description without secrets.
func (c *Configuration) String() string {
	return fmt.Sprintf("Configuration{service=%s, plan=%s, name=%s, clientid=%s}",
		c.service, c.plan, c.Name(), c.ClientID())
}
