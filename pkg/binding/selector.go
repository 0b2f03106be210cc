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

import "slices"

// LoadAll returns every binding of the given service type in document
// order. The result is empty, never nil-with-error, when none exist.
func (b *Bindings) LoadAll(service ServiceType) []*Configuration {
	if b == nil {
		return []*Configuration{}
	}
	return slices.Clone(b.byService[service])
}

// Load returns the single binding an application should trust for the
// given service type, or nil if there is none.
//
// With several bindings the one on the application plan wins. When no
// binding uses that plan the first one in document order is returned.
func (b *Bindings) Load(service ServiceType) *Configuration {
	if b == nil {
		return nil
	}
	configs := b.byService[service]
	switch len(configs) {
	case 0:
		return nil
	case 1:
		return configs[0]
	}
	for _, c := range configs {
		if c.plan == PlanApplication {
			return c
		}
	}
	return configs[0]
}

// Services returns the service types present in the descriptor.
func (b *Bindings) Services() []ServiceType {
	if b == nil {
		return nil
	}
	services := make([]ServiceType, 0, len(b.byService))
	for s := range b.byService {
		services = append(services, s)
	}
	slices.Sort(services)
	return services
}
