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

import "strings"

// ServiceType identifies the kind of identity service a binding belongs to.
type ServiceType string

const (
	ServiceXSUAA   ServiceType = "xsuaa"
	ServiceIAS     ServiceType = "identity"
	ServiceUnknown ServiceType = ""
)

// serviceAliases maps descriptor keys to service types. Unknown keys are ignored by Parse.
var serviceAliases = map[string]ServiceType{
	"xsuaa":    ServiceXSUAA,
	"identity": ServiceIAS,
	"iasb":     ServiceIAS,
}

// ParseServiceType converts a descriptor key to a ServiceType.
// Returns ServiceUnknown for names outside the known set.
func ParseServiceType(name string) ServiceType {
	if st, ok := serviceAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return st
	}
	return ServiceUnknown
}

// String returns the upper case service name used in logs and output.
func (s ServiceType) String() string {
	switch s {
	case ServiceXSUAA:
		return "XSUAA"
	case ServiceIAS:
		return "IAS"
	default:
		return "UNKNOWN"
	}
}

// Plan is the service plan a binding was created from.
type Plan string

const (
	PlanDefault     Plan = "default"
	PlanApplication Plan = "application"
	PlanBroker      Plan = "broker"
	PlanSpace       Plan = "space"
	PlanAPIAccess   Plan = "apiaccess"
	PlanSystem      Plan = "system"
	PlanUnknown     Plan = ""
)

// ParsePlan converts a plan name to a Plan, ignoring case.
// Returns PlanUnknown for names outside the known set.
func ParsePlan(name string) Plan {
	switch p := Plan(strings.ToLower(strings.TrimSpace(name))); p {
	case PlanDefault, PlanApplication, PlanBroker, PlanSpace, PlanAPIAccess, PlanSystem:
		return p
	default:
		return PlanUnknown
	}
}

// String returns the upper case plan name.
func (p Plan) String() string {
	if p == PlanUnknown {
		return "UNKNOWN"
	}
	return strings.ToUpper(string(p))
}

// Credential property names found in XSUAA and IAS bindings
const (
	PropertyClientID        = "clientid"
	PropertyClientSecret    = "clientsecret"
	PropertyURL             = "url"
	PropertyUAADomain       = "uaadomain"
	PropertyXSAppName       = "xsappname"
	PropertyVerificationKey = "verificationkey"
	PropertyIdentityZone    = "identityzone"
	PropertyTenantID        = "tenantid"
	PropertyDomain          = "domain"
)
