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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyXsuaaBindings = "{xsuaa: []}"

func loadDescriptor(t *testing.T, name string) *Bindings {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	b, err := Parse(string(data))
	require.NoError(t, err)
	return b
}

func TestParse_MultipleBindings(t *testing.T) {
	b := loadDescriptor(t, "vcap_multiple_bindings.json")

	configs := b.LoadAll(ServiceXSUAA)
	require.Len(t, configs, 2)

	assert.Equal(t, PlanBroker, configs[0].Plan())
	assert.Equal(t, "xsuaa-broker", configs[0].Name())
	assert.Equal(t, PlanApplication, configs[1].Plan())
	assert.Equal(t, "sb-java-hello-world!t1785", configs[1].ClientID())
	assert.Equal(t, "application-secret", configs[1].ClientSecret())
	assert.Equal(t, "java-hello-world!t1785", configs[1].XSAppName())
	assert.Equal(t, "authentication.sap.hana.ondemand.com", configs[1].UAADomain())
	assert.Equal(t, "https://paas.authentication.sap.hana.ondemand.com", configs[1].URL())
	assert.Equal(t, []string{"xsuaa"}, configs[1].Tags())
	assert.Equal(t, ServiceXSUAA, configs[1].Service())
}

func TestParse_UnknownServiceKeysAreIgnored(t *testing.T) {
	b := loadDescriptor(t, "vcap_multiple_bindings.json")

	assert.Equal(t, []ServiceType{ServiceXSUAA}, b.Services())
}

func TestParse_ScalarCredentialsAreStringified(t *testing.T) {
	b := loadDescriptor(t, "vcap_single_binding.json")

	c := b.Load(ServiceXSUAA)
	require.NotNil(t, c)

	timeout, ok := c.Property("timeout")
	assert.True(t, ok)
	assert.Equal(t, "30", timeout)

	enabled, ok := c.Property("enabled")
	assert.True(t, ok)
	assert.Equal(t, "true", enabled)

	_, ok = c.Property("missing")
	assert.False(t, ok)
	assert.False(t, c.HasProperty("missing"))
}

func TestParse_RelaxedSyntax(t *testing.T) {
	b, err := Parse(emptyXsuaaBindings)
	require.NoError(t, err)

	assert.Empty(t, b.LoadAll(ServiceXSUAA))
	assert.Nil(t, b.Load(ServiceXSUAA))
}

func TestParse_YAMLDocument(t *testing.T) {
	doc := `
identity:
  - name: ias
    plan: application
    credentials:
      clientid: ias-client
      domain: accounts.ondemand.com
`
	b, err := Parse(doc)
	require.NoError(t, err)

	c := b.Load(ServiceIAS)
	require.NotNil(t, c)
	assert.Equal(t, "ias-client", c.ClientID())
	v, _ := c.Property(PropertyDomain)
	assert.Equal(t, "accounts.ondemand.com", v)
}

func TestParse_MalformedEntriesAreSkipped(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"service value is a string", `{"xsuaa": "not-a-list"}`},
		{"service value is an object", `{"xsuaa": {"plan": "application"}}`},
		{"entries are scalars", `{"xsuaa": [1, "two", null]}`},
		{"blank document", "   "},
		{"null document", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Parse(tt.doc)
			require.NoError(t, err)
			assert.Empty(t, b.LoadAll(ServiceXSUAA))
			assert.Nil(t, b.Load(ServiceXSUAA))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unterminated object", `{"xsuaa": [`},
		{"root is a list", `[{"plan": "application"}]`},
		{"root is a scalar", `just some text`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Parse(tt.doc)
			assert.Nil(t, b)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestFromEnvironment(t *testing.T) {
	t.Setenv(EnvVCAPServices, `{"xsuaa": [{"plan": "broker", "credentials": {"clientid": "env-client"}}]}`)

	b, err := FromEnvironment()
	require.NoError(t, err)

	c := b.Load(ServiceXSUAA)
	require.NotNil(t, c)
	assert.Equal(t, "env-client", c.ClientID())
	assert.Equal(t, PlanBroker, c.Plan())
}

func TestFromEnvironment_Unset(t *testing.T) {
	t.Setenv(EnvVCAPServices, "")

	b, err := FromEnvironment()
	require.NoError(t, err)
	assert.Empty(t, b.LoadAll(ServiceXSUAA))
}

func TestParseServiceType(t *testing.T) {
	assert.Equal(t, ServiceXSUAA, ParseServiceType("xsuaa"))
	assert.Equal(t, ServiceXSUAA, ParseServiceType("XSUAA"))
	assert.Equal(t, ServiceIAS, ParseServiceType("identity"))
	assert.Equal(t, ServiceIAS, ParseServiceType("iasb"))
	assert.Equal(t, ServiceUnknown, ParseServiceType("user-provided"))
	assert.Equal(t, "XSUAA", ServiceXSUAA.String())
	assert.Equal(t, "UNKNOWN", ServiceUnknown.String())
}

func TestParsePlan(t *testing.T) {
	assert.Equal(t, PlanApplication, ParsePlan("APPLICATION"))
	assert.Equal(t, PlanBroker, ParsePlan("broker"))
	assert.Equal(t, PlanAPIAccess, ParsePlan(" apiaccess "))
	assert.Equal(t, PlanUnknown, ParsePlan("lite"))
	assert.Equal(t, "APPLICATION", PlanApplication.String())
}
