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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXSUAAScopeConverter(t *testing.T) {
	c := NewXSUAAScopeConverter("app1")

	assert.Equal(t, "app1", c.AppID())
	assert.Equal(t, "Read", c.ToLocal("app1.Read"))
	assert.Equal(t, "openid", c.ToLocal("openid"))
	assert.Equal(t, "app2.Read", c.ToLocal("app2.Read"))
	assert.Equal(t, "app10.Read", c.ToLocal("app10.Read"), "prefix must end at the dot")
	assert.Equal(t, "app1.Read", c.ToGlobal("Read"))
	assert.Equal(t, "Read", c.ToLocal(c.ToGlobal("Read")))
}

func TestXSUAAScopeConverter_EmptyAppID(t *testing.T) {
	c := NewXSUAAScopeConverter("")

	assert.Equal(t, ".Read", c.ToLocal(".Read"))
	assert.Equal(t, "Read", c.ToGlobal("Read"))
}
