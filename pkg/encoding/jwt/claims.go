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

package jwt

import (
	"encoding/json"
	"math"
)

// Claims is a decoded JSON object from a token header or payload. Values
// keep their JSON shape: string, json.Number, bool, []any, map[string]any
// or nil. The typed accessors check the shape and report a mismatch as
// absent instead of failing.
type Claims map[string]any

// Has reports whether the claim is present, including explicit nulls.
func (c Claims) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Get returns the raw claim value.
func (c Claims) Get(name string) (any, bool) {
	v, ok := c[name]
	return v, ok
}

// String returns a string claim.
func (c Claims) String(name string) (string, bool) {
	s, ok := c[name].(string)
	return s, ok
}

// StringList returns a claim as a list of strings. A single string value is
// returned as a one element list. Non-string list members are skipped.
// Returns nil when the claim is absent or has another shape.
func (c Claims) StringList(name string) []string {
	switch v := c[name].(type) {
	case string:
		return []string{v}
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

// Int64 returns an integral numeric claim such as exp or iat.
func (c Claims) Int64(name string) (int64, bool) {
	n, ok := c[name].(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	if err != nil || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// Float64 returns a numeric claim.
func (c Claims) Float64(name string) (float64, bool) {
	n, ok := c[name].(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	return f, err == nil
}

// Bool returns a boolean claim.
func (c Claims) Bool(name string) (bool, bool) {
	b, ok := c[name].(bool)
	return b, ok
}

// Object returns a nested JSON object claim.
func (c Claims) Object(name string) (Claims, bool) {
	m, ok := c[name].(map[string]any)
	if !ok {
		return nil, false
	}
	return Claims(m), true
}

// Names returns the claim names in no particular order.
func (c Claims) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	return names
}
