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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvVCAPServices is the environment variable holding the binding descriptor.
const EnvVCAPServices = "VCAP_SERVICES"

var (
	// ErrParse indicates the binding descriptor is not well-formed structured data.
	ErrParse = errors.New("binding: descriptor cannot be parsed")
)

// Bindings holds every recognized binding of a descriptor, grouped by
// service type in document order. It is never mutated after Parse returns
// and may be shared between goroutines.
type Bindings struct {
	byService map[ServiceType][]*Configuration
}

// Parse decodes a binding descriptor whose top-level keys are service
// names and whose values are lists of binding objects:
//
//	{"xsuaa": [{"name": "uaa", "plan": "application", "credentials": {...}}]}
//
// Strict JSON is tried first. Documents that are not JSON are decoded as
// YAML, which also accepts relaxed flow syntax such as {xsuaa: []}.
// Unknown service keys and malformed entries are skipped. Only a document
// that cannot be decoded at all, or whose root is not an object, yields
// ErrParse. A blank document is an empty descriptor.
func Parse(doc string) (*Bindings, error) {
	b := &Bindings{byService: make(map[ServiceType][]*Configuration)}
	if strings.TrimSpace(doc) == "" {
		return b, nil
	}

	root, err := decodeDocument(doc)
	if err != nil {
		return nil, err
	}

	for _, key := range documentKeyOrder(doc, root) {
		value := root[key]
		service := ParseServiceType(key)
		if service == ServiceUnknown {
			continue
		}
		entries, ok := value.([]any)
		if !ok {
			continue
		}
		for _, entry := range entries {
			obj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			b.byService[service] = append(b.byService[service], newConfiguration(service, obj))
		}
	}
	return b, nil
}

// FromEnvironment parses the descriptor found in VCAP_SERVICES.
// An unset variable yields an empty descriptor.
func FromEnvironment() (*Bindings, error) {
	return Parse(os.Getenv(EnvVCAPServices))
}

// decodeDocument returns the top-level object of the descriptor.
func decodeDocument(doc string) (map[string]any, error) {
	var root any
	if jsonErr := json.Unmarshal([]byte(doc), &root); jsonErr != nil {
		if yamlErr := yaml.Unmarshal([]byte(doc), &root); yamlErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, jsonErr)
		}
	}
	switch v := root.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return map[string]any{}, nil
	default:
		return nil, fmt.Errorf("%w: root must be an object, got %T", ErrParse, root)
	}
}

// documentKeyOrder returns the top-level keys of root in the order they
// appear in doc, so aliases of one service append their bindings in
// document order. Keys that cannot be located follow in sorted order.
func documentKeyOrder(doc string, root map[string]any) []string {
	seen := make(map[string]bool, len(root))
	ordered := make([]string, 0, len(root))

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(doc), &node); err == nil &&
		len(node.Content) == 1 && node.Content[0].Kind == yaml.MappingNode {
		mapping := node.Content[0].Content
		for i := 0; i+1 < len(mapping); i += 2 {
			key := mapping[i].Value
			if _, ok := root[key]; ok && !seen[key] {
				seen[key] = true
				ordered = append(ordered, key)
			}
		}
	}

	rest := make([]string, 0, len(root)-len(ordered))
	for key := range root {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func newConfiguration(service ServiceType, obj map[string]any) *Configuration {
	c := &Configuration{
		service:      service,
		plan:         ParsePlan(stringValue(obj["plan"])),
		name:         firstNonEmpty(stringValue(obj["binding_name"]), stringValue(obj["name"])),
		label:        stringValue(obj["label"]),
		instanceName: stringValue(obj["instance_name"]),
		credentials:  make(map[string]string),
	}
	if tags, ok := obj["tags"].([]any); ok {
		for _, t := range tags {
			if s := stringValue(t); s != "" {
				c.tags = append(c.tags, s)
			}
		}
	}
	if creds, ok := obj["credentials"].(map[string]any); ok {
		for k, v := range creds {
			if s, ok := scalarString(v); ok {
				c.credentials[k] = s
			}
		}
	}
	return c
}

// scalarString renders scalar credential values as strings. Nested
// objects and lists are not credential properties and are skipped.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
