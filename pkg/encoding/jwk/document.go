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

package jwk

import (
	"encoding/json"
	"fmt"
)

// UseSignature is the "use" member value of signature verification keys.
const UseSignature = "sig"

type setDocument struct {
	Keys []json.RawMessage `json:"keys"`
}

// ParseSet deserializes an RFC 7517 JWK Set document such as the response of
// an authorization server's token_keys endpoint.
//
// Entries that cannot be indexed (unknown kty, no derivable algorithm) and
// entries intended for encryption are skipped, as RFC 7517 section 5
// recommends. The first entry wins when two share an algorithm and key id.
// Key material is not validated here; see Key.PublicKey.
func ParseSet(data []byte) (*KeySet, error) {
	var doc setDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKeySet, err)
	}
	if doc.Keys == nil {
		return nil, fmt.Errorf("%w: missing keys array", ErrInvalidKeySet)
	}

	set := NewKeySet()
	for _, raw := range doc.Keys {
		key, err := FromJSON(raw)
		if err != nil {
			continue
		}
		if key.Use() != "" && key.Use() != UseSignature {
			continue
		}
		set.Put(key)
	}
	return set, nil
}
