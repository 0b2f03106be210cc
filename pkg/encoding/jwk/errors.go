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

import "errors"

var (
	// ErrKeyConstruction indicates a key entry cannot produce a usable public
	// key: the algorithm is unsupported, the key material is malformed, or
	// the key type does not match the algorithm. It is distinct from a key
	// not being present in a set.
	ErrKeyConstruction = errors.New("jwk: key construction failed")

	// ErrInvalidKeySet indicates a JWK Set document is not a JSON object with
	// a "keys" array.
	ErrInvalidKeySet = errors.New("jwk: invalid key set document")
)
