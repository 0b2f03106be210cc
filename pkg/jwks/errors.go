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

package jwks

import "errors"

var (
	// ErrKeyNotFound is returned when no key matches the algorithm and key
	// id of a token, even after refreshing the key set.
	ErrKeyNotFound = errors.New("jwks: key not found")

	// ErrFetch is returned when the token keys document could not be
	// downloaded or parsed.
	ErrFetch = errors.New("jwks: fetch failed")
)
