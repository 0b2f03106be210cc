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

import "errors"

var (
	// ErrInvalidTokenFormat indicates the compact token is empty, does not have
	// three segments, or a segment does not decode to a JSON object.
	ErrInvalidTokenFormat = errors.New("jwt: invalid token format")

	// ErrUnsupportedAlgorithm indicates the algorithm is not an asymmetric
	// JWS algorithm this library can verify.
	ErrUnsupportedAlgorithm = errors.New("jwt: unsupported algorithm")
)
