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

package verification

import "errors"

var (
	// ErrSignatureVerification indicates the token signature does not match
	// the resolved key.
	ErrSignatureVerification = errors.New("verification: signature verification failed")

	// ErrInvalidSignatureAlgorithm indicates the token header names an
	// algorithm that is unsupported or not permitted by the verifier.
	ErrInvalidSignatureAlgorithm = errors.New("verification: invalid signature algorithm")

	// ErrInvalidClaims indicates a registered claim check failed. The error
	// also wraps the golang-jwt cause, such as jwt.ErrTokenExpired.
	ErrInvalidClaims = errors.New("verification: invalid claims")

	// ErrMalformedToken indicates the input is not a compact JWT.
	ErrMalformedToken = errors.New("verification: malformed token")
)
