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

import "fmt"

// Algorithm represents supported JWT signing algorithms
type Algorithm string

const (
	RS256 Algorithm = "RS256" // RSASSA-PKCS1-v1_5 using SHA-256
	RS384 Algorithm = "RS384" // RSASSA-PKCS1-v1_5 using SHA-384
	RS512 Algorithm = "RS512" // RSASSA-PKCS1-v1_5 using SHA-512
	ES256 Algorithm = "ES256" // ECDSA using P-256 and SHA-256
	ES384 Algorithm = "ES384" // ECDSA using P-384 and SHA-384
	ES512 Algorithm = "ES512" // ECDSA using P-521 and SHA-512
	EdDSA Algorithm = "EdDSA" // EdDSA signature algorithms
	PS256 Algorithm = "PS256" // RSASSA-PSS using SHA-256
	PS384 Algorithm = "PS384" // RSASSA-PSS using SHA-384
	PS512 Algorithm = "PS512" // RSASSA-PSS using SHA-512
)

// ParseAlgorithm converts a JOSE alg name to an Algorithm. Names are case
// sensitive (RFC 7515, section 4.1.1), so "rs256" is rejected. Symmetric
// algorithms and "none" are rejected as well.
func ParseAlgorithm(alg string) (Algorithm, error) {
	switch a := Algorithm(alg); a {
	case RS256, RS384, RS512, ES256, ES384, ES512, PS256, PS384, PS512, EdDSA:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

// IsRSA returns true for the RSASSA-PKCS1-v1_5 and RSASSA-PSS families.
func (a Algorithm) IsRSA() bool {
	switch a {
	case RS256, RS384, RS512, PS256, PS384, PS512:
		return true
	}
	return false
}

// IsECDSA returns true for the ECDSA family.
func (a Algorithm) IsECDSA() bool {
	switch a {
	case ES256, ES384, ES512:
		return true
	}
	return false
}

// String returns the JOSE name of the algorithm.
func (a Algorithm) String() string {
	return string(a)
}
