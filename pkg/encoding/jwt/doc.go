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

// Package jwt decodes compact serialized JSON Web Tokens without verifying them.
//
// Decode splits a token of the form header.payload.signature, base64url
// decodes the header and payload and parses each of them into a JSON object.
// The signature segment is kept as is. Nothing in this package performs
// cryptographic operations or network access; the decoded header is what a
// verifier uses to select the signing key.
//
// # Basic Usage
//
//	decoded, err := jwt.Decode(accessToken)
//	if err != nil {
//	    // errors.Is(err, jwt.ErrInvalidTokenFormat)
//	}
//	alg := decoded.Algorithm()
//	kid := decoded.KeyID()
//	zone, ok := decoded.Payload().String("zid")
//
// # Supported Algorithms
//
// Algorithm enumerates the asymmetric signature algorithms a token header may name:
//   - RS256, RS384, RS512 (RSA with PKCS#1 v1.5)
//   - PS256, PS384, PS512 (RSA with PSS)
//   - ES256, ES384, ES512 (ECDSA)
//   - EdDSA (Ed25519)
package jwt
