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

// Package jwk holds the public keys used to verify token signatures.
//
// A Key pairs a signature algorithm and a key id with key material that is
// turned into a crypto.PublicKey on first use. Keys come from RFC 7517 JSON
// Web Keys (FromJSON, ParseSet), from the PEM verification key of a service
// binding (FromPEM) or from an existing public key (NewKey).
//
// A KeySet indexes keys by (algorithm, key id):
//
//	set, err := jwk.ParseSet(tokenKeysResponse)
//	if err != nil {
//	    return err
//	}
//	set.Put(jwk.FromPEM(jwt.RS256, "", binding.VerificationKey()))
//
//	key, ok := set.KeyByAlgorithmAndID(jwt.Algorithm(decoded.Algorithm()), decoded.KeyID())
//	if !ok {
//	    // unknown key, refresh the set
//	}
//	pub, err := key.PublicKey() // errors.Is(err, jwk.ErrKeyConstruction)
//
// Put never replaces an existing key. PutAll merges a freshly downloaded set
// and replaces keys with the same algorithm and key id, so keys that were
// rotated out of the document stay usable until the tokens they signed
// expire.
//
// Keys without a key id occupy the default slot, shown as DefaultKeyID. Only
// a token without a kid header resolves to that slot; a kid header that
// spells out DefaultKeyID is an ordinary, usually unknown, key id.
package jwk
