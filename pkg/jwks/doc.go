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

// Package jwks downloads and caches the token keys published by an XSUAA
// tenant.
//
// A Cache serves keys for a single token keys endpoint. Each download is
// merged into a jwk.KeySet, so keys rotated out of the document remain
// usable. The set is refreshed when it is older than its TTL and, subject to
// a rate limit, when a token names a key id the set does not contain.
// Concurrent refreshes share one request. When the endpoint is unreachable,
// the keys from the last successful download keep being served.
//
//	fetcher := jwks.NewHTTPFetcher(jwks.FetcherOptions{Logger: logger})
//	cache, err := jwks.NewCache(uaaURL+"/token_keys", fetcher, jwks.CacheOptions{})
//	if err != nil {
//	    return err
//	}
//	defer cache.Close()
//
//	key, err := cache.ResolveKey(ctx, jwt.RS256, kid)
package jwks
