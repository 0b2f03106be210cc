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

import (
	"time"

	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-xsuaa/pkg/logging"
	"github.com/jeremyhahn/go-xsuaa/pkg/token"
)

// DefaultLeeway is the clock skew tolerated for exp, nbf and iat.
const DefaultLeeway = time.Minute

// Options contains optional parameters for token verification.
type Options struct {
	// Algorithms lists the permitted signature algorithms. Defaults to RS256,
	// the only algorithm XSUAA signs with.
	Algorithms []jwt.Algorithm

	// Leeway is the tolerated clock skew. Defaults to DefaultLeeway;
	// negative disables it.
	Leeway time.Duration

	// Issuer, when set, must equal the iss claim.
	Issuer string

	// Audience, when set, must be contained in the aud claim.
	Audience string

	// RequireExpiration rejects tokens without an exp claim.
	RequireExpiration bool

	// ScopeConverter is attached to verified tokens for local scope checks.
	ScopeConverter token.ScopeConverter

	Logger *logging.Logger
}

// Verification error types reported to metrics.
const (
	errorTypeMalformed       = "malformed"
	errorTypeAlgorithm       = "algorithm"
	errorTypeKeyNotFound     = "key_not_found"
	errorTypeKeyFetch        = "key_fetch"
	errorTypeKeyConstruction = "key_construction"
	errorTypeSignature       = "signature"
	errorTypeClaims          = "claims"
	errorTypeOther           = "other"
)
