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

package token

// Claim names of XSUAA access tokens
const (
	ClaimUserName         = "user_name"
	ClaimOrigin           = "origin"
	ClaimClientID         = "cid"
	ClaimClientIDAlt      = "client_id"
	ClaimGrantType        = "grant_type"
	ClaimScope            = "scope"
	ClaimZoneID           = "zid"
	ClaimExternalAttrs    = "ext_attr"
	ClaimSubaccountID     = "subaccountid"
	ClaimEmail            = "email"
	ClaimGivenName        = "given_name"
	ClaimFamilyName       = "family_name"
	ClaimXSUserAttributes = "xs.user.attributes"

	ClaimIssuer    = "iss"
	ClaimAudience  = "aud"
	ClaimSubject   = "sub"
	ClaimExpiresAt = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuedAt  = "iat"
	ClaimJWTID     = "jti"
)
