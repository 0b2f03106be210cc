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

// GrantType classifies how an access token was obtained, taken from the
// grant_type claim. Values the library does not know classify as
// GrantTypeOther.
type GrantType int

const (
	GrantTypeOther GrantType = iota
	GrantTypeClientCredentials
	GrantTypeUserToken
	GrantTypeAuthorizationCode
	GrantTypePassword
	GrantTypeJWTBearer
	GrantTypeSAML2Bearer
	GrantTypeRefreshToken
	GrantTypeClientX509
	GrantTypeImplicit
)

var grantTypeClaimValues = map[GrantType]string{
	GrantTypeClientCredentials: "client_credentials",
	GrantTypeUserToken:         "user_token",
	GrantTypeAuthorizationCode: "authorization_code",
	GrantTypePassword:          "password",
	GrantTypeJWTBearer:         "urn:ietf:params:oauth:grant-type:jwt-bearer",
	GrantTypeSAML2Bearer:       "urn:ietf:params:oauth:grant-type:saml2-bearer",
	GrantTypeRefreshToken:      "refresh_token",
	GrantTypeClientX509:        "client_x509",
	GrantTypeImplicit:          "implicit",
}

var grantTypeNames = map[GrantType]string{
	GrantTypeOther:             "OTHER",
	GrantTypeClientCredentials: "CLIENT_CREDENTIALS",
	GrantTypeUserToken:         "USER_TOKEN",
	GrantTypeAuthorizationCode: "AUTHORIZATION_CODE",
	GrantTypePassword:          "PASSWORD",
	GrantTypeJWTBearer:         "JWT_BEARER",
	GrantTypeSAML2Bearer:       "SAML2_BEARER",
	GrantTypeRefreshToken:      "REFRESH_TOKEN",
	GrantTypeClientX509:        "CLIENT_X509",
	GrantTypeImplicit:          "IMPLICIT",
}

// ParseGrantType maps a grant_type claim value to a GrantType. Matching is
// exact.
func ParseGrantType(value string) GrantType {
	for g, v := range grantTypeClaimValues {
		if v == value {
			return g
		}
	}
	return GrantTypeOther
}

// ClaimValue returns the grant_type claim value, or "" for GrantTypeOther.
func (g GrantType) ClaimValue() string {
	return grantTypeClaimValues[g]
}

// IsClient reports whether the grant carries no user.
func (g GrantType) IsClient() bool {
	return g == GrantTypeClientCredentials || g == GrantTypeClientX509
}

func (g GrantType) String() string {
	if name, ok := grantTypeNames[g]; ok {
		return name
	}
	return grantTypeNames[GrantTypeOther]
}
