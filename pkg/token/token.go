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

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeremyhahn/go-xsuaa/pkg/binding"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
)

// BearerPrefix is the authorization scheme prefix of BearerAccessToken.
const BearerPrefix = "Bearer "

// TrimBearer strips a case insensitive "Bearer " scheme from an
// Authorization header value.
func TrimBearer(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= len(BearerPrefix) && strings.EqualFold(value[:len(BearerPrefix)], BearerPrefix) {
		return strings.TrimSpace(value[len(BearerPrefix):])
	}
	return value
}

// Token is a decoded XSUAA access token. Creating a Token does not verify
// its signature; claims must not be trusted before verification succeeds.
//
// A Token is immutable. WithScopeConverter returns a new Token.
type Token struct {
	decoded   *jwt.DecodedToken
	converter ScopeConverter
}

// New decodes an access token. It fails with ErrIllegalArgument when the
// token is empty or not a well formed compact JWT; in the latter case the
// error also matches jwt.ErrInvalidTokenFormat.
func New(accessToken string) (*Token, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("%w: access token must not be empty", ErrIllegalArgument)
	}

	decoded, err := jwt.Decode(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllegalArgument, err)
	}
	return &Token{decoded: decoded}, nil
}

// WithScopeConverter returns a copy of the token that uses c for local
// scope checks. A nil converter disables local scopes.
func (t *Token) WithScopeConverter(c ScopeConverter) *Token {
	return &Token{decoded: t.decoded, converter: c}
}

// Decoded returns the underlying decoded JWT.
func (t *Token) Decoded() *jwt.DecodedToken {
	return t.decoded
}

// TokenValue returns the compact access token.
func (t *Token) TokenValue() string {
	return t.decoded.Raw()
}

// BearerAccessToken returns the token formatted for an Authorization header.
func (t *Token) BearerAccessToken() string {
	return BearerPrefix + t.decoded.Raw()
}

// Service returns the identity service that issued the token.
func (t *Token) Service() binding.ServiceType {
	return binding.ServiceXSUAA
}

// Header returns the header parameters.
func (t *Token) Header() jwt.Claims {
	return t.decoded.Header()
}

// Algorithm returns the alg header parameter.
func (t *Token) Algorithm() string {
	return t.decoded.Algorithm()
}

// KeyID returns the kid header parameter.
func (t *Token) KeyID() string {
	return t.decoded.KeyID()
}

// HasClaim reports whether the payload contains the claim.
func (t *Token) HasClaim(name string) bool {
	return t.decoded.Payload().Has(name)
}

// Claim returns the raw payload claim value.
func (t *Token) Claim(name string) (any, bool) {
	return t.decoded.Payload().Get(name)
}

// ClaimAsString returns a string claim, or "" when the claim is absent or
// not a string.
func (t *Token) ClaimAsString(name string) string {
	s, _ := t.decoded.Payload().String(name)
	return s
}

// ClaimAsStringList returns a list claim. A single string claim is returned
// as a one element list; an absent claim returns nil.
func (t *Token) ClaimAsStringList(name string) []string {
	return t.decoded.Payload().StringList(name)
}

// ClaimAsObject returns a JSON object claim.
func (t *Token) ClaimAsObject(name string) (jwt.Claims, bool) {
	return t.decoded.Payload().Object(name)
}

// Scopes returns the scope claim in token order, without duplicates.
func (t *Token) Scopes() []string {
	scopes := t.ClaimAsStringList(ClaimScope)
	if len(scopes) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(scopes))
	result := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

// HasScope reports whether the token grants the global scope.
func (t *Token) HasScope(scope string) bool {
	for _, s := range t.Scopes() {
		if s == scope {
			return true
		}
	}
	return false
}

// LocalScopes returns the scopes converted to their local form. Without a
// scope converter there are no local scopes and nil is returned.
func (t *Token) LocalScopes() []string {
	if t.converter == nil {
		return nil
	}

	scopes := t.Scopes()
	local := make([]string, 0, len(scopes))
	for _, s := range scopes {
		local = append(local, t.converter.ToLocal(s))
	}
	return local
}

// HasLocalScope reports whether the local scope is among LocalScopes. It is
// false when no scope converter is configured.
func (t *Token) HasLocalScope(scope string) bool {
	for _, s := range t.LocalScopes() {
		if s == scope {
			return true
		}
	}
	return false
}

// GrantType classifies the grant_type claim.
func (t *Token) GrantType() GrantType {
	return ParseGrantType(t.ClaimAsString(ClaimGrantType))
}

// ClientID returns the cid claim, falling back to client_id.
func (t *Token) ClientID() string {
	if cid := t.ClaimAsString(ClaimClientID); cid != "" {
		return cid
	}
	return t.ClaimAsString(ClaimClientIDAlt)
}

// Principal derives the identity the token was issued to. Tokens with a
// user_name claim yield a user principal built with UniquePrincipalName;
// other tokens yield a client principal from ClientID.
func (t *Token) Principal() (Principal, error) {
	if user := t.ClaimAsString(ClaimUserName); user != "" {
		origin := t.ClaimAsString(ClaimOrigin)
		name, err := UniquePrincipalName(origin, user)
		if err != nil {
			return Principal{}, err
		}
		return Principal{name: name, origin: origin, user: user}, nil
	}

	clientID := t.ClientID()
	if clientID == "" {
		return Principal{}, fmt.Errorf("%w: token has neither %s nor %s", ErrNoPrincipal, ClaimUserName, ClaimClientID)
	}
	return Principal{name: clientPrincipalName(clientID), clientID: clientID}, nil
}

// Issuer returns the iss claim.
func (t *Token) Issuer() string {
	return t.ClaimAsString(ClaimIssuer)
}

// Subject returns the sub claim.
func (t *Token) Subject() string {
	return t.ClaimAsString(ClaimSubject)
}

// Audiences returns the aud claim as a list.
func (t *Token) Audiences() []string {
	return t.ClaimAsStringList(ClaimAudience)
}

// ExpiresAt returns the exp claim.
func (t *Token) ExpiresAt() (time.Time, bool) {
	return t.timeClaim(ClaimExpiresAt)
}

// NotBefore returns the nbf claim.
func (t *Token) NotBefore() (time.Time, bool) {
	return t.timeClaim(ClaimNotBefore)
}

// IssuedAt returns the iat claim.
func (t *Token) IssuedAt() (time.Time, bool) {
	return t.timeClaim(ClaimIssuedAt)
}

func (t *Token) timeClaim(name string) (time.Time, bool) {
	secs, ok := t.decoded.Payload().Int64(name)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// ZoneID returns the identity zone (zid claim) of the tenant.
func (t *Token) ZoneID() string {
	return t.ClaimAsString(ClaimZoneID)
}

// SubaccountID returns ext_attr.subaccountid.
func (t *Token) SubaccountID() string {
	attrs, ok := t.ClaimAsObject(ClaimExternalAttrs)
	if !ok {
		return ""
	}
	s, _ := attrs.String(ClaimSubaccountID)
	return s
}

// Email returns the email claim of user tokens.
func (t *Token) Email() string {
	return t.ClaimAsString(ClaimEmail)
}

// GivenName returns the given_name claim of user tokens.
func (t *Token) GivenName() string {
	return t.ClaimAsString(ClaimGivenName)
}

// FamilyName returns the family_name claim of user tokens.
func (t *Token) FamilyName() string {
	return t.ClaimAsString(ClaimFamilyName)
}

// XSUserAttribute returns the values of a user attribute from the
// xs.user.attributes claim.
func (t *Token) XSUserAttribute(name string) []string {
	attrs, ok := t.ClaimAsObject(ClaimXSUserAttributes)
	if !ok {
		return nil
	}
	return attrs.StringList(name)
}

func (t *Token) String() string {
	return fmt.Sprintf("Token{alg=%s, kid=%s, grant_type=%s}", t.Algorithm(), t.KeyID(), t.GrantType())
}
