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
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-xsuaa/pkg/jwks"
	"github.com/jeremyhahn/go-xsuaa/pkg/token"
)

const testIssuer = "https://tenant.authentication.example.com/oauth/token"

func generateRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}
	return key
}

func sign(t *testing.T, method gojwt.SigningMethod, key any, kid string, claims gojwt.MapClaims) string {
	t.Helper()
	tok := gojwt.NewWithClaims(method, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func validClaims() gojwt.MapClaims {
	now := time.Now()
	return gojwt.MapClaims{
		"iss":        testIssuer,
		"aud":        []string{"sb-app1", "uaa"},
		"cid":        "sb-app1",
		"grant_type": "client_credentials",
		"scope":      []string{"app1.Read", "uaa.resource"},
		"iat":        now.Unix(),
		"exp":        now.Add(time.Hour).Unix(),
	}
}

func newTestVerifier(t *testing.T, set *jwk.KeySet, opts *Options) *Verifier {
	t.Helper()
	v, err := NewVerifier(KeySetResolver{Set: set}, opts)
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}
	return v
}

func TestVerify_RS256(t *testing.T) {
	priv := generateRSAKey(t)
	set := jwk.NewKeySet(jwk.NewKey(jwt.RS256, "key-id-1", &priv.PublicKey))
	v := newTestVerifier(t, set, &Options{
		Issuer:            testIssuer,
		Audience:          "sb-app1",
		RequireExpiration: true,
		ScopeConverter:    token.NewXSUAAScopeConverter("app1"),
	})

	accessToken := sign(t, gojwt.SigningMethodRS256, priv, "key-id-1", validClaims())

	tok, err := v.Verify(context.Background(), accessToken)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if tok.ClientID() != "sb-app1" {
		t.Errorf("ClientID = %q, want sb-app1", tok.ClientID())
	}
	if !tok.HasLocalScope("Read") {
		t.Error("expected local scope Read from the configured converter")
	}

	if _, err := v.Verify(context.Background(), "Bearer "+accessToken); err != nil {
		t.Errorf("Verify with bearer scheme failed: %v", err)
	}
}

func TestVerify_DefaultKeyForTokenWithoutKeyID(t *testing.T) {
	priv := generateRSAKey(t)
	set := jwk.NewKeySet(jwk.NewKey(jwt.RS256, "", &priv.PublicKey))
	v := newTestVerifier(t, set, nil)

	if _, err := v.Verify(context.Background(), sign(t, gojwt.SigningMethodRS256, priv, "", validClaims())); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

func TestVerify_KeyIDNamedLikeDefaultDoesNotSelectBindingKey(t *testing.T) {
	priv := generateRSAKey(t)
	set := jwk.NewKeySet(jwk.NewKey(jwt.RS256, "", &priv.PublicKey))
	v := newTestVerifier(t, set, nil)

	_, err := v.Verify(context.Background(), sign(t, gojwt.SigningMethodRS256, priv, jwk.DefaultKeyID, validClaims()))
	if !errors.Is(err, jwks.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for kid %q, got %v", jwk.DefaultKeyID, err)
	}
}

func TestVerify_AlgorithmHeaderIsCaseSensitive(t *testing.T) {
	priv := generateRSAKey(t)
	set := jwk.NewKeySet(jwk.NewKey(jwt.RS256, "key-id-1", &priv.PublicKey))
	v := newTestVerifier(t, set, nil)

	for _, alg := range []string{"rs256", "Rs256"} {
		t.Run(alg, func(t *testing.T) {
			tok := gojwt.NewWithClaims(gojwt.SigningMethodRS256, validClaims())
			tok.Header["alg"] = alg
			tok.Header["kid"] = "key-id-1"
			signed, err := tok.SignedString(priv)
			if err != nil {
				t.Fatalf("Failed to sign token: %v", err)
			}

			_, err = v.Verify(context.Background(), signed)
			if !errors.Is(err, ErrInvalidSignatureAlgorithm) {
				t.Errorf("expected ErrInvalidSignatureAlgorithm, got %v", err)
			}
		})
	}
}

func TestVerify_ES256(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate ECDSA key: %v", err)
	}
	set := jwk.NewKeySet(jwk.NewKey(jwt.ES256, "ec", &priv.PublicKey))
	v := newTestVerifier(t, set, &Options{Algorithms: []jwt.Algorithm{jwt.RS256, jwt.ES256}})

	if _, err := v.Verify(context.Background(), sign(t, gojwt.SigningMethodES256, priv, "ec", validClaims())); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

func TestVerify_Errors(t *testing.T) {
	priv := generateRSAKey(t)
	other := generateRSAKey(t)
	set := jwk.NewKeySet(
		jwk.NewKey(jwt.RS256, "key-id-1", &priv.PublicKey),
		jwk.FromPEM(jwt.RS256, "broken", "not a pem"),
	)
	v := newTestVerifier(t, set, &Options{Issuer: testIssuer, RequireExpiration: true})

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	notYetValid := validClaims()
	notYetValid["nbf"] = time.Now().Add(time.Hour).Unix()

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "https://evil.example.com"

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	// expired claims carrying the signature of a valid token
	valid := strings.Split(sign(t, gojwt.SigningMethodRS256, priv, "key-id-1", validClaims()), ".")
	forged := strings.Split(sign(t, gojwt.SigningMethodRS256, priv, "key-id-1", expired), ".")
	tampered := forged[0] + "." + forged[1] + "." + valid[2]

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrMalformedToken},
		{"not a jwt", "abc.def", ErrMalformedToken},
		{"unsupported algorithm", sign(t, gojwt.SigningMethodHS256, []byte("secret"), "key-id-1", validClaims()), ErrInvalidSignatureAlgorithm},
		{"algorithm not permitted", sign(t, gojwt.SigningMethodPS256, priv, "key-id-1", validClaims()), ErrInvalidSignatureAlgorithm},
		{"unknown key", sign(t, gojwt.SigningMethodRS256, priv, "unknown", validClaims()), jwks.ErrKeyNotFound},
		{"unusable key", sign(t, gojwt.SigningMethodRS256, priv, "broken", validClaims()), jwk.ErrKeyConstruction},
		{"wrong key", sign(t, gojwt.SigningMethodRS256, other, "key-id-1", validClaims()), ErrSignatureVerification},
		{"tampered payload", tampered, ErrSignatureVerification},
		{"expired", sign(t, gojwt.SigningMethodRS256, priv, "key-id-1", expired), gojwt.ErrTokenExpired},
		{"not yet valid", sign(t, gojwt.SigningMethodRS256, priv, "key-id-1", notYetValid), gojwt.ErrTokenNotValidYet},
		{"wrong issuer", sign(t, gojwt.SigningMethodRS256, priv, "key-id-1", wrongIssuer), ErrInvalidClaims},
		{"missing expiry", sign(t, gojwt.SigningMethodRS256, priv, "key-id-1", noExpiry), ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := v.Verify(context.Background(), tt.token)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tok != nil {
				t.Error("expected nil token on failure")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestVerify_UnusableKeyIsNotReportedAsMissing(t *testing.T) {
	priv := generateRSAKey(t)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	bad := jwk.NewKeySet(jwk.NewKey(jwt.RS256, "k", &ecKey.PublicKey))
	v := newTestVerifier(t, bad, nil)

	_, err = v.Verify(context.Background(), sign(t, gojwt.SigningMethodRS256, priv, "k", validClaims()))
	if !errors.Is(err, jwk.ErrKeyConstruction) {
		t.Fatalf("expected ErrKeyConstruction, got %v", err)
	}
	if errors.Is(err, jwks.ErrKeyNotFound) {
		t.Error("unusable key must not be reported as not found")
	}
}

func TestVerify_WithCache(t *testing.T) {
	priv := generateRSAKey(t)
	fetcher := staticFetcher{set: jwk.NewKeySet(jwk.NewKey(jwt.RS256, "key-id-1", &priv.PublicKey))}

	cache, err := jwks.NewCache("https://tenant.authentication.example.com/token_keys", fetcher, jwks.CacheOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	v, err := NewVerifier(cache, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := v.Verify(context.Background(), sign(t, gojwt.SigningMethodRS256, priv, "key-id-1", validClaims())); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

type staticFetcher struct {
	set *jwk.KeySet
}

func (f staticFetcher) Fetch(context.Context, string) (*jwk.KeySet, error) {
	return f.set, nil
}

func TestNewVerifier_Validation(t *testing.T) {
	if _, err := NewVerifier(nil, nil); err == nil {
		t.Error("expected error for nil resolver")
	}
	_, err := NewVerifier(KeySetResolver{}, &Options{Algorithms: []jwt.Algorithm{"HS256"}})
	if !errors.Is(err, ErrInvalidSignatureAlgorithm) {
		t.Errorf("expected ErrInvalidSignatureAlgorithm, got %v", err)
	}
}

func TestKeySetResolver_NilSet(t *testing.T) {
	_, err := KeySetResolver{}.ResolveKey(context.Background(), jwt.RS256, "k")
	if !errors.Is(err, jwks.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrMalformedToken, errorTypeMalformed},
		{ErrInvalidSignatureAlgorithm, errorTypeAlgorithm},
		{jwk.ErrKeyConstruction, errorTypeKeyConstruction},
		{jwks.ErrFetch, errorTypeKeyFetch},
		{jwks.ErrKeyNotFound, errorTypeKeyNotFound},
		{ErrSignatureVerification, errorTypeSignature},
		{ErrInvalidClaims, errorTypeClaims},
		{errors.New("boom"), errorTypeOther},
	}
	for _, tt := range tests {
		if got := errorType(tt.err); got != tt.want {
			t.Errorf("errorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
