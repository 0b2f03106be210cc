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

package jwk

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-jose/go-jose/v4"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
)

// DefaultKeyID names keys registered without a key id, such as the
// verification key of a service binding, in ID and output. It is a display
// name only: the default slot is reached by an empty kid, never by a token
// whose kid header happens to equal this string.
const DefaultKeyID = "default-kid"

// KeyType represents the key type (kty) parameter values
type KeyType string

const (
	KeyTypeRSA KeyType = "RSA"
	KeyTypeEC  KeyType = "EC"
	KeyTypeOKP KeyType = "OKP" // Octet Key Pair (Ed25519)
	KeyTypeOct KeyType = "oct" // Symmetric key, never usable for verification
)

// Curve represents EC and OKP curve names
type Curve string

const (
	CurveP256    Curve = "P-256"
	CurveP384    Curve = "P-384"
	CurveP521    Curve = "P-521"
	CurveEd25519 Curve = "Ed25519"
)

// Key is a public verification key identified by algorithm and key id.
//
// The public key is constructed on first use of PublicKey and the result,
// including a construction failure, is cached. A Key is immutable and safe
// for concurrent use.
type Key struct {
	alg    jwt.Algorithm
	kid    string
	kty    KeyType
	use    string
	source func() (crypto.PublicKey, error)

	once sync.Once
	pub  crypto.PublicKey
	err  error
}

// NewKey wraps an already constructed public key. An empty kid registers
// the key in the default slot.
func NewKey(alg jwt.Algorithm, kid string, pub crypto.PublicKey) *Key {
	return &Key{
		alg:    alg,
		kid:    kid,
		kty:    keyTypeOf(pub),
		source: func() (crypto.PublicKey, error) { return pub, nil },
	}
}

// keyHeader holds the members of a JWK needed to index it.
type keyHeader struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Crv string `json:"crv"`
	Use string `json:"use"`
}

// FromJSON creates a key from a single RFC 7517 JSON Web Key. Only the
// indexing members are read here; the key material is parsed by PublicKey.
// When alg is absent it is derived from kty and crv (RSA keys default to
// RS256).
func FromJSON(data []byte) (*Key, error) {
	var hdr keyHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyConstruction, err)
	}
	if hdr.Kty == "" {
		return nil, fmt.Errorf("%w: missing required member kty", ErrKeyConstruction)
	}

	alg := jwt.Algorithm(hdr.Alg)
	if alg == "" {
		alg = defaultAlgorithm(KeyType(hdr.Kty), Curve(hdr.Crv))
		if alg == "" {
			return nil, fmt.Errorf("%w: cannot determine algorithm for kty=%s crv=%s",
				ErrKeyConstruction, hdr.Kty, hdr.Crv)
		}
	}

	raw := bytes.Clone(data)
	return &Key{
		alg:    alg,
		kid:    hdr.Kid,
		kty:    KeyType(hdr.Kty),
		use:    hdr.Use,
		source: func() (crypto.PublicKey, error) { return parseJSONKey(raw) },
	}, nil
}

// FromPEM creates a key from PEM encoded public key material as found in the
// verificationkey credential of a service binding. Keys flattened onto a
// single line, or with literal "\n" sequences, are accepted. An empty kid
// registers the key in the default slot.
func FromPEM(alg jwt.Algorithm, kid, pemData string) *Key {
	return &Key{
		alg:    alg,
		kid:    kid,
		kty:    keyTypeForAlgorithm(alg),
		source: func() (crypto.PublicKey, error) { return parsePEMKey(alg, pemData) },
	}
}

// Algorithm returns the signature algorithm the key verifies.
func (k *Key) Algorithm() jwt.Algorithm {
	return k.alg
}

// ID returns the key id, DefaultKeyID for keys registered without one.
func (k *Key) ID() string {
	if k.kid == "" {
		return DefaultKeyID
	}
	return k.kid
}

// Type returns the key type (kty).
func (k *Key) Type() KeyType {
	return k.kty
}

// Use returns the public key use member, or "" when absent.
func (k *Key) Use() string {
	return k.use
}

// IsDefault reports whether the key was registered without a key id.
func (k *Key) IsDefault() bool {
	return k.kid == ""
}

// PublicKey returns the public key for signature verification. Errors wrap
// ErrKeyConstruction.
func (k *Key) PublicKey() (crypto.PublicKey, error) {
	k.once.Do(func() {
		k.pub, k.err = k.construct()
	})
	return k.pub, k.err
}

func (k *Key) construct() (crypto.PublicKey, error) {
	alg, err := jwt.ParseAlgorithm(string(k.alg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyConstruction, err)
	}

	pub, err := k.source()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyConstruction, err)
	}
	if pub == nil {
		return nil, fmt.Errorf("%w: no public key material", ErrKeyConstruction)
	}

	if !matchesAlgorithm(alg, pub) {
		return nil, fmt.Errorf("%w: %T cannot verify %s signatures", ErrKeyConstruction, pub, alg)
	}
	return pub, nil
}

func (k *Key) String() string {
	return fmt.Sprintf("Key{alg=%s, kid=%s, kty=%s}", k.alg, k.ID(), k.kty)
}

func parseJSONKey(data []byte) (crypto.PublicKey, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if jwk.IsPublic() {
		return jwk.Key, nil
	}

	public := jwk.Public()
	if public.Key == nil {
		return nil, fmt.Errorf("key has no public component")
	}
	return public.Key, nil
}

var pemBoundary = regexp.MustCompile(`-----(BEGIN|END) [A-Z0-9 ]+-----`)

// normalizePEM rebuilds a PEM block from a public key whose line breaks were
// lost or escaped in transit. The label is set to PUBLIC KEY; the parsers
// below try PKIX and PKCS1 regardless of the label.
func normalizePEM(data string) []byte {
	body := strings.ReplaceAll(data, `\n`, "")
	body = pemBoundary.ReplaceAllString(body, "")
	body = strings.Join(strings.Fields(body), "")

	var b strings.Builder
	b.WriteString("-----BEGIN PUBLIC KEY-----\n")
	for len(body) > 64 {
		b.WriteString(body[:64])
		b.WriteByte('\n')
		body = body[64:]
	}
	if body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	b.WriteString("-----END PUBLIC KEY-----\n")
	return []byte(b.String())
}

func parsePEMKey(alg jwt.Algorithm, data string) (crypto.PublicKey, error) {
	if strings.TrimSpace(data) == "" {
		return nil, fmt.Errorf("empty PEM key")
	}
	block := normalizePEM(data)

	switch {
	case alg.IsRSA():
		return gojwt.ParseRSAPublicKeyFromPEM(block)
	case alg.IsECDSA():
		return gojwt.ParseECPublicKeyFromPEM(block)
	case alg == jwt.EdDSA:
		return gojwt.ParseEdPublicKeyFromPEM(block)
	default:
		return nil, fmt.Errorf("%w: %s", jwt.ErrUnsupportedAlgorithm, alg)
	}
}

// matchesAlgorithm reports whether pub can verify signatures of alg.
func matchesAlgorithm(alg jwt.Algorithm, pub crypto.PublicKey) bool {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return alg.IsRSA()
	case *ecdsa.PublicKey:
		return alg.IsECDSA() && key.Curve == curveForAlgorithm(alg)
	case ed25519.PublicKey:
		return alg == jwt.EdDSA
	default:
		return false
	}
}

func curveForAlgorithm(alg jwt.Algorithm) elliptic.Curve {
	switch alg {
	case jwt.ES256:
		return elliptic.P256()
	case jwt.ES384:
		return elliptic.P384()
	case jwt.ES512:
		return elliptic.P521()
	default:
		return nil
	}
}

func defaultAlgorithm(kty KeyType, crv Curve) jwt.Algorithm {
	switch kty {
	case KeyTypeRSA:
		return jwt.RS256
	case KeyTypeEC:
		switch crv {
		case CurveP256:
			return jwt.ES256
		case CurveP384:
			return jwt.ES384
		case CurveP521:
			return jwt.ES512
		}
	case KeyTypeOKP:
		if crv == CurveEd25519 {
			return jwt.EdDSA
		}
	}
	return ""
}

func keyTypeForAlgorithm(alg jwt.Algorithm) KeyType {
	switch {
	case alg.IsRSA():
		return KeyTypeRSA
	case alg.IsECDSA():
		return KeyTypeEC
	case alg == jwt.EdDSA:
		return KeyTypeOKP
	default:
		return ""
	}
}

func keyTypeOf(pub crypto.PublicKey) KeyType {
	switch pub.(type) {
	case *rsa.PublicKey:
		return KeyTypeRSA
	case *ecdsa.PublicKey:
		return KeyTypeEC
	case ed25519.PublicKey:
		return KeyTypeOKP
	default:
		return ""
	}
}
