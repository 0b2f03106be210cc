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

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Registered header parameter names
const (
	HeaderAlgorithm = "alg"
	HeaderKeyID     = "kid"
	HeaderType      = "typ"
	HeaderJKU       = "jku"
)

// segmentParser decodes base64url segments with or without padding.
var segmentParser = gojwt.NewParser(gojwt.WithPaddingAllowed())

// DecodedToken is the syntactic view of a compact token. It is immutable
// and safe for concurrent use.
type DecodedToken struct {
	raw      string
	segments [3]string
	header   Claims
	payload  Claims
}

// Decode splits a compact token into header, payload and signature and
// parses header and payload into JSON objects. The signature is not
// verified.
//
// Example:
//
//	decoded, err := jwt.Decode(tokenString)
//	if err != nil {
//	    log.Fatal("invalid token format")
//	}
//	fmt.Printf("Token was signed with key: %s\n", decoded.KeyID())
func Decode(compact string) (*DecodedToken, error) {
	compact = strings.TrimSpace(compact)
	if compact == "" {
		return nil, fmt.Errorf("%w: token must not be empty", ErrInvalidTokenFormat)
	}

	parts := strings.Split(compact, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, fmt.Errorf("%w: JWT token does not consist of 'header'.'payload'.'signature'",
			ErrInvalidTokenFormat)
	}

	header, err := decodeObject(parts[0], "header")
	if err != nil {
		return nil, err
	}
	payload, err := decodeObject(parts[1], "payload")
	if err != nil {
		return nil, err
	}

	return &DecodedToken{
		raw:      compact,
		segments: [3]string{parts[0], parts[1], parts[2]},
		header:   header,
		payload:  payload,
	}, nil
}

// decodeObject base64url decodes a segment and parses it as a JSON object.
func decodeObject(segment, name string) (Claims, error) {
	data, err := segmentParser.DecodeSegment(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not base64url encoded: %v", ErrInvalidTokenFormat, name, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON: %v", ErrInvalidTokenFormat, name, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: %s has trailing data", ErrInvalidTokenFormat, name)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a JSON object", ErrInvalidTokenFormat, name)
	}
	return Claims(obj), nil
}

// Raw returns the compact token as it was decoded.
func (t *DecodedToken) Raw() string {
	return t.raw
}

// Header returns the header claims.
func (t *DecodedToken) Header() Claims {
	return t.header
}

// Payload returns the payload claims.
func (t *DecodedToken) Payload() Claims {
	return t.payload
}

// Signature base64url decodes the signature segment.
func (t *DecodedToken) Signature() ([]byte, error) {
	return segmentParser.DecodeSegment(t.segments[2])
}

// HeaderSegment returns the base64url encoded header.
func (t *DecodedToken) HeaderSegment() string {
	return t.segments[0]
}

// PayloadSegment returns the base64url encoded payload.
func (t *DecodedToken) PayloadSegment() string {
	return t.segments[1]
}

// SignatureSegment returns the base64url encoded signature.
func (t *DecodedToken) SignatureSegment() string {
	return t.segments[2]
}

// Algorithm returns the alg header parameter, or "" when absent.
func (t *DecodedToken) Algorithm() string {
	alg, _ := t.header.String(HeaderAlgorithm)
	return alg
}

// KeyID returns the kid header parameter, or "" when absent.
func (t *DecodedToken) KeyID() string {
	kid, _ := t.header.String(HeaderKeyID)
	return kid
}

// JKU returns the jku header parameter, or "" when absent.
func (t *DecodedToken) JKU() string {
	jku, _ := t.header.String(HeaderJKU)
	return jku
}
