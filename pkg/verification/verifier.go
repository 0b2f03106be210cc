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
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/jeremyhahn/go-xsuaa/pkg/correlation"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-xsuaa/pkg/jwks"
	"github.com/jeremyhahn/go-xsuaa/pkg/logging"
	"github.com/jeremyhahn/go-xsuaa/pkg/metrics"
	"github.com/jeremyhahn/go-xsuaa/pkg/token"
	"github.com/jeremyhahn/go-xsuaa/pkg/validation"
)

// KeyResolver returns the key that verifies tokens signed with alg by the
// key identified by kid. Implementations return an error wrapping
// jwks.ErrKeyNotFound when no such key exists. *jwks.Cache implements it.
type KeyResolver interface {
	ResolveKey(ctx context.Context, alg jwt.Algorithm, kid string) (*jwk.Key, error)
}

// KeySetResolver resolves keys from a fixed key set, for example one built
// from the verification key of a service binding.
type KeySetResolver struct {
	Set *jwk.KeySet
}

// ResolveKey implements KeyResolver.
func (r KeySetResolver) ResolveKey(_ context.Context, alg jwt.Algorithm, kid string) (*jwk.Key, error) {
	if r.Set != nil {
		if key, ok := r.Set.KeyByAlgorithmAndID(alg, kid); ok {
			return key, nil
		}
	}
	return nil, fmt.Errorf("%w: alg=%s kid=%s", jwks.ErrKeyNotFound, alg, validation.SanitizeForLog(kid))
}

// Verifier checks the signature and registered claims of access tokens.
// It is safe for concurrent use.
type Verifier struct {
	resolver  KeyResolver
	parser    *gojwt.Parser
	allowed   map[jwt.Algorithm]struct{}
	converter token.ScopeConverter
	logger    *logging.Logger
}

// NewVerifier creates a verifier that obtains keys from resolver. opts may
// be nil.
func NewVerifier(resolver KeyResolver, opts *Options) (*Verifier, error) {
	if resolver == nil {
		return nil, errors.New("verification: key resolver must not be nil")
	}
	if opts == nil {
		opts = &Options{}
	}

	algorithms := opts.Algorithms
	if len(algorithms) == 0 {
		algorithms = []jwt.Algorithm{jwt.RS256}
	}

	allowed := make(map[jwt.Algorithm]struct{}, len(algorithms))
	methods := make([]string, 0, len(algorithms))
	for _, a := range algorithms {
		alg, err := jwt.ParseAlgorithm(string(a))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSignatureAlgorithm, err)
		}
		allowed[alg] = struct{}{}
		methods = append(methods, string(alg))
	}

	leeway := opts.Leeway
	switch {
	case leeway == 0:
		leeway = DefaultLeeway
	case leeway < 0:
		leeway = 0
	}

	parserOpts := []gojwt.ParserOption{
		gojwt.WithValidMethods(methods),
		gojwt.WithLeeway(leeway),
		gojwt.WithPaddingAllowed(),
		gojwt.WithIssuedAt(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, gojwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, gojwt.WithAudience(opts.Audience))
	}
	if opts.RequireExpiration {
		parserOpts = append(parserOpts, gojwt.WithExpirationRequired())
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Verifier{
		resolver:  resolver,
		parser:    gojwt.NewParser(parserOpts...),
		allowed:   allowed,
		converter: opts.ScopeConverter,
		logger:    logger,
	}, nil
}

// Verify decodes accessToken, resolves its key by the alg and kid header
// parameters and validates signature, exp, nbf and iat. A leading "Bearer "
// scheme is ignored.
//
// Errors wrap ErrMalformedToken, ErrInvalidSignatureAlgorithm,
// jwks.ErrKeyNotFound, jwks.ErrFetch, jwk.ErrKeyConstruction,
// ErrSignatureVerification or ErrInvalidClaims. A key that exists but
// cannot be used is never reported as not found.
func (v *Verifier) Verify(ctx context.Context, accessToken string) (*token.Token, error) {
	start := time.Now()
	tok, err := v.verify(ctx, token.TrimBearer(accessToken))
	kind := errorType(err)
	metrics.RecordVerification(kind, time.Since(start).Seconds())
	if err != nil {
		v.logger.Debug("token verification failed",
			"error_type", kind,
			"error", err.Error(),
			"correlation_id", correlation.GetCorrelationID(ctx))
		return nil, err
	}
	return tok, nil
}

func (v *Verifier) verify(ctx context.Context, accessToken string) (*token.Token, error) {
	tok, err := token.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	alg, err := jwt.ParseAlgorithm(tok.Algorithm())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignatureAlgorithm, err)
	}
	if _, ok := v.allowed[alg]; !ok {
		return nil, fmt.Errorf("%w: %s is not permitted", ErrInvalidSignatureAlgorithm, alg)
	}

	key, err := v.resolver.ResolveKey(ctx, alg, tok.KeyID())
	if err != nil {
		return nil, err
	}
	pub, err := key.PublicKey()
	if err != nil {
		return nil, err
	}

	_, err = v.parser.Parse(tok.TokenValue(), func(*gojwt.Token) (any, error) {
		return pub, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if v.converter != nil {
		tok = tok.WithScopeConverter(v.converter)
	}
	return tok, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", ErrSignatureVerification, err)
	case errors.Is(err, gojwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %w", ErrInvalidClaims, err)
	case errors.Is(err, gojwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %w", ErrSignatureVerification, err)
	}
}

func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedToken):
		return errorTypeMalformed
	case errors.Is(err, ErrInvalidSignatureAlgorithm):
		return errorTypeAlgorithm
	case errors.Is(err, jwk.ErrKeyConstruction):
		return errorTypeKeyConstruction
	case errors.Is(err, jwks.ErrFetch):
		return errorTypeKeyFetch
	case errors.Is(err, jwks.ErrKeyNotFound):
		return errorTypeKeyNotFound
	case errors.Is(err, ErrSignatureVerification):
		return errorTypeSignature
	case errors.Is(err, ErrInvalidClaims):
		return errorTypeClaims
	default:
		return errorTypeOther
	}
}
