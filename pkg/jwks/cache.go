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

package jwks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-xsuaa/pkg/logging"
	"github.com/jeremyhahn/go-xsuaa/pkg/metrics"
	"github.com/jeremyhahn/go-xsuaa/pkg/ratelimit"
	"github.com/jeremyhahn/go-xsuaa/pkg/validation"
)

const (
	DefaultTTL             = 15 * time.Minute
	DefaultRefreshInterval = 30 * time.Second
	DefaultFailureBackoff  = 5 * time.Second
)

// CacheOptions configures a Cache.
type CacheOptions struct {
	// TTL is the age after which the key set is downloaded again.
	// Defaults to DefaultTTL.
	TTL time.Duration

	// RefreshInterval is the minimum time between two refreshes forced by
	// unknown key ids. Defaults to DefaultRefreshInterval. Negative
	// disables forced refreshes.
	RefreshInterval time.Duration

	// FailureBackoff is the time after a failed download during which no
	// further TTL refresh is attempted. Defaults to DefaultFailureBackoff.
	FailureBackoff time.Duration

	// Limiter replaces the limiter built from RefreshInterval, so several
	// caches can share one. The cache does not stop a supplied limiter.
	Limiter *ratelimit.Limiter

	Logger *logging.Logger
}

// Cache serves the keys of a single token keys endpoint.
type Cache struct {
	endpoint       string
	label          string
	fetcher        Fetcher
	ttl            time.Duration
	failureBackoff time.Duration
	limiter        *ratelimit.Limiter
	ownsLimiter    bool
	forceRefresh   bool
	logger         *logging.Logger
	now            func() time.Time

	keys  *jwk.KeySet
	group singleflight.Group

	mu          sync.RWMutex
	fetchedAt   time.Time
	nextAttempt time.Time
	lastErr     error
}

// NewCache creates a cache for endpoint. No request is made until the first
// lookup or Refresh.
func NewCache(endpoint string, fetcher Fetcher, opts CacheOptions) (*Cache, error) {
	if err := validation.ValidateEndpointURL(endpoint); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, errors.New("jwks: fetcher must not be nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	backoff := opts.FailureBackoff
	if backoff <= 0 {
		backoff = DefaultFailureBackoff
	}

	c := &Cache{
		endpoint:       endpoint,
		label:          endpointLabel(endpoint),
		fetcher:        fetcher,
		ttl:            ttl,
		failureBackoff: backoff,
		forceRefresh:   opts.RefreshInterval >= 0,
		logger:         logger.With("endpoint", validation.SanitizeForLog(endpoint)),
		now:            time.Now,
		keys:           jwk.NewKeySet(),
	}

	switch {
	case opts.Limiter != nil:
		c.limiter = opts.Limiter
	case c.forceRefresh:
		interval := opts.RefreshInterval
		if interval == 0 {
			interval = DefaultRefreshInterval
		}
		c.limiter = ratelimit.New(&ratelimit.Config{Enabled: true, Interval: interval})
		c.ownsLimiter = true
	}

	return c, nil
}

// Endpoint returns the token keys URL served by the cache.
func (c *Cache) Endpoint() string {
	return c.endpoint
}

// Register adds a key that is not published by the endpoint, such as the
// verification key of a service binding. It never replaces a key already
// in the cache. Downloaded keys with the same algorithm and key id replace
// it.
func (c *Cache) Register(key *jwk.Key) bool {
	return c.keys.Put(key)
}

// KeySet returns the live key set. It is safe for concurrent use.
func (c *Cache) KeySet() *jwk.KeySet {
	return c.keys
}

// FetchedAt returns the time of the last successful download.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Refresh downloads the key set and merges it into the cache.
func (c *Cache) Refresh(ctx context.Context) error {
	return c.refresh(ctx, metrics.RefreshExpired)
}

// ResolveKey returns the key for alg and kid. An empty kid resolves to the
// default key only.
//
// An expired set is refreshed first. If the key is unknown, the set is
// refreshed once more unless that happened recently. The error wraps
// ErrKeyNotFound when the key is missing and ErrFetch when the keys could
// not be downloaded and nothing usable is cached.
func (c *Cache) ResolveKey(ctx context.Context, alg jwt.Algorithm, kid string) (*jwk.Key, error) {
	if kid != "" {
		if err := validation.ValidateKeyID(kid); err != nil {
			metrics.RecordKeyLookup(metrics.LookupMiss)
			return nil, fmt.Errorf("%w: %w", ErrKeyNotFound, err)
		}
	}

	var refreshErr error
	refreshed := false
	if reason, due := c.refreshDue(); due {
		refreshErr = c.refresh(ctx, reason)
		refreshed = refreshErr == nil
	}

	if key, ok := c.lookup(alg, kid); ok {
		if refreshErr != nil && ctx.Err() == nil {
			metrics.RecordStaleServed()
			c.logger.Warn("serving cached token keys", "error", refreshErr.Error())
		}
		return key, nil
	}

	if !refreshed && refreshErr == nil && c.failure() == nil && c.forceRefresh && kid != "" {
		if c.limiter.Allow(c.endpoint) {
			c.logger.Debug("unknown key id, refreshing token keys", "kid", validation.SanitizeForLog(kid))
			refreshErr = c.refresh(ctx, metrics.RefreshUnknownKey)
			if refreshErr == nil {
				if key, ok := c.lookup(alg, kid); ok {
					return key, nil
				}
			}
		} else {
			metrics.RecordRefreshThrottled()
		}
	}

	metrics.RecordKeyLookup(metrics.LookupMiss)
	if refreshErr == nil {
		refreshErr = c.failure()
	}
	if refreshErr != nil && c.keys.Len() == 0 {
		return nil, refreshErr
	}
	return nil, fmt.Errorf("%w: alg=%s kid=%s", ErrKeyNotFound, alg, validation.SanitizeForLog(kid))
}

// Close releases the limiter owned by the cache.
func (c *Cache) Close() {
	if c.ownsLimiter {
		c.limiter.Stop()
	}
}

func (c *Cache) lookup(alg jwt.Algorithm, kid string) (*jwk.Key, bool) {
	key, ok := c.keys.KeyByAlgorithmAndID(alg, kid)
	if !ok {
		return nil, false
	}
	if key.IsDefault() {
		metrics.RecordKeyLookup(metrics.LookupDefault)
	} else {
		metrics.RecordKeyLookup(metrics.LookupHit)
	}
	return key, true
}

func (c *Cache) refreshDue() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	if now.Before(c.nextAttempt) {
		return "", false
	}
	if c.fetchedAt.IsZero() {
		return metrics.RefreshInitial, true
	}
	if now.Sub(c.fetchedAt) >= c.ttl {
		return metrics.RefreshExpired, true
	}
	return "", false
}

func (c *Cache) failure() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// refresh downloads the key set once for all concurrent callers. The shared
// download is detached from the caller's cancellation and bounded by the
// fetcher's timeout; a caller whose context ends stops waiting without
// recording a failure for the endpoint.
func (c *Cache) refresh(ctx context.Context, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(c.endpoint, func() (any, error) {
		set, err := c.fetcher.Fetch(fetchCtx, c.endpoint)
		if err != nil {
			if !errors.Is(err, ErrFetch) {
				err = fmt.Errorf("%w: %w", ErrFetch, err)
			}
			c.mu.Lock()
			c.lastErr = err
			c.nextAttempt = c.now().Add(c.failureBackoff)
			c.mu.Unlock()
			c.logger.Warn("failed to refresh token keys", "reason", reason, "error", err.Error())
			return nil, err
		}

		c.keys.PutAll(set)

		c.mu.Lock()
		c.fetchedAt = c.now()
		c.nextAttempt = time.Time{}
		c.lastErr = nil
		c.mu.Unlock()

		metrics.RecordJWKSRefresh(reason)
		metrics.SetJWKSKeys(c.label, c.keys.Len())
		c.logger.Debug("refreshed token keys", "reason", reason, "keys", c.keys.Len())
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
