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
	"crypto/rsa"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
	"github.com/jeremyhahn/go-xsuaa/pkg/ratelimit"
)

const testEndpoint = "https://tenant.authentication.example.com/token_keys"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, fetcher Fetcher, opts CacheOptions) (*Cache, *clock) {
	t.Helper()
	cache, err := NewCache(testEndpoint, fetcher, opts)
	require.NoError(t, err)
	t.Cleanup(cache.Close)

	clk := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache.now = clk.Now
	return cache, clk
}

func TestNewCache_Validation(t *testing.T) {
	_, err := NewCache("not a url", &fakeFetcher{}, CacheOptions{})
	assert.Error(t, err)

	_, err = NewCache(testEndpoint, nil, CacheOptions{})
	assert.Error(t, err)
}

func TestCache_ResolveKey_InitialFetch(t *testing.T) {
	priv := generateRSA(t)
	fetcher := &fakeFetcher{}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"key-id-1": &priv.PublicKey}), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{})

	key, err := cache.ResolveKey(context.Background(), jwt.RS256, "key-id-1")
	require.NoError(t, err)
	assert.Equal(t, "key-id-1", key.ID())
	assert.False(t, cache.FetchedAt().IsZero())

	_, err = cache.ResolveKey(context.Background(), jwt.RS256, "key-id-1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetcher.calls.Load(), "fresh set is served from cache")
}

func TestCache_ResolveKey_RefreshesAfterTTL(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"old": &generateRSA(t).PublicKey}), nil)
	cache, clk := newTestCache(t, fetcher, CacheOptions{TTL: time.Minute, RefreshInterval: -1})

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, "old")
	require.NoError(t, err)

	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"new": &generateRSA(t).PublicKey}), nil)
	clk.Advance(30 * time.Second)

	_, err = cache.ResolveKey(context.Background(), jwt.RS256, "new")
	assert.ErrorIs(t, err, ErrKeyNotFound, "no refresh before the TTL elapses")

	clk.Advance(31 * time.Second)
	_, err = cache.ResolveKey(context.Background(), jwt.RS256, "new")
	require.NoError(t, err)

	_, err = cache.ResolveKey(context.Background(), jwt.RS256, "old")
	assert.NoError(t, err, "rotated out keys stay usable")
	assert.Equal(t, 2, cache.KeySet().Len())
}

func TestCache_ResolveKey_UnknownKeyForcesRefresh(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"k1": &generateRSA(t).PublicKey}), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{RefreshInterval: time.Hour})

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	require.NoError(t, err)

	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{
		"k1": &generateRSA(t).PublicKey,
		"k2": &generateRSA(t).PublicKey,
	}), nil)

	key, err := cache.ResolveKey(context.Background(), jwt.RS256, "k2")
	require.NoError(t, err)
	assert.Equal(t, "k2", key.ID())
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestCache_ResolveKey_ForcedRefreshIsRateLimited(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"k1": &generateRSA(t).PublicKey}), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{RefreshInterval: time.Hour})

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = cache.ResolveKey(context.Background(), jwt.RS256, "unknown")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	}
	assert.Equal(t, int32(2), fetcher.calls.Load(), "one initial and one forced refresh")
}

func TestCache_ResolveKey_NoForcedRefreshForDefaultKey(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set([]byte(`{"keys":[]}`), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{})
	require.NoError(t, cache.Refresh(context.Background()))

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, "")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestCache_ResolveKey_SharedLimiter(t *testing.T) {
	limiter := ratelimit.New(&ratelimit.Config{Enabled: true, Interval: time.Hour})
	defer limiter.Stop()

	fetcher := &fakeFetcher{}
	fetcher.set([]byte(`{"keys":[]}`), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{Limiter: limiter})
	require.NoError(t, cache.Refresh(context.Background()))

	require.True(t, limiter.Allow(testEndpoint))

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, int32(1), fetcher.calls.Load(), "budget already used by another cache")
}

func TestCache_ResolveKey_StaleFallback(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"k1": &generateRSA(t).PublicKey}), nil)
	cache, clk := newTestCache(t, fetcher, CacheOptions{TTL: time.Minute, FailureBackoff: 10 * time.Second})

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	require.NoError(t, err)

	fetcher.set(nil, errors.New("connection refused"))
	clk.Advance(2 * time.Minute)

	key, err := cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	require.NoError(t, err, "cached key is served while the endpoint is down")
	assert.Equal(t, "k1", key.ID())
	assert.Equal(t, int32(2), fetcher.calls.Load())

	_, err = cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load(), "no retry during the failure backoff")

	clk.Advance(11 * time.Second)
	_, err = cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), fetcher.calls.Load())
}

func TestCache_ResolveKey_FetchErrorWithEmptyCache(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(nil, errors.New("connection refused"))
	cache, _ := newTestCache(t, fetcher, CacheOptions{})

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.NotErrorIs(t, err, ErrKeyNotFound)

	_, err = cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	assert.ErrorIs(t, err, ErrFetch, "last failure is reported during the backoff")
}

func TestCache_ResolveKey_InvalidKeyID(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache, _ := newTestCache(t, fetcher, CacheOptions{})

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, "../../etc/passwd\x00")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestCache_Register(t *testing.T) {
	priv := generateRSA(t)
	fetcher := &fakeFetcher{}
	fetcher.set(nil, errors.New("offline"))
	cache, _ := newTestCache(t, fetcher, CacheOptions{})

	require.True(t, cache.Register(jwk.NewKey(jwt.RS256, "", &priv.PublicKey)))
	assert.False(t, cache.Register(jwk.NewKey(jwt.RS256, "", &priv.PublicKey)))

	key, err := cache.ResolveKey(context.Background(), jwt.RS256, "")
	require.NoError(t, err, "registered key is served although the endpoint is unreachable")
	assert.True(t, key.IsDefault())
}

func TestCache_ResolveKey_DefaultKeyNeedsEmptyKeyID(t *testing.T) {
	priv := generateRSA(t)
	fetcher := &fakeFetcher{}
	fetcher.set(nil, errors.New("offline"))
	cache, _ := newTestCache(t, fetcher, CacheOptions{})
	require.True(t, cache.Register(jwk.NewKey(jwt.RS256, "", &priv.PublicKey)))

	_, err := cache.ResolveKey(context.Background(), jwt.RS256, jwk.DefaultKeyID)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	key, err := cache.ResolveKey(context.Background(), jwt.RS256, "")
	require.NoError(t, err)
	assert.True(t, key.IsDefault())
}

func TestCache_Refresh(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"k1": &generateRSA(t).PublicKey}), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{})

	require.NoError(t, cache.Refresh(context.Background()))
	assert.Equal(t, 1, cache.KeySet().Len())
	assert.Equal(t, testEndpoint, cache.Endpoint())

	fetcher.set(nil, errors.New("boom"))
	err := cache.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, 1, cache.KeySet().Len())
}

func TestCache_ConcurrentRefreshesShareOneFetch(t *testing.T) {
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"k1": &generateRSA(t).PublicKey}), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{})

	const callers = 10
	var started, done sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			started.Done()
			_, err := cache.ResolveKey(context.Background(), jwt.RS256, "k1")
			errs <- err
		}()
	}
	started.Wait()

	require.Eventually(t, func() bool { return fetcher.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(fetcher.gate)
	done.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.LessOrEqual(t, fetcher.calls.Load(), int32(2))
}

func TestCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"k1": &generateRSA(t).PublicKey}), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cache.ResolveKey(ctx, jwt.RS256, "k1")
		first <- err
	}()
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrFetch)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting for the shared fetch")
	}
	assert.NoError(t, cache.failure(), "a caller's cancellation is not an endpoint failure")

	second := make(chan error, 1)
	go func() {
		key, err := cache.ResolveKey(context.Background(), jwt.RS256, "k1")
		if err == nil && key.ID() != "k1" {
			err = errors.New("unexpected key " + key.ID())
		}
		second <- err
	}()
	close(fetcher.gate)

	select {
	case err := <-second:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("healthy caller did not get the keys")
	}
	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.NoError(t, cache.failure())
}

func TestCache_AlreadyCancelledCallerStartsNoFetch(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(keysDocument(t, map[string]*rsa.PublicKey{"k1": &generateRSA(t).PublicKey}), nil)
	cache, _ := newTestCache(t, fetcher, CacheOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := cache.ResolveKey(ctx, jwt.RS256, "k1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), fetcher.calls.Load())
	assert.NoError(t, cache.failure())

	_, err = cache.ResolveKey(context.Background(), jwt.RS256, "k1")
	require.NoError(t, err)
}
