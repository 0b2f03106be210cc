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

package ratelimit

import (
	"testing"
	"time"
)

func activeKeys(l *Limiter) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func TestNew(t *testing.T) {
	limiter := New(&Config{
		Enabled:  true,
		Interval: time.Second,
		Burst:    10,
	})
	if limiter == nil {
		t.Fatal("Expected limiter to be created")
	}
	defer limiter.Stop()

	if !limiter.enabled {
		t.Error("Expected limiter to be enabled")
	}
	if limiter.burst != 10 {
		t.Errorf("Expected burst 10, got %d", limiter.burst)
	}
}

func TestNew_Defaults(t *testing.T) {
	limiter := New(nil)
	if limiter.enabled {
		t.Error("nil config must disable the limiter")
	}

	limiter = New(&Config{Enabled: true})
	if limiter.enabled {
		t.Error("zero interval must disable the limiter")
	}

	limiter = New(&Config{Enabled: true, Interval: time.Minute})
	defer limiter.Stop()
	if got := limiter.burst; got != 1 {
		t.Errorf("Expected default burst 1, got %d", got)
	}
}

func TestAllow(t *testing.T) {
	limiter := New(&Config{
		Enabled:  true,
		Interval: 200 * time.Millisecond,
		Burst:    3,
	})
	defer limiter.Stop()

	key := "https://tenant.example.com/token_keys"

	// First 3 events should succeed (burst)
	for i := 0; i < 3; i++ {
		if !limiter.Allow(key) {
			t.Errorf("Event %d should be allowed (burst)", i+1)
		}
	}

	// Next event should be denied (burst exhausted)
	if limiter.Allow(key) {
		t.Error("Event should be denied after burst exhausted")
	}

	time.Sleep(250 * time.Millisecond)
	if !limiter.Allow(key) {
		t.Error("Event should be allowed after waiting")
	}
}

func TestDisabledLimiter(t *testing.T) {
	limiter := New(&Config{
		Enabled:  false,
		Interval: time.Hour,
	})

	// All events should be allowed when disabled
	for i := 0; i < 100; i++ {
		if !limiter.Allow("key") {
			t.Fatal("Disabled limiter should allow all events")
		}
	}
	if got := activeKeys(limiter); got != 0 {
		t.Errorf("Disabled limiter must not track keys, got %d", got)
	}
}

func TestPerKeyLimiting(t *testing.T) {
	limiter := New(&Config{
		Enabled:  true,
		Interval: time.Minute,
	})
	defer limiter.Stop()

	// Exhaust key1's burst
	if !limiter.Allow("key-1") {
		t.Error("First event for key-1 should be allowed")
	}
	if limiter.Allow("key-1") {
		t.Error("Second event for key-1 should be denied")
	}

	// key-2 should still have budget
	if !limiter.Allow("key-2") {
		t.Error("First event for key-2 should be allowed")
	}
}

func TestCleanup(t *testing.T) {
	limiter := New(&Config{
		Enabled:         true,
		Interval:        time.Second,
		CleanupInterval: 100 * time.Millisecond,
		MaxIdle:         200 * time.Millisecond,
	})
	defer limiter.Stop()

	limiter.Allow("test-key")

	if got := activeKeys(limiter); got != 1 {
		t.Errorf("Expected 1 limiter, got %d", got)
	}

	// Wait for cleanup
	time.Sleep(400 * time.Millisecond)

	if got := activeKeys(limiter); got != 0 {
		t.Errorf("Expected 0 limiters after cleanup, got %d", got)
	}
}

func TestStopTwice(t *testing.T) {
	limiter := New(&Config{Enabled: true, Interval: time.Second})
	limiter.Stop()
	limiter.Stop()
}
