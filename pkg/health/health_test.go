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

package health

import (
	"context"
	"testing"
)

func staticCheck(status Status) CheckFunc {
	return func(ctx context.Context) CheckResult {
		return CheckResult{Status: status}
	}
}

func TestRegisterCheck(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("keys", staticCheck(StatusHealthy))
	checker.RegisterCheck("nil", nil)

	results := checker.Ready(context.Background())
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Name != "keys" {
		t.Errorf("expected the registration name to fill in, got %q", results[0].Name)
	}

	checker.RegisterCheck("keys", staticCheck(StatusDegraded))
	results = checker.Ready(context.Background())
	if len(results) != 1 || results[0].Status != StatusDegraded {
		t.Errorf("expected the check to be replaced, got %+v", results)
	}

	checker.UnregisterCheck("keys")
	results = checker.Ready(context.Background())
	if len(results) != 1 || results[0].Name != "default" {
		t.Errorf("expected the default result, got %+v", results)
	}
}

func TestReady_OrderedByName(t *testing.T) {
	checker := NewChecker()
	checker.RegisterCheck("b", staticCheck(StatusHealthy))
	checker.RegisterCheck("a", staticCheck(StatusHealthy))
	checker.RegisterCheck("c", func(ctx context.Context) CheckResult {
		return CheckResult{Name: "custom", Status: StatusHealthy}
	})

	results := checker.Ready(context.Background())
	want := []string{"a", "b", "custom"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(results))
	}
	for i, name := range want {
		if results[i].Name != name {
			t.Errorf("results[%d].Name = %q, want %q", i, results[i].Name, name)
		}
	}
}

func TestIsHealthy(t *testing.T) {
	checker := NewChecker()
	if !checker.IsHealthy(context.Background()) {
		t.Error("a checker without checks must be healthy")
	}

	checker.RegisterCheck("keys", staticCheck(StatusDegraded))
	if checker.IsHealthy(context.Background()) {
		t.Error("a degraded check must not be healthy")
	}
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]CheckResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i] = CheckResult{Status: s}
			}
			if got := AggregateStatus(results); got != tt.want {
				t.Errorf("AggregateStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
