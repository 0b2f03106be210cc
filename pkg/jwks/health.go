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
	"fmt"

	"github.com/jeremyhahn/go-xsuaa/pkg/health"
)

// Check reports whether the cache can serve keys. It makes no request.
// A cache without keys is unhealthy; one serving keys that are expired,
// never downloaded or kept after a failed refresh is degraded.
func (c *Cache) Check(ctx context.Context) health.CheckResult {
	result := health.CheckResult{Name: "jwks:" + c.label, Status: health.StatusHealthy}

	c.mu.RLock()
	fetchedAt, lastErr := c.fetchedAt, c.lastErr
	c.mu.RUnlock()
	if lastErr != nil {
		result.Error = lastErr.Error()
	}

	n := c.keys.Len()
	switch {
	case n == 0:
		result.Status = health.StatusUnhealthy
		result.Message = "no token keys cached"
	case lastErr != nil:
		result.Status = health.StatusDegraded
		result.Message = fmt.Sprintf("serving %d cached keys after a failed refresh", n)
	case fetchedAt.IsZero():
		result.Status = health.StatusDegraded
		result.Message = fmt.Sprintf("%d registered keys, endpoint not queried yet", n)
	case c.now().Sub(fetchedAt) >= c.ttl:
		result.Status = health.StatusDegraded
		result.Message = fmt.Sprintf("%d keys expired since %s", n, fetchedAt.Add(c.ttl).UTC().Format("2006-01-02T15:04:05Z"))
	default:
		result.Message = fmt.Sprintf("%d keys", n)
	}
	return result
}
