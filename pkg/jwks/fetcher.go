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
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/jeremyhahn/go-xsuaa/pkg/correlation"
	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwk"
	"github.com/jeremyhahn/go-xsuaa/pkg/logging"
	"github.com/jeremyhahn/go-xsuaa/pkg/metrics"
	"github.com/jeremyhahn/go-xsuaa/pkg/validation"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultRetryMax     = 2
	DefaultMaxBodySize  = 1 << 20
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
)

// Fetcher downloads and parses a token keys document.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) (*jwk.KeySet, error)
}

// FetcherOptions configures an HTTPFetcher.
type FetcherOptions struct {
	// Timeout bounds a single HTTP attempt. Defaults to DefaultTimeout.
	Timeout time.Duration

	// RetryMax is the number of retries after a failed attempt. Connection
	// errors and 5xx responses are retried. Negative disables retries.
	RetryMax int

	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// MaxBodySize limits the size of the document. Defaults to 1 MiB.
	MaxBodySize int64

	// HTTPClient replaces the pooled client used for requests.
	HTTPClient *http.Client

	Logger *logging.Logger
}

// HTTPFetcher fetches token keys over HTTP with retries.
type HTTPFetcher struct {
	client      *retryablehttp.Client
	maxBodySize int64
	logger      *logging.Logger
}

// NewHTTPFetcher creates a fetcher from options.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	client := retryablehttp.NewClient()
	if opts.HTTPClient != nil {
		client.HTTPClient = opts.HTTPClient
	} else {
		client.HTTPClient.Timeout = DefaultTimeout
	}
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	switch {
	case opts.RetryMax < 0:
		client.RetryMax = 0
	case opts.RetryMax == 0:
		client.RetryMax = DefaultRetryMax
	default:
		client.RetryMax = opts.RetryMax
	}

	client.RetryWaitMin = defaultRetryWaitMin
	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}
	client.RetryWaitMax = defaultRetryWaitMax
	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}
	client.Logger = logger.Slog()

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}

	return &HTTPFetcher{
		client:      client,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Fetch downloads the document at endpoint and parses it into a key set.
// All errors wrap ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, endpoint string) (*jwk.KeySet, error) {
	if err := validation.ValidateEndpointURL(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	start := time.Now()
	set, err := f.fetch(ctx, endpoint)
	metrics.RecordJWKSFetch(endpointLabel(endpoint), err == nil, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	f.logger.Debug("fetched token keys",
		"endpoint", validation.SanitizeForLog(endpoint),
		"keys", set.Len(),
		"correlation_id", correlation.GetCorrelationID(ctx))
	return set, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, endpoint string) (*jwk.KeySet, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	correlation.Inject(ctx, req.Request)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpointLabel(endpoint))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("response exceeds %d bytes", f.maxBodySize)
	}

	return jwk.ParseSet(body)
}

// endpointLabel reduces an endpoint to its host for metric labels.
func endpointLabel(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}
