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
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwk"
)

func generateRSA(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// keysDocument renders a token keys document with one RS256 key per kid.
func keysDocument(t *testing.T, keys map[string]*rsa.PublicKey) []byte {
	t.Helper()
	set := jose.JSONWebKeySet{}
	for kid, pub := range keys {
		set.Keys = append(set.Keys, jose.JSONWebKey{Key: pub, KeyID: kid, Algorithm: "RS256", Use: "sig"})
	}
	data, err := json.Marshal(set)
	require.NoError(t, err)
	return data
}

type fakeFetcher struct {
	mu    sync.Mutex
	doc   []byte
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (f *fakeFetcher) set(doc []byte, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc, f.err = doc, err
}

func (f *fakeFetcher) Fetch(ctx context.Context, _ string) (*jwk.KeySet, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	doc, err := f.doc, f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return jwk.ParseSet(doc)
}
