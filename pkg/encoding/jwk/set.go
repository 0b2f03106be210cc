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
	"sort"
	"sync"

	"github.com/jeremyhahn/go-xsuaa/pkg/encoding/jwt"
)

type setKey struct {
	alg jwt.Algorithm
	kid string
}

// KeySet indexes verification keys by algorithm and key id.
//
// A KeySet is safe for concurrent use. Readers observe each key either
// before or after a PutAll, never a partially merged set. The zero value is
// an empty set ready to use.
type KeySet struct {
	mu   sync.RWMutex
	keys map[setKey]*Key
}

// NewKeySet creates a set holding the given keys. Keys with an (algorithm,
// key id) pair already present are ignored, as with Put.
func NewKeySet(keys ...*Key) *KeySet {
	s := &KeySet{keys: make(map[setKey]*Key, len(keys))}
	for _, k := range keys {
		s.Put(k)
	}
	return s
}

// Put registers a key once. It returns false, leaving the set unchanged,
// when a key with the same algorithm and key id is already present.
func (s *KeySet) Put(k *Key) bool {
	if k == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := setKey{alg: k.alg, kid: k.kid}
	if _, exists := s.keys[id]; exists {
		return false
	}
	if s.keys == nil {
		s.keys = make(map[setKey]*Key)
	}
	s.keys[id] = k
	return true
}

// PutAll merges other into the set. Keys of other replace keys with the same
// algorithm and key id; all other keys remain.
func (s *KeySet) PutAll(other *KeySet) {
	if other == nil || other == s {
		return
	}

	other.mu.RLock()
	incoming := make(map[setKey]*Key, len(other.keys))
	for id, k := range other.keys {
		incoming[id] = k
	}
	other.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys == nil {
		s.keys = make(map[setKey]*Key, len(incoming))
	}
	for id, k := range incoming {
		s.keys[id] = k
	}
}

// KeyByAlgorithmAndID returns the key registered for alg and kid. Only an
// empty kid resolves to the default slot. A kid that does not match exactly,
// including case, reports false; there is no fallback to other keys of the
// algorithm.
func (s *KeySet) KeyByAlgorithmAndID(alg jwt.Algorithm, kid string) (*Key, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keys[setKey{alg: alg, kid: kid}]
	return k, ok
}

// Len returns the number of keys in the set.
func (s *KeySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Keys returns the keys ordered by algorithm and key id.
func (s *KeySet) Keys() []*Key {
	s.mu.RLock()
	keys := make([]*Key, 0, len(s.keys))
	for _, k := range s.keys {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].alg != keys[j].alg {
			return keys[i].alg < keys[j].alg
		}
		return keys[i].kid < keys[j].kid
	})
	return keys
}
