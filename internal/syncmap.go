// Copyright 2023-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

import "sync"

// SyncMap is a type-safe wrapper around sync.Map. The standard library's
// sync.Map predates generics and is keyed on "any", which is exactly the
// kind of type-assertion boilerplate a thin generic wrapper exists to
// hide; every outer index in this module (cluster name, service name,
// URI) is read far more often than it's written, and writes only ever
// happen from the event thread, so sync.Map's read-mostly design fits
// without an extra mutex.
type SyncMap[K comparable, V any] struct {
	inner sync.Map
}

func (m *SyncMap[K, V]) Load(key K) (V, bool) {
	v, ok := m.inner.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true //nolint:forcetypeassert
}

func (m *SyncMap[K, V]) Store(key K, value V) {
	m.inner.Store(key, value)
}

func (m *SyncMap[K, V]) Delete(key K) {
	m.inner.Delete(key)
}

func (m *SyncMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := m.inner.LoadOrStore(key, value)
	return v.(V), loaded //nolint:forcetypeassert
}

// Range calls f for every entry in the map. f's semantics match
// sync.Map.Range: iteration order is unspecified and f must not block.
func (m *SyncMap[K, V]) Range(f func(key K, value V) bool) {
	m.inner.Range(func(k, v any) bool {
		return f(k.(K), v.(V)) //nolint:forcetypeassert
	})
}

// Len counts the entries currently in the map. It is O(n) and intended
// for observability counters, not hot paths.
func (m *SyncMap[K, V]) Len() int {
	n := 0
	m.Range(func(K, V) bool {
		n++
		return true
	})
	return n
}
