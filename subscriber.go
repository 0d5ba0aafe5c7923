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

package d2

import "sync"

// subscriber is the generic base embedded by each of the three concrete
// subscribers (uriSubscriber, clusterSubscriber, serviceSubscriber). It
// owns the waiters map and the EnsureListening handshake; handlePut and
// handleRemove are supplied by the embedder as plain function values,
// since Go has no template methods.
type subscriber[T any] struct {
	handlePut    func(name string, value T)
	handleRemove func(name string)

	mu      sync.Mutex
	waiters map[string]*waiterQueue
}

func newSubscriber[T any](handlePut func(string, T), handleRemove func(string)) *subscriber[T] {
	return &subscriber[T]{
		handlePut:    handlePut,
		handleRemove: handleRemove,
		waiters:      make(map[string]*waiterQueue),
	}
}

// OnInitialize applies value and then closes the waiter queue for name,
// invoking every enqueued callback exactly once. Must run on the event
// thread.
func (s *subscriber[T]) OnInitialize(name string, value T) {
	s.handlePut(name, value)

	s.mu.Lock()
	q := s.waiters[name]
	s.mu.Unlock()
	if q == nil {
		return
	}
	for _, cb := range q.Close() {
		cb()
	}
}

// OnAdd applies value without touching the waiter queue. Must run on the
// event thread.
func (s *subscriber[T]) OnAdd(name string, value T) {
	s.handlePut(name, value)
}

// OnRemove drops name without touching the waiter queue. Must run on the
// event thread.
func (s *subscriber[T]) OnRemove(name string) {
	s.handleRemove(name)
}

// pendingListens returns the number of not-yet-satisfied EnsureListening
// callbacks queued per name, for names that still have a pending waiter.
// Safe to call from any goroutine.
func (s *subscriber[T]) pendingListens() map[string]int {
	s.mu.Lock()
	names := make([]string, 0, len(s.waiters))
	queues := make([]*waiterQueue, 0, len(s.waiters))
	for name, q := range s.waiters {
		names = append(names, name)
		queues = append(queues, q)
	}
	s.mu.Unlock()

	counts := make(map[string]int, len(names))
	for i, name := range names {
		if n := queues[i].Len(); n > 0 {
			counts[name] = n
		}
	}
	return counts
}

// ensureListening implements the EnsureListening handshake described in
// the package's design: the first caller for a given name installs a
// fresh queue and arranges registration with the bus (via register);
// later callers either join the open queue or, if it has already
// closed, are invoked immediately. register is called at most once per
// name, outside of any lock held by this method.
func (s *subscriber[T]) ensureListening(name string, cb func(), register func()) {
	s.mu.Lock()
	q, exists := s.waiters[name]
	if !exists {
		q = newWaiterQueue()
		s.waiters[name] = q
	}
	s.mu.Unlock()

	if !exists {
		q.Offer(cb)
		register()
		return
	}
	if !q.Offer(cb) {
		// The queue is already closed: the property has already
		// initialized, so the handshake resolves immediately.
		cb()
	}
}
