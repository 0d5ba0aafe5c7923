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

// waiterQueue accumulates one-shot callbacks waiting for a property's
// first initialization. Offer and Close are mutually exclusive: once
// Close has run, every subsequent Offer fails and the caller is
// responsible for invoking its own callback instead.
type waiterQueue struct {
	mu        sync.Mutex
	callbacks []func()
	closed    bool
}

func newWaiterQueue() *waiterQueue {
	return &waiterQueue{}
}

// Offer appends cb to the queue. It returns false if the queue has
// already been closed, in which case cb was not recorded and the caller
// must invoke it directly.
func (q *waiterQueue) Offer(cb func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.callbacks = append(q.callbacks, cb)
	return true
}

// Close closes the queue and returns the accumulated callbacks exactly
// once; later calls return nil.
func (q *waiterQueue) Close() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	cbs := q.callbacks
	q.callbacks = nil
	return cbs
}

// Len reports the number of callbacks currently queued, waiting on the
// property to initialize. It is zero once the queue has closed.
func (q *waiterQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.callbacks)
}
