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

// eventBus multiplexes one Publisher[T]'s add/initialize/remove calls to
// every Subscriber[T] registered for a given property name. It is thin,
// internal plumbing: Register is the only thing that triggers a call
// into the publisher, and every dispatch to subscribers happens on the
// event thread.
type eventBus[T any] struct {
	thread    *eventThread
	publisher Publisher[T]

	mu          sync.Mutex
	subscribers map[string]map[Subscriber[T]]struct{}
}

func newEventBus[T any](thread *eventThread, publisher Publisher[T]) *eventBus[T] {
	return &eventBus[T]{
		thread:      thread,
		publisher:   publisher,
		subscribers: make(map[string]map[Subscriber[T]]struct{}),
	}
}

// Register adds sub to the set of subscribers interested in name. The
// first registration for a given name calls publisher.StartObserving;
// later registrations for the same name are pure bookkeeping.
func (b *eventBus[T]) Register(name string, sub Subscriber[T]) {
	b.mu.Lock()
	set, ok := b.subscribers[name]
	if !ok {
		set = make(map[Subscriber[T]]struct{})
		b.subscribers[name] = set
	}
	set[sub] = struct{}{}
	firstForName := len(set) == 1
	b.mu.Unlock()

	if firstForName {
		b.publisher.StartObserving(name)
	}
}

// Unregister removes sub from name's subscriber set. Once the set for
// name becomes empty, publisher.StopObserving is called and the set is
// dropped.
func (b *eventBus[T]) Unregister(name string, sub Subscriber[T]) {
	b.mu.Lock()
	set, ok := b.subscribers[name]
	if ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subscribers, name)
		}
	}
	b.mu.Unlock()

	if ok && len(set) == 0 {
		b.publisher.StopObserving(name)
	}
}

func (b *eventBus[T]) subscribersFor(name string) []Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.subscribers[name]
	if len(set) == 0 {
		return nil
	}
	subs := make([]Subscriber[T], 0, len(set))
	for sub := range set {
		subs = append(subs, sub)
	}
	return subs
}

// Initialize implements PublisherSink: it is called by the publisher
// exactly once per name, as the first event for that name, and
// re-dispatches to every currently registered subscriber on the event
// thread.
func (b *eventBus[T]) Initialize(name string, value T) {
	b.thread.Submit(func() {
		for _, sub := range b.subscribersFor(name) {
			sub.OnInitialize(name, value)
		}
	})
}

// Add implements PublisherSink.
func (b *eventBus[T]) Add(name string, value T) {
	b.thread.Submit(func() {
		for _, sub := range b.subscribersFor(name) {
			sub.OnAdd(name, value)
		}
	})
}

// Remove implements PublisherSink.
func (b *eventBus[T]) Remove(name string) {
	b.thread.Submit(func() {
		for _, sub := range b.subscribersFor(name) {
			sub.OnRemove(name)
		}
	})
}
