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

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"
)

// fakePublisher is a hand-driven Publisher[T] for tests: StartObserving
// and StopObserving just record their calls, and test code pushes events
// through to the bound sink directly by calling Initialize/Add/Remove.
type fakePublisher[T any] struct {
	sink PublisherSink[T]

	mu      sync.Mutex
	started map[string]int
	stopped map[string]int
}

func newFakePublisherFactory[T any]() (PublisherFactory[T], *fakePublisher[T]) {
	fp := &fakePublisher[T]{started: map[string]int{}, stopped: map[string]int{}}
	factory := func(sink PublisherSink[T]) Publisher[T] {
		fp.sink = sink
		return fp
	}
	return factory, fp
}

func (f *fakePublisher[T]) StartObserving(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started[name]++
}

func (f *fakePublisher[T]) StopObserving(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped[name]++
}

func (f *fakePublisher[T]) startCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started[name]
}

func (f *fakePublisher[T]) stopCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped[name]
}

func (f *fakePublisher[T]) Initialize(name string, value T) { f.sink.Initialize(name, value) }
func (f *fakePublisher[T]) Add(name string, value T)        { f.sink.Add(name, value) }
func (f *fakePublisher[T]) Remove(name string)               { f.sink.Remove(name) }

// testHarness wires a LoadBalancerState to three fakePublishers and
// exposes them for direct event injection.
type testHarness struct {
	state   *LoadBalancerState
	uris    *fakePublisher[*UriProperties]
	cluster *fakePublisher[*ClusterProperties]
	service *fakePublisher[*ServiceProperties]
}

func newTestHarness(opts ...Option) *testHarness {
	uriFactory, uriFake := newFakePublisherFactory[*UriProperties]()
	clusterFactory, clusterFake := newFakePublisherFactory[*ClusterProperties]()
	serviceFactory, serviceFake := newFakePublisherFactory[*ServiceProperties]()

	s := NewLoadBalancerState(uriFactory, clusterFactory, serviceFactory, opts...)
	return &testHarness{state: s, uris: uriFake, cluster: clusterFake, service: serviceFake}
}

// sync blocks until every task submitted to the event thread before this
// call has run, by submitting a barrier task behind them and waiting for
// it in turn.
func (h *testHarness) sync(t *testing.T) {
	t.Helper()
	done := make(chan struct{})
	h.state.thread.Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event thread to drain")
	}
}

// fakeListener records every call it receives, in order.
type fakeListener struct {
	mu     sync.Mutex
	events []string
}

func (l *fakeListener) record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *fakeListener) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

func (l *fakeListener) OnClientAdded(clusterName string, tracker *TrackerClient) {
	l.record("add:" + clusterName + ":" + tracker.URI)
}

func (l *fakeListener) OnClientRemoved(clusterName string, tracker *TrackerClient) {
	l.record("remove:" + clusterName + ":" + tracker.URI)
}

func (l *fakeListener) OnStrategyAdded(serviceName, scheme string, _ Strategy) {
	l.record("stratAdd:" + serviceName + ":" + scheme)
}

func (l *fakeListener) OnStrategyRemoved(serviceName, scheme string, _ Strategy) {
	l.record("stratRemove:" + serviceName + ":" + scheme)
}

// fakeTransportClient is a no-op TransportClient for tests.
type fakeTransportClient struct {
	scheme       string
	shutdownOnce sync.Once
	shutdownN    *int
	mu           *sync.Mutex
}

func (c *fakeTransportClient) RoundTrip(context.Context, *http.Request) (*http.Response, error) {
	return nil, nil
}

func (c *fakeTransportClient) Shutdown(callback func()) {
	c.shutdownOnce.Do(func() {
		if c.mu != nil {
			c.mu.Lock()
			*c.shutdownN++
			c.mu.Unlock()
		}
	})
	if callback != nil {
		callback()
	}
}

// fakeTransportClientFactory builds fakeTransportClients for one scheme,
// counting total shutdowns across every client it has produced so tests
// can assert on retirement.
type fakeTransportClientFactory struct {
	scheme      string
	failNewErr  error
	mu          sync.Mutex
	shutdownN   int
	propsSeen   []map[string]string
}

func (f *fakeTransportClientFactory) NewClient(clusterProperties map[string]string) (TransportClient, error) {
	if f.failNewErr != nil {
		return nil, f.failNewErr
	}
	f.mu.Lock()
	f.propsSeen = append(f.propsSeen, clusterProperties)
	f.mu.Unlock()
	return &fakeTransportClient{scheme: f.scheme, shutdownN: &f.shutdownN, mu: &f.mu}, nil
}

func (f *fakeTransportClientFactory) totalShutdowns() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdownN
}

// fakeStrategy and fakeStrategyFactory are minimal Strategy
// implementations for exercising strategy refresh without importing the
// strategy package.
type fakeStrategy struct{}

func (fakeStrategy) Pick(_ int32, candidates []*TrackerClient) (*TrackerClient, func(), error) {
	if len(candidates) == 0 {
		return nil, nil, errNoCandidatesForTest
	}
	return candidates[0], nil, nil
}

var errNoCandidatesForTest = &noCandidatesError{}

type noCandidatesError struct{}

func (*noCandidatesError) Error() string { return "no candidates" }

type fakeStrategyFactory struct{}

func (fakeStrategyFactory) NewStrategy(string, map[string]any) Strategy {
	return fakeStrategy{}
}
