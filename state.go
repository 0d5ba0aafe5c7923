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
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/JosHernan/d2/internal"
)

// PublisherFactory builds a Publisher[T] bound to sink. The reference
// discovery/etcd package exposes one of these per property kind; tests
// use fakes built the same way.
type PublisherFactory[T any] func(sink PublisherSink[T]) Publisher[T]

// LoadBalancerState is the reconciliation engine: it owns the event
// thread, the three property buses and subscribers, the derived caches,
// and the registered factories, and exposes a lock-free read API plus a
// handful of write entry points (ListenToCluster, ListenToService,
// AddListener, SetVersion, Shutdown).
type LoadBalancerState struct {
	logger *zap.Logger
	clock  internal.Clock

	thread *eventThread

	uriBus     *eventBus[*UriProperties]
	clusterBus *eventBus[*ClusterProperties]
	serviceBus *eventBus[*ServiceProperties]

	uriSub     *uriSubscriber
	clusterSub *clusterSubscriber
	serviceSub *serviceSubscriber

	versionCounter atomic.Int64

	uriIndex           internal.SyncMap[string, *VersionedItem[*UriProperties]]
	clusterIndex       internal.SyncMap[string, *VersionedItem[*ClusterInfoItem]]
	serviceIndex       internal.SyncMap[string, *VersionedItem[*ServiceProperties]]
	servicesPerCluster internal.SyncMap[string, map[string]struct{}]

	clusterClients       internal.SyncMap[string, map[string]TransportClient]
	trackerClients       internal.SyncMap[string, map[string]*TrackerClient]
	serviceStrategies    internal.SyncMap[string, map[string]Strategy]
	orderedStrategyCache internal.SyncMap[string, []SchemeStrategy]

	transportFactories map[string]TransportClientFactory
	strategyFactories  map[string]StrategyFactory
	partitionFactory   PartitionAccessorFactory

	eventQueueCapacity int

	listeners listenerRegistry
}

// SchemeStrategy pairs a scheme with the Strategy resolved for it; it is
// the element type of the ordered list returned by
// GetStrategiesForService.
type SchemeStrategy struct {
	Scheme   string
	Strategy Strategy
}

// Option configures a LoadBalancerState at construction time.
type Option interface {
	apply(*LoadBalancerState)
}

type optionFunc func(*LoadBalancerState)

func (f optionFunc) apply(s *LoadBalancerState) { f(s) }

// WithLogger sets the logger used for every log statement the engine
// emits. The default is a no-op logger, so the engine never requires a
// logging dependency to function in tests.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(s *LoadBalancerState) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// WithClock overrides the clock used to stamp VersionedItems. Tests use
// this to install a fake clock.
func WithClock(clock internal.Clock) Option {
	return optionFunc(func(s *LoadBalancerState) {
		if clock != nil {
			s.clock = clock
		}
	})
}

// WithEventQueueCapacity sets the buffer size of the event thread's task
// channel.
func WithEventQueueCapacity(capacity int) Option {
	return optionFunc(func(s *LoadBalancerState) {
		s.eventQueueCapacity = capacity
	})
}

// WithTransportClientFactory registers factory under scheme (matched
// case-insensitively against a cluster's prioritized schemes).
func WithTransportClientFactory(scheme string, factory TransportClientFactory) Option {
	return optionFunc(func(s *LoadBalancerState) {
		s.transportFactories[strings.ToLower(scheme)] = factory
	})
}

// WithStrategyFactory registers factory under name.
func WithStrategyFactory(name string, factory StrategyFactory) Option {
	return optionFunc(func(s *LoadBalancerState) {
		s.strategyFactories[name] = factory
	})
}

// WithPartitionAccessorFactory overrides the factory used to derive a
// PartitionAccessor from a cluster's PartitionProperties.
func WithPartitionAccessorFactory(factory PartitionAccessorFactory) Option {
	return optionFunc(func(s *LoadBalancerState) {
		s.partitionFactory = factory
	})
}

// WithListener registers l to observe tracker-client and strategy churn
// from the moment the engine is constructed.
func WithListener(l Listener) Option {
	return optionFunc(func(s *LoadBalancerState) {
		s.listeners.AddListener(l)
	})
}

// NewLoadBalancerState wires up the engine: the event thread, the three
// property buses (each bound to the Publisher its factory produces),
// and the three subscribers. Transport, strategy, and partition
// factories are registered via Option and are immutable afterward.
func NewLoadBalancerState(
	uriPublisher PublisherFactory[*UriProperties],
	clusterPublisher PublisherFactory[*ClusterProperties],
	servicePublisher PublisherFactory[*ServiceProperties],
	opts ...Option,
) *LoadBalancerState {
	s := &LoadBalancerState{
		logger:             zap.NewNop(),
		clock:              internal.NewRealClock(),
		transportFactories: make(map[string]TransportClientFactory),
		strategyFactories:  make(map[string]StrategyFactory),
		partitionFactory:   defaultPartitionAccessorFactory,
	}
	for _, opt := range opts {
		opt.apply(s)
	}

	s.thread = newEventThread(s.eventQueueCapacity)

	s.uriBus = newEventBus[*UriProperties](s.thread, nil)
	s.clusterBus = newEventBus[*ClusterProperties](s.thread, nil)
	s.serviceBus = newEventBus[*ServiceProperties](s.thread, nil)

	s.uriBus.publisher = uriPublisher(s.uriBus)
	s.clusterBus.publisher = clusterPublisher(s.clusterBus)
	s.serviceBus.publisher = servicePublisher(s.serviceBus)

	s.uriSub = newURISubscriber(s)
	s.clusterSub = newClusterSubscriber(s)
	s.serviceSub = newServiceSubscriber(s)

	return s
}

func (s *LoadBalancerState) nextVersion() int64 {
	return s.versionCounter.Add(1)
}

func wrapVersioned[T any](s *LoadBalancerState, value T) *VersionedItem[T] {
	return &VersionedItem[T]{
		Value:     value,
		Version:   s.nextVersion(),
		Timestamp: s.clock.Now(),
	}
}

// SetVersion seeds the monotonic version counter. It is enqueued on the
// event thread like any other mutation, even though the counter itself
// is an atomic.Int64, so that it is sequenced relative to in-flight
// reconciliation tasks rather than racing them.
func (s *LoadBalancerState) SetVersion(v int64) {
	s.thread.Submit(func() {
		s.versionCounter.Store(v)
	})
}

// ListenToCluster arranges for cb to be invoked once both the cluster
// and URI properties for name have initialized (a two-count barrier).
// If both already have, cb fires immediately.
func (s *LoadBalancerState) ListenToCluster(name string, cb func()) {
	var remaining atomic.Int32
	remaining.Store(2)
	fireWhenBothDone := func() {
		if remaining.Add(-1) == 0 {
			cb()
		}
	}
	s.clusterSub.EnsureListening(name, fireWhenBothDone)
	s.uriSub.EnsureListening(name, fireWhenBothDone)
}

// ListenToService arranges for cb to be invoked once name's service
// property has initialized.
func (s *LoadBalancerState) ListenToService(name string, cb func()) {
	s.serviceSub.EnsureListening(name, cb)
}

// AddListener registers l. Safe to call at any time; it is applied on
// the event thread.
func (s *LoadBalancerState) AddListener(l Listener) {
	s.thread.Submit(func() {
		s.listeners.AddListener(l)
	})
}

// RemoveListener unregisters l.
func (s *LoadBalancerState) RemoveListener(l Listener) {
	s.thread.Submit(func() {
		s.listeners.RemoveListener(l)
	})
}

// Shutdown gathers the distinct set of transport clients across every
// cluster, shuts each down, and invokes callback once the last one
// completes. Writes submitted after Shutdown are accepted but ill
// advised; the engine does not guard against them.
func (s *LoadBalancerState) Shutdown(callback func()) {
	s.thread.Submit(func() {
		clients := internal.NewSet[TransportClient]()
		s.clusterClients.Range(func(_ string, schemeToClient map[string]TransportClient) bool {
			for _, c := range schemeToClient {
				clients.Add(c)
			}
			return true
		})

		all := clients.ToSlice()
		if len(all) == 0 {
			if callback != nil {
				callback()
			}
			return
		}

		var remaining atomic.Int64
		remaining.Store(int64(len(all)))
		for _, c := range all {
			c.Shutdown(func() {
				if remaining.Add(-1) == 0 && callback != nil {
					callback()
				}
			})
		}
	})
}
