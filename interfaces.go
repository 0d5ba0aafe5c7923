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

	"github.com/JosHernan/d2/attrs"
)

// TransportClient is a real, network-capable client owned by the engine
// and keyed by (cluster, scheme). It is heavy: creating one may open
// connection pools, and retiring one happens asynchronously via Shutdown.
type TransportClient interface {
	RoundTrip(ctx context.Context, req *http.Request) (*http.Response, error)
	// Shutdown closes idle resources and invokes callback when done. It
	// must not cancel requests already in flight through this client.
	Shutdown(callback func())
}

// TransportClientFactory builds a TransportClient for one URI scheme,
// parameterized by a cluster's opaque properties. Implementations are
// registered with the engine once, at construction, and are immutable
// for its lifetime.
type TransportClientFactory interface {
	NewClient(clusterProperties map[string]string) (TransportClient, error)
}

// TrackerClient is a lightweight, per-(cluster, URI) wrapper that pairs a
// URI's partition data with the TransportClient that should dispatch
// requests to it. It holds no I/O resources of its own.
type TrackerClient struct {
	URI              string
	Scheme           string
	PartitionDataMap map[int32]PartitionData
	Transport        TransportClient
	// Attributes carries metadata derived from the URI's partition data
	// that custom Strategy implementations may read without the engine
	// needing to know about it. The reference strategies in package
	// strategy do not consult it; it exists for callers that register
	// their own StrategyFactory.
	Attributes attrs.Attributes
}

// WeightAttributeKey retrieves the PartitionData weight for a
// TrackerClient's zeroth partition, when one was published, via
// attrs.GetValue(tracker.Attributes, d2.WeightAttributeKey).
var WeightAttributeKey = attrs.NewKey[float64]()

// Strategy selects one TrackerClient from a set of candidates for a
// given partition. Implementations never call back into the engine; they
// operate purely on the slice handed to them by Pick's caller. done, if
// non-nil, must be called exactly once when the caller's use of the
// returned TrackerClient is complete; load-aware strategies use it to
// decrement an outstanding-request counter.
type Strategy interface {
	Pick(partitionID int32, candidates []*TrackerClient) (tracker *TrackerClient, done func(), err error)
}

// StrategyFactory builds a Strategy for one (service, scheme) pair.
// Implementations are registered with the engine once, at construction.
type StrategyFactory interface {
	NewStrategy(serviceName string, properties map[string]any) Strategy
}

// PartitionAccessor maps a partition key to a partition id, according to
// whatever PartitionProperties it was derived from.
type PartitionAccessor interface {
	Partition(key int64) (int, error)
}

// PartitionAccessorFactory is a pure function from PartitionProperties to
// a PartitionAccessor. An unrecognized PartitionProperties type must be
// reported as an error, not a panic.
type PartitionAccessorFactory func(props PartitionProperties) (PartitionAccessor, error)

// Listener observes tracker-client and strategy churn. Every method is
// invoked on the event thread, so implementations must not block.
type Listener interface {
	OnClientAdded(clusterName string, tracker *TrackerClient)
	OnClientRemoved(clusterName string, tracker *TrackerClient)
	OnStrategyAdded(serviceName, scheme string, strategy Strategy)
	OnStrategyRemoved(serviceName, scheme string, strategy Strategy)
}

// Publisher sources raw discovery events for one property kind. A
// Publisher is handed a PublisherSink at construction time (by the
// reference discovery/etcd package, or any other implementation) and
// calls Initialize/Add/Remove on it as events occur; StartObserving and
// StopObserving control which property names it is actively watching.
type Publisher[T any] interface {
	StartObserving(name string)
	StopObserving(name string)
}

// PublisherSink is the callback surface a Publisher[T] drives. The event
// bus is the only implementation; it re-dispatches every call to every
// subscriber currently registered for that property name, on the event
// thread.
type PublisherSink[T any] interface {
	Initialize(name string, value T)
	Add(name string, value T)
	Remove(name string)
}

// Subscriber receives property events from an event bus, always on the
// event thread.
type Subscriber[T any] interface {
	OnInitialize(name string, value T)
	OnAdd(name string, value T)
	OnRemove(name string)
}
