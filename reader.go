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

	"go.uber.org/zap"
)

// GetTrackerClient looks up the tracker client for uri within cluster.
// It returns nil if the cluster or the URI is unknown, or if the URI's
// scheme has no corresponding transport client. Safe to call from any
// goroutine; never blocks on the event thread.
func (s *LoadBalancerState) GetTrackerClient(cluster, uri string) *TrackerClient {
	trackers, ok := s.trackerClients.Load(cluster)
	if !ok {
		s.logger.Warn("GetTrackerClient: unknown cluster", zap.String("cluster", cluster))
		return nil
	}
	tracker, ok := trackers[uri]
	if !ok {
		return nil
	}
	return tracker
}

// GetTransportClient looks up the transport client for (cluster, scheme).
// The scheme is matched case-insensitively.
func (s *LoadBalancerState) GetTransportClient(cluster, scheme string) TransportClient {
	clients, ok := s.clusterClients.Load(cluster)
	if !ok {
		s.logger.Warn("GetTransportClient: unknown cluster", zap.String("cluster", cluster))
		return nil
	}
	return clients[strings.ToLower(scheme)]
}

// GetStrategy looks up the strategy for (service, scheme).
func (s *LoadBalancerState) GetStrategy(service, scheme string) Strategy {
	strategies, ok := s.serviceStrategies.Load(service)
	if !ok {
		return nil
	}
	return strategies[scheme]
}

// GetStrategiesForService returns, for service, the subset of
// prioritizedSchemes that currently resolve to a strategy, each paired
// with that strategy and preserving the caller's scheme order. The
// result is memoized per service and invalidated whenever that service's
// strategies are refreshed.
func (s *LoadBalancerState) GetStrategiesForService(service string, prioritizedSchemes []string) []SchemeStrategy {
	if cached, ok := s.orderedStrategyCache.Load(service); ok {
		return cached
	}

	strategies, _ := s.serviceStrategies.Load(service)
	ordered := make([]SchemeStrategy, 0, len(prioritizedSchemes))
	for _, scheme := range prioritizedSchemes {
		strat, ok := strategies[scheme]
		if !ok {
			continue
		}
		ordered = append(ordered, SchemeStrategy{Scheme: scheme, Strategy: strat})
	}

	s.orderedStrategyCache.Store(service, ordered)
	return ordered
}

// GetUriProperties returns the versioned URI property item for cluster,
// or nil if the engine has not heard about it.
func (s *LoadBalancerState) GetUriProperties(cluster string) *VersionedItem[*UriProperties] {
	item, _ := s.uriIndex.Load(cluster)
	return item
}

// GetClusterProperties returns the versioned cluster property item for
// cluster, or nil.
func (s *LoadBalancerState) GetClusterProperties(cluster string) *VersionedItem[*ClusterProperties] {
	item, ok := s.clusterIndex.Load(cluster)
	if !ok || item == nil || item.Value == nil {
		return nil
	}
	return &VersionedItem[*ClusterProperties]{
		Value:     item.Value.Properties,
		Version:   item.Version,
		Timestamp: item.Timestamp,
	}
}

// GetPartitionAccessor returns the PartitionAccessor derived from
// cluster's current partition properties, or nil.
func (s *LoadBalancerState) GetPartitionAccessor(cluster string) PartitionAccessor {
	item, ok := s.clusterIndex.Load(cluster)
	if !ok || item == nil || item.Value == nil {
		return nil
	}
	return item.Value.Accessor
}

// GetServiceProperties returns the versioned service property item for
// service, or nil.
func (s *LoadBalancerState) GetServiceProperties(service string) *VersionedItem[*ServiceProperties] {
	item, _ := s.serviceIndex.Load(service)
	return item
}

// Counters is a point-in-time snapshot of the observability surface
// described for the engine: a small, fixed set of sizes best read
// directly rather than pushed through a metrics pipeline.
type Counters struct {
	ClusterCount            int
	URICount                int
	ServiceCount            int
	TrackerClientsByCluster map[string]int
	ListenerCount           int
	Version                 int64
	SupportedSchemes        []string
	SupportedStrategies     []string

	// ListenCountsBySubscriber reports, for every name with at least one
	// pending EnsureListening callback, how many callers are still
	// waiting on that property's first initialization. Keys are
	// "<bus kind>:<name>", e.g. "cluster:c1", "uri:c1", "service:s1".
	ListenCountsBySubscriber map[string]int
}

// Snapshot gathers the current Counters. It is safe to call from any
// goroutine and takes no lock on the event thread, so the individual
// counts may be drawn from slightly different instants.
func (s *LoadBalancerState) Snapshot() Counters {
	c := Counters{
		ClusterCount:            s.clusterIndex.Len(),
		URICount:                s.uriIndex.Len(),
		ServiceCount:            s.serviceIndex.Len(),
		TrackerClientsByCluster: make(map[string]int),
		ListenerCount:           s.listeners.Count(),
		Version:                 s.versionCounter.Load(),
	}
	s.trackerClients.Range(func(cluster string, trackers map[string]*TrackerClient) bool {
		c.TrackerClientsByCluster[cluster] = len(trackers)
		return true
	})
	for scheme := range s.transportFactories {
		c.SupportedSchemes = append(c.SupportedSchemes, scheme)
	}
	for name := range s.strategyFactories {
		c.SupportedStrategies = append(c.SupportedStrategies, name)
	}

	c.ListenCountsBySubscriber = make(map[string]int)
	for kind, counts := range map[string]map[string]int{
		"cluster": s.clusterSub.pendingListens(),
		"uri":     s.uriSub.pendingListens(),
		"service": s.serviceSub.pendingListens(),
	} {
		for name, n := range counts {
			c.ListenCountsBySubscriber[kind+":"+name] = n
		}
	}
	return c
}
