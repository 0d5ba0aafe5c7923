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

import "time"

// PartitionData is the per-partition weight (or other selection hint)
// carried by a single URI within UriProperties.
type PartitionData struct {
	Weight float64
}

// UriProperties is the authoritative set of URIs backing a cluster, as
// published by the discovery backend.
type UriProperties struct {
	ClusterName string
	// URIs maps each live URI to that URI's partition-id to PartitionData
	// mapping.
	URIs map[string]map[int32]PartitionData
}

// PartitionProperties is implemented by RangePartitionProperties and
// HashPartitionProperties. It has no methods of its own; it exists so
// ClusterProperties can hold either shape and so PartitionAccessorFactory
// implementations can type-switch on the concrete type.
type PartitionProperties interface {
	partitionProperties()
}

// RangePartitionProperties partitions a numeric key extracted from a
// composite identifier (by PartitionKeyRegex) into PartitionCount
// contiguous buckets of PartitionSize starting at KeyRangeStart.
type RangePartitionProperties struct {
	PartitionKeyRegex string
	KeyRangeStart     int64
	PartitionSize     int64
	PartitionCount    int
}

func (RangePartitionProperties) partitionProperties() {}

// HashPartitionProperties partitions a key by hashing it and reducing
// modulo PartitionCount. Algorithm names the hash function; only
// "murmur3" is implemented by the reference partition package.
type HashPartitionProperties struct {
	Algorithm      string
	PartitionCount int
}

func (HashPartitionProperties) partitionProperties() {}

// ClusterProperties describes the transport and partitioning
// configuration shared by every service hosted on a cluster.
type ClusterProperties struct {
	ClusterName string
	// PrioritizedSchemes lists the cluster's preferred URI schemes, most
	// preferred first. A transport client and, transitively, a strategy
	// are instantiated for each scheme with a registered factory.
	PrioritizedSchemes []string
	// Properties is an opaque string-to-string bag interpreted by
	// transport-client factories (e.g. dialTimeoutMs). Keys meant for a
	// factory that isn't registered are ignored, not rejected.
	Properties map[string]string
	Partitions PartitionProperties
}

// ServiceProperties binds a named service to the cluster it is hosted on
// and to the load-balancing strategy that should pick among that
// cluster's endpoints on the service's behalf.
type ServiceProperties struct {
	ServiceName string
	ClusterName string
	// StrategyList is tried in order; the first name with a registered
	// StrategyFactory wins. StrategyName is consulted only if StrategyList
	// is empty, for compatibility with callers that only ever set a single
	// strategy; a non-empty StrategyList with no registered name yields no
	// strategy.
	StrategyList []string
	StrategyName string
	// StrategyProperties is handed to the winning factory. Each refresh
	// gives the factory its own copy so a caller mutating this map later
	// cannot alias strategy state.
	StrategyProperties map[string]any
}

func (p *ServiceProperties) resolvedStrategyNames() []string {
	if len(p.StrategyList) > 0 {
		return p.StrategyList
	}
	if p.StrategyName != "" {
		return []string{p.StrategyName}
	}
	return nil
}

func copyStrategyProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// VersionedItem wraps a stored property value with the monotonically
// increasing version and wall-clock timestamp it was stored under. A nil
// Value is a legal, "known absent" payload.
type VersionedItem[T any] struct {
	Value     T
	Version   int64
	Timestamp time.Time
}

// ClusterInfoItem pairs a cluster's properties with the PartitionAccessor
// derived from them. Both are recomputed together whenever the cluster's
// properties change, so they are always mutually consistent.
type ClusterInfoItem struct {
	Properties *ClusterProperties
	Accessor   PartitionAccessor
}
