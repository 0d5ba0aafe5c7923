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

// clusterSubscriber reconciles the clusterIndex and fans changes out to
// every derived cache that depends on a cluster's configuration:
// transport clients, that cluster's tracker clients, and the strategies
// of every service hosted on it. It holds a non-owning back-reference to
// the engine, used only on the event thread.
type clusterSubscriber struct {
	*subscriber[*ClusterProperties]
	state *LoadBalancerState
}

func newClusterSubscriber(s *LoadBalancerState) *clusterSubscriber {
	c := &clusterSubscriber{state: s}
	c.subscriber = newSubscriber(c.handlePut, c.handleRemove)
	return c
}

// EnsureListening registers interest in clusterName's cluster property,
// invoking cb once it has initialized.
func (c *clusterSubscriber) EnsureListening(clusterName string, cb func()) {
	c.ensureListening(clusterName, cb, func() {
		c.state.clusterBus.Register(clusterName, c)
	})
}

func (c *clusterSubscriber) handlePut(clusterName string, props *ClusterProperties) {
	state := c.state

	if props == nil {
		state.clusterIndex.Store(clusterName, wrapVersioned[*ClusterInfoItem](state, nil))
		return
	}

	// Step 1: recompute the partition accessor alongside the properties
	// it was derived from, so the two are always swapped in together.
	accessor, err := state.partitionFactory(props.Partitions)
	if err != nil {
		state.logger.Warn("clusterSubscriber: no partition accessor for cluster",
			zap.String("cluster", clusterName), zap.Error(err))
		accessor = nil
	}
	state.clusterIndex.Store(clusterName, wrapVersioned(state, &ClusterInfoItem{
		Properties: props,
		Accessor:   accessor,
	}))

	// Step 2: build the new scheme -> transport client map.
	schemeToClient := make(map[string]TransportClient, len(props.PrioritizedSchemes))
	for _, scheme := range props.PrioritizedSchemes {
		lower := strings.ToLower(scheme)
		factory, ok := state.transportFactories[lower]
		if !ok {
			state.logger.Warn("clusterSubscriber: no transport client factory for scheme",
				zap.String("cluster", clusterName), zap.String("scheme", scheme))
			continue
		}
		client, err := factory.NewClient(props.Properties)
		if err != nil {
			state.logger.Warn("clusterSubscriber: failed to create transport client",
				zap.String("cluster", clusterName), zap.String("scheme", scheme), zap.Error(err))
			continue
		}
		schemeToClient[lower] = client
	}

	// Step 3: atomically replace clusterClients[clusterName], capturing
	// the previous map so its clients can be retired below.
	oldClusterClients, _ := state.clusterClients.Load(clusterName)
	state.clusterClients.Store(clusterName, schemeToClient)

	// Step 4: rebuild this cluster's tracker clients against the new
	// transport clients. The old tracker map is simply discarded:
	// trackers hold no resources of their own.
	newTrackers := make(map[string]*TrackerClient)
	if uriItem, ok := state.uriIndex.Load(clusterName); ok && uriItem != nil && uriItem.Value != nil {
		for uri, partitionDataMap := range uriItem.Value.URIs {
			tracker := buildTracker(state, clusterName, uri, partitionDataMap)
			if tracker != nil {
				newTrackers[uri] = tracker
			}
		}
	}
	state.trackerClients.Store(clusterName, newTrackers)

	// Step 5: retire the clients the old map referenced, asynchronously.
	for scheme, client := range oldClusterClients {
		client.Shutdown(func() {
			state.logger.Debug("clusterSubscriber: retired transport client",
				zap.String("cluster", clusterName), zap.String("scheme", scheme))
		})
	}

	// Step 6: every service hosted on this cluster may have gained or
	// lost schemes, so its strategies need recomputing.
	if services, ok := state.servicesPerCluster.Load(clusterName); ok {
		for serviceName := range services {
			svcItem, ok := state.serviceIndex.Load(serviceName)
			if !ok || svcItem == nil || svcItem.Value == nil {
				continue
			}
			refreshServiceStrategies(state, svcItem.Value)
		}
	}
}

func (c *clusterSubscriber) handleRemove(clusterName string) {
	// Deliberately does not tear down clusterClients or trackerClients:
	// a companion URI-removal event is expected to drive tracker
	// teardown, and transport clients are retired by the next non-nil
	// Put for this cluster, or by engine Shutdown. See
	// TestClusterSubscriber_RemoveDoesNotTearDownClients.
	c.state.clusterIndex.Delete(clusterName)
}
