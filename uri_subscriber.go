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
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/JosHernan/d2/attrs"
)

// uriSubscriber reconciles the uriIndex and the per-cluster tracker
// client maps whenever a cluster's set of live URIs changes. It holds a
// non-owning back-reference to the engine, used only on the event
// thread.
type uriSubscriber struct {
	*subscriber[*UriProperties]
	state *LoadBalancerState
}

func newURISubscriber(s *LoadBalancerState) *uriSubscriber {
	u := &uriSubscriber{state: s}
	u.subscriber = newSubscriber(u.handlePut, u.handleRemove)
	return u
}

// EnsureListening registers interest in clusterName's URI property,
// invoking cb once it has initialized.
func (u *uriSubscriber) EnsureListening(clusterName string, cb func()) {
	u.ensureListening(clusterName, cb, func() {
		u.state.uriBus.Register(clusterName, u)
	})
}

func (u *uriSubscriber) handlePut(clusterName string, props *UriProperties) {
	state := u.state

	existing, _ := state.trackerClients.Load(clusterName)
	next := make(map[string]*TrackerClient, len(existing))
	for uri, tracker := range existing {
		next[uri] = tracker
	}

	if props == nil {
		for uri, tracker := range existing {
			delete(next, uri)
			state.listeners.fireClientRemoved(clusterName, tracker)
		}
		state.trackerClients.Store(clusterName, next)
		state.uriIndex.Store(clusterName, wrapVersioned[*UriProperties](state, nil))
		return
	}

	for uri, partitionDataMap := range props.URIs {
		if _, ok := next[uri]; ok {
			continue
		}
		tracker := buildTracker(state, clusterName, uri, partitionDataMap)
		if tracker == nil {
			continue
		}
		next[uri] = tracker
		state.listeners.fireClientAdded(clusterName, tracker)
	}

	state.uriIndex.Store(clusterName, wrapVersioned(state, props))

	for uri, tracker := range existing {
		if _, stillPresent := props.URIs[uri]; stillPresent {
			continue
		}
		delete(next, uri)
		state.listeners.fireClientRemoved(clusterName, tracker)
	}

	state.trackerClients.Store(clusterName, next)
}

// handleRemove drops the cluster's uriIndex entry only. Tracker-client
// lifecycle is driven exclusively by URI add/remove within handlePut, not
// by a cluster's removal from the discovery stream, to match the
// ordering guarantees the rest of the engine assumes.
func (u *uriSubscriber) handleRemove(clusterName string) {
	u.state.uriIndex.Delete(clusterName)
}

// buildTracker resolves the transport client for uri's scheme within
// cluster and, if found, wraps it in a fresh TrackerClient. It returns
// nil (after logging) if the cluster or the scheme is unknown.
func buildTracker(state *LoadBalancerState, cluster, uri string, partitionDataMap map[int32]PartitionData) *TrackerClient {
	clients, ok := state.clusterClients.Load(cluster)
	if !ok {
		state.logger.Warn("buildTracker: unknown cluster", zap.String("cluster", cluster), zap.String("uri", uri))
		return nil
	}

	scheme := schemeOf(uri)
	transport, ok := clients[scheme]
	if !ok {
		state.logger.Warn("buildTracker: no transport client for scheme",
			zap.String("cluster", cluster), zap.String("uri", uri), zap.String("scheme", scheme))
		return nil
	}

	tracker := &TrackerClient{
		URI:              uri,
		Scheme:           scheme,
		PartitionDataMap: partitionDataMap,
		Transport:        transport,
	}
	if data, ok := partitionDataMap[0]; ok {
		tracker.Attributes = attrs.New(WeightAttributeKey.Value(data.Weight))
	}
	return tracker
}

func schemeOf(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Scheme)
}
