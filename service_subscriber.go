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

import "go.uber.org/zap"

// serviceSubscriber reconciles the serviceIndex, the servicesPerCluster
// reverse index, and (via refreshServiceStrategies) the strategies that
// service exposes. It holds a non-owning back-reference to the engine,
// used only on the event thread.
type serviceSubscriber struct {
	*subscriber[*ServiceProperties]
	state *LoadBalancerState
}

func newServiceSubscriber(s *LoadBalancerState) *serviceSubscriber {
	svc := &serviceSubscriber{state: s}
	svc.subscriber = newSubscriber(svc.handlePut, svc.handleRemove)
	return svc
}

// EnsureListening registers interest in serviceName's service property,
// invoking cb once it has initialized.
func (svc *serviceSubscriber) EnsureListening(serviceName string, cb func()) {
	svc.ensureListening(serviceName, cb, func() {
		svc.state.serviceBus.Register(serviceName, svc)
	})
}

func (svc *serviceSubscriber) handlePut(serviceName string, props *ServiceProperties) {
	state := svc.state

	oldItem, _ := state.serviceIndex.Load(serviceName)
	state.serviceIndex.Store(serviceName, wrapVersioned(state, props))

	if props != nil {
		refreshServiceStrategies(state, props)
		addServiceToCluster(state, props.ClusterName, serviceName)
		if oldItem != nil && oldItem.Value != nil && oldItem.Value.ClusterName != props.ClusterName {
			removeServiceFromCluster(state, oldItem.Value.ClusterName, serviceName)
		}
		return
	}

	if oldItem != nil && oldItem.Value != nil {
		removeServiceFromCluster(state, oldItem.Value.ClusterName, serviceName)
	}
}

func (svc *serviceSubscriber) handleRemove(serviceName string) {
	state := svc.state

	oldItem, _ := state.serviceIndex.Load(serviceName)
	state.serviceIndex.Delete(serviceName)
	if oldItem != nil && oldItem.Value != nil {
		removeServiceFromCluster(state, oldItem.Value.ClusterName, serviceName)
	}
}

func addServiceToCluster(state *LoadBalancerState, clusterName, serviceName string) {
	existing, _ := state.servicesPerCluster.Load(clusterName)
	next := make(map[string]struct{}, len(existing)+1)
	for s := range existing {
		next[s] = struct{}{}
	}
	next[serviceName] = struct{}{}
	state.servicesPerCluster.Store(clusterName, next)
}

func removeServiceFromCluster(state *LoadBalancerState, clusterName, serviceName string) {
	existing, ok := state.servicesPerCluster.Load(clusterName)
	if !ok {
		return
	}
	next := make(map[string]struct{}, len(existing))
	for s := range existing {
		if s != serviceName {
			next[s] = struct{}{}
		}
	}
	state.servicesPerCluster.Store(clusterName, next)
}

// refreshServiceStrategies resolves svcProps's strategy factory (trying
// StrategyList in order, falling back to the legacy StrategyName), builds
// a fresh scheme -> Strategy map from the service's cluster's prioritized
// schemes, and notifies listeners. Every OnStrategyRemoved for the old
// map fires before any OnStrategyAdded for the new one.
func refreshServiceStrategies(state *LoadBalancerState, svcProps *ServiceProperties) {
	factory := resolveStrategyFactory(state, svcProps)

	newStrategies := map[string]Strategy{}
	if factory != nil {
		if clusterItem, ok := state.clusterIndex.Load(svcProps.ClusterName); ok &&
			clusterItem != nil && clusterItem.Value != nil {
			for _, scheme := range clusterItem.Value.Properties.PrioritizedSchemes {
				newStrategies[scheme] = factory.NewStrategy(svcProps.ServiceName, copyStrategyProperties(svcProps.StrategyProperties))
			}
		}
	}

	oldStrategies, _ := state.serviceStrategies.Load(svcProps.ServiceName)
	state.serviceStrategies.Store(svcProps.ServiceName, newStrategies)
	state.orderedStrategyCache.Delete(svcProps.ServiceName)

	for scheme, strat := range oldStrategies {
		state.listeners.fireStrategyRemoved(svcProps.ServiceName, scheme, strat)
	}
	for scheme, strat := range newStrategies {
		state.listeners.fireStrategyAdded(svcProps.ServiceName, scheme, strat)
	}
}

func resolveStrategyFactory(state *LoadBalancerState, svcProps *ServiceProperties) StrategyFactory {
	for _, name := range svcProps.resolvedStrategyNames() {
		if factory, ok := state.strategyFactories[name]; ok {
			return factory
		}
	}
	if len(svcProps.resolvedStrategyNames()) > 0 {
		state.logger.Warn("refreshServiceStrategies: no registered strategy factory resolved",
			zap.String("service", svcProps.ServiceName))
	}
	return nil
}
