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

// listenerRegistry holds the set of Listeners notified of tracker-client
// and strategy churn. It is only ever mutated and only ever walked on
// the event thread, so it needs no locking of its own.
type listenerRegistry struct {
	listeners []Listener
}

func (r *listenerRegistry) AddListener(l Listener) {
	r.listeners = append(r.listeners, l)
}

func (r *listenerRegistry) RemoveListener(l Listener) {
	for i, existing := range r.listeners {
		if existing == l {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

func (r *listenerRegistry) Count() int {
	return len(r.listeners)
}

func (r *listenerRegistry) fireClientAdded(clusterName string, tracker *TrackerClient) {
	for _, l := range r.listeners {
		l.OnClientAdded(clusterName, tracker)
	}
}

func (r *listenerRegistry) fireClientRemoved(clusterName string, tracker *TrackerClient) {
	for _, l := range r.listeners {
		l.OnClientRemoved(clusterName, tracker)
	}
}

func (r *listenerRegistry) fireStrategyAdded(serviceName, scheme string, strategy Strategy) {
	for _, l := range r.listeners {
		l.OnStrategyAdded(serviceName, scheme, strategy)
	}
}

func (r *listenerRegistry) fireStrategyRemoved(serviceName, scheme string, strategy Strategy) {
	for _, l := range r.listeners {
		l.OnStrategyRemoved(serviceName, scheme, strategy)
	}
}
