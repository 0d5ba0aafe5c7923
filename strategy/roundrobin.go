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

package strategy

import (
	"sync"
	"sync/atomic"

	"github.com/JosHernan/d2"
	"github.com/JosHernan/d2/internal"
)

type roundRobinFactory struct{}

func (roundRobinFactory) NewStrategy(string, map[string]any) d2.Strategy {
	return &roundRobin{}
}

// roundRobin cycles through candidates in a stable order, reshuffled
// only when the candidate set itself changes, so that many client
// processes sharing the same candidate list don't all hit the same host
// at the same moment (a "thundering herd" against host zero).
type roundRobin struct {
	mu          sync.Mutex
	fingerprint string
	order       []string

	counter atomic.Uint64
}

func (r *roundRobin) Pick(_ int32, candidates []*d2.TrackerClient) (*d2.TrackerClient, func(), error) {
	if len(candidates) == 0 {
		return nil, nil, errNoCandidates
	}

	byURI := make(map[string]*d2.TrackerClient, len(candidates))
	for _, c := range candidates {
		byURI[c.URI] = c
	}

	order := r.orderFor(candidates)
	idx := int(r.counter.Add(1) % uint64(len(order)))
	if tc, ok := byURI[order[idx]]; ok {
		return tc, nil, nil
	}
	// The cached order and the live candidate slice disagree, which can
	// only happen if they raced a concurrent update; fall back rather
	// than return an inconsistent pick.
	return candidates[idx%len(candidates)], nil, nil
}

func (r *roundRobin) orderFor(candidates []*d2.TrackerClient) []string {
	fp := fingerprint(candidates)

	r.mu.Lock()
	defer r.mu.Unlock()
	if fp == r.fingerprint && len(r.order) == len(candidates) {
		return r.order
	}

	order := make([]string, len(candidates))
	for i, c := range candidates {
		order[i] = c.URI
	}
	internal.NewRand().Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	r.order = order
	r.fingerprint = fp
	return order
}
