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
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/JosHernan/d2"
)

type leastLoadedFactory struct{}

func (leastLoadedFactory) NewStrategy(string, map[string]any) d2.Strategy {
	return &leastLoaded{loads: make(map[string]*atomic.Int64)}
}

// leastLoaded scans every candidate and picks the one with the fewest
// outstanding requests, breaking ties at random. Unlike the reference
// this package was adapted from, it doesn't need a heap: the engine
// already filters candidates down to one cluster's tracker clients
// before calling Pick, so the scan is small.
type leastLoaded struct {
	mu    sync.Mutex
	loads map[string]*atomic.Int64
}

func (l *leastLoaded) Pick(_ int32, candidates []*d2.TrackerClient) (*d2.TrackerClient, func(), error) {
	if len(candidates) == 0 {
		return nil, nil, errNoCandidates
	}

	l.mu.Lock()
	best := candidates[0]
	bestLoad := l.loadLocked(best.URI)
	ties := []*d2.TrackerClient{best}
	for _, c := range candidates[1:] {
		load := l.loadLocked(c.URI)
		switch {
		case load.Load() < bestLoad.Load():
			best, bestLoad = c, load
			ties = ties[:0]
			ties = append(ties, c)
		case load.Load() == bestLoad.Load():
			ties = append(ties, c)
		}
	}
	if len(ties) > 1 {
		best = ties[rand.IntN(len(ties))] //nolint:gosec // doesn't need to be cryptographically secure
		bestLoad = l.loadLocked(best.URI)
	}
	l.mu.Unlock()

	bestLoad.Add(1)
	return best, func() { bestLoad.Add(-1) }, nil
}

// loadLocked must be called with l.mu held.
func (l *leastLoaded) loadLocked(uri string) *atomic.Int64 {
	counter, ok := l.loads[uri]
	if !ok {
		counter = &atomic.Int64{}
		l.loads[uri] = counter
	}
	return counter
}
