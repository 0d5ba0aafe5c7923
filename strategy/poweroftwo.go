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
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/JosHernan/d2"
	"github.com/JosHernan/d2/internal"
)

type powerOfTwoFactory struct{}

func (powerOfTwoFactory) NewStrategy(string, map[string]any) d2.Strategy {
	return &powerOfTwo{rng: internal.NewRand()}
}

// powerOfTwo samples two candidates at random and picks the one with
// fewer outstanding requests, taking advantage of the "power of two
// random choices" result without the bookkeeping a full least-loaded
// heap requires.
type powerOfTwo struct {
	mu    sync.Mutex
	rng   *rand.Rand
	items map[string]*atomic.Int64
}

func (p *powerOfTwo) Pick(_ int32, candidates []*d2.TrackerClient) (*d2.TrackerClient, func(), error) {
	if len(candidates) == 0 {
		return nil, nil, errNoCandidates
	}
	if len(candidates) == 1 {
		counter := p.lockedLoad(candidates[0].URI)
		counter.Add(1)
		return candidates[0], func() { counter.Add(-1) }, nil
	}

	p.mu.Lock()
	i := p.rng.Intn(len(candidates))
	j := p.rng.Intn(len(candidates))
	loadI := p.loadLocked(candidates[i].URI)
	loadJ := p.loadLocked(candidates[j].URI)
	p.mu.Unlock()

	winner := candidates[i]
	counter := loadI
	if loadJ.Load() < loadI.Load() {
		winner = candidates[j]
		counter = loadJ
	}
	counter.Add(1)
	return winner, func() { counter.Add(-1) }, nil
}

func (p *powerOfTwo) lockedLoad(uri string) *atomic.Int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadLocked(uri)
}

// loadLocked must be called with p.mu held.
func (p *powerOfTwo) loadLocked(uri string) *atomic.Int64 {
	if p.items == nil {
		p.items = make(map[string]*atomic.Int64)
	}
	counter, ok := p.items[uri]
	if !ok {
		counter = &atomic.Int64{}
		p.items[uri] = counter
	}
	return counter
}
