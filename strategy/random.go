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

	"github.com/JosHernan/d2"
)

type randomFactory struct{}

func (randomFactory) NewStrategy(string, map[string]any) d2.Strategy {
	return random{}
}

// random picks uniformly at random among the candidates handed to it.
type random struct{}

func (random) Pick(_ int32, candidates []*d2.TrackerClient) (*d2.TrackerClient, func(), error) {
	if len(candidates) == 0 {
		return nil, nil, errNoCandidates
	}
	return candidates[rand.IntN(len(candidates))], nil, nil //nolint:gosec // doesn't need to be cryptographically secure
}
