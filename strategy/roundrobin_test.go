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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JosHernan/d2"
)

func TestRoundRobin_DistributesEvenlyAcrossThreeCandidates(t *testing.T) {
	t.Parallel()

	strat := roundRobinFactory{}.NewStrategy("browsemaps", nil)
	candidates := []*d2.TrackerClient{
		{URI: "http://h1:80"},
		{URI: "http://h2:80"},
		{URI: "http://h3:80"},
	}

	counts := map[string]int{}
	for i := 0; i < 300; i++ {
		tc, done, err := strat.Pick(0, candidates)
		require.NoError(t, err)
		require.NotNil(t, tc)
		if done != nil {
			done()
		}
		counts[tc.URI]++
	}

	for _, uri := range []string{"http://h1:80", "http://h2:80", "http://h3:80"} {
		require.InDelta(t, 100, counts[uri], 25, "uri %s got %d of 300 picks", uri, counts[uri])
	}
}

func TestRoundRobin_ReshufflesOnlyWhenCandidateSetChanges(t *testing.T) {
	t.Parallel()

	strat := &roundRobin{}
	candidates := []*d2.TrackerClient{{URI: "http://h1:80"}, {URI: "http://h2:80"}}

	_, _, err := strat.Pick(0, candidates)
	require.NoError(t, err)
	order := strat.order

	_, _, err = strat.Pick(0, candidates)
	require.NoError(t, err)
	require.Equal(t, order, strat.order)

	_, _, err = strat.Pick(0, []*d2.TrackerClient{{URI: "http://h1:80"}, {URI: "http://h3:80"}})
	require.NoError(t, err)
	require.NotEqual(t, order, strat.order)
}

func TestRoundRobin_EmptyCandidatesIsAnError(t *testing.T) {
	t.Parallel()

	strat := &roundRobin{}
	_, _, err := strat.Pick(0, nil)
	require.Error(t, err)
}
