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

func TestLeastLoaded_PrefersTheLeastLoadedCandidate(t *testing.T) {
	t.Parallel()

	strat := leastLoadedFactory{}.NewStrategy("browsemaps", nil)
	candidates := []*d2.TrackerClient{{URI: "http://h1:80"}, {URI: "http://h2:80"}}

	tc, done, err := strat.Pick(0, candidates)
	require.NoError(t, err)
	// Both candidates start idle, so the first pick is a random tie-break.
	require.Contains(t, []string{"http://h1:80", "http://h2:80"}, tc.URI)
	// Don't release the first pick's slot yet; the other candidate should
	// win the next pick.
	_ = done

	tc2, done2, err := strat.Pick(0, candidates)
	require.NoError(t, err)
	require.NotEqual(t, tc.URI, tc2.URI)
	done2()
	done()
}

func TestPowerOfTwo_TracksOutstandingLoad(t *testing.T) {
	t.Parallel()

	strat := powerOfTwoFactory{}.NewStrategy("browsemaps", nil)
	candidates := []*d2.TrackerClient{{URI: "http://h1:80"}}

	_, done, err := strat.Pick(0, candidates)
	require.NoError(t, err)
	require.NotNil(t, done)
	done()
}

func TestRandom_PicksFromCandidates(t *testing.T) {
	t.Parallel()

	strat := randomFactory{}.NewStrategy("browsemaps", nil)
	candidates := []*d2.TrackerClient{{URI: "http://h1:80"}, {URI: "http://h2:80"}}

	tc, done, err := strat.Pick(0, candidates)
	require.NoError(t, err)
	require.Contains(t, []string{"http://h1:80", "http://h2:80"}, tc.URI)
	require.Nil(t, done)
}
