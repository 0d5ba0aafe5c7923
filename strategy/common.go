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
	"errors"
	"sort"
	"strings"

	"github.com/JosHernan/d2"
)

var errNoCandidates = errors.New("strategy: no candidates to pick from")

// fingerprint builds a cheap, order-independent identity for a candidate
// set so stateful strategies can tell whether it's the same set of
// trackers they saw last time, without keeping the slice itself alive.
func fingerprint(candidates []*d2.TrackerClient) string {
	uris := make([]string, len(candidates))
	for i, c := range candidates {
		uris[i] = c.URI
	}
	sort.Strings(uris)
	return strings.Join(uris, "\x00")
}
