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

import "github.com/JosHernan/d2"

// Name constants match the strategy names a ServiceProperties.StrategyList
// or legacy StrategyName field may reference.
const (
	NameRoundRobin        = "roundRobin"
	NameRandom            = "random"
	NamePowerOfTwoChoices = "powerOfTwoChoices"
	NameLeastLoaded       = "leastLoaded"
)

// Factories returns every reference StrategyFactory keyed by the name it
// should be registered under with d2.WithStrategyFactory. Callers
// typically range over this map rather than wiring each factory by hand.
func Factories() map[string]d2.StrategyFactory {
	return map[string]d2.StrategyFactory{
		NameRoundRobin:        roundRobinFactory{},
		NameRandom:            randomFactory{},
		NamePowerOfTwoChoices: powerOfTwoFactory{},
		NameLeastLoaded:       leastLoadedFactory{},
	}
}
