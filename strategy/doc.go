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

// Package strategy provides reference d2.StrategyFactory
// implementations: round-robin, random, power-of-two-choices, and
// least-loaded host selection. None of these call back into the engine;
// each Strategy operates purely on the slice of *d2.TrackerClient handed
// to Pick.
package strategy
