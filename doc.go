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

// Package d2 implements a client-side, discovery-driven service load
// balancer. Three property kinds arrive as events from a discovery
// publisher - URIs, clusters, and services - and are reconciled into
// three indexes and a set of derived caches (transport clients, tracker
// clients, and per-service strategies) by a single-writer event thread.
//
// Everything that mutates engine state runs on that event thread.
// Everything that reads it (the Get* methods on [LoadBalancerState]) is
// lock-free and safe to call from any goroutine.
package d2
