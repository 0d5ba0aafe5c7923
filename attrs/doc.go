// Copyright 2023 Buf Technologies, Inc.
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

// Package attrs provides a container for type-safe custom attributes.
// This can be used to add custom metadata to a TrackerClient. Custom
// attributes are declared using [NewKey] to create a strongly-typed key.
// The values can then be defined using the key's Value method.
//
// d2 itself declares one such attribute, d2.WeightAttributeKey, carrying
// the zeroth-partition weight published for a URI. A custom Strategy can
// read it from a TrackerClient without the engine needing to know about it:
//
//	weight, ok := attrs.GetValue(tracker.Attributes, d2.WeightAttributeKey)
//	if ok {
//		// bias selection toward higher-weight trackers
//	}
//
// Callers with their own StrategyFactory can declare additional keys the
// same way and populate them wherever TrackerClients are built, then read
// them back through [GetValue] in a type-safe way.
package attrs
