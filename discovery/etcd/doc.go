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

// Package etcd provides a d2.Publisher per property kind, backed by a
// single *clientv3.Client. Keys are laid out as /d2/<kind>/<name>, where
// kind is "uris", "clusters", or "services"; values are JSON-encoded
// property structs. A DELETE event, and an initial Get that finds no
// key, both surface as a nil value rather than an OnRemove - only an
// actual Unregister from the bus drives that.
package etcd
