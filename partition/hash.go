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

package partition

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/JosHernan/d2"
	"github.com/JosHernan/d2/internal"
)

// hashSeed is fixed so that a key always maps to the same partition
// across process restarts; the hash must be pure and seed-free from the
// caller's perspective.
const hashSeed = 0

type hashAccessor struct {
	partitionCount int
}

// NewHashAccessor builds a d2.PartitionAccessor from
// d2.HashPartitionProperties. Only the "murmur3" algorithm is
// implemented, matching the hash already vendored by this module.
func NewHashAccessor(props d2.HashPartitionProperties) (d2.PartitionAccessor, error) {
	if props.PartitionCount <= 0 {
		return nil, fmt.Errorf("partition: hash partition count must be positive, got %d", props.PartitionCount)
	}
	algo := strings.ToLower(props.Algorithm)
	if algo != "" && algo != "murmur3" {
		return nil, fmt.Errorf("partition: unsupported hash algorithm %q", props.Algorithm)
	}
	return &hashAccessor{partitionCount: props.PartitionCount}, nil
}

// Partition implements d2.PartitionAccessor by hashing the key's
// big-endian byte representation with murmur3 and reducing modulo the
// configured partition count.
func (a *hashAccessor) Partition(key int64) (int, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(key))
	sum := internal.MurmurHash3Sum(buf[:], hashSeed)
	return int(sum % uint32(a.partitionCount)), nil
}
