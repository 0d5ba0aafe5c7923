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
	"fmt"

	"github.com/JosHernan/d2"
)

// rangeAccessor buckets a key into PartitionCount contiguous ranges of
// PartitionSize starting at KeyRangeStart. Keys outside the configured
// range are rejected with an error rather than silently clamped.
type rangeAccessor struct {
	keyRangeStart  int64
	partitionSize  int64
	partitionCount int
}

// NewRangeAccessor builds a d2.PartitionAccessor from
// d2.RangePartitionProperties. PartitionSize must be positive and
// PartitionCount must be positive; both are validated once, here, rather
// than on every Partition call.
func NewRangeAccessor(props d2.RangePartitionProperties) (d2.PartitionAccessor, error) {
	if props.PartitionSize <= 0 {
		return nil, fmt.Errorf("partition: range partition size must be positive, got %d", props.PartitionSize)
	}
	if props.PartitionCount <= 0 {
		return nil, fmt.Errorf("partition: range partition count must be positive, got %d", props.PartitionCount)
	}
	return &rangeAccessor{
		keyRangeStart:  props.KeyRangeStart,
		partitionSize:  props.PartitionSize,
		partitionCount: props.PartitionCount,
	}, nil
}

// Partition implements d2.PartitionAccessor. The formula mirrors the
// range-based partitioning originally used to derive this package:
// (key - keyRangeStart) / partitionSize; a key whose id falls outside
// [0, partitionCount) is rejected with an error.
func (a *rangeAccessor) Partition(key int64) (int, error) {
	if key < a.keyRangeStart {
		return 0, fmt.Errorf("partition: key %d is before range start %d", key, a.keyRangeStart)
	}
	id := (key - a.keyRangeStart) / a.partitionSize
	if id < 0 || id >= int64(a.partitionCount) {
		return 0, fmt.Errorf("partition: key %d maps to partition %d, outside [0, %d)", key, id, a.partitionCount)
	}
	return int(id), nil
}
