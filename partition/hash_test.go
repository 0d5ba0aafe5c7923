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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JosHernan/d2"
)

func TestHashAccessor_IsDeterministicAcrossCalls(t *testing.T) {
	t.Parallel()

	accessor, err := NewHashAccessor(d2.HashPartitionProperties{Algorithm: "murmur3", PartitionCount: 8})
	require.NoError(t, err)

	first, err := accessor.Partition(482)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := accessor.Partition(482)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestHashAccessor_IsDeterministicAcrossInstances(t *testing.T) {
	t.Parallel()

	a, err := NewHashAccessor(d2.HashPartitionProperties{PartitionCount: 8})
	require.NoError(t, err)
	b, err := NewHashAccessor(d2.HashPartitionProperties{PartitionCount: 8})
	require.NoError(t, err)

	idA, err := a.Partition(482)
	require.NoError(t, err)
	idB, err := b.Partition(482)
	require.NoError(t, err)
	require.Equal(t, idA, idB)
}

func TestNewHashAccessor_RejectsUnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := NewHashAccessor(d2.HashPartitionProperties{Algorithm: "crc32", PartitionCount: 8})
	require.Error(t, err)
}

func TestNewAccessorFactory_DispatchesOnConcreteType(t *testing.T) {
	t.Parallel()

	factory := NewAccessorFactory()

	_, err := factory(d2.RangePartitionProperties{PartitionSize: 1, PartitionCount: 1})
	require.NoError(t, err)

	_, err = factory(d2.HashPartitionProperties{PartitionCount: 1})
	require.NoError(t, err)

	_, err = factory(nil)
	require.Error(t, err)
}
