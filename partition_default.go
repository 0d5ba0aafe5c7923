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

package d2

import "fmt"

// defaultPartitionAccessorFactory is installed when no
// WithPartitionAccessorFactory option is supplied. The engine does not
// mandate a partitioning scheme any more than it mandates a
// host-selection algorithm, so the zero-value factory simply reports
// every PartitionProperties shape as unrecognized; callers that want
// range- or hash-based partitioning wire in partition.NewAccessorFactory
// explicitly.
func defaultPartitionAccessorFactory(props PartitionProperties) (PartitionAccessor, error) {
	return nil, fmt.Errorf("d2: no partition accessor factory registered for %T", props)
}
