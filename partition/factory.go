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

// NewAccessorFactory returns a d2.PartitionAccessorFactory that
// dispatches on the concrete type of its argument: range-based
// properties build a range accessor, hash-based properties build a hash
// accessor, a nil value and anything else are construction-time errors
// rather than panics.
func NewAccessorFactory() d2.PartitionAccessorFactory {
	return func(props d2.PartitionProperties) (d2.PartitionAccessor, error) {
		switch p := props.(type) {
		case d2.RangePartitionProperties:
			return NewRangeAccessor(p)
		case d2.HashPartitionProperties:
			return NewHashAccessor(p)
		case nil:
			return nil, fmt.Errorf("partition: no partition properties configured")
		default:
			return nil, fmt.Errorf("partition: unrecognized partition properties type %T", props)
		}
	}
}
