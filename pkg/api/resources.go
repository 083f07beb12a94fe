// Copyright (c) The Firmament Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import "math"

// ResourceEpsilon absorbs floating point noise when comparing CPU core
// amounts.
const ResourceEpsilon = 1e-9

// a safe less than or equal to comparator which takes epsilon into
// consideration.
func lessThanOrEqual(f1, f2 float64) bool {
	v := f1 - f2
	if math.Abs(v) < ResourceEpsilon {
		return true
	}
	return v < 0
}

// Fits returns true iff the vector fits entirely inside available.
func (v ResourceVector) Fits(available ResourceVector) bool {
	return lessThanOrEqual(v.CPUCores, available.CPUCores) &&
		v.RAMCapMB <= available.RAMCapMB
}

// IsZero returns true iff the vector requests nothing in any dimension.
func (v ResourceVector) IsZero() bool {
	return math.Abs(v.CPUCores) < ResourceEpsilon && v.RAMCapMB == 0
}
