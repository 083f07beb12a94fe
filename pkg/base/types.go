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

// Package base holds the scalar identifier types shared by the scheduling
// core. All cross-component lookups are keyed by these identifiers rather
// than by embedded references.
package base

import (
	"github.com/pborman/uuid"
)

// TaskID uniquely identifies a task for the lifetime of the scheduler.
type TaskID uint64

// JobID uniquely identifies a job (a collection of tasks).
type JobID uint64

// EquivClass identifies an equivalence class aggregator node in the flow
// graph. Task and machine equivalence classes share one identifier space.
type EquivClass uint64

// ResourceID identifies a resource (machine, socket, core or PU) in the
// resource topology. It is the string form of a UUID.
type ResourceID string

// Cost is the scalar cost attached to an arc in the flow graph.
type Cost int64

// NewResourceID generates a fresh random ResourceID.
func NewResourceID() ResourceID {
	return ResourceID(uuid.New())
}

// Valid returns true iff the resource ID parses as a UUID.
func (r ResourceID) Valid() bool {
	return uuid.Parse(string(r)) != nil
}

func (r ResourceID) String() string {
	return string(r)
}
