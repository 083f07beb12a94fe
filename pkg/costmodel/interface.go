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

// Package costmodel computes the arc costs and feasibility decisions the
// flow solver builds its graph from. One method exists per arc kind; a
// returned descriptor with Feasible == false means "omit this arc".
package costmodel

import (
	"github.com/Huawei-PaaS/firmament/pkg/api"
	"github.com/Huawei-PaaS/firmament/pkg/base"
)

// ArcDescriptor is the unit handed to the flow solver for one candidate
// arc: its cost, its capacity, and whether it should exist at all.
type ArcDescriptor struct {
	Cost     base.Cost
	Capacity uint64
	Feasible bool
}

// TaskStore provides task descriptors to the cost model. It is a read-only
// collaborator; the cost model never writes through it.
type TaskStore interface {
	TaskByID(id base.TaskID) (*api.TaskDescriptor, bool)
}

// CostModel is the capability the flow solver programs against. Alternate
// cost models can be substituted without changes to the solver.
//
// Mutating calls (AddMachine, RemoveMachine, AddTask, RemoveTask) are
// single-writer per scheduling pass and must not overlap the arc-cost
// queries of the same pass.
type CostModel interface {
	// Costs pertaining to leaving tasks unscheduled. Always feasible:
	// these arcs are the safety valve that guarantees the solver a
	// feasible solution.
	TaskToUnscheduledAgg(taskID base.TaskID) ArcDescriptor
	UnscheduledAggToSink(jobID base.JobID) ArcDescriptor

	// Per-task costs into the resource topology.
	TaskToResourceNode(taskID base.TaskID, resID base.ResourceID) ArcDescriptor

	// Costs within the resource topology.
	ResourceNodeToResourceNode(
		src, dst *api.ResourceTopologyNodeDescriptor) ArcDescriptor
	LeafResourceNodeToSink(resID base.ResourceID) ArcDescriptor

	// Costs for already-running tasks. Preemption is always priced
	// strictly above continuation for the same task.
	TaskContinuation(taskID base.TaskID) ArcDescriptor
	TaskPreemption(taskID base.TaskID) ArcDescriptor

	// Costs to and from equivalence class aggregators.
	TaskToEquivClassAggregator(
		taskID base.TaskID, ec base.EquivClass) ArcDescriptor
	EquivClassToResourceNode(
		ec base.EquivClass, resID base.ResourceID) ArcDescriptor
	EquivClassToEquivClass(tec1, tec2 base.EquivClass) ArcDescriptor

	// Preference-arc queries used by the solver to decide which arcs to
	// materialize.
	GetTaskEquivClasses(taskID base.TaskID) []base.EquivClass
	GetOutgoingEquivClassPrefArcs(ec base.EquivClass) []base.ResourceID
	GetTaskPreferenceArcs(taskID base.TaskID) []base.ResourceID
	GetEquivClassToEquivClassesArcs(ec base.EquivClass) []base.EquivClass

	// CalculatePrioritiesCost scores one candidate resource for an
	// equivalence class; FinalizePriorityScores normalizes once every
	// candidate of the class has been scored. Arcs queried before
	// finalization carry the unset sentinel soft cost.
	CalculatePrioritiesCost(ec base.EquivClass, rd *api.ResourceDescriptor)
	FinalizePriorityScores(ec base.EquivClass)

	// Cluster-event driven state transitions.
	AddMachine(rtnd *api.ResourceTopologyNodeDescriptor)
	RemoveMachine(resID base.ResourceID)
	AddTask(taskID base.TaskID)
	RemoveTask(taskID base.TaskID)
}
