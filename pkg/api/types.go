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

// Package api defines the task and resource descriptors consumed by the
// cost-model core. These are snapshots supplied by the descriptor stores;
// the core never mutates them.
package api

import (
	"github.com/Huawei-PaaS/firmament/pkg/base"
)

// Label is a single key/value pair attached to a resource. A resource owns
// a set of labels with unique keys; on duplicate keys the last entry wins.
type Label struct {
	Key   string
	Value string
}

// SelectorType enumerates the closed set of label selector kinds.
type SelectorType int

const (
	// SelectorInSet matches iff the key is present and its value is in the
	// selector's value set.
	SelectorInSet SelectorType = iota
	// SelectorNotInSet matches iff the key is absent, or present with a
	// value outside the selector's value set.
	SelectorNotInSet
	// SelectorExistsKey matches iff the key is present, value irrelevant.
	SelectorExistsKey
	// SelectorNotExistsKey matches iff the key is absent.
	SelectorNotExistsKey
)

func (t SelectorType) String() string {
	switch t {
	case SelectorInSet:
		return "IN_SET"
	case SelectorNotInSet:
		return "NOT_IN_SET"
	case SelectorExistsKey:
		return "EXISTS_KEY"
	case SelectorNotExistsKey:
		return "NOT_EXISTS_KEY"
	}
	return "UNKNOWN"
}

// LabelSelector is a predicate over a resource's labels.
type LabelSelector struct {
	Type   SelectorType
	Key    string
	Values []string
}

// Node selector requirement operator names, as they appear in task
// descriptors received from the API surface.
const (
	NodeSelectorOpIn           = "In"
	NodeSelectorOpNotIn        = "NotIn"
	NodeSelectorOpExists       = "Exists"
	NodeSelectorOpDoesNotExist = "DoesNotExist"
)

// NodeSelectorRequirement is the external form of a label selector: a key,
// an operator name and a list of values.
type NodeSelectorRequirement struct {
	Key      string
	Operator string
	Values   []string
}

// NodeSelectorTerm is a conjunction of requirements. A term with no
// requirements never matches any resource.
type NodeSelectorTerm struct {
	MatchExpressions []NodeSelectorRequirement
}

// NodeSelector is a disjunction of terms. An empty term list never matches
// any resource.
type NodeSelector struct {
	NodeSelectorTerms []NodeSelectorTerm
}

// PreferredSchedulingTerm is a soft node-affinity term. Weight is in
// [1, 100], validated by the descriptor store before it reaches the core.
type PreferredSchedulingTerm struct {
	Weight     int32
	Preference NodeSelectorTerm
}

// NodeAffinity holds the hard (required) and soft (preferred) node
// affinity of a task.
type NodeAffinity struct {
	Required  *NodeSelector
	Preferred []PreferredSchedulingTerm
}

// PodAffinityTerm scopes a pod-affinity constraint to a namespace set and a
// topology key. The core evaluates its expressions against a candidate
// resource's labels; co-location bookkeeping lives with the caller.
type PodAffinityTerm struct {
	MatchExpressions []NodeSelectorRequirement
	Namespaces       []string
	TopologyKey      string
}

// WeightedPodAffinityTerm is a soft pod-affinity term, weight in [1, 100].
type WeightedPodAffinityTerm struct {
	Weight int32
	Term   PodAffinityTerm
}

// PodAffinity holds required and preferred pod-affinity terms.
type PodAffinity struct {
	Required  []PodAffinityTerm
	Preferred []WeightedPodAffinityTerm
}

// Affinity aggregates the affinity constraints of a task.
type Affinity struct {
	NodeAffinity *NodeAffinity
	PodAffinity  *PodAffinity
}

// GetNodeAffinity returns the node affinity, or nil on a nil receiver.
func (a *Affinity) GetNodeAffinity() *NodeAffinity {
	if a == nil {
		return nil
	}
	return a.NodeAffinity
}

// GetPodAffinity returns the pod affinity, or nil on a nil receiver.
func (a *Affinity) GetPodAffinity() *PodAffinity {
	if a == nil {
		return nil
	}
	return a.PodAffinity
}

// GetRequired returns the required node selector, or nil on a nil receiver.
func (n *NodeAffinity) GetRequired() *NodeSelector {
	if n == nil {
		return nil
	}
	return n.Required
}

// GetPreferred returns the preferred terms, or nil on a nil receiver.
func (n *NodeAffinity) GetPreferred() []PreferredSchedulingTerm {
	if n == nil {
		return nil
	}
	return n.Preferred
}

// ResourceVector is a resource amount in the two dimensions the CPU cost
// model prices: CPU cores (fractional) and RAM capacity in megabytes.
type ResourceVector struct {
	CPUCores float64
	RAMCapMB uint64
}

// TaskState is the lifecycle state of a task as known to the caller.
type TaskState int

const (
	// TaskStateCreated is a task not yet placed anywhere.
	TaskStateCreated TaskState = iota
	// TaskStateRunning is a task currently bound to a resource.
	TaskStateRunning
)

// TaskDescriptor is the scheduling-relevant snapshot of a task.
type TaskDescriptor struct {
	UID  base.TaskID
	Name string
	Job  base.JobID

	State TaskState
	// ScheduledToResource is the machine the task currently runs on; only
	// meaningful when State is TaskStateRunning.
	ScheduledToResource base.ResourceID
	// TotalRunTime is the accumulated runtime of the task in seconds.
	TotalRunTime float64

	ResourceRequest ResourceVector
	// LabelSelectors is the legacy simple constraint form; all selectors
	// must be satisfied by a candidate resource.
	LabelSelectors []LabelSelector
	Affinity       *Affinity
}

// ResourceType distinguishes the levels of the resource topology.
type ResourceType int

const (
	// ResourceMachine is a whole machine, the level the CPU cost model
	// aggregates over.
	ResourceMachine ResourceType = iota
	// ResourcePU is a processing unit, a leaf of the topology.
	ResourcePU
)

// ResourceDescriptor is the scheduling-relevant snapshot of a resource.
type ResourceDescriptor struct {
	UID          base.ResourceID
	FriendlyName string
	Type         ResourceType
	Labels       []Label

	ResourceCapacity   ResourceVector
	AvailableResources ResourceVector
	// NumSlotsBelow is the number of schedulable slots below this node in
	// the topology; for a machine it bounds how many equivalence class
	// aggregators the cost model creates for it.
	NumSlotsBelow uint64
}

// ResourceTopologyNodeDescriptor places a resource in the topology tree.
// Children and parents are referenced by ID, never by embedded pointer.
type ResourceTopologyNodeDescriptor struct {
	ResourceDesc ResourceDescriptor
	ParentID     base.ResourceID
	ChildrenIDs  []base.ResourceID
	// Depth is the distance from the topology root; the root is 0.
	Depth uint32
}
