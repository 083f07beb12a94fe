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

package costmodel

import (
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/atomic"
	"github.com/uber-go/tally"

	"github.com/Huawei-PaaS/firmament/pkg/api"
	"github.com/Huawei-PaaS/firmament/pkg/base"
	"github.com/Huawei-PaaS/firmament/pkg/knowledge"
	"github.com/Huawei-PaaS/firmament/pkg/labels"
	"github.com/Huawei-PaaS/firmament/pkg/labels/affinity"
	"github.com/Huawei-PaaS/firmament/pkg/scoring"
)

// CostVectorDimensions is the fixed dimensionality of the cost vector.
const CostVectorDimensions = 3

// CostVector is the multi-dimensional cost of one candidate placement
// before flattening.
type CostVector struct {
	// CPUMemCost prices how much of the machine's free CPU and memory the
	// placement would consume.
	CPUMemCost base.Cost
	// BalancedResCost penalizes placements that skew the machine's CPU
	// and memory utilization away from each other.
	BalancedResCost base.Cost
	// NodeAffinitySoftCost is omega minus the normalized node-affinity
	// preference score; carries the unset sentinel until scores have been
	// finalized for the equivalence class.
	NodeAffinitySoftCost base.Cost
}

var _ CostModel = (*CPUCostModel)(nil)

// CPUCostModel prices placements on CPU and memory fit plus node-affinity
// preferences. It owns all of its caches; collaborators are queried by
// identifier only.
//
// Mutations (AddMachine, RemoveMachine, AddTask, RemoveTask) are
// single-writer per scheduling pass; arc-cost queries may then run
// concurrently against the resulting state.
type CPUCostModel struct {
	cfg       Config
	metrics   *Metrics
	evaluator affinity.Evaluator
	scorer    *scoring.Scorer
	taskStore TaskStore
	kb        knowledge.Base

	// infinity is the largest flattened cost observed so far, plus one.
	// It only ever moves up.
	infinity *atomic.Int64

	machines      map[base.ResourceID]*api.ResourceTopologyNodeDescriptor
	tasks         map[base.TaskID]*api.TaskDescriptor
	rejectedTasks map[base.TaskID]struct{}

	taskResourceRequirement map[base.TaskID]api.ResourceVector

	ecResourceRequirement map[base.EquivClass]api.ResourceVector
	ecLabelSelectors      map[base.EquivClass][]api.LabelSelector
	ecRequirements        map[base.EquivClass]*api.TaskDescriptor
	ecTaskCount           map[base.EquivClass]uint64

	ecsForMachines map[base.ResourceID][]base.EquivClass
	ecToMachine    map[base.EquivClass]base.ResourceID
	ecToIndex      map[base.EquivClass]uint64
}

// NewCPUCostModel creates a CPU cost model reading task descriptors from
// taskStore and runtime statistics from kb.
func NewCPUCostModel(
	cfg Config,
	scope tally.Scope,
	taskStore TaskStore,
	kb knowledge.Base) *CPUCostModel {
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid cost model config")
	}
	evaluator := affinity.Evaluator{
		EmptyTermListMatchesAll: cfg.EmptyTermListMatchesAll,
	}
	return &CPUCostModel{
		cfg:       cfg,
		metrics:   NewMetrics(scope.SubScope("cost_model")),
		evaluator: evaluator,
		scorer:    scoring.NewScorer(cfg.Omega, evaluator),
		taskStore: taskStore,
		kb:        kb,

		infinity: atomic.NewInt64(cfg.Omega + 1),

		machines:      make(map[base.ResourceID]*api.ResourceTopologyNodeDescriptor),
		tasks:         make(map[base.TaskID]*api.TaskDescriptor),
		rejectedTasks: make(map[base.TaskID]struct{}),

		taskResourceRequirement: make(map[base.TaskID]api.ResourceVector),

		ecResourceRequirement: make(map[base.EquivClass]api.ResourceVector),
		ecLabelSelectors:      make(map[base.EquivClass][]api.LabelSelector),
		ecRequirements:        make(map[base.EquivClass]*api.TaskDescriptor),
		ecTaskCount:           make(map[base.EquivClass]uint64),

		ecsForMachines: make(map[base.ResourceID][]base.EquivClass),
		ecToMachine:    make(map[base.EquivClass]base.ResourceID),
		ecToIndex:      make(map[base.EquivClass]uint64),
	}
}

// Infinity returns a cost guaranteed to be strictly greater than any
// flattened cost handed out so far.
func (c *CPUCostModel) Infinity() base.Cost {
	return base.Cost(c.infinity.Load())
}

// AddMachine registers a machine and creates one equivalence class per
// schedulable slot below it. Repeated calls with an identical snapshot are
// no-ops; a changed snapshot replaces the previous registration.
func (c *CPUCostModel) AddMachine(rtnd *api.ResourceTopologyNodeDescriptor) {
	rd := &rtnd.ResourceDesc
	if rd.Type != api.ResourceMachine {
		log.WithFields(log.Fields{
			"resource_id":   rd.UID,
			"resource_type": rd.Type,
		}).Fatal("AddMachine called with a non-machine resource")
	}

	machineECs := make([]base.EquivClass, 0, rd.NumSlotsBelow)
	for index := uint64(0); index < rd.NumSlotsBelow; index++ {
		machineECs = append(machineECs, machineEquivClass(rd.FriendlyName, index))
	}

	if existing, ok := c.ecsForMachines[rd.UID]; ok {
		if equivClassesEqual(existing, machineECs) {
			c.machines[rd.UID] = rtnd
			return
		}
		c.removeMachineState(rd.UID)
	}

	for index, ec := range machineECs {
		c.ecToMachine[ec] = rd.UID
		c.ecToIndex[ec] = uint64(index)
	}
	c.ecsForMachines[rd.UID] = machineECs
	c.machines[rd.UID] = rtnd
	c.updateStateGauges()

	log.WithFields(log.Fields{
		"resource_id":   rd.UID,
		"friendly_name": rd.FriendlyName,
		"slots":         rd.NumSlotsBelow,
	}).Debug("Registered machine with cost model")
}

// RemoveMachine purges a machine, its equivalence classes and every
// priority-score binding that references it.
func (c *CPUCostModel) RemoveMachine(resID base.ResourceID) {
	if _, ok := c.machines[resID]; !ok {
		log.WithField("resource_id", resID).
			Fatal("RemoveMachine called for unknown machine")
	}
	c.removeMachineState(resID)
	c.scorer.RemoveResource(resID)
	c.updateStateGauges()

	log.WithField("resource_id", resID).Debug("Removed machine from cost model")
}

func (c *CPUCostModel) removeMachineState(resID base.ResourceID) {
	for _, ec := range c.ecsForMachines[resID] {
		delete(c.ecToMachine, ec)
		delete(c.ecToIndex, ec)
	}
	delete(c.ecsForMachines, resID)
	delete(c.machines, resID)
}

// AddTask caches a task's resource requirement and registers its
// equivalence class. Tasks with unrepresentable requests are rejected:
// every arc of a rejected task is infeasible instead of the model
// crashing on them later.
func (c *CPUCostModel) AddTask(taskID base.TaskID) {
	if _, ok := c.tasks[taskID]; ok {
		return
	}
	td := c.getTaskFromStore(taskID)
	c.tasks[taskID] = td

	if !c.representable(td.ResourceRequest) {
		c.rejectedTasks[taskID] = struct{}{}
		c.metrics.RejectedTasks.Inc(1)
		c.updateStateGauges()
		log.WithFields(log.Fields{
			"task_id":   taskID,
			"cpu_cores": td.ResourceRequest.CPUCores,
			"ram_mb":    td.ResourceRequest.RAMCapMB,
		}).Warn("Rejecting task with unrepresentable resource request")
		return
	}
	c.taskResourceRequirement[taskID] = td.ResourceRequest

	ec := taskEquivClass(td)
	if _, ok := c.ecRequirements[ec]; !ok {
		c.ecResourceRequirement[ec] = td.ResourceRequest
		c.ecLabelSelectors[ec] = td.LabelSelectors
		c.ecRequirements[ec] = td
	}
	c.ecTaskCount[ec]++
	c.updateStateGauges()

	log.WithFields(log.Fields{
		"task_id":     taskID,
		"equiv_class": ec,
	}).Debug("Registered task with cost model")
}

// RemoveTask erases all per-task caches. When the last task of an
// equivalence class is removed, the class and its score bounds go with it.
func (c *CPUCostModel) RemoveTask(taskID base.TaskID) {
	td, ok := c.tasks[taskID]
	if !ok {
		log.WithField("task_id", taskID).
			Fatal("RemoveTask called for unknown task")
	}
	delete(c.tasks, taskID)
	delete(c.taskResourceRequirement, taskID)
	if _, rejected := c.rejectedTasks[taskID]; rejected {
		delete(c.rejectedTasks, taskID)
		c.updateStateGauges()
		return
	}

	ec := taskEquivClass(td)
	c.ecTaskCount[ec]--
	if c.ecTaskCount[ec] == 0 {
		delete(c.ecTaskCount, ec)
		delete(c.ecResourceRequirement, ec)
		delete(c.ecLabelSelectors, ec)
		delete(c.ecRequirements, ec)
		c.scorer.RemoveEquivClass(ec)
		log.WithField("equiv_class", ec).
			Debug("Removed empty task equivalence class")
	}
	c.updateStateGauges()
}

// TaskToUnscheduledAgg prices the option of leaving the task unscheduled.
// Always feasible, and more expensive than any real placement within the
// omega budget.
func (c *CPUCostModel) TaskToUnscheduledAgg(taskID base.TaskID) ArcDescriptor {
	c.getTask(taskID)
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{
		Cost:     base.Cost(c.cfg.UnscheduledAggCostFactor * c.cfg.Omega),
		Capacity: 1,
		Feasible: true,
	}
}

// UnscheduledAggToSink drains a job's unscheduled aggregator: zero cost,
// capacity for every task of the job.
func (c *CPUCostModel) UnscheduledAggToSink(jobID base.JobID) ArcDescriptor {
	var jobTasks uint64
	for _, td := range c.tasks {
		if td.Job == jobID {
			jobTasks++
		}
	}
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{Cost: 0, Capacity: jobTasks, Feasible: true}
}

// TaskToResourceNode prices a direct task-to-machine preference arc.
func (c *CPUCostModel) TaskToResourceNode(
	taskID base.TaskID, resID base.ResourceID) ArcDescriptor {
	td := c.getTask(taskID)
	rtnd := c.getMachine(resID)
	rd := &rtnd.ResourceDesc

	if _, rejected := c.rejectedTasks[taskID]; rejected {
		return c.infeasibleArc()
	}
	if !c.evaluator.SatisfiesPlacementConstraints(rd, td) {
		return c.infeasibleArc()
	}
	req := c.taskResourceRequirement[taskID]
	if !req.Fits(rd.AvailableResources) {
		return c.infeasibleArc()
	}

	cost := c.FlattenCostVector(c.buildCostVector(req, rd, taskEquivClass(td), td))
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{Cost: cost, Capacity: 1, Feasible: true}
}

// ResourceNodeToResourceNode prices an arc between two adjacent nodes of
// the resource topology. Cost grows with the destination's depth, so more
// specific placements are never cheaper purely through topology.
func (c *CPUCostModel) ResourceNodeToResourceNode(
	src, dst *api.ResourceTopologyNodeDescriptor) ArcDescriptor {
	capacity := dst.ResourceDesc.NumSlotsBelow
	if capacity == 0 {
		capacity = 1
	}
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{
		Cost:     base.Cost(c.cfg.TopologyHopCost) * base.Cost(dst.Depth),
		Capacity: capacity,
		Feasible: true,
	}
}

// LeafResourceNodeToSink connects a leaf of the topology to the sink.
func (c *CPUCostModel) LeafResourceNodeToSink(
	resID base.ResourceID) ArcDescriptor {
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{Cost: 0, Capacity: 1, Feasible: true}
}

// TaskContinuation prices keeping a running task where it is. The longer
// a task has run relative to its class's historical average, the cheaper
// it is to let it finish.
func (c *CPUCostModel) TaskContinuation(taskID base.TaskID) ArcDescriptor {
	td := c.getTask(taskID)
	if td.State != api.TaskStateRunning || td.ScheduledToResource == "" {
		log.WithField("task_id", taskID).
			Fatal("TaskContinuation called for a task that is not running")
	}
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{
		Cost:     c.continuationCost(td),
		Capacity: 1,
		Feasible: true,
	}
}

// TaskPreemption prices evicting a running task, always strictly above
// continuing it.
func (c *CPUCostModel) TaskPreemption(taskID base.TaskID) ArcDescriptor {
	td := c.getTask(taskID)
	if td.State != api.TaskStateRunning || td.ScheduledToResource == "" {
		log.WithField("task_id", taskID).
			Fatal("TaskPreemption called for a task that is not running")
	}
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{
		Cost:     c.continuationCost(td) + base.Cost(c.cfg.PreemptionPenalty),
		Capacity: 1,
		Feasible: true,
	}
}

func (c *CPUCostModel) continuationCost(td *api.TaskDescriptor) base.Cost {
	remaining := 1.0
	if avg, ok := c.kb.AverageRuntimeForTEC(taskEquivClass(td)); ok {
		if total := td.TotalRunTime + avg; total > 0 {
			remaining = avg / total
		}
	}
	return base.Cost(math.Round(remaining * float64(c.cfg.ContinuationBaseCost)))
}

// TaskToEquivClassAggregator prices the arc from a task to its equivalence
// class aggregator. The aggregation itself is free; all real cost sits on
// the class's outgoing arcs.
func (c *CPUCostModel) TaskToEquivClassAggregator(
	taskID base.TaskID, ec base.EquivClass) ArcDescriptor {
	c.getTask(taskID)
	if _, rejected := c.rejectedTasks[taskID]; rejected {
		return c.infeasibleArc()
	}
	c.requireTaskEquivClass(ec)
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{Cost: 0, Capacity: 1, Feasible: true}
}

// EquivClassToResourceNode prices placing tasks of an equivalence class on
// a machine. Capacity is how many tasks of the class's shape still fit.
// The cost equals what every member task would compute for the same
// machine: the class-level arc is a compression, not an approximation.
func (c *CPUCostModel) EquivClassToResourceNode(
	ec base.EquivClass, resID base.ResourceID) ArcDescriptor {
	td := c.requireTaskEquivClass(ec)
	rtnd := c.getMachine(resID)
	rd := &rtnd.ResourceDesc

	if !c.evaluator.SatisfiesPlacementConstraints(rd, td) {
		return c.infeasibleArc()
	}
	req := c.ecResourceRequirement[ec]
	capacity := taskCapacity(req, rd.AvailableResources, rd.NumSlotsBelow)
	if capacity == 0 {
		return c.infeasibleArc()
	}

	cost := c.FlattenCostVector(c.buildCostVector(req, rd, ec, td))
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{Cost: cost, Capacity: capacity, Feasible: true}
}

// EquivClassToEquivClass prices the arc from a task equivalence class to
// one machine equivalence class (one slot of a machine).
func (c *CPUCostModel) EquivClassToEquivClass(
	tec1, tec2 base.EquivClass) ArcDescriptor {
	td := c.requireTaskEquivClass(tec1)
	machineID, ok := c.ecToMachine[tec2]
	if !ok {
		log.WithField("equiv_class", tec2).
			Fatal("Unknown machine equivalence class in arc query")
	}
	rtnd := c.getMachine(machineID)
	rd := &rtnd.ResourceDesc

	if !c.evaluator.SatisfiesPlacementConstraints(rd, td) {
		return c.infeasibleArc()
	}
	req := c.ecResourceRequirement[tec1]
	if !req.Fits(rd.AvailableResources) {
		return c.infeasibleArc()
	}

	cost := c.FlattenCostVector(c.buildCostVector(req, rd, tec1, td))
	c.metrics.ArcsComputed.Inc(1)
	return ArcDescriptor{Cost: cost, Capacity: 1, Feasible: true}
}

// GetTaskEquivClasses returns the equivalence classes of a task; rejected
// tasks have none.
func (c *CPUCostModel) GetTaskEquivClasses(
	taskID base.TaskID) []base.EquivClass {
	td := c.getTask(taskID)
	if _, rejected := c.rejectedTasks[taskID]; rejected {
		return nil
	}
	return []base.EquivClass{taskEquivClass(td)}
}

// GetOutgoingEquivClassPrefArcs returns the machines a task equivalence
// class has preference arcs to, or the backing machine for a machine
// equivalence class.
func (c *CPUCostModel) GetOutgoingEquivClassPrefArcs(
	ec base.EquivClass) []base.ResourceID {
	if machineID, ok := c.ecToMachine[ec]; ok {
		return []base.ResourceID{machineID}
	}
	td := c.requireTaskEquivClass(ec)
	req := c.ecResourceRequirement[ec]

	var prefArcs []base.ResourceID
	for resID, rtnd := range c.machines {
		rd := &rtnd.ResourceDesc
		if !c.evaluator.SatisfiesPlacementConstraints(rd, td) {
			continue
		}
		if taskCapacity(req, rd.AvailableResources, rd.NumSlotsBelow) == 0 {
			continue
		}
		prefArcs = append(prefArcs, resID)
	}
	return prefArcs
}

// GetTaskPreferenceArcs returns the machines a task has preference arcs
// to: those satisfying its hard constraints with room for its request.
func (c *CPUCostModel) GetTaskPreferenceArcs(
	taskID base.TaskID) []base.ResourceID {
	td := c.getTask(taskID)
	if _, rejected := c.rejectedTasks[taskID]; rejected {
		return nil
	}
	req := c.taskResourceRequirement[taskID]

	var prefArcs []base.ResourceID
	for resID, rtnd := range c.machines {
		rd := &rtnd.ResourceDesc
		if !c.evaluator.SatisfiesPlacementConstraints(rd, td) {
			continue
		}
		if !req.Fits(rd.AvailableResources) {
			continue
		}
		prefArcs = append(prefArcs, resID)
	}
	return prefArcs
}

// GetEquivClassToEquivClassesArcs returns the machine equivalence classes
// a task equivalence class connects to: every slot class of every machine
// that is feasible for it.
func (c *CPUCostModel) GetEquivClassToEquivClassesArcs(
	ec base.EquivClass) []base.EquivClass {
	if _, ok := c.ecToMachine[ec]; ok {
		return nil
	}
	td := c.requireTaskEquivClass(ec)
	req := c.ecResourceRequirement[ec]

	var ecArcs []base.EquivClass
	for _, rtnd := range c.machines {
		rd := &rtnd.ResourceDesc
		if !c.evaluator.SatisfiesPlacementConstraints(rd, td) {
			continue
		}
		if !req.Fits(rd.AvailableResources) {
			continue
		}
		ecArcs = append(ecArcs, c.ecsForMachines[rd.UID]...)
	}
	return ecArcs
}

// CalculatePrioritiesCost scores one candidate resource for an
// equivalence class across both soft-constraint categories.
func (c *CPUCostModel) CalculatePrioritiesCost(
	ec base.EquivClass, rd *api.ResourceDescriptor) {
	td := c.requireTaskEquivClass(ec)
	c.scorer.CalculatePriorityCost(ec, rd, td)
	c.metrics.PriorityScorePasses.Inc(1)
}

// FinalizePriorityScores normalizes the class's raw scores once every
// candidate has been scored in the current pass.
func (c *CPUCostModel) FinalizePriorityScores(ec base.EquivClass) {
	c.requireTaskEquivClass(ec)
	c.scorer.FinalizeScores(ec)
}

// ScoreCandidates scores a batch of candidate resources for an
// equivalence class concurrently and finalizes once all scoring writes
// have completed.
func (c *CPUCostModel) ScoreCandidates(
	ec base.EquivClass, rds []*api.ResourceDescriptor) {
	td := c.requireTaskEquivClass(ec)

	var wg sync.WaitGroup
	for _, rd := range rds {
		wg.Add(1)
		go func(rd *api.ResourceDescriptor) {
			defer wg.Done()
			c.scorer.CalculatePriorityCost(ec, rd, td)
		}(rd)
	}
	wg.Wait()
	c.metrics.PriorityScorePasses.Inc(int64(len(rds)))
	c.scorer.FinalizeScores(ec)
}

// FlattenCostVector reduces a cost vector to one scalar: each dimension
// clipped to [0, omega], weighted and summed. The running infinity
// watermark is bumped past every value handed out.
func (c *CPUCostModel) FlattenCostVector(cv CostVector) base.Cost {
	flat := c.clip(cv.CPUMemCost)*base.Cost(c.cfg.CPUMemCostWeight) +
		c.clip(cv.BalancedResCost)*base.Cost(c.cfg.BalancedResCostWeight) +
		c.clip(cv.NodeAffinitySoftCost)*base.Cost(c.cfg.NodeAffinityCostWeight)
	c.observeCost(flat)
	return flat
}

func (c *CPUCostModel) clip(cost base.Cost) base.Cost {
	if cost < 0 {
		return 0
	}
	if cost > base.Cost(c.cfg.Omega) {
		return base.Cost(c.cfg.Omega)
	}
	return cost
}

func (c *CPUCostModel) observeCost(cost base.Cost) {
	for {
		current := c.infinity.Load()
		if int64(cost) < current {
			return
		}
		if c.infinity.CAS(current, int64(cost)+1) {
			return
		}
	}
}

func (c *CPUCostModel) buildCostVector(
	req api.ResourceVector,
	rd *api.ResourceDescriptor,
	ec base.EquivClass,
	td *api.TaskDescriptor) CostVector {
	omega := float64(c.cfg.Omega)

	cpuFrac := usageFraction(req.CPUCores, rd.AvailableResources.CPUCores)
	memFrac := usageFraction(
		float64(req.RAMCapMB), float64(rd.AvailableResources.RAMCapMB))

	cpuAfter := usedFractionAfter(
		req.CPUCores,
		rd.AvailableResources.CPUCores,
		rd.ResourceCapacity.CPUCores)
	memAfter := usedFractionAfter(
		float64(req.RAMCapMB),
		float64(rd.AvailableResources.RAMCapMB),
		float64(rd.ResourceCapacity.RAMCapMB))

	return CostVector{
		CPUMemCost:           base.Cost(math.Round(omega * (cpuFrac + memFrac) / 2)),
		BalancedResCost:      base.Cost(math.Round(omega * math.Abs(cpuAfter-memAfter))),
		NodeAffinitySoftCost: c.nodeAffinitySoftCost(ec, rd, td),
	}
}

func (c *CPUCostModel) nodeAffinitySoftCost(
	ec base.EquivClass,
	rd *api.ResourceDescriptor,
	td *api.TaskDescriptor) base.Cost {
	if len(td.Affinity.GetNodeAffinity().GetPreferred()) == 0 {
		return 0
	}
	scores, ok := c.scorer.Scores(ec, rd.UID)
	if !ok {
		// Never scored: the sentinel exceeds omega and clips to the
		// worst soft cost.
		return base.Cost(c.cfg.Omega - scoring.UnsetScore)
	}
	return base.Cost(c.cfg.Omega - scores.NodeAffinityPriority.FinalScore)
}

func (c *CPUCostModel) infeasibleArc() ArcDescriptor {
	c.metrics.ArcsComputed.Inc(1)
	c.metrics.InfeasibleArcs.Inc(1)
	return ArcDescriptor{}
}

func (c *CPUCostModel) representable(req api.ResourceVector) bool {
	if math.IsNaN(req.CPUCores) || math.IsInf(req.CPUCores, 0) {
		return false
	}
	if req.CPUCores < 0 || req.CPUCores > c.cfg.MaxCPUCoresRequest {
		return false
	}
	return req.RAMCapMB <= c.cfg.MaxRAMMBRequest
}

func (c *CPUCostModel) getTaskFromStore(taskID base.TaskID) *api.TaskDescriptor {
	td, ok := c.taskStore.TaskByID(taskID)
	if !ok || td == nil {
		log.WithField("task_id", taskID).
			Fatal("Task descriptor missing from task store")
	}
	return td
}

func (c *CPUCostModel) getTask(taskID base.TaskID) *api.TaskDescriptor {
	td, ok := c.tasks[taskID]
	if !ok {
		log.WithField("task_id", taskID).
			Fatal("Unknown task in cost model query")
	}
	return td
}

func (c *CPUCostModel) getMachine(
	resID base.ResourceID) *api.ResourceTopologyNodeDescriptor {
	rtnd, ok := c.machines[resID]
	if !ok {
		log.WithField("resource_id", resID).
			Fatal("Unknown machine in cost model query")
	}
	return rtnd
}

func (c *CPUCostModel) requireTaskEquivClass(
	ec base.EquivClass) *api.TaskDescriptor {
	td, ok := c.ecRequirements[ec]
	if !ok {
		log.WithField("equiv_class", ec).
			Fatal("Unknown task equivalence class in cost model query")
	}
	return td
}

func (c *CPUCostModel) updateStateGauges() {
	c.metrics.TrackedMachines.Update(float64(len(c.machines)))
	c.metrics.TrackedTasks.Update(float64(len(c.tasks)))
	c.metrics.TrackedEquivClasses.Update(
		float64(len(c.ecRequirements) + len(c.ecToMachine)))
}

// usageFraction is the share of the available amount the request would
// consume; a request against nothing available counts as full usage.
func usageFraction(req, available float64) float64 {
	if req <= 0 {
		return 0
	}
	if available <= 0 {
		return 1
	}
	frac := req / available
	if frac > 1 {
		return 1
	}
	return frac
}

// usedFractionAfter is the machine's utilization in one dimension after
// the request is placed, relative to total capacity.
func usedFractionAfter(req, available, capacity float64) float64 {
	if capacity <= 0 {
		return 1
	}
	used := capacity - available + req
	if used < 0 {
		return 0
	}
	frac := used / capacity
	if frac > 1 {
		return 1
	}
	return frac
}

// MachineResIDForResource resolves a resource anywhere in the topology to
// the machine above it, walking parent pointers through nodes. A walk that
// escapes the topology without reaching a machine is a corrupt snapshot.
func MachineResIDForResource(
	nodes map[base.ResourceID]*api.ResourceTopologyNodeDescriptor,
	resID base.ResourceID) base.ResourceID {
	current, ok := nodes[resID]
	if !ok {
		log.WithField("resource_id", resID).
			Fatal("Unknown resource in topology walk")
	}
	for current.ResourceDesc.Type != api.ResourceMachine {
		parent, ok := nodes[current.ParentID]
		if !ok {
			log.WithFields(log.Fields{
				"resource_id": resID,
				"parent_id":   current.ParentID,
			}).Fatal("Topology walk escaped without reaching a machine")
		}
		current = parent
	}
	return current.ResourceDesc.UID
}

// taskCapacity is how many tasks of the given shape fit into available,
// capped at the machine's slot count.
func taskCapacity(
	req, available api.ResourceVector, slots uint64) uint64 {
	capacity := uint64(math.MaxUint64)
	if req.CPUCores > api.ResourceEpsilon {
		byCPU := uint64((available.CPUCores + api.ResourceEpsilon) / req.CPUCores)
		if byCPU < capacity {
			capacity = byCPU
		}
	}
	if req.RAMCapMB > 0 {
		byRAM := available.RAMCapMB / req.RAMCapMB
		if byRAM < capacity {
			capacity = byRAM
		}
	}
	if capacity == math.MaxUint64 {
		// A shape demanding nothing in either dimension is bounded by the
		// slot count alone, never unbounded.
		return slots
	}
	if slots > 0 && slots < capacity {
		capacity = slots
	}
	return capacity
}

// taskEquivClass derives a task's equivalence class from everything that
// influences its arc costs: resource request, legacy selectors and
// affinity. Tasks sharing a class are guaranteed identical costs.
func taskEquivClass(td *api.TaskDescriptor) base.EquivClass {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.6f:%d:", td.ResourceRequest.CPUCores, td.ResourceRequest.RAMCapMB)
	fmt.Fprintf(h, "%d:", labels.HashSelectors(td.LabelSelectors))
	fmt.Fprintf(h, "%d", hashAffinity(td.Affinity))
	return base.EquivClass(h.Sum64())
}

func machineEquivClass(machineName string, index uint64) base.EquivClass {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d", machineName, index)
	return base.EquivClass(h.Sum64())
}

func hashAffinity(a *api.Affinity) uint64 {
	if a == nil {
		return 0
	}
	h := fnv.New64a()
	if na := a.NodeAffinity; na != nil {
		if na.Required != nil {
			for _, term := range na.Required.NodeSelectorTerms {
				hashRequirements(h, term.MatchExpressions)
				io.WriteString(h, "|")
			}
		}
		for _, preferred := range na.Preferred {
			fmt.Fprintf(h, "%d:", preferred.Weight)
			hashRequirements(h, preferred.Preference.MatchExpressions)
		}
	}
	if pa := a.PodAffinity; pa != nil {
		for _, term := range pa.Required {
			hashRequirements(h, term.MatchExpressions)
			fmt.Fprintf(h, "%s|", term.TopologyKey)
		}
		for _, weighted := range pa.Preferred {
			fmt.Fprintf(h, "%d:", weighted.Weight)
			hashRequirements(h, weighted.Term.MatchExpressions)
			fmt.Fprintf(h, "%s|", weighted.Term.TopologyKey)
		}
	}
	return h.Sum64()
}

func hashRequirements(w io.Writer, reqs []api.NodeSelectorRequirement) {
	for _, req := range reqs {
		fmt.Fprintf(w, "%s/%s/%v;", req.Key, req.Operator, req.Values)
	}
}

func equivClassesEqual(a, b []base.EquivClass) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
