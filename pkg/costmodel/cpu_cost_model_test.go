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
	"io/ioutil"
	"testing"

	"github.com/golang/mock/gomock"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"github.com/uber-go/tally"

	"github.com/Huawei-PaaS/firmament/pkg/api"
	"github.com/Huawei-PaaS/firmament/pkg/base"
	"github.com/Huawei-PaaS/firmament/pkg/knowledge"
	knowledge_mocks "github.com/Huawei-PaaS/firmament/pkg/knowledge/mocks"
	"github.com/Huawei-PaaS/firmament/pkg/scoring"
)

const (
	_machineEast = base.ResourceID("aaaaaaaa-0000-0000-0000-000000000001")
	_machineWest = base.ResourceID("aaaaaaaa-0000-0000-0000-000000000002")
)

type taskStore map[base.TaskID]*api.TaskDescriptor

func (s taskStore) TaskByID(id base.TaskID) (*api.TaskDescriptor, bool) {
	td, ok := s[id]
	return td, ok
}

type CPUCostModelSuite struct {
	suite.Suite

	store taskStore
	kb    *knowledge.InMemoryBase
	model *CPUCostModel
}

func (suite *CPUCostModelSuite) SetupTest() {
	suite.store = taskStore{}
	suite.kb = knowledge.NewInMemoryBase()
	suite.model = NewCPUCostModel(
		DefaultConfig(), tally.NoopScope, suite.store, suite.kb)
}

func (suite *CPUCostModelSuite) addMachine(
	id base.ResourceID, name, zone string,
	slots uint64) *api.ResourceTopologyNodeDescriptor {
	rtnd := &api.ResourceTopologyNodeDescriptor{
		ResourceDesc: api.ResourceDescriptor{
			UID:          id,
			FriendlyName: name,
			Type:         api.ResourceMachine,
			Labels:       []api.Label{{Key: "zone", Value: zone}},
			ResourceCapacity: api.ResourceVector{
				CPUCores: 16,
				RAMCapMB: 16384,
			},
			AvailableResources: api.ResourceVector{
				CPUCores: 8,
				RAMCapMB: 8192,
			},
			NumSlotsBelow: slots,
		},
		Depth: 1,
	}
	suite.model.AddMachine(rtnd)
	return rtnd
}

func (suite *CPUCostModelSuite) addTask(
	id base.TaskID, job base.JobID,
	cpu float64, ramMB uint64) *api.TaskDescriptor {
	td := &api.TaskDescriptor{
		UID: id,
		Job: job,
		ResourceRequest: api.ResourceVector{
			CPUCores: cpu,
			RAMCapMB: ramMB,
		},
	}
	suite.registerTask(td)
	return td
}

func (suite *CPUCostModelSuite) registerTask(td *api.TaskDescriptor) {
	suite.store[td.UID] = td
	suite.model.AddTask(td.UID)
}

func (suite *CPUCostModelSuite) TestAddMachineCreatesSlotECs() {
	suite.addMachine(_machineEast, "east-1", "us-east", 2)

	machineECs := suite.model.ecsForMachines[_machineEast]
	suite.Equal(2, len(machineECs))
	for index, ec := range machineECs {
		suite.Equal(_machineEast, suite.model.ecToMachine[ec])
		suite.Equal(uint64(index), suite.model.ecToIndex[ec])
	}
}

func (suite *CPUCostModelSuite) TestAddMachineIdempotent() {
	rtnd := suite.addMachine(_machineEast, "east-1", "us-east", 2)
	before := suite.model.ecsForMachines[_machineEast]

	suite.model.AddMachine(rtnd)
	suite.Equal(before, suite.model.ecsForMachines[_machineEast])
	suite.Equal(1, len(suite.model.machines))
	suite.Equal(2, len(suite.model.ecToMachine))
}

func (suite *CPUCostModelSuite) TestAddMachineChangedSnapshotReplaces() {
	rtnd := suite.addMachine(_machineEast, "east-1", "us-east", 2)
	rtnd.ResourceDesc.NumSlotsBelow = 3
	suite.model.AddMachine(rtnd)

	suite.Equal(3, len(suite.model.ecsForMachines[_machineEast]))
	suite.Equal(3, len(suite.model.ecToMachine))
}

func (suite *CPUCostModelSuite) TestAddTaskSharesEquivClass() {
	suite.addTask(1, 100, 2, 2048)
	suite.addTask(2, 100, 2, 2048)

	ecs1 := suite.model.GetTaskEquivClasses(1)
	ecs2 := suite.model.GetTaskEquivClasses(2)
	suite.Equal(1, len(ecs1))
	suite.Equal(ecs1, ecs2)
	suite.Equal(uint64(2), suite.model.ecTaskCount[ecs1[0]])
}

func (suite *CPUCostModelSuite) TestAddTaskRejectsUnrepresentableRequest() {
	suite.addMachine(_machineEast, "east-1", "us-east", 4)
	cfg := DefaultConfig()
	suite.addTask(1, 100, cfg.MaxCPUCoresRequest+1, 1024)

	suite.Nil(suite.model.GetTaskEquivClasses(1))
	suite.Nil(suite.model.GetTaskPreferenceArcs(1))

	arc := suite.model.TaskToResourceNode(1, _machineEast)
	suite.False(arc.Feasible)

	// Leaving the task unscheduled stays feasible: the safety valve.
	unscheduled := suite.model.TaskToUnscheduledAgg(1)
	suite.True(unscheduled.Feasible)
}

func (suite *CPUCostModelSuite) TestTaskToUnscheduledAggCost() {
	suite.addTask(1, 100, 1, 1024)
	cfg := DefaultConfig()

	arc := suite.model.TaskToUnscheduledAgg(1)
	suite.True(arc.Feasible)
	suite.Equal(uint64(1), arc.Capacity)
	suite.Equal(base.Cost(cfg.UnscheduledAggCostFactor*cfg.Omega), arc.Cost)
}

func (suite *CPUCostModelSuite) TestUnscheduledAggToSinkCapacity() {
	suite.addTask(1, 100, 1, 1024)
	suite.addTask(2, 100, 1, 1024)
	suite.addTask(3, 200, 1, 1024)

	arc := suite.model.UnscheduledAggToSink(100)
	suite.True(arc.Feasible)
	suite.Equal(base.Cost(0), arc.Cost)
	suite.Equal(uint64(2), arc.Capacity)
}

func (suite *CPUCostModelSuite) TestTaskToResourceNodeSelectorFeasibility() {
	suite.addMachine(_machineEast, "east-1", "us-east", 4)
	suite.addMachine(_machineWest, "west-1", "us-west", 4)

	td := &api.TaskDescriptor{
		UID:             1,
		Job:             100,
		ResourceRequest: api.ResourceVector{CPUCores: 2, RAMCapMB: 2048},
		LabelSelectors: []api.LabelSelector{
			{Type: api.SelectorInSet, Key: "zone", Values: []string{"us-east"}},
		},
	}
	suite.registerTask(td)

	east := suite.model.TaskToResourceNode(1, _machineEast)
	suite.True(east.Feasible)
	suite.Equal(uint64(1), east.Capacity)
	suite.True(east.Cost >= 0)
	suite.True(east.Cost < suite.model.Infinity())

	west := suite.model.TaskToResourceNode(1, _machineWest)
	suite.False(west.Feasible)
}

func (suite *CPUCostModelSuite) TestTaskToResourceNodeCapacityGate() {
	suite.addMachine(_machineEast, "east-1", "us-east", 4)
	suite.addTask(1, 100, 12, 2048)

	arc := suite.model.TaskToResourceNode(1, _machineEast)
	suite.False(arc.Feasible)
}

func (suite *CPUCostModelSuite) TestEquivClassToResourceNodeCapacity() {
	suite.addMachine(_machineEast, "east-1", "us-east", 16)
	suite.addTask(1, 100, 2, 2048)

	ec := suite.model.GetTaskEquivClasses(1)[0]
	arc := suite.model.EquivClassToResourceNode(ec, _machineEast)
	suite.True(arc.Feasible)
	// 8 cores / 2 and 8192 MB / 2048 both allow four tasks.
	suite.Equal(uint64(4), arc.Capacity)
}

// A zero-demand shape fits anywhere resource-wise; its capacity is the
// slot count, never unbounded.
func (suite *CPUCostModelSuite) TestEquivClassCapacityZeroRequestBoundedBySlots() {
	suite.addMachine(_machineEast, "east-1", "us-east", 4)
	suite.addTask(1, 100, 0, 0)

	ec := suite.model.GetTaskEquivClasses(1)[0]
	arc := suite.model.EquivClassToResourceNode(ec, _machineEast)
	suite.True(arc.Feasible)
	suite.Equal(uint64(4), arc.Capacity)

	suite.addMachine(_machineWest, "west-1", "us-west", 0)
	arc = suite.model.EquivClassToResourceNode(ec, _machineWest)
	suite.False(arc.Feasible)
}

// The class-level arc is a compression of the member-task arcs: identical
// cost for the same machine.
func (suite *CPUCostModelSuite) TestEquivClassArcMatchesMemberTaskArc() {
	suite.addMachine(_machineEast, "east-1", "us-east", 16)
	suite.addTask(1, 100, 2, 2048)

	ec := suite.model.GetTaskEquivClasses(1)[0]
	taskArc := suite.model.TaskToResourceNode(1, _machineEast)
	ecArc := suite.model.EquivClassToResourceNode(ec, _machineEast)
	suite.True(taskArc.Feasible)
	suite.True(ecArc.Feasible)
	suite.Equal(taskArc.Cost, ecArc.Cost)
}

func (suite *CPUCostModelSuite) TestEquivClassToEquivClassSlotArc() {
	suite.addMachine(_machineEast, "east-1", "us-east", 2)
	suite.addTask(1, 100, 2, 2048)

	taskEC := suite.model.GetTaskEquivClasses(1)[0]
	machineECs := suite.model.GetEquivClassToEquivClassesArcs(taskEC)
	suite.Equal(2, len(machineECs))

	arc := suite.model.EquivClassToEquivClass(taskEC, machineECs[0])
	suite.True(arc.Feasible)
	suite.Equal(uint64(1), arc.Capacity)
	suite.Equal(suite.model.TaskToResourceNode(1, _machineEast).Cost, arc.Cost)
}

func (suite *CPUCostModelSuite) TestGetTaskPreferenceArcs() {
	suite.addMachine(_machineEast, "east-1", "us-east", 4)
	suite.addMachine(_machineWest, "west-1", "us-west", 4)

	td := &api.TaskDescriptor{
		UID:             1,
		Job:             100,
		ResourceRequest: api.ResourceVector{CPUCores: 2, RAMCapMB: 2048},
		Affinity: &api.Affinity{
			NodeAffinity: &api.NodeAffinity{
				Required: &api.NodeSelector{
					NodeSelectorTerms: []api.NodeSelectorTerm{
						{
							MatchExpressions: []api.NodeSelectorRequirement{
								{
									Key:      "zone",
									Operator: api.NodeSelectorOpIn,
									Values:   []string{"us-west"},
								},
							},
						},
					},
				},
			},
		},
	}
	suite.registerTask(td)

	prefArcs := suite.model.GetTaskPreferenceArcs(1)
	suite.Equal([]base.ResourceID{_machineWest}, prefArcs)

	ec := suite.model.GetTaskEquivClasses(1)[0]
	suite.Equal([]base.ResourceID{_machineWest},
		suite.model.GetOutgoingEquivClassPrefArcs(ec))
}

func (suite *CPUCostModelSuite) TestPriorityScoresBiasArcCosts() {
	east := suite.addMachine(_machineEast, "east-1", "us-east", 4)
	west := suite.addMachine(_machineWest, "west-1", "us-west", 4)

	td := &api.TaskDescriptor{
		UID:             1,
		Job:             100,
		ResourceRequest: api.ResourceVector{CPUCores: 2, RAMCapMB: 2048},
		Affinity: &api.Affinity{
			NodeAffinity: &api.NodeAffinity{
				Preferred: []api.PreferredSchedulingTerm{
					{
						Weight: 60,
						Preference: api.NodeSelectorTerm{
							MatchExpressions: []api.NodeSelectorRequirement{
								{
									Key:      "zone",
									Operator: api.NodeSelectorOpIn,
									Values:   []string{"us-east"},
								},
							},
						},
					},
					{
						Weight: 40,
						Preference: api.NodeSelectorTerm{
							MatchExpressions: []api.NodeSelectorRequirement{
								{
									Key:      "zone",
									Operator: api.NodeSelectorOpIn,
									Values:   []string{"us-east", "us-west"},
								},
							},
						},
					},
				},
			},
		},
	}
	suite.registerTask(td)
	ec := suite.model.GetTaskEquivClasses(1)[0]

	suite.model.CalculatePrioritiesCost(ec, &east.ResourceDesc)
	suite.model.CalculatePrioritiesCost(ec, &west.ResourceDesc)
	suite.model.FinalizePriorityScores(ec)

	scores, ok := suite.model.scorer.Scores(ec, _machineEast)
	suite.True(ok)
	suite.Equal(int64(100), scores.NodeAffinityPriority.Score)
	suite.Equal(int64(1000), scores.NodeAffinityPriority.FinalScore)

	scores, ok = suite.model.scorer.Scores(ec, _machineWest)
	suite.True(ok)
	suite.Equal(int64(40), scores.NodeAffinityPriority.Score)
	suite.Equal(int64(0), scores.NodeAffinityPriority.FinalScore)

	eastArc := suite.model.TaskToResourceNode(1, _machineEast)
	westArc := suite.model.TaskToResourceNode(1, _machineWest)
	suite.True(eastArc.Cost < westArc.Cost)
}

func (suite *CPUCostModelSuite) TestScoreCandidatesFinalizes() {
	east := suite.addMachine(_machineEast, "east-1", "us-east", 4)
	west := suite.addMachine(_machineWest, "west-1", "us-west", 4)

	td := &api.TaskDescriptor{
		UID:             1,
		Job:             100,
		ResourceRequest: api.ResourceVector{CPUCores: 2, RAMCapMB: 2048},
		Affinity: &api.Affinity{
			NodeAffinity: &api.NodeAffinity{
				Preferred: []api.PreferredSchedulingTerm{
					{
						Weight: 50,
						Preference: api.NodeSelectorTerm{
							MatchExpressions: []api.NodeSelectorRequirement{
								{
									Key:      "zone",
									Operator: api.NodeSelectorOpIn,
									Values:   []string{"us-east"},
								},
							},
						},
					},
				},
			},
		},
	}
	suite.registerTask(td)
	ec := suite.model.GetTaskEquivClasses(1)[0]

	suite.model.ScoreCandidates(ec, []*api.ResourceDescriptor{
		&east.ResourceDesc, &west.ResourceDesc,
	})

	scores, ok := suite.model.scorer.Scores(ec, _machineEast)
	suite.True(ok)
	suite.NotEqual(scoring.UnsetScore, scores.NodeAffinityPriority.FinalScore)
}

func (suite *CPUCostModelSuite) TestFlattenCostVectorMonotone() {
	bases := CostVector{CPUMemCost: 100, BalancedResCost: 200, NodeAffinitySoftCost: 300}
	flat := suite.model.FlattenCostVector(bases)

	increasedCPU := bases
	increasedCPU.CPUMemCost += 50
	suite.True(suite.model.FlattenCostVector(increasedCPU) >= flat)

	increasedBalance := bases
	increasedBalance.BalancedResCost += 50
	suite.True(suite.model.FlattenCostVector(increasedBalance) >= flat)

	increasedSoft := bases
	increasedSoft.NodeAffinitySoftCost += 50
	suite.True(suite.model.FlattenCostVector(increasedSoft) >= flat)
}

func (suite *CPUCostModelSuite) TestFlattenCostVectorClipsAtOmega() {
	cfg := DefaultConfig()
	flat := suite.model.FlattenCostVector(CostVector{
		CPUMemCost:           base.Cost(cfg.Omega * 10),
		BalancedResCost:      -100,
		NodeAffinitySoftCost: 0,
	})
	suite.Equal(base.Cost(cfg.Omega), flat)
}

func (suite *CPUCostModelSuite) TestInfinityMonotone() {
	before := suite.model.Infinity()
	suite.True(before > base.Cost(DefaultConfig().Omega))

	flat := suite.model.FlattenCostVector(CostVector{
		CPUMemCost:           900,
		BalancedResCost:      900,
		NodeAffinitySoftCost: 900,
	})
	after := suite.model.Infinity()
	suite.True(after > flat)
	suite.True(after >= before)

	// Small costs never pull the watermark back down.
	suite.model.FlattenCostVector(CostVector{CPUMemCost: 1})
	suite.Equal(after, suite.model.Infinity())
}

func (suite *CPUCostModelSuite) TestRemoveTaskDeletesEmptyEquivClass() {
	east := suite.addMachine(_machineEast, "east-1", "us-east", 4)
	suite.addTask(1, 100, 2, 2048)
	suite.addTask(2, 100, 2, 2048)
	ec := suite.model.GetTaskEquivClasses(1)[0]
	suite.model.CalculatePrioritiesCost(ec, &east.ResourceDesc)

	suite.model.RemoveTask(1)
	_, ok := suite.model.ecRequirements[ec]
	suite.True(ok)

	suite.model.RemoveTask(2)
	_, ok = suite.model.ecRequirements[ec]
	suite.False(ok)
	_, ok = suite.model.scorer.Scores(ec, _machineEast)
	suite.False(ok)
	_, ok = suite.model.scorer.Bounds(ec)
	suite.False(ok)
}

func (suite *CPUCostModelSuite) TestRemoveMachinePurgesScoreBindings() {
	east := suite.addMachine(_machineEast, "east-1", "us-east", 2)
	suite.addTask(1, 100, 2, 2048)
	ec := suite.model.GetTaskEquivClasses(1)[0]
	suite.model.CalculatePrioritiesCost(ec, &east.ResourceDesc)

	suite.model.RemoveMachine(_machineEast)

	suite.Equal(0, len(suite.model.machines))
	suite.Equal(0, len(suite.model.ecToMachine))
	_, ok := suite.model.scorer.Scores(ec, _machineEast)
	suite.False(ok)
}

func (suite *CPUCostModelSuite) TestResourceNodeToResourceNodeDepthMonotone() {
	shallow := &api.ResourceTopologyNodeDescriptor{
		ResourceDesc: api.ResourceDescriptor{NumSlotsBelow: 4},
		Depth:        1,
	}
	deep := &api.ResourceTopologyNodeDescriptor{
		ResourceDesc: api.ResourceDescriptor{NumSlotsBelow: 1},
		Depth:        3,
	}

	shallowArc := suite.model.ResourceNodeToResourceNode(nil, shallow)
	deepArc := suite.model.ResourceNodeToResourceNode(shallow, deep)
	suite.True(shallowArc.Feasible)
	suite.True(deepArc.Feasible)
	suite.True(deepArc.Cost >= shallowArc.Cost)
	suite.Equal(uint64(4), shallowArc.Capacity)
}

func (suite *CPUCostModelSuite) TestLeafResourceNodeToSink() {
	arc := suite.model.LeafResourceNodeToSink(_machineEast)
	suite.True(arc.Feasible)
	suite.Equal(base.Cost(0), arc.Cost)
	suite.Equal(uint64(1), arc.Capacity)
}

func (suite *CPUCostModelSuite) TestTaskToEquivClassAggregator() {
	suite.addTask(1, 100, 2, 2048)
	ec := suite.model.GetTaskEquivClasses(1)[0]

	arc := suite.model.TaskToEquivClassAggregator(1, ec)
	suite.True(arc.Feasible)
	suite.Equal(base.Cost(0), arc.Cost)
}

func (suite *CPUCostModelSuite) TestMachineResIDForResource() {
	puID := base.ResourceID("bbbbbbbb-0000-0000-0000-000000000001")
	machine := suite.addMachine(_machineEast, "east-1", "us-east", 2)
	machine.ChildrenIDs = []base.ResourceID{puID}

	nodes := map[base.ResourceID]*api.ResourceTopologyNodeDescriptor{
		_machineEast: machine,
		puID: {
			ResourceDesc: api.ResourceDescriptor{
				UID:  puID,
				Type: api.ResourcePU,
			},
			ParentID: _machineEast,
			Depth:    2,
		},
	}

	suite.Equal(_machineEast, MachineResIDForResource(nodes, puID))
	suite.Equal(_machineEast, MachineResIDForResource(nodes, _machineEast))
}

func TestCPUCostModelSuite(t *testing.T) {
	suite.Run(t, new(CPUCostModelSuite))
}

// A query against an equivalence class whose last task has been removed
// must halt instead of returning a stale cost.
func TestArcQueryAfterLastRemoveTaskHalts(t *testing.T) {
	logger := log.StandardLogger()
	originalExit := logger.ExitFunc
	originalOut := logger.Out
	logger.ExitFunc = func(int) { panic("fatal exit") }
	logger.SetOutput(ioutil.Discard)
	defer func() {
		logger.ExitFunc = originalExit
		logger.SetOutput(originalOut)
	}()

	store := taskStore{}
	model := NewCPUCostModel(
		DefaultConfig(), tally.NoopScope, store, knowledge.NewInMemoryBase())
	model.AddMachine(&api.ResourceTopologyNodeDescriptor{
		ResourceDesc: api.ResourceDescriptor{
			UID:                _machineEast,
			FriendlyName:       "east-1",
			Type:               api.ResourceMachine,
			ResourceCapacity:   api.ResourceVector{CPUCores: 16, RAMCapMB: 16384},
			AvailableResources: api.ResourceVector{CPUCores: 8, RAMCapMB: 8192},
			NumSlotsBelow:      4,
		},
		Depth: 1,
	})
	store[1] = &api.TaskDescriptor{
		UID:             1,
		Job:             100,
		ResourceRequest: api.ResourceVector{CPUCores: 2, RAMCapMB: 2048},
	}
	model.AddTask(1)
	ec := model.GetTaskEquivClasses(1)[0]
	model.RemoveTask(1)

	halted := false
	func() {
		defer func() {
			if recover() != nil {
				halted = true
			}
		}()
		model.EquivClassToResourceNode(ec, _machineEast)
	}()
	if !halted {
		t.Fatal("expected a fatal halt for a query against a removed equivalence class")
	}
}

func TestContinuationCheaperThanPreemption(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := taskStore{}
	kb := knowledge_mocks.NewMockBase(ctrl)
	model := NewCPUCostModel(DefaultConfig(), tally.NoopScope, store, kb)

	td := &api.TaskDescriptor{
		UID:                 1,
		Job:                 100,
		State:               api.TaskStateRunning,
		ScheduledToResource: _machineEast,
		TotalRunTime:        90,
		ResourceRequest:     api.ResourceVector{CPUCores: 2, RAMCapMB: 2048},
	}
	store[1] = td
	model.AddTask(1)
	ec := model.GetTaskEquivClasses(1)[0]

	kb.EXPECT().AverageRuntimeForTEC(ec).Return(float64(30), true).Times(2)

	continuation := model.TaskContinuation(1)
	preemption := model.TaskPreemption(1)
	if !continuation.Feasible || !preemption.Feasible {
		t.Fatal("continuation and preemption arcs must be feasible")
	}
	// 90s into a class averaging 30s: a quarter of the expected total
	// remains, so a quarter of the base cost does too.
	if continuation.Cost != base.Cost(25) {
		t.Fatalf("unexpected continuation cost %d", continuation.Cost)
	}
	if preemption.Cost != continuation.Cost+base.Cost(DefaultConfig().PreemptionPenalty) {
		t.Fatalf("unexpected preemption cost %d", preemption.Cost)
	}
}

func TestContinuationWithoutStatsUsesBaseCost(t *testing.T) {
	store := taskStore{}
	model := NewCPUCostModel(
		DefaultConfig(), tally.NoopScope, store, knowledge.NewInMemoryBase())

	store[1] = &api.TaskDescriptor{
		UID:                 1,
		State:               api.TaskStateRunning,
		ScheduledToResource: _machineEast,
		ResourceRequest:     api.ResourceVector{CPUCores: 1, RAMCapMB: 1024},
	}
	model.AddTask(1)

	continuation := model.TaskContinuation(1)
	if continuation.Cost != base.Cost(DefaultConfig().ContinuationBaseCost) {
		t.Fatalf("unexpected continuation cost %d", continuation.Cost)
	}
}
