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
	"github.com/uber-go/tally"
)

// Metrics contains all the metrics relevant to the cost model.
type Metrics struct {
	// ArcsComputed counts every arc-cost query answered.
	ArcsComputed tally.Counter
	// InfeasibleArcs counts queries answered with Feasible == false.
	InfeasibleArcs tally.Counter
	// RejectedTasks counts tasks rejected at AddTask for unrepresentable
	// resource requests.
	RejectedTasks tally.Counter
	// PriorityScorePasses counts CalculatePrioritiesCost invocations.
	PriorityScorePasses tally.Counter

	TrackedMachines     tally.Gauge
	TrackedTasks        tally.Gauge
	TrackedEquivClasses tally.Gauge
}

// NewMetrics returns a Metrics struct rooted below the given tally scope.
func NewMetrics(scope tally.Scope) *Metrics {
	arcScope := scope.SubScope("arcs")
	stateScope := scope.SubScope("state")

	return &Metrics{
		ArcsComputed:        arcScope.Counter("computed"),
		InfeasibleArcs:      arcScope.Counter("infeasible"),
		RejectedTasks:       stateScope.Counter("rejected_tasks"),
		PriorityScorePasses: scope.Counter("priority_score_passes"),

		TrackedMachines:     stateScope.Gauge("machines"),
		TrackedTasks:        stateScope.Gauge("tasks"),
		TrackedEquivClasses: stateScope.Gauge("equiv_classes"),
	}
}
