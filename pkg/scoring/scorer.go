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

// Package scoring computes and normalizes soft-constraint priority scores
// for (equivalence class, resource) pairs. Raw scores are the sum of the
// weights of the preferred terms a candidate satisfies; once every
// candidate of an equivalence class has been scored, FinalizeScores maps
// the observed [min, max] range onto [0, omega].
package scoring

import (
	"sync"

	"github.com/Huawei-PaaS/firmament/pkg/api"
	"github.com/Huawei-PaaS/firmament/pkg/base"
	"github.com/Huawei-PaaS/firmament/pkg/labels"
	"github.com/Huawei-PaaS/firmament/pkg/labels/affinity"
)

// UnsetScore is the sentinel carried by FinalScore and by min/max bounds
// before any candidate has been scored.
const UnsetScore int64 = -1

// PriorityScore is the score of one soft-constraint category for one
// (equivalence class, resource) pair.
type PriorityScore struct {
	// Satisfy is false when the category did not apply to the task at all
	// (no preferred terms declared); such scores contribute nothing.
	Satisfy bool
	// Score is the raw score: the summed weights of satisfied terms.
	Score int64
	// FinalScore is the normalized score in [0, omega], UnsetScore until
	// FinalizeScores has run for the equivalence class.
	FinalScore int64
}

// PriorityScoresList groups the per-category scores of one pair.
type PriorityScoresList struct {
	NodeAffinityPriority PriorityScore
	PodAffinityPriority  PriorityScore
}

// MinMaxScore is the running raw-score range of one category, both ends
// UnsetScore before the first observation.
type MinMaxScore struct {
	Min int64
	Max int64
}

// MinMaxScores groups the per-category ranges of one equivalence class.
type MinMaxScores struct {
	NodeAffinityPriority MinMaxScore
	PodAffinityPriority  MinMaxScore
}

type categoryBounds struct {
	bound MinMaxScore
	// satisfied records whether the bound was set by a satisfied score.
	// An unsatisfied score may seed the bound while it is the only
	// observation, but is displaced by the first satisfied one.
	satisfied bool
}

func newCategoryBounds() *categoryBounds {
	return &categoryBounds{bound: MinMaxScore{Min: UnsetScore, Max: UnsetScore}}
}

func (b *categoryBounds) update(score PriorityScore) {
	if !score.Satisfy {
		if b.bound.Max != UnsetScore {
			return
		}
		b.bound.Min = score.Score
		b.bound.Max = score.Score
		return
	}
	if !b.satisfied {
		b.bound.Min = score.Score
		b.bound.Max = score.Score
		b.satisfied = true
		return
	}
	if score.Score < b.bound.Min {
		b.bound.Min = score.Score
	}
	if score.Score > b.bound.Max {
		b.bound.Max = score.Score
	}
}

type ecBounds struct {
	nodeAffinity *categoryBounds
	podAffinity  *categoryBounds
}

// Scorer owns the per-(equivalence class, resource) priority scores and
// the per-equivalence-class score bounds. It is safe for concurrent use;
// callers must still ensure all CalculatePriorityCost calls for an
// equivalence class complete before FinalizeScores runs for it.
type Scorer struct {
	mu        sync.RWMutex
	omega     int64
	evaluator affinity.Evaluator
	scores    map[base.EquivClass]map[base.ResourceID]*PriorityScoresList
	bounds    map[base.EquivClass]*ecBounds
}

// NewScorer creates a scorer normalizing onto [0, omega].
func NewScorer(omega int64, evaluator affinity.Evaluator) *Scorer {
	return &Scorer{
		omega:     omega,
		evaluator: evaluator,
		scores:    make(map[base.EquivClass]map[base.ResourceID]*PriorityScoresList),
		bounds:    make(map[base.EquivClass]*ecBounds),
	}
}

// CalculatePriorityCost scores one candidate resource for an equivalence
// class, using the class's representative task descriptor, and folds the
// raw scores into the class's running bounds.
func (s *Scorer) CalculatePriorityCost(
	ec base.EquivClass, rd *api.ResourceDescriptor, td *api.TaskDescriptor) {
	rdLabels := labels.BuildLabelMap(rd.Labels)

	nodeScore := s.scoreNodeAffinity(rdLabels, td)
	podScore := s.scorePodAffinity(rdLabels, td)

	s.mu.Lock()
	defer s.mu.Unlock()

	perResource, ok := s.scores[ec]
	if !ok {
		perResource = make(map[base.ResourceID]*PriorityScoresList)
		s.scores[ec] = perResource
	}
	perResource[rd.UID] = &PriorityScoresList{
		NodeAffinityPriority: nodeScore,
		PodAffinityPriority:  podScore,
	}

	bounds, ok := s.bounds[ec]
	if !ok {
		bounds = &ecBounds{
			nodeAffinity: newCategoryBounds(),
			podAffinity:  newCategoryBounds(),
		}
		s.bounds[ec] = bounds
	}
	bounds.nodeAffinity.update(nodeScore)
	bounds.podAffinity.update(podScore)
}

func (s *Scorer) scoreNodeAffinity(
	rdLabels map[string]string, td *api.TaskDescriptor) PriorityScore {
	preferred := td.Affinity.GetNodeAffinity().GetPreferred()
	if len(preferred) == 0 {
		return PriorityScore{Satisfy: false, FinalScore: UnsetScore}
	}
	var raw int64
	for _, term := range preferred {
		if s.evaluator.MatchesTerm(rdLabels, term.Preference) {
			raw += int64(term.Weight)
		}
	}
	return PriorityScore{Satisfy: true, Score: raw, FinalScore: UnsetScore}
}

func (s *Scorer) scorePodAffinity(
	rdLabels map[string]string, td *api.TaskDescriptor) PriorityScore {
	podAffinity := td.Affinity.GetPodAffinity()
	if podAffinity == nil || len(podAffinity.Preferred) == 0 {
		return PriorityScore{Satisfy: false, FinalScore: UnsetScore}
	}
	var raw int64
	for _, weighted := range podAffinity.Preferred {
		if s.evaluator.MatchesPodAffinityTerm(rdLabels, weighted.Term) {
			raw += int64(weighted.Weight)
		}
	}
	return PriorityScore{Satisfy: true, Score: raw, FinalScore: UnsetScore}
}

// FinalizeScores normalizes the raw scores of every candidate scored for
// the equivalence class. When all candidates tie (max == min), every final
// score is 0; otherwise the observed min maps to 0 and the observed max to
// omega exactly.
func (s *Scorer) FinalizeScores(ec base.EquivClass) {
	s.mu.Lock()
	defer s.mu.Unlock()

	perResource, ok := s.scores[ec]
	if !ok {
		return
	}
	bounds := s.bounds[ec]
	for _, list := range perResource {
		list.NodeAffinityPriority.FinalScore =
			s.normalize(list.NodeAffinityPriority, bounds.nodeAffinity.bound)
		list.PodAffinityPriority.FinalScore =
			s.normalize(list.PodAffinityPriority, bounds.podAffinity.bound)
	}
}

func (s *Scorer) normalize(score PriorityScore, bound MinMaxScore) int64 {
	if !score.Satisfy {
		return 0
	}
	if bound.Max <= bound.Min {
		// All candidates tied (including the all-zero case): no spurious
		// differentiation among equals.
		return 0
	}
	return s.omega * (score.Score - bound.Min) / (bound.Max - bound.Min)
}

// Scores returns the score list for one pair, if it has been calculated.
func (s *Scorer) Scores(
	ec base.EquivClass, resID base.ResourceID) (PriorityScoresList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perResource, ok := s.scores[ec]
	if !ok {
		return PriorityScoresList{}, false
	}
	list, ok := perResource[resID]
	if !ok {
		return PriorityScoresList{}, false
	}
	return *list, true
}

// Bounds returns the running raw-score ranges for an equivalence class.
func (s *Scorer) Bounds(ec base.EquivClass) (MinMaxScores, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bounds, ok := s.bounds[ec]
	if !ok {
		return MinMaxScores{}, false
	}
	return MinMaxScores{
		NodeAffinityPriority: bounds.nodeAffinity.bound,
		PodAffinityPriority:  bounds.podAffinity.bound,
	}, true
}

// RemoveEquivClass drops all scores and bounds for an equivalence class.
func (s *Scorer) RemoveEquivClass(ec base.EquivClass) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.scores, ec)
	delete(s.bounds, ec)
}

// RemoveResource purges every equivalence class's binding to a resource,
// called when a machine leaves the cluster.
func (s *Scorer) RemoveResource(resID base.ResourceID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, perResource := range s.scores {
		delete(perResource, resID)
	}
}
