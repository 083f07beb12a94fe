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

// Package affinity evaluates node-affinity and pod-affinity term structures
// against candidate resources. It is a pure predicate layer on top of the
// label selector engine; all state lives in the supplied snapshots.
package affinity

import (
	log "github.com/sirupsen/logrus"

	"github.com/Huawei-PaaS/firmament/pkg/api"
	"github.com/Huawei-PaaS/firmament/pkg/labels"
)

// Evaluator evaluates placement constraints for (task, resource) pairs.
type Evaluator struct {
	// EmptyTermListMatchesAll controls what a required node selector with
	// zero terms means. The default (false) treats it as "match nothing";
	// true gives the vacuous-truth reading instead.
	EmptyTermListMatchesAll bool
}

// MatchesTerm returns true iff the resource labels satisfy every
// requirement of the term. A term with no requirements never matches.
func (e Evaluator) MatchesTerm(
	rdLabels map[string]string, term api.NodeSelectorTerm) bool {
	if len(term.MatchExpressions) == 0 {
		return false
	}
	selectors, err := labels.SelectorsFromRequirements(term.MatchExpressions)
	if err != nil {
		// Task descriptors are validated before they reach the core, so
		// an unparsable operator here is a collaborator inconsistency.
		log.WithError(err).Fatal("Invalid node selector term in task descriptor")
	}
	return labels.SatisfiesAll(rdLabels, selectors)
}

// MatchesNodeSelectorTerms evaluates a term list as a disjunction: the
// resource matches iff at least one term matches. Terms with zero
// requirements are skipped and can never carry the match.
func (e Evaluator) MatchesNodeSelectorTerms(
	rdLabels map[string]string, terms []api.NodeSelectorTerm) bool {
	if len(terms) == 0 {
		return e.EmptyTermListMatchesAll
	}
	for _, term := range terms {
		if len(term.MatchExpressions) == 0 {
			continue
		}
		if e.MatchesTerm(rdLabels, term) {
			return true
		}
	}
	return false
}

// MatchesPodAffinityTerm returns true iff the resource labels satisfy the
// pod-affinity term's expressions. Namespace and topology-key scoping are
// the caller's concern; this core only prices the label match.
func (e Evaluator) MatchesPodAffinityTerm(
	rdLabels map[string]string, term api.PodAffinityTerm) bool {
	if len(term.MatchExpressions) == 0 {
		return false
	}
	selectors, err := labels.SelectorsFromRequirements(term.MatchExpressions)
	if err != nil {
		log.WithError(err).Fatal("Invalid pod affinity term in task descriptor")
	}
	return labels.SatisfiesAll(rdLabels, selectors)
}

// SatisfiesPlacementConstraints decides whether a resource satisfies all
// hard placement constraints of a task: the legacy label selector list
// first, then required node affinity.
func (e Evaluator) SatisfiesPlacementConstraints(
	rd *api.ResourceDescriptor, td *api.TaskDescriptor) bool {
	rdLabels := labels.BuildLabelMap(rd.Labels)
	if len(td.LabelSelectors) > 0 {
		if !labels.SatisfiesAll(rdLabels, td.LabelSelectors) {
			return false
		}
	}
	nodeAffinity := td.Affinity.GetNodeAffinity()
	if nodeAffinity == nil {
		return true
	}
	required := nodeAffinity.GetRequired()
	if required == nil {
		// Affinity declared without a required term list selects all
		// nodes.
		return true
	}
	return e.MatchesNodeSelectorTerms(rdLabels, required.NodeSelectorTerms)
}
