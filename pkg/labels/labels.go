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

// Package labels implements the label selector predicate engine. All
// functions are pure; label maps are rebuilt per evaluation from the
// resource's current label list and never cached across scheduler passes.
package labels

import (
	"hash/fnv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Huawei-PaaS/firmament/pkg/api"
)

// BuildLabelMap collapses a resource's label list into a lookup map. On
// duplicate keys the last entry wins.
func BuildLabelMap(lbls []api.Label) map[string]string {
	m := make(map[string]string, len(lbls))
	for _, l := range lbls {
		m[l.Key] = l.Value
	}
	return m
}

// Satisfies returns true iff the label map satisfies a single selector.
// An unknown selector type is a contract violation: the enumeration is
// closed and validated at construction, so hitting the default branch
// means a collaborator handed us a corrupt descriptor.
func Satisfies(rdLabels map[string]string, selector api.LabelSelector) bool {
	switch selector.Type {
	case api.SelectorInSet:
		value, ok := rdLabels[selector.Key]
		if !ok {
			return false
		}
		return containsValue(selector.Values, value)
	case api.SelectorNotInSet:
		value, ok := rdLabels[selector.Key]
		if !ok {
			return true
		}
		return !containsValue(selector.Values, value)
	case api.SelectorExistsKey:
		_, ok := rdLabels[selector.Key]
		return ok
	case api.SelectorNotExistsKey:
		_, ok := rdLabels[selector.Key]
		return !ok
	default:
		log.WithField("selector_type", int(selector.Type)).
			Fatal("Unsupported label selector type")
	}
	return false
}

// SatisfiesAll returns true iff the label map satisfies every selector.
// It fails fast on the first unsatisfied selector; the result is
// order-independent.
func SatisfiesAll(rdLabels map[string]string, selectors []api.LabelSelector) bool {
	for _, selector := range selectors {
		if !Satisfies(rdLabels, selector) {
			return false
		}
	}
	return true
}

// SatisfiesSelectors evaluates selectors against a resource descriptor,
// building the label map from its current label list.
func SatisfiesSelectors(rd *api.ResourceDescriptor, selectors []api.LabelSelector) bool {
	return SatisfiesAll(BuildLabelMap(rd.Labels), selectors)
}

// SelectorsFromRequirements converts node selector requirements into label
// selectors. The operator set is closed; an unrecognized operator name is
// an error rather than a silent fallback onto IN_SET.
func SelectorsFromRequirements(
	reqs []api.NodeSelectorRequirement) ([]api.LabelSelector, error) {
	selectors := make([]api.LabelSelector, 0, len(reqs))
	for _, req := range reqs {
		var selectorType api.SelectorType
		switch req.Operator {
		case api.NodeSelectorOpIn:
			selectorType = api.SelectorInSet
		case api.NodeSelectorOpNotIn:
			selectorType = api.SelectorNotInSet
		case api.NodeSelectorOpExists:
			selectorType = api.SelectorExistsKey
		case api.NodeSelectorOpDoesNotExist:
			selectorType = api.SelectorNotExistsKey
		default:
			return nil, errors.Errorf(
				"unrecognized node selector operator %q for key %q",
				req.Operator, req.Key)
		}
		values := make([]string, len(req.Values))
		copy(values, req.Values)
		selectors = append(selectors, api.LabelSelector{
			Type:   selectorType,
			Key:    req.Key,
			Values: values,
		})
	}
	return selectors, nil
}

// HashSelectors digests a selector list into a stable 64-bit value,
// combining each selector's key and values. Used as part of equivalence
// class identity.
func HashSelectors(selectors []api.LabelSelector) uint64 {
	h := fnv.New64a()
	for _, selector := range selectors {
		h.Write([]byte(selector.Key))
		h.Write([]byte{0})
		for _, value := range selector.Values {
			h.Write([]byte(value))
			h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

func containsValue(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
