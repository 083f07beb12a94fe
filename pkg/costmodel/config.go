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

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// Config carries the tunables of the CPU cost model. All cost parameters
// are expressed relative to Omega, the per-dimension normalization
// ceiling.
type Config struct {
	// Omega is the normalization ceiling for each cost dimension.
	Omega int64 `yaml:"omega"`

	// UnscheduledAggCostFactor prices the "leave unscheduled" arc at
	// UnscheduledAggCostFactor * Omega. A flattened placement cost can
	// reach Omega times the sum of the three dimension weights; keep the
	// factor above that sum if leaving a task unscheduled must stay
	// strictly dearer than its worst feasible placement.
	UnscheduledAggCostFactor int64 `yaml:"unscheduled_agg_cost_factor"`

	// TopologyHopCost is the per-depth-level cost of arcs inside the
	// resource topology, so deeper placements never come out cheaper
	// purely through topology.
	TopologyHopCost int64 `yaml:"topology_hop_cost"`

	// ContinuationBaseCost is the cost of keeping a running task where it
	// is, before the runtime-statistics discount.
	ContinuationBaseCost int64 `yaml:"continuation_base_cost"`

	// PreemptionPenalty is added on top of the continuation cost when
	// pricing preemption; it must be positive so preemption is always
	// strictly more expensive than continuation.
	PreemptionPenalty int64 `yaml:"preemption_penalty"`

	// Weights of the three cost vector dimensions in the flattened sum.
	CPUMemCostWeight       int64 `yaml:"cpu_mem_cost_weight"`
	BalancedResCostWeight  int64 `yaml:"balanced_res_cost_weight"`
	NodeAffinityCostWeight int64 `yaml:"node_affinity_cost_weight"`

	// Requests above these bounds are rejected at AddTask: every arc of
	// such a task is infeasible instead of the model crashing on
	// unrepresentable arithmetic.
	MaxCPUCoresRequest float64 `yaml:"max_cpu_cores_request"`
	MaxRAMMBRequest    uint64  `yaml:"max_ram_mb_request"`

	// EmptyTermListMatchesAll switches a required node selector with zero
	// terms from "match nothing" (the default) to vacuous truth.
	EmptyTermListMatchesAll bool `yaml:"empty_term_list_matches_all"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Omega:                    1000,
		UnscheduledAggCostFactor: 2,
		TopologyHopCost:          10,
		ContinuationBaseCost:     100,
		PreemptionPenalty:        500,
		CPUMemCostWeight:         1,
		BalancedResCostWeight:    1,
		NodeAffinityCostWeight:   1,
		MaxCPUCoresRequest:       1024,
		MaxRAMMBRequest:          1 << 31,
	}
}

// Validate checks the config for internal consistency and returns all
// violations at once.
func (c Config) Validate() error {
	var err error
	if c.Omega <= 0 {
		err = multierr.Append(err, errors.Errorf(
			"omega must be positive, got %d", c.Omega))
	}
	if c.UnscheduledAggCostFactor < 1 {
		err = multierr.Append(err, errors.Errorf(
			"unscheduled_agg_cost_factor must be at least 1, got %d",
			c.UnscheduledAggCostFactor))
	}
	if c.TopologyHopCost < 0 {
		err = multierr.Append(err, errors.Errorf(
			"topology_hop_cost must not be negative, got %d",
			c.TopologyHopCost))
	}
	if c.ContinuationBaseCost < 0 {
		err = multierr.Append(err, errors.Errorf(
			"continuation_base_cost must not be negative, got %d",
			c.ContinuationBaseCost))
	}
	if c.PreemptionPenalty <= 0 {
		err = multierr.Append(err, errors.Errorf(
			"preemption_penalty must be positive, got %d",
			c.PreemptionPenalty))
	}
	if c.CPUMemCostWeight < 0 || c.BalancedResCostWeight < 0 ||
		c.NodeAffinityCostWeight < 0 {
		err = multierr.Append(err, errors.New(
			"cost dimension weights must not be negative"))
	}
	if c.MaxCPUCoresRequest <= 0 {
		err = multierr.Append(err, errors.Errorf(
			"max_cpu_cores_request must be positive, got %f",
			c.MaxCPUCoresRequest))
	}
	if c.MaxRAMMBRequest == 0 {
		err = multierr.Append(err, errors.New(
			"max_ram_mb_request must be positive"))
	}
	return err
}

// LoadConfig reads a yaml config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}
