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

// Package knowledge tracks historical runtime statistics per task
// equivalence class. The cost model queries it to bias continuation and
// preemption costs; it never mutates it on the query path.
package knowledge

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Huawei-PaaS/firmament/pkg/base"
)

// Base answers runtime-statistics queries for task equivalence classes.
type Base interface {
	// AverageRuntimeForTEC returns the average observed runtime in seconds
	// for tasks of the equivalence class, and whether any sample exists.
	AverageRuntimeForTEC(ec base.EquivClass) (float64, bool)

	// SampleCountForTEC returns the number of recorded runtime samples.
	SampleCountForTEC(ec base.EquivClass) uint64

	// RecordTaskRuntime records one completed task runtime in seconds.
	RecordTaskRuntime(ec base.EquivClass, runtimeSeconds float64)
}

type runtimeStats struct {
	count uint64
	total float64
}

// InMemoryBase is the in-process Base used when no external statistics
// store is wired in.
type InMemoryBase struct {
	mu      sync.RWMutex
	samples map[base.EquivClass]*runtimeStats
}

// NewInMemoryBase creates an empty knowledge base.
func NewInMemoryBase() *InMemoryBase {
	return &InMemoryBase{
		samples: make(map[base.EquivClass]*runtimeStats),
	}
}

// AverageRuntimeForTEC implements Base.
func (kb *InMemoryBase) AverageRuntimeForTEC(ec base.EquivClass) (float64, bool) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	stats, ok := kb.samples[ec]
	if !ok || stats.count == 0 {
		return 0, false
	}
	return stats.total / float64(stats.count), true
}

// SampleCountForTEC implements Base.
func (kb *InMemoryBase) SampleCountForTEC(ec base.EquivClass) uint64 {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	stats, ok := kb.samples[ec]
	if !ok {
		return 0
	}
	return stats.count
}

// RecordTaskRuntime implements Base.
func (kb *InMemoryBase) RecordTaskRuntime(
	ec base.EquivClass, runtimeSeconds float64) {
	if runtimeSeconds < 0 {
		log.WithFields(log.Fields{
			"equiv_class": ec,
			"runtime":     runtimeSeconds,
		}).Warn("Dropping negative runtime sample")
		return
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()

	stats, ok := kb.samples[ec]
	if !ok {
		stats = &runtimeStats{}
		kb.samples[ec] = stats
	}
	stats.count++
	stats.total += runtimeSeconds
}
