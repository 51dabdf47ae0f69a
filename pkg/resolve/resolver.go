// Copyright 2025 Advanced Micro Devices, Inc.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//       http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resolve

import (
	"github.com/silogen/airm/apis/airm/v1alpha1"
)

// ComponentState is the (kind, status) pair of one live component, the only
// input the resolver needs per component.
type ComponentState struct {
	Kind   v1alpha1.ComponentKind
	Status v1alpha1.ComponentStatus
}

// resolutionRule pairs a predicate over the component classes with the workload
// status it yields. Rules are evaluated strictly in order; the first match
// wins. "Any" semantics are pessimistic (one bad component taints the
// workload), "all" semantics are optimistic (every component must agree before
// declaring success), which is why the precedence cannot be collapsed into a
// single severity score.
type resolutionRule struct {
	status  v1alpha1.WorkloadStatus
	matches func(classes []statusClass) bool
}

var rules = []resolutionRule{
	// Delete failures dominate everything a component can report.
	{v1alpha1.WorkloadStatusDeleteFailed, anyInClass(classDeleteFailed)},
	{v1alpha1.WorkloadStatusFailed, anyInClass(classFailed)},
	{v1alpha1.WorkloadStatusDownloading, anyInClass(classDownloading)},
	// Terminating is a transient pending-like state, not terminal.
	{v1alpha1.WorkloadStatusPending, anyInClass(classTerminating)},
	{v1alpha1.WorkloadStatusTerminated, allInClass(classTerminated)},
	{v1alpha1.WorkloadStatusDeleted, allInClass(classDeleted)},
	{v1alpha1.WorkloadStatusPending, anyInClass(classPending)},
	{v1alpha1.WorkloadStatusComplete, allInClass(classComplete)},
	{v1alpha1.WorkloadStatusRunning, allInClass(classRunning)},
}

// Resolve folds the statuses of all of a workload's live components, together
// with the workload's previous status, into the single workload-level status.
//
// Deleting is sticky: an in-flight deletion is never overridden by component
// chatter. An empty component set, or a set whose statuses map to no known
// class, resolves to Unknown.
func Resolve(previous v1alpha1.WorkloadStatus, components []ComponentState) v1alpha1.WorkloadStatus {
	if previous == v1alpha1.WorkloadStatusDeleting {
		return v1alpha1.WorkloadStatusDeleting
	}
	if len(components) == 0 {
		return v1alpha1.WorkloadStatusUnknown
	}

	classes := make([]statusClass, len(components))
	for i, component := range components {
		classes[i] = classesOf(component)
	}

	for _, rule := range rules {
		if rule.matches(classes) {
			return rule.status
		}
	}
	return v1alpha1.WorkloadStatusUnknown
}

func anyInClass(class statusClass) func([]statusClass) bool {
	return func(classes []statusClass) bool {
		for _, c := range classes {
			if c.has(class) {
				return true
			}
		}
		return false
	}
}

func allInClass(class statusClass) func([]statusClass) bool {
	return func(classes []statusClass) bool {
		for _, c := range classes {
			if !c.has(class) {
				return false
			}
		}
		return true
	}
}
