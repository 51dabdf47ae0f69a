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

// statusClass is a bitmask of the resolver-level interpretations of one
// component status. A status can belong to more than one class: a ConfigMap
// that has been added counts as running for a serving workload and as complete
// for a batch workload.
type statusClass uint

const (
	classNone statusClass = 0

	classPending statusClass = 1 << iota
	classRunning
	classComplete
	classFailed
	classDeleteFailed
	classDownloading
	classTerminating
	classTerminated
	classDeleted
)

func (c statusClass) has(other statusClass) bool {
	return c&other != 0
}

// kindClasses maps each (kind, status) pair to its resolver classes. Statuses
// missing from a kind's table, including the literal Unknown, belong to no
// class and fall through every resolution rule.
var kindClasses = map[v1alpha1.ComponentKind]map[v1alpha1.ComponentStatus]statusClass{
	v1alpha1.ComponentKindJob: {
		v1alpha1.JobStatusPending:  classPending,
		v1alpha1.JobStatusRunning:  classRunning,
		v1alpha1.JobStatusComplete: classComplete,
		v1alpha1.JobStatusFailed:   classFailed,
	},
	v1alpha1.ComponentKindPod: {
		v1alpha1.PodStatusPending:  classPending,
		v1alpha1.PodStatusRunning:  classRunning,
		v1alpha1.PodStatusComplete: classComplete,
		v1alpha1.PodStatusFailed:   classFailed,
	},
	v1alpha1.ComponentKindDeployment: {
		v1alpha1.ReplicaSetStatusPending: classPending,
		v1alpha1.ReplicaSetStatusRunning: classRunning,
	},
	v1alpha1.ComponentKindStatefulSet: {
		v1alpha1.ReplicaSetStatusPending: classPending,
		v1alpha1.ReplicaSetStatusRunning: classRunning,
	},
	v1alpha1.ComponentKindDaemonSet: {
		v1alpha1.ReplicaSetStatusPending: classPending,
		v1alpha1.ReplicaSetStatusRunning: classRunning,
	},
	v1alpha1.ComponentKindCronJob: {
		v1alpha1.CronJobStatusSuspended: classPending,
		v1alpha1.CronJobStatusRunning:   classRunning,
		v1alpha1.CronJobStatusReady:     classRunning | classComplete,
	},
	v1alpha1.ComponentKindService: {
		v1alpha1.ServiceStatusPending: classPending,
		v1alpha1.ServiceStatusReady:   classRunning | classComplete,
	},
	v1alpha1.ComponentKindConfigMap: {
		v1alpha1.ConfigMapStatusAdded: classRunning | classComplete,
	},
	v1alpha1.ComponentKindKaiwoJob: {
		v1alpha1.KaiwoJobStatusNew:         classPending,
		v1alpha1.KaiwoJobStatusPending:     classPending,
		v1alpha1.KaiwoJobStatusStarting:    classPending,
		v1alpha1.KaiwoJobStatusRunning:     classRunning,
		v1alpha1.KaiwoJobStatusComplete:    classComplete,
		v1alpha1.KaiwoJobStatusFailed:      classFailed,
		v1alpha1.KaiwoJobStatusDownloading: classDownloading,
		v1alpha1.KaiwoJobStatusTerminating: classTerminating,
		v1alpha1.KaiwoJobStatusTerminated:  classTerminated,
	},
	v1alpha1.ComponentKindKaiwoService: {
		v1alpha1.KaiwoServiceStatusNew:         classPending,
		v1alpha1.KaiwoServiceStatusPending:     classPending,
		v1alpha1.KaiwoServiceStatusStarting:    classPending,
		v1alpha1.KaiwoServiceStatusRunning:     classRunning,
		v1alpha1.KaiwoServiceStatusFailed:      classFailed,
		v1alpha1.KaiwoServiceStatusDownloading: classDownloading,
		v1alpha1.KaiwoServiceStatusTerminating: classTerminating,
		v1alpha1.KaiwoServiceStatusTerminated:  classTerminated,
	},
	v1alpha1.ComponentKindAIMService: {
		v1alpha1.AIMServiceStatusPending:  classPending,
		v1alpha1.AIMServiceStatusStarting: classPending,
		v1alpha1.AIMServiceStatusRunning:  classRunning,
		v1alpha1.AIMServiceStatusFailed:   classFailed,
		// Degraded is intentionally pending rather than failed: the service is
		// recoverable and should not taint the workload.
		v1alpha1.AIMServiceStatusDegraded: classPending,
	},
}

// classesOf resolves the classes of one component state. The shared deletion
// lifecycle statuses apply to every kind and take precedence over the
// kind-specific vocabulary.
func classesOf(state ComponentState) statusClass {
	switch state.Status {
	case v1alpha1.CommonStatusDeleting:
		return classPending
	case v1alpha1.CommonStatusDeleted:
		return classDeleted
	case v1alpha1.CommonStatusDeleteFailed:
		return classDeleteFailed
	case v1alpha1.CommonStatusCreateFailed:
		return classFailed
	case v1alpha1.CommonStatusTerminated:
		return classTerminated
	}
	return kindClasses[state.Kind][state.Status]
}
