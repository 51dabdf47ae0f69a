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

package v1alpha1

import (
	"time"
)

// ComponentKind identifies the Kubernetes resource type that a tracked workload
// component is backed by. The set is closed; the status vocabulary of a component
// depends on its kind.
type ComponentKind string

const (
	ComponentKindDeployment   ComponentKind = "Deployment"
	ComponentKindJob          ComponentKind = "Job"
	ComponentKindService      ComponentKind = "Service"
	ComponentKindConfigMap    ComponentKind = "ConfigMap"
	ComponentKindStatefulSet  ComponentKind = "StatefulSet"
	ComponentKindDaemonSet    ComponentKind = "DaemonSet"
	ComponentKindCronJob      ComponentKind = "CronJob"
	ComponentKindPod          ComponentKind = "Pod"
	ComponentKindKaiwoJob     ComponentKind = "KaiwoJob"
	ComponentKindKaiwoService ComponentKind = "KaiwoService"
	ComponentKindAIMService   ComponentKind = "AIMService"
)

// ComponentStatus is a kind-specific status literal. Each component kind draws
// its values from a closed vocabulary below, plus the shared lifecycle statuses
// and the literal "Unknown".
type ComponentStatus string

// Statuses shared by every component kind. These describe the server-driven
// deletion lifecycle rather than anything observed on the cluster.
const (
	CommonStatusDeleting     ComponentStatus = "Deleting"
	CommonStatusDeleted      ComponentStatus = "Deleted"
	CommonStatusDeleteFailed ComponentStatus = "DeleteFailed"
	CommonStatusCreateFailed ComponentStatus = "CreateFailed"
	CommonStatusTerminated   ComponentStatus = "Terminated"

	ComponentStatusUnknown ComponentStatus = "Unknown"

	// ComponentStatusNone is returned by the classifier when the observed state
	// does not map to any known status for the kind.
	ComponentStatusNone ComponentStatus = ""
)

// Job statuses.
const (
	JobStatusPending  ComponentStatus = "Pending"
	JobStatusRunning  ComponentStatus = "Running"
	JobStatusComplete ComponentStatus = "Complete"
	JobStatusFailed   ComponentStatus = "Failed"
)

// Deployment, StatefulSet and DaemonSet statuses.
const (
	ReplicaSetStatusPending ComponentStatus = "Pending"
	ReplicaSetStatusRunning ComponentStatus = "Running"
)

// CronJob statuses.
const (
	CronJobStatusSuspended ComponentStatus = "Suspended"
	CronJobStatusRunning   ComponentStatus = "Running"
	CronJobStatusReady     ComponentStatus = "Ready"
)

// Pod statuses mirror the pod phase vocabulary, with Succeeded normalized to
// Complete.
const (
	PodStatusPending  ComponentStatus = "Pending"
	PodStatusRunning  ComponentStatus = "Running"
	PodStatusComplete ComponentStatus = "Complete"
	PodStatusFailed   ComponentStatus = "Failed"
)

// Service and ConfigMap statuses.
const (
	ServiceStatusReady   ComponentStatus = "Ready"
	ServiceStatusPending ComponentStatus = "Pending"

	ConfigMapStatusAdded ComponentStatus = "Added"
)

// KaiwoJob statuses, carried verbatim from the Kaiwo operator's
// .status.status field.
const (
	KaiwoJobStatusNew         ComponentStatus = "New"
	KaiwoJobStatusPending     ComponentStatus = "Pending"
	KaiwoJobStatusStarting    ComponentStatus = "Starting"
	KaiwoJobStatusRunning     ComponentStatus = "Running"
	KaiwoJobStatusComplete    ComponentStatus = "Complete"
	KaiwoJobStatusFailed      ComponentStatus = "Failed"
	KaiwoJobStatusDownloading ComponentStatus = "Downloading"
	KaiwoJobStatusTerminating ComponentStatus = "Terminating"
	KaiwoJobStatusTerminated  ComponentStatus = "Terminated"
)

// KaiwoService statuses. Same vocabulary as KaiwoJob without the batch
// completion state.
const (
	KaiwoServiceStatusNew         ComponentStatus = "New"
	KaiwoServiceStatusPending     ComponentStatus = "Pending"
	KaiwoServiceStatusStarting    ComponentStatus = "Starting"
	KaiwoServiceStatusRunning     ComponentStatus = "Running"
	KaiwoServiceStatusFailed      ComponentStatus = "Failed"
	KaiwoServiceStatusDownloading ComponentStatus = "Downloading"
	KaiwoServiceStatusTerminating ComponentStatus = "Terminating"
	KaiwoServiceStatusTerminated  ComponentStatus = "Terminated"
)

// AIMService statuses. Closed set; any other literal observed on the resource
// is classified as undetermined.
const (
	AIMServiceStatusPending  ComponentStatus = "Pending"
	AIMServiceStatusStarting ComponentStatus = "Starting"
	AIMServiceStatusRunning  ComponentStatus = "Running"
	AIMServiceStatusFailed   ComponentStatus = "Failed"
	AIMServiceStatusDegraded ComponentStatus = "Degraded"
)

// WorkloadComponent is one tracked Kubernetes resource belonging to a workload.
// The kind is immutable after creation. Components are never hard-deleted by the
// status pipeline; their status transitions to a terminal value instead.
type WorkloadComponent struct {
	ID           string
	WorkloadID   string
	Name         string
	Kind         ComponentKind
	APIVersion   string
	Status       ComponentStatus
	StatusReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
	UpdatedBy    string
}
