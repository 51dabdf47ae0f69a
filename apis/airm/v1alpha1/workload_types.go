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

// WorkloadType describes what kind of work a workload performs.
type WorkloadType string

const (
	WorkloadTypeInference  WorkloadType = "Inference"
	WorkloadTypeFineTuning WorkloadType = "FineTuning"
	WorkloadTypeWorkspace  WorkloadType = "Workspace"
	WorkloadTypeCustom     WorkloadType = "Custom"
)

// WorkloadStatus is the workload-level status, always computed from the
// workload's component statuses by the resolver, with one exception: Deleting is
// imposed externally when a user requests deletion and is sticky until the
// deletion completes.
type WorkloadStatus string

const (
	WorkloadStatusPending      WorkloadStatus = "Pending"
	WorkloadStatusRunning      WorkloadStatus = "Running"
	WorkloadStatusComplete     WorkloadStatus = "Complete"
	WorkloadStatusFailed       WorkloadStatus = "Failed"
	WorkloadStatusDeleting     WorkloadStatus = "Deleting"
	WorkloadStatusDeleted      WorkloadStatus = "Deleted"
	WorkloadStatusDeleteFailed WorkloadStatus = "DeleteFailed"
	WorkloadStatusTerminated   WorkloadStatus = "Terminated"
	WorkloadStatusDownloading  WorkloadStatus = "Downloading"
	WorkloadStatusUnknown      WorkloadStatus = "Unknown"
)

// IsTerminal reports whether the status is a resting state that the resolver
// will not move the workload out of on its own (a later component observation
// can, except for deletion which is handled by the deletion workflow).
func (s WorkloadStatus) IsTerminal() bool {
	switch s {
	case WorkloadStatusComplete, WorkloadStatusDeleted, WorkloadStatusTerminated, WorkloadStatusFailed:
		return true
	}
	return false
}

// Workload is a logical unit of work spanning one or more components.
type Workload struct {
	ID                 string
	ProjectID          string
	ClusterID          string
	Type               WorkloadType
	Status             WorkloadStatus
	DisplayName        string
	AIMID              string
	ClusterAuthGroupID string

	// LastTransitionAt records when the workload entered its current status.
	// Status messages older than this are stale and ignored.
	LastTransitionAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// WorkloadTimeSummary accumulates the total time a workload has spent in one
// status. Unique per (workload, status); the total only ever increases.
type WorkloadTimeSummary struct {
	WorkloadID          string
	Status              WorkloadStatus
	TotalElapsedSeconds int64
	UpdatedAt           time.Time
}
