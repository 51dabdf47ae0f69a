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

// The message contracts exchanged between cluster agents and the server over
// the queue. Delivery is at-least-once; every consumer of these messages must
// tolerate redelivery and reordering.

// ComponentStatusMessage reports the observed status of one workload component.
type ComponentStatusMessage struct {
	ComponentID  string          `json:"component_id"`
	WorkloadID   string          `json:"workload_id"`
	ProjectID    string          `json:"project_id"`
	Kind         ComponentKind   `json:"kind"`
	Name         string          `json:"name"`
	APIVersion   string          `json:"api_version"`
	Status       ComponentStatus `json:"status"`
	StatusReason string          `json:"status_reason"`

	// SubmittedBy carries the parsed submitter identity, used as the owner when
	// an auto-discovered workload has to be created implicitly.
	SubmittedBy    string `json:"submitted_by,omitempty"`
	AutoDiscovered bool   `json:"auto_discovered,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ClusterNodeInfo is one node entry in a cluster-nodes sync message.
type ClusterNodeInfo struct {
	Name                  string            `json:"name"`
	CPUMilliCores         int64             `json:"cpu_milli_cores"`
	MemoryBytes           int64             `json:"memory_bytes"`
	EphemeralStorageBytes int64             `json:"ephemeral_storage_bytes"`
	GpuInformation        GpuInformation    `json:"gpu_information"`
	Status                ClusterNodeStatus `json:"status"`
	IsReady               bool              `json:"is_ready"`
}

// ClusterNodesMessage is the authoritative snapshot of a cluster's nodes.
type ClusterNodesMessage struct {
	ClusterNodes []ClusterNodeInfo `json:"cluster_nodes"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// QuotaAllocation is the allocation a cluster reports for one quota.
type QuotaAllocation struct {
	QuotaName             string   `json:"quota_name"`
	CPUMilliCores         int64    `json:"cpu_milli_cores"`
	MemoryBytes           int64    `json:"memory_bytes"`
	EphemeralStorageBytes int64    `json:"ephemeral_storage_bytes"`
	GpuCount              int32    `json:"gpu_count"`
	Namespaces            []string `json:"namespaces"`
}

// QuotasStatusMessage is the authoritative snapshot of the quota allocations a
// cluster currently enforces.
type QuotasStatusMessage struct {
	QuotaAllocations []QuotaAllocation `json:"quota_allocations"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// AIMModelInfo is one catalog entry in an AIM-catalog sync message.
type AIMModelInfo struct {
	ResourceName   string            `json:"resource_name"`
	ImageReference string            `json:"image_reference"`
	Labels         map[string]string `json:"labels"`
	Status         AIMStatus         `json:"status"`
}

// AIMCatalogMessage is the authoritative snapshot of the model images a cluster
// advertises.
type AIMCatalogMessage struct {
	Models   []AIMModelInfo `json:"models"`
	SyncedAt time.Time      `json:"synced_at"`
}
