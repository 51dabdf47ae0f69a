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

// ClusterNodeStatus reports the readiness of a node as seen in the last sync.
type ClusterNodeStatus string

const (
	ClusterNodeStatusReady    ClusterNodeStatus = "Ready"
	ClusterNodeStatusNotReady ClusterNodeStatus = "NotReady"
	ClusterNodeStatusUnknown  ClusterNodeStatus = "Unknown"
	ClusterNodeStatusDeleted  ClusterNodeStatus = "Deleted"
)

// GpuInformation describes the GPU capacity of a node.
type GpuInformation struct {
	Count              int32
	Type               string
	Vendor             string
	VRAMBytesPerDevice int64
	ProductName        string
}

// ClusterNode is one Kubernetes node as reported by a cluster agent, keyed by
// name within its cluster.
type ClusterNode struct {
	ID                    string
	ClusterID             string
	Name                  string
	CPUMilliCores         int64
	MemoryBytes           int64
	EphemeralStorageBytes int64
	Gpu                   GpuInformation
	Status                ClusterNodeStatus
	StatusReason          string
	IsReady               bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
	CreatedBy             string
	UpdatedBy             string
}

// QuotaStatus is the lifecycle status of a project quota on a cluster.
type QuotaStatus string

const (
	QuotaStatusPending QuotaStatus = "Pending"
	QuotaStatusApplied QuotaStatus = "Applied"
	QuotaStatusFailed  QuotaStatus = "Failed"
	QuotaStatusDeleted QuotaStatus = "Deleted"
)

// Quota is the resource allocation configured for a project on a cluster, keyed
// by quota name within its cluster. The cluster periodically reports the
// allocation it actually enforces; a mismatch or disappearance drives the quota
// to Failed.
type Quota struct {
	ID                    string
	ClusterID             string
	ProjectID             string
	QuotaName             string
	CPUMilliCores         int64
	MemoryBytes           int64
	EphemeralStorageBytes int64
	GpuCount              int32
	Namespaces            []string
	Status                QuotaStatus
	StatusReason          string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	CreatedBy             string
	UpdatedBy             string
}
