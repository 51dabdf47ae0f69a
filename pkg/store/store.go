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

// Package store defines the persistence boundary of the status pipeline. The
// pipeline only ever works on plain entities; the actual database lives behind
// these interfaces and must serialize per-entity read-modify-write cycles.
package store

import (
	"context"
	"errors"

	"github.com/silogen/airm/apis/airm/v1alpha1"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("entity not found")

// WorkloadStore persists workloads and their components.
type WorkloadStore interface {
	GetWorkload(ctx context.Context, id string) (*v1alpha1.Workload, error)
	CreateWorkload(ctx context.Context, workload *v1alpha1.Workload) error
	UpdateWorkload(ctx context.Context, workload *v1alpha1.Workload) error

	// GetComponent looks a component up by its external component id.
	GetComponent(ctx context.Context, componentID string) (*v1alpha1.WorkloadComponent, error)
	ListComponents(ctx context.Context, workloadID string) ([]*v1alpha1.WorkloadComponent, error)
	CreateComponent(ctx context.Context, component *v1alpha1.WorkloadComponent) error
	UpdateComponent(ctx context.Context, component *v1alpha1.WorkloadComponent) error
}

// TimeSummaryStore persists per-(workload, status) elapsed time totals.
type TimeSummaryStore interface {
	GetTimeSummary(ctx context.Context, workloadID string, status v1alpha1.WorkloadStatus) (*v1alpha1.WorkloadTimeSummary, error)
	PutTimeSummary(ctx context.Context, summary *v1alpha1.WorkloadTimeSummary) error
}

// AIMStore persists the discovered model catalog.
type AIMStore interface {
	ListAIMs(ctx context.Context) ([]*v1alpha1.AIM, error)
	CreateAIM(ctx context.Context, aim *v1alpha1.AIM) error
	UpdateAIM(ctx context.Context, aim *v1alpha1.AIM) error
}

// ClusterStore persists per-cluster nodes and quotas.
type ClusterStore interface {
	ListClusterNodes(ctx context.Context, clusterID string) ([]*v1alpha1.ClusterNode, error)
	CreateClusterNode(ctx context.Context, node *v1alpha1.ClusterNode) error
	UpdateClusterNode(ctx context.Context, node *v1alpha1.ClusterNode) error

	ListQuotas(ctx context.Context, clusterID string) ([]*v1alpha1.Quota, error)
	CreateQuota(ctx context.Context, quota *v1alpha1.Quota) error
	UpdateQuota(ctx context.Context, quota *v1alpha1.Quota) error
}

// Store is the full persistence surface the server-side pipeline needs.
type Store interface {
	WorkloadStore
	TimeSummaryStore
	AIMStore
	ClusterStore

	// Atomically runs fn inside one transaction. A returned error rolls every
	// write back; reconciliation counts are only reported after commit.
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
}
