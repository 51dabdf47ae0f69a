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

package reconcile

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/store"
)

const (
	quotaRemovedReason  = "Quota was removed from the cluster"
	quotaMismatchReason = "Cluster-enforced allocation does not match the configured quota"
)

// QuotaReconciler checks the quota allocations a cluster reports it enforces
// against the quotas configured for that cluster. Unlike the node and AIM
// reconcilers it never overwrites the configured resource numbers from the
// report: the stored quota is the source of truth and a report that disagrees
// with it drives the quota to Failed.
type QuotaReconciler struct {
	store store.Store
}

func NewQuotaReconciler(s store.Store) *QuotaReconciler {
	return &QuotaReconciler{store: s}
}

func (r *QuotaReconciler) Reconcile(ctx context.Context, clusterID string, msg v1alpha1.QuotasStatusMessage) (Result, error) {
	logger := log.FromContext(ctx)

	var result Result
	err := r.store.Atomically(ctx, func(ctx context.Context) error {
		existing, err := r.store.ListQuotas(ctx, clusterID)
		if err != nil {
			return fmt.Errorf("failed to list quotas for cluster %s: %w", clusterID, err)
		}
		byName := map[string]*v1alpha1.Quota{}
		for _, quota := range existing {
			byName[quota.QuotaName] = quota
		}

		seen := map[string]bool{}
		for _, allocation := range msg.QuotaAllocations {
			quota, ok := byName[allocation.QuotaName]
			if !ok {
				quota = &v1alpha1.Quota{
					ID:                    uuid.NewString(),
					ClusterID:             clusterID,
					QuotaName:             allocation.QuotaName,
					CPUMilliCores:         allocation.CPUMilliCores,
					MemoryBytes:           allocation.MemoryBytes,
					EphemeralStorageBytes: allocation.EphemeralStorageBytes,
					GpuCount:              allocation.GpuCount,
					Namespaces:            slices.Clone(allocation.Namespaces),
					Status:                v1alpha1.QuotaStatusApplied,
					CreatedAt:             msg.UpdatedAt,
					UpdatedAt:             msg.UpdatedAt,
					CreatedBy:             Actor,
					UpdatedBy:             Actor,
				}
				if err := r.store.CreateQuota(ctx, quota); err != nil {
					return fmt.Errorf("failed to create quota %s: %w", allocation.QuotaName, err)
				}
				byName[quota.QuotaName] = quota
				seen[quota.ID] = true
				result.Added++
				continue
			}

			seen[quota.ID] = true
			status, reason := v1alpha1.QuotaStatusApplied, ""
			if !allocationMatches(quota, allocation) {
				status, reason = v1alpha1.QuotaStatusFailed, quotaMismatchReason
			}
			if quota.Status == status && quota.StatusReason == reason {
				result.Skipped++
				continue
			}
			quota.Status = status
			quota.StatusReason = reason
			quota.UpdatedAt = msg.UpdatedAt
			quota.UpdatedBy = Actor
			if err := r.store.UpdateQuota(ctx, quota); err != nil {
				return fmt.Errorf("failed to update quota %s: %w", quota.QuotaName, err)
			}
			result.Updated++
		}

		for _, quota := range existing {
			if seen[quota.ID] {
				continue
			}
			if quota.Status == v1alpha1.QuotaStatusDeleted || quota.Status == v1alpha1.QuotaStatusFailed {
				result.Skipped++
				continue
			}
			quota.Status = v1alpha1.QuotaStatusFailed
			quota.StatusReason = quotaRemovedReason
			quota.CPUMilliCores = 0
			quota.MemoryBytes = 0
			quota.EphemeralStorageBytes = 0
			quota.GpuCount = 0
			quota.UpdatedAt = msg.UpdatedAt
			quota.UpdatedBy = Actor
			if err := r.store.UpdateQuota(ctx, quota); err != nil {
				return fmt.Errorf("failed to fail quota %s: %w", quota.QuotaName, err)
			}
			result.Deleted++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info("Reconciled quotas", "clusterID", clusterID, "allocations", len(msg.QuotaAllocations), "result", result.String())
	return result, nil
}

func allocationMatches(quota *v1alpha1.Quota, allocation v1alpha1.QuotaAllocation) bool {
	return quota.CPUMilliCores == allocation.CPUMilliCores &&
		quota.MemoryBytes == allocation.MemoryBytes &&
		quota.EphemeralStorageBytes == allocation.EphemeralStorageBytes &&
		quota.GpuCount == allocation.GpuCount &&
		slices.Equal(quota.Namespaces, allocation.Namespaces)
}
