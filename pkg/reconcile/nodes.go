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

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/store"
)

const nodeRemovedReason = "Node was removed from the cluster"

// NodeReconciler synchronizes the stored node inventory of one cluster against
// a cluster-nodes sync message. Nodes are keyed by name within their cluster.
type NodeReconciler struct {
	store store.Store
}

func NewNodeReconciler(s store.Store) *NodeReconciler {
	return &NodeReconciler{store: s}
}

func (r *NodeReconciler) Reconcile(ctx context.Context, clusterID string, msg v1alpha1.ClusterNodesMessage) (Result, error) {
	logger := log.FromContext(ctx)

	var result Result
	err := r.store.Atomically(ctx, func(ctx context.Context) error {
		existing, err := r.store.ListClusterNodes(ctx, clusterID)
		if err != nil {
			return fmt.Errorf("failed to list nodes for cluster %s: %w", clusterID, err)
		}
		byName := map[string]*v1alpha1.ClusterNode{}
		for _, node := range existing {
			byName[node.Name] = node
		}

		seen := map[string]bool{}
		for _, info := range msg.ClusterNodes {
			node, ok := byName[info.Name]
			if !ok {
				node = &v1alpha1.ClusterNode{
					ID:                    uuid.NewString(),
					ClusterID:             clusterID,
					Name:                  info.Name,
					CPUMilliCores:         info.CPUMilliCores,
					MemoryBytes:           info.MemoryBytes,
					EphemeralStorageBytes: info.EphemeralStorageBytes,
					Gpu:                   info.GpuInformation,
					Status:                info.Status,
					IsReady:               info.IsReady,
					CreatedAt:             msg.UpdatedAt,
					UpdatedAt:             msg.UpdatedAt,
					CreatedBy:             Actor,
					UpdatedBy:             Actor,
				}
				if err := r.store.CreateClusterNode(ctx, node); err != nil {
					return fmt.Errorf("failed to create node %s: %w", info.Name, err)
				}
				byName[node.Name] = node
				seen[node.ID] = true
				result.Added++
				continue
			}

			seen[node.ID] = true
			if nodeUpToDate(node, info) {
				result.Skipped++
				continue
			}
			node.CPUMilliCores = info.CPUMilliCores
			node.MemoryBytes = info.MemoryBytes
			node.EphemeralStorageBytes = info.EphemeralStorageBytes
			node.Gpu = info.GpuInformation
			node.Status = info.Status
			node.StatusReason = ""
			node.IsReady = info.IsReady
			node.UpdatedAt = msg.UpdatedAt
			node.UpdatedBy = Actor
			if err := r.store.UpdateClusterNode(ctx, node); err != nil {
				return fmt.Errorf("failed to update node %s: %w", info.Name, err)
			}
			result.Updated++
		}

		for _, node := range existing {
			if seen[node.ID] {
				continue
			}
			if node.Status == v1alpha1.ClusterNodeStatusDeleted {
				result.Skipped++
				continue
			}
			node.Status = v1alpha1.ClusterNodeStatusDeleted
			node.StatusReason = nodeRemovedReason
			node.IsReady = false
			node.UpdatedAt = msg.UpdatedAt
			node.UpdatedBy = Actor
			if err := r.store.UpdateClusterNode(ctx, node); err != nil {
				return fmt.Errorf("failed to delete node %s: %w", node.Name, err)
			}
			result.Deleted++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info("Reconciled cluster nodes", "clusterID", clusterID, "nodes", len(msg.ClusterNodes), "result", result.String())
	return result, nil
}

func nodeUpToDate(node *v1alpha1.ClusterNode, info v1alpha1.ClusterNodeInfo) bool {
	return node.CPUMilliCores == info.CPUMilliCores &&
		node.MemoryBytes == info.MemoryBytes &&
		node.EphemeralStorageBytes == info.EphemeralStorageBytes &&
		node.Gpu == info.GpuInformation &&
		node.Status == info.Status &&
		node.IsReady == info.IsReady
}
