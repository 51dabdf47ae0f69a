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

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/reconcile"
	"github.com/silogen/airm/pkg/resolve"
	"github.com/silogen/airm/pkg/store"
	"github.com/silogen/airm/pkg/timetrack"
)

// ErrUnknownWorkload is returned for a status message whose workload does not
// exist and which is not marked for auto-discovery.
var ErrUnknownWorkload = errors.New("workload does not exist")

// Handler is the server-side consumer of the queue. Each message is processed
// to completion inside one store transaction; concurrent handlers coordinate
// only through the store.
type Handler struct {
	store       store.Store
	accumulator *timetrack.Accumulator
	aims        *reconcile.AIMReconciler
	nodes       *reconcile.NodeReconciler
	quotas      *reconcile.QuotaReconciler
}

func NewHandler(s store.Store) *Handler {
	return &Handler{
		store:       s,
		accumulator: timetrack.NewAccumulator(s),
		aims:        reconcile.NewAIMReconciler(s),
		nodes:       reconcile.NewNodeReconciler(s),
		quotas:      reconcile.NewQuotaReconciler(s),
	}
}

// Handle dispatches one queue message to the matching handler.
func (h *Handler) Handle(ctx context.Context, msg Message) error {
	switch msg.Topic {
	case TopicComponentStatus:
		var status v1alpha1.ComponentStatusMessage
		if err := json.Unmarshal(msg.Payload, &status); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", msg.Topic, err)
		}
		return h.HandleComponentStatus(ctx, status)
	case TopicClusterNodes:
		var nodes v1alpha1.ClusterNodesMessage
		if err := json.Unmarshal(msg.Payload, &nodes); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", msg.Topic, err)
		}
		_, err := h.nodes.Reconcile(ctx, msg.ClusterID, nodes)
		return err
	case TopicQuotasStatus:
		var quotas v1alpha1.QuotasStatusMessage
		if err := json.Unmarshal(msg.Payload, &quotas); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", msg.Topic, err)
		}
		_, err := h.quotas.Reconcile(ctx, msg.ClusterID, quotas)
		return err
	case TopicAIMCatalog:
		var catalog v1alpha1.AIMCatalogMessage
		if err := json.Unmarshal(msg.Payload, &catalog); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", msg.Topic, err)
		}
		_, err := h.aims.Reconcile(ctx, catalog)
		return err
	}
	return fmt.Errorf("unknown topic %q", msg.Topic)
}

// HandleComponentStatus persists one component status observation and
// recomputes the owning workload's status from all sibling components. A
// message not newer than the component's stored state is stale and ignored
// entirely, which makes redelivery a no-op.
func (h *Handler) HandleComponentStatus(ctx context.Context, msg v1alpha1.ComponentStatusMessage) error {
	logger := log.FromContext(ctx)

	return h.store.Atomically(ctx, func(ctx context.Context) error {
		workload, err := h.store.GetWorkload(ctx, msg.WorkloadID)
		if errors.Is(err, store.ErrNotFound) {
			if !msg.AutoDiscovered {
				return fmt.Errorf("%w: %s (component %s)", ErrUnknownWorkload, msg.WorkloadID, msg.ComponentID)
			}
			workload = h.discoverWorkload(msg)
			if err := h.store.CreateWorkload(ctx, workload); err != nil {
				return fmt.Errorf("failed to create discovered workload %s: %w", msg.WorkloadID, err)
			}
			logger.Info("Created auto-discovered workload", "workloadID", workload.ID, "owner", workload.CreatedBy)
		} else if err != nil {
			return fmt.Errorf("failed to load workload %s: %w", msg.WorkloadID, err)
		}

		component, err := h.store.GetComponent(ctx, msg.ComponentID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			component = &v1alpha1.WorkloadComponent{
				ID:           msg.ComponentID,
				WorkloadID:   msg.WorkloadID,
				Name:         msg.Name,
				Kind:         msg.Kind,
				APIVersion:   msg.APIVersion,
				Status:       msg.Status,
				StatusReason: msg.StatusReason,
				CreatedAt:    msg.UpdatedAt,
				UpdatedAt:    msg.UpdatedAt,
				CreatedBy:    actorFor(msg),
				UpdatedBy:    actorFor(msg),
			}
			if err := h.store.CreateComponent(ctx, component); err != nil {
				return fmt.Errorf("failed to create component %s: %w", msg.ComponentID, err)
			}
		case err != nil:
			return fmt.Errorf("failed to load component %s: %w", msg.ComponentID, err)
		default:
			if !msg.UpdatedAt.After(component.UpdatedAt) {
				logger.V(1).Info("Ignoring stale status message", "componentID", msg.ComponentID, "messageAt", msg.UpdatedAt, "storedAt", component.UpdatedAt)
				return nil
			}
			component.Status = msg.Status
			component.StatusReason = msg.StatusReason
			component.UpdatedAt = msg.UpdatedAt
			component.UpdatedBy = actorFor(msg)
			if err := h.store.UpdateComponent(ctx, component); err != nil {
				return fmt.Errorf("failed to update component %s: %w", msg.ComponentID, err)
			}
		}

		components, err := h.store.ListComponents(ctx, msg.WorkloadID)
		if err != nil {
			return fmt.Errorf("failed to list components of workload %s: %w", msg.WorkloadID, err)
		}
		states := make([]resolve.ComponentState, 0, len(components))
		for _, c := range components {
			states = append(states, resolve.ComponentState{Kind: c.Kind, Status: c.Status})
		}

		resolved := resolve.Resolve(workload.Status, states)
		if resolved == workload.Status {
			return nil
		}

		// A delayed message for a sibling component can carry a timestamp older
		// than the last transition. The transition clock only moves forward, so
		// the already-credited interval is never accumulated twice.
		transitionAt := msg.UpdatedAt
		if transitionAt.Before(workload.LastTransitionAt) {
			transitionAt = workload.LastTransitionAt
		}

		if err := h.accumulator.RecordTransition(ctx, workload.ID, workload.Status, workload.LastTransitionAt, transitionAt); err != nil {
			return err
		}

		logger.Info("Workload status transition", "workloadID", workload.ID, "from", workload.Status, "to", resolved)
		workload.Status = resolved
		workload.LastTransitionAt = transitionAt
		workload.UpdatedAt = transitionAt
		workload.UpdatedBy = reconcile.Actor
		if err := h.store.UpdateWorkload(ctx, workload); err != nil {
			return fmt.Errorf("failed to update workload %s: %w", workload.ID, err)
		}
		return nil
	})
}

// discoverWorkload builds the implicit workload record for a component whose
// submitter is unmanaged. The parsed submitter becomes the owner.
func (h *Handler) discoverWorkload(msg v1alpha1.ComponentStatusMessage) *v1alpha1.Workload {
	owner := msg.SubmittedBy
	if owner == "" {
		owner = reconcile.Actor
	}
	return &v1alpha1.Workload{
		ID:               msg.WorkloadID,
		ProjectID:        msg.ProjectID,
		Type:             v1alpha1.WorkloadTypeCustom,
		Status:           v1alpha1.WorkloadStatusUnknown,
		DisplayName:      msg.Name,
		LastTransitionAt: msg.UpdatedAt,
		CreatedAt:        msg.UpdatedAt,
		UpdatedAt:        msg.UpdatedAt,
		CreatedBy:        owner,
		UpdatedBy:        owner,
	}
}

func actorFor(msg v1alpha1.ComponentStatusMessage) string {
	if msg.SubmittedBy != "" {
		return msg.SubmittedBy
	}
	return reconcile.Actor
}
