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
	"testing"
	"time"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/store"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func seedWorkload(t *testing.T, s *store.MemoryStore, workload *v1alpha1.Workload) {
	t.Helper()
	if err := s.CreateWorkload(context.Background(), workload); err != nil {
		t.Fatalf("seed workload: %v", err)
	}
}

func statusMessage(componentID string, kind v1alpha1.ComponentKind, status v1alpha1.ComponentStatus, at time.Time) v1alpha1.ComponentStatusMessage {
	return v1alpha1.ComponentStatusMessage{
		ComponentID:  componentID,
		WorkloadID:   "w-1",
		ProjectID:    "p-1",
		Kind:         kind,
		Name:         "demo-" + componentID,
		APIVersion:   "batch/v1",
		Status:       status,
		StatusReason: "Status: " + string(status),
		UpdatedAt:    at,
	}
}

func TestHandleComponentStatusResolvesWorkload(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHandler(s)

	seedWorkload(t, s, &v1alpha1.Workload{
		ID: "w-1", ProjectID: "p-1", Status: v1alpha1.WorkloadStatusPending,
		LastTransitionAt: t0,
	})

	if err := h.HandleComponentStatus(ctx, statusMessage("c-1", v1alpha1.ComponentKindJob, v1alpha1.JobStatusRunning, t0.Add(time.Minute))); err != nil {
		t.Fatalf("handle: %v", err)
	}

	workload, err := s.GetWorkload(ctx, "w-1")
	if err != nil {
		t.Fatalf("get workload: %v", err)
	}
	if workload.Status != v1alpha1.WorkloadStatusRunning {
		t.Fatalf("expected Running, got %s", workload.Status)
	}
	if !workload.LastTransitionAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("transition time not recorded: %v", workload.LastTransitionAt)
	}

	// The minute spent Pending was accumulated.
	summary, err := s.GetTimeSummary(ctx, "w-1", v1alpha1.WorkloadStatusPending)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.TotalElapsedSeconds != 60 {
		t.Fatalf("expected 60 seconds Pending, got %d", summary.TotalElapsedSeconds)
	}

	component, err := s.GetComponent(ctx, "c-1")
	if err != nil {
		t.Fatalf("get component: %v", err)
	}
	if component.Status != v1alpha1.JobStatusRunning || component.WorkloadID != "w-1" {
		t.Fatalf("component not persisted: %+v", component)
	}
}

func TestHandleComponentStatusRedeliveryIsANoOp(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHandler(s)

	seedWorkload(t, s, &v1alpha1.Workload{
		ID: "w-1", Status: v1alpha1.WorkloadStatusPending, LastTransitionAt: t0,
	})

	msg := statusMessage("c-1", v1alpha1.ComponentKindJob, v1alpha1.JobStatusRunning, t0.Add(time.Minute))
	for range 3 {
		if err := h.HandleComponentStatus(ctx, msg); err != nil {
			t.Fatalf("handle: %v", err)
		}
	}

	summary, err := s.GetTimeSummary(ctx, "w-1", v1alpha1.WorkloadStatusPending)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.TotalElapsedSeconds != 60 {
		t.Fatalf("redelivery double-counted elapsed time: %d", summary.TotalElapsedSeconds)
	}
}

func TestHandleComponentStatusStaleMessageIgnored(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHandler(s)

	seedWorkload(t, s, &v1alpha1.Workload{
		ID: "w-1", Status: v1alpha1.WorkloadStatusPending, LastTransitionAt: t0,
	})

	if err := h.HandleComponentStatus(ctx, statusMessage("c-1", v1alpha1.ComponentKindJob, v1alpha1.JobStatusComplete, t0.Add(2*time.Minute))); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// An older Running observation arrives late.
	if err := h.HandleComponentStatus(ctx, statusMessage("c-1", v1alpha1.ComponentKindJob, v1alpha1.JobStatusRunning, t0.Add(time.Minute))); err != nil {
		t.Fatalf("handle stale: %v", err)
	}

	component, err := s.GetComponent(ctx, "c-1")
	if err != nil {
		t.Fatalf("get component: %v", err)
	}
	if component.Status != v1alpha1.JobStatusComplete {
		t.Fatalf("stale message overwrote newer state: %s", component.Status)
	}
	workload, _ := s.GetWorkload(ctx, "w-1")
	if workload.Status != v1alpha1.WorkloadStatusComplete {
		t.Fatalf("expected Complete, got %s", workload.Status)
	}
}

func TestHandleComponentStatusDelayedSiblingDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHandler(s)

	seedWorkload(t, s, &v1alpha1.Workload{
		ID: "w-1", Status: v1alpha1.WorkloadStatusPending, LastTransitionAt: t0,
	})

	if err := h.HandleComponentStatus(ctx, statusMessage("c-1", v1alpha1.ComponentKindJob, v1alpha1.JobStatusRunning, t0.Add(2*time.Minute))); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// A delayed observation of a second component. It passes the per-component
	// stale check but its timestamp predates the last workload transition.
	if err := h.HandleComponentStatus(ctx, statusMessage("c-2", v1alpha1.ComponentKindPod, v1alpha1.PodStatusPending, t0.Add(time.Minute))); err != nil {
		t.Fatalf("handle delayed: %v", err)
	}

	workload, err := s.GetWorkload(ctx, "w-1")
	if err != nil {
		t.Fatalf("get workload: %v", err)
	}
	if workload.Status != v1alpha1.WorkloadStatusPending {
		t.Fatalf("expected Pending with a pending sibling, got %s", workload.Status)
	}
	if !workload.LastTransitionAt.Equal(t0.Add(2 * time.Minute)) {
		t.Fatalf("transition time moved backwards: %v", workload.LastTransitionAt)
	}

	if err := h.HandleComponentStatus(ctx, statusMessage("c-2", v1alpha1.ComponentKindPod, v1alpha1.PodStatusRunning, t0.Add(3*time.Minute))); err != nil {
		t.Fatalf("handle: %v", err)
	}

	// Pending wall-clock time is the first two minutes plus one minute while
	// c-2 lagged; a regressed transition clock would credit four.
	summary, err := s.GetTimeSummary(ctx, "w-1", v1alpha1.WorkloadStatusPending)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.TotalElapsedSeconds != 180 {
		t.Fatalf("expected 180 seconds Pending, got %d", summary.TotalElapsedSeconds)
	}
}

func TestHandleComponentStatusUnknownWorkloadFails(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHandler(s)

	err := h.HandleComponentStatus(ctx, statusMessage("c-1", v1alpha1.ComponentKindJob, v1alpha1.JobStatusRunning, t0))
	if !errors.Is(err, ErrUnknownWorkload) {
		t.Fatalf("expected ErrUnknownWorkload, got %v", err)
	}
	// The failed message left nothing behind.
	if _, err := s.GetComponent(ctx, "c-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("component write survived rollback: %v", err)
	}
}

func TestHandleComponentStatusAutoDiscoversWorkload(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHandler(s)

	msg := statusMessage("c-1", v1alpha1.ComponentKindPod, v1alpha1.PodStatusRunning, t0)
	msg.AutoDiscovered = true
	msg.SubmittedBy = "alice"
	if err := h.HandleComponentStatus(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	workload, err := s.GetWorkload(ctx, "w-1")
	if err != nil {
		t.Fatalf("discovered workload missing: %v", err)
	}
	if workload.CreatedBy != "alice" {
		t.Fatalf("owner not taken from submitter: %q", workload.CreatedBy)
	}
	if workload.Type != v1alpha1.WorkloadTypeCustom {
		t.Fatalf("expected Custom type, got %s", workload.Type)
	}
	if workload.Status != v1alpha1.WorkloadStatusRunning {
		t.Fatalf("expected Running after first observation, got %s", workload.Status)
	}
}

func TestHandleComponentStatusDeletingIsSticky(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHandler(s)

	seedWorkload(t, s, &v1alpha1.Workload{
		ID: "w-1", Status: v1alpha1.WorkloadStatusDeleting, LastTransitionAt: t0,
	})

	if err := h.HandleComponentStatus(ctx, statusMessage("c-1", v1alpha1.ComponentKindJob, v1alpha1.JobStatusRunning, t0.Add(time.Minute))); err != nil {
		t.Fatalf("handle: %v", err)
	}

	workload, _ := s.GetWorkload(ctx, "w-1")
	if workload.Status != v1alpha1.WorkloadStatusDeleting {
		t.Fatalf("component chatter overrode Deleting: %s", workload.Status)
	}
	if !workload.LastTransitionAt.Equal(t0) {
		t.Fatalf("no-op resolution bumped transition time: %v", workload.LastTransitionAt)
	}
}

func TestHandleDispatchesSyncTopics(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	h := NewHandler(s)

	payload, err := json.Marshal(v1alpha1.ClusterNodesMessage{
		ClusterNodes: []v1alpha1.ClusterNodeInfo{
			{Name: "gpu-node-0", CPUMilliCores: 32000, Status: v1alpha1.ClusterNodeStatusReady, IsReady: true},
		},
		UpdatedAt: t0,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if err := h.Handle(ctx, Message{Topic: TopicClusterNodes, ClusterID: "cl-1", Payload: payload}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	nodes, err := s.ListClusterNodes(ctx, "cl-1")
	if err != nil {
		t.Fatalf("list nodes: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Name != "gpu-node-0" {
		t.Fatalf("node sync not applied: %+v", nodes)
	}

	if err := h.Handle(ctx, Message{Topic: "bogus"}); err == nil {
		t.Fatal("expected unknown topic error")
	}
}
