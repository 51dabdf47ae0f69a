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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/store"
)

var syncTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestAIMReconcileClassifiesEveryRecord(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewAIMReconciler(s)

	// Seed: one record that will be updated, one that is unchanged, one that
	// disappears from the catalog.
	mustCreateAIM(t, s, &v1alpha1.AIM{
		ID: "aim-upd", ResourceName: "llama-old", ImageReference: "ghcr.io/silogen/llama:1.0",
		Status: v1alpha1.AIMStatusReady,
	})
	mustCreateAIM(t, s, &v1alpha1.AIM{
		ID: "aim-same", ResourceName: "mistral", ImageReference: "ghcr.io/silogen/mistral:2.1",
		Status: v1alpha1.AIMStatusReady,
	})
	mustCreateAIM(t, s, &v1alpha1.AIM{
		ID: "aim-gone", ResourceName: "falcon", ImageReference: "ghcr.io/silogen/falcon:0.9",
		Status: v1alpha1.AIMStatusReady,
	})

	result, err := r.Reconcile(ctx, v1alpha1.AIMCatalogMessage{
		Models: []v1alpha1.AIMModelInfo{
			{ResourceName: "llama-new", ImageReference: "ghcr.io/silogen/llama:1.0", Status: v1alpha1.AIMStatusReady},
			{ResourceName: "mistral", ImageReference: "ghcr.io/silogen/mistral:2.1", Status: v1alpha1.AIMStatusReady},
			{ResourceName: "qwen", ImageReference: "ghcr.io/silogen/qwen:3.0", Status: v1alpha1.AIMStatusReady},
		},
		SyncedAt: syncTime,
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	want := Result{Added: 1, Updated: 1, Deleted: 1, Skipped: 1}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}

	aims := mustListAIMs(t, s)
	byID := map[string]*v1alpha1.AIM{}
	for _, aim := range aims {
		byID[aim.ID] = aim
	}
	if got := byID["aim-upd"].ResourceName; got != "llama-new" {
		t.Errorf("rename not applied, resource name %q", got)
	}
	if got := byID["aim-gone"].Status; got != v1alpha1.AIMStatusDeleted {
		t.Errorf("missing model not soft-deleted, status %s", got)
	}
	if got := byID["aim-gone"].StatusReason; got != aimRemovedReason {
		t.Errorf("unexpected delete reason %q", got)
	}
	if ts := byID["aim-same"].UpdatedAt; !ts.IsZero() {
		t.Errorf("skip bumped updated_at to %v", ts)
	}
}

func TestAIMReconcileMatchesByNormalizedImageReference(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewAIMReconciler(s)

	mustCreateAIM(t, s, &v1alpha1.AIM{
		ID: "aim-1", ResourceName: "llama", ImageReference: "docker.io/library/llama:1.0",
		Status: v1alpha1.AIMStatusReady,
	})

	result, err := r.Reconcile(ctx, v1alpha1.AIMCatalogMessage{
		Models: []v1alpha1.AIMModelInfo{
			{ResourceName: "llama", ImageReference: "llama:1.0", Status: v1alpha1.AIMStatusReady},
		},
		SyncedAt: syncTime,
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	// The short and fully qualified references are the same image; nothing to
	// add or change.
	if result.Added != 0 || result.Updated != 0 || result.Skipped != 1 {
		t.Fatalf("expected pure skip, got %s", result)
	}
	aims := mustListAIMs(t, s)
	if aims[0].ImageReference != "docker.io/library/llama:1.0" {
		t.Fatalf("skip rewrote the stored reference: %q", aims[0].ImageReference)
	}
	if !aims[0].UpdatedAt.IsZero() {
		t.Fatalf("skip bumped updated_at to %v", aims[0].UpdatedAt)
	}

	// A genuine change delivered under the short spelling updates the record
	// but keeps the stored canonical reference.
	result, err = r.Reconcile(ctx, v1alpha1.AIMCatalogMessage{
		Models: []v1alpha1.AIMModelInfo{
			{ResourceName: "llama", ImageReference: "llama:1.0", Status: v1alpha1.AIMStatusPending},
		},
		SyncedAt: syncTime,
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("expected status update, got %s", result)
	}
	aims = mustListAIMs(t, s)
	if aims[0].Status != v1alpha1.AIMStatusPending || aims[0].ImageReference != "docker.io/library/llama:1.0" {
		t.Fatalf("update replaced the stored reference: %+v", aims[0])
	}
}

func TestAIMReconcileFallsBackToResourceName(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewAIMReconciler(s)

	// A record created through the workload path before its image reference was
	// known.
	mustCreateAIM(t, s, &v1alpha1.AIM{
		ID: "aim-1", ResourceName: "llama", Status: v1alpha1.AIMStatusPending,
	})

	result, err := r.Reconcile(ctx, v1alpha1.AIMCatalogMessage{
		Models: []v1alpha1.AIMModelInfo{
			{ResourceName: "llama", ImageReference: "ghcr.io/silogen/llama:1.0", Status: v1alpha1.AIMStatusReady},
		},
		SyncedAt: syncTime,
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Updated != 1 || result.Added != 0 {
		t.Fatalf("expected update via name fallback, got %s", result)
	}
	aims := mustListAIMs(t, s)
	if aims[0].ImageReference != "ghcr.io/silogen/llama:1.0" || aims[0].Status != v1alpha1.AIMStatusReady {
		t.Fatalf("image reference not backfilled: %+v", aims[0])
	}
}

func TestAIMReconcileRestoresDeletedModel(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewAIMReconciler(s)

	mustCreateAIM(t, s, &v1alpha1.AIM{
		ID: "aim-1", ResourceName: "llama", ImageReference: "ghcr.io/silogen/llama:1.0",
		Status: v1alpha1.AIMStatusDeleted, StatusReason: aimRemovedReason,
	})

	// Absent again: already deleted, so idempotent skip.
	result, err := r.Reconcile(ctx, v1alpha1.AIMCatalogMessage{SyncedAt: syncTime})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Deleted != 0 || result.Skipped != 1 {
		t.Fatalf("expected idempotent skip, got %s", result)
	}

	// Reappearance is a plain update back to the reported status.
	result, err = r.Reconcile(ctx, v1alpha1.AIMCatalogMessage{
		Models: []v1alpha1.AIMModelInfo{
			{ResourceName: "llama", ImageReference: "ghcr.io/silogen/llama:1.0", Status: v1alpha1.AIMStatusReady},
		},
		SyncedAt: syncTime.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("expected restore as update, got %s", result)
	}
	aims := mustListAIMs(t, s)
	if aims[0].Status != v1alpha1.AIMStatusReady || aims[0].StatusReason != "" {
		t.Fatalf("restore not applied: %+v", aims[0])
	}
}

func TestNodeReconcileAppliesSnapshot(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewNodeReconciler(s)

	if err := s.CreateClusterNode(ctx, &v1alpha1.ClusterNode{
		ID: "n-1", ClusterID: "cl-1", Name: "gpu-node-0",
		CPUMilliCores: 32000, Status: v1alpha1.ClusterNodeStatusReady, IsReady: true,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.CreateClusterNode(ctx, &v1alpha1.ClusterNode{
		ID: "n-2", ClusterID: "cl-1", Name: "gpu-node-1",
		Status: v1alpha1.ClusterNodeStatusReady, IsReady: true,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := r.Reconcile(ctx, "cl-1", v1alpha1.ClusterNodesMessage{
		ClusterNodes: []v1alpha1.ClusterNodeInfo{
			// gpu-node-0 grew more CPU, gpu-node-1 is gone, gpu-node-2 is new.
			{Name: "gpu-node-0", CPUMilliCores: 64000, Status: v1alpha1.ClusterNodeStatusReady, IsReady: true},
			{Name: "gpu-node-2", CPUMilliCores: 64000, Status: v1alpha1.ClusterNodeStatusReady, IsReady: true,
				GpuInformation: v1alpha1.GpuInformation{Count: 8, Vendor: "AMD", Type: "MI300X"}},
		},
		UpdatedAt: syncTime,
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	want := Result{Added: 1, Updated: 1, Deleted: 1}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}

	nodes, err := s.ListClusterNodes(ctx, "cl-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	byName := map[string]*v1alpha1.ClusterNode{}
	for _, node := range nodes {
		byName[node.Name] = node
	}
	if byName["gpu-node-0"].CPUMilliCores != 64000 {
		t.Errorf("update not applied: %+v", byName["gpu-node-0"])
	}
	gone := byName["gpu-node-1"]
	if gone.Status != v1alpha1.ClusterNodeStatusDeleted || gone.IsReady || gone.StatusReason != nodeRemovedReason {
		t.Errorf("missing node not soft-deleted: %+v", gone)
	}
	if byName["gpu-node-2"].Gpu.Count != 8 {
		t.Errorf("add not applied: %+v", byName["gpu-node-2"])
	}
}

func TestQuotaReconcileMatchingAllocationApplies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewQuotaReconciler(s)

	if err := s.CreateQuota(ctx, &v1alpha1.Quota{
		ID: "q-1", ClusterID: "cl-1", ProjectID: "p-1", QuotaName: "team-a",
		CPUMilliCores: 16000, MemoryBytes: 1 << 34, GpuCount: 4,
		Namespaces: []string{"team-a"}, Status: v1alpha1.QuotaStatusPending,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := r.Reconcile(ctx, "cl-1", v1alpha1.QuotasStatusMessage{
		QuotaAllocations: []v1alpha1.QuotaAllocation{
			{QuotaName: "team-a", CPUMilliCores: 16000, MemoryBytes: 1 << 34, GpuCount: 4, Namespaces: []string{"team-a"}},
		},
		UpdatedAt: syncTime,
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("expected Pending quota to move to Applied, got %s", result)
	}
	quotas, _ := s.ListQuotas(ctx, "cl-1")
	if quotas[0].Status != v1alpha1.QuotaStatusApplied {
		t.Fatalf("quota not applied: %+v", quotas[0])
	}

	// Same report again: nothing changes.
	result, err = r.Reconcile(ctx, "cl-1", v1alpha1.QuotasStatusMessage{
		QuotaAllocations: []v1alpha1.QuotaAllocation{
			{QuotaName: "team-a", CPUMilliCores: 16000, MemoryBytes: 1 << 34, GpuCount: 4, Namespaces: []string{"team-a"}},
		},
		UpdatedAt: syncTime.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Skipped != 1 || result.Updated != 0 {
		t.Fatalf("expected idempotent skip, got %s", result)
	}
}

func TestQuotaReconcileMismatchFails(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewQuotaReconciler(s)

	if err := s.CreateQuota(ctx, &v1alpha1.Quota{
		ID: "q-1", ClusterID: "cl-1", QuotaName: "team-a",
		CPUMilliCores: 16000, GpuCount: 4, Status: v1alpha1.QuotaStatusApplied,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := r.Reconcile(ctx, "cl-1", v1alpha1.QuotasStatusMessage{
		QuotaAllocations: []v1alpha1.QuotaAllocation{
			{QuotaName: "team-a", CPUMilliCores: 8000, GpuCount: 4},
		},
		UpdatedAt: syncTime,
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("expected mismatch update, got %s", result)
	}
	quotas, _ := s.ListQuotas(ctx, "cl-1")
	if quotas[0].Status != v1alpha1.QuotaStatusFailed || quotas[0].StatusReason != quotaMismatchReason {
		t.Fatalf("mismatch did not fail quota: %+v", quotas[0])
	}
	// The configured numbers stay intact so the mismatch stays diagnosable.
	if quotas[0].CPUMilliCores != 16000 {
		t.Fatalf("configured allocation was overwritten: %+v", quotas[0])
	}
}

func TestQuotaReconcileMissingAllocationFailsAndZeroes(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	r := NewQuotaReconciler(s)

	if err := s.CreateQuota(ctx, &v1alpha1.Quota{
		ID: "q-1", ClusterID: "cl-1", QuotaName: "team-a",
		CPUMilliCores: 16000, MemoryBytes: 1 << 34, GpuCount: 4,
		Status: v1alpha1.QuotaStatusApplied,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	result, err := r.Reconcile(ctx, "cl-1", v1alpha1.QuotasStatusMessage{UpdatedAt: syncTime})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected delete, got %s", result)
	}
	quotas, _ := s.ListQuotas(ctx, "cl-1")
	q := quotas[0]
	if q.Status != v1alpha1.QuotaStatusFailed || q.StatusReason != quotaRemovedReason {
		t.Fatalf("missing quota not failed: %+v", q)
	}
	if q.CPUMilliCores != 0 || q.MemoryBytes != 0 || q.GpuCount != 0 {
		t.Fatalf("resources not zeroed: %+v", q)
	}

	// Redelivery of the same empty report is a no-op.
	result, err = r.Reconcile(ctx, "cl-1", v1alpha1.QuotasStatusMessage{UpdatedAt: syncTime.Add(time.Minute)})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.Deleted != 0 || result.Skipped != 1 {
		t.Fatalf("expected idempotent skip, got %s", result)
	}
}

func mustCreateAIM(t *testing.T, s *store.MemoryStore, aim *v1alpha1.AIM) {
	t.Helper()
	if err := s.CreateAIM(context.Background(), aim); err != nil {
		t.Fatalf("seed AIM %s: %v", aim.ID, err)
	}
}

func mustListAIMs(t *testing.T, s *store.MemoryStore) []*v1alpha1.AIM {
	t.Helper()
	aims, err := s.ListAIMs(context.Background())
	if err != nil {
		t.Fatalf("list AIMs: %v", err)
	}
	return aims
}
