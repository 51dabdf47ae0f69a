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

package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/silogen/airm/apis/airm/v1alpha1"
)

// MemoryStore is an in-memory Store used by tests and single-process
// deployments. Writes performed inside Atomically are rolled back as a whole
// when the callback fails.
type MemoryStore struct {
	// txMu serializes whole transactions, mu guards individual accesses.
	txMu sync.Mutex
	mu   sync.Mutex

	workloads  map[string]*v1alpha1.Workload
	components map[string]*v1alpha1.WorkloadComponent
	summaries  map[string]*v1alpha1.WorkloadTimeSummary
	aims       map[string]*v1alpha1.AIM
	nodes      map[string]*v1alpha1.ClusterNode
	quotas     map[string]*v1alpha1.Quota
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workloads:  map[string]*v1alpha1.Workload{},
		components: map[string]*v1alpha1.WorkloadComponent{},
		summaries:  map[string]*v1alpha1.WorkloadTimeSummary{},
		aims:       map[string]*v1alpha1.AIM{},
		nodes:      map[string]*v1alpha1.ClusterNode{},
		quotas:     map[string]*v1alpha1.Quota{},
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.restoreLocked(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	workloads  map[string]*v1alpha1.Workload
	components map[string]*v1alpha1.WorkloadComponent
	summaries  map[string]*v1alpha1.WorkloadTimeSummary
	aims       map[string]*v1alpha1.AIM
	nodes      map[string]*v1alpha1.ClusterNode
	quotas     map[string]*v1alpha1.Quota
}

func (s *MemoryStore) snapshotLocked() memorySnapshot {
	return memorySnapshot{
		workloads:  cloneMap(s.workloads, cloneWorkload),
		components: cloneMap(s.components, cloneComponent),
		summaries:  cloneMap(s.summaries, cloneSummary),
		aims:       cloneMap(s.aims, cloneAIM),
		nodes:      cloneMap(s.nodes, cloneNode),
		quotas:     cloneMap(s.quotas, cloneQuota),
	}
}

func (s *MemoryStore) restoreLocked(snapshot memorySnapshot) {
	s.workloads = snapshot.workloads
	s.components = snapshot.components
	s.summaries = snapshot.summaries
	s.aims = snapshot.aims
	s.nodes = snapshot.nodes
	s.quotas = snapshot.quotas
}

func (s *MemoryStore) GetWorkload(_ context.Context, id string) (*v1alpha1.Workload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	workload, ok := s.workloads[id]
	if !ok {
		return nil, fmt.Errorf("workload %q: %w", id, ErrNotFound)
	}
	return cloneWorkload(workload), nil
}

func (s *MemoryStore) CreateWorkload(_ context.Context, workload *v1alpha1.Workload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.workloads[workload.ID]; exists {
		return fmt.Errorf("workload %q already exists", workload.ID)
	}
	s.workloads[workload.ID] = cloneWorkload(workload)
	return nil
}

func (s *MemoryStore) UpdateWorkload(_ context.Context, workload *v1alpha1.Workload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workloads[workload.ID]; !ok {
		return fmt.Errorf("workload %q: %w", workload.ID, ErrNotFound)
	}
	s.workloads[workload.ID] = cloneWorkload(workload)
	return nil
}

func (s *MemoryStore) GetComponent(_ context.Context, componentID string) (*v1alpha1.WorkloadComponent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	component, ok := s.components[componentID]
	if !ok {
		return nil, fmt.Errorf("component %q: %w", componentID, ErrNotFound)
	}
	return cloneComponent(component), nil
}

func (s *MemoryStore) ListComponents(_ context.Context, workloadID string) ([]*v1alpha1.WorkloadComponent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var components []*v1alpha1.WorkloadComponent
	for _, component := range s.components {
		if component.WorkloadID == workloadID {
			components = append(components, cloneComponent(component))
		}
	}
	slices.SortFunc(components, func(a, b *v1alpha1.WorkloadComponent) int {
		return compareStrings(a.ID, b.ID)
	})
	return components, nil
}

func (s *MemoryStore) CreateComponent(_ context.Context, component *v1alpha1.WorkloadComponent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.components[component.ID]; exists {
		return fmt.Errorf("component %q already exists", component.ID)
	}
	s.components[component.ID] = cloneComponent(component)
	return nil
}

func (s *MemoryStore) UpdateComponent(_ context.Context, component *v1alpha1.WorkloadComponent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.components[component.ID]; !ok {
		return fmt.Errorf("component %q: %w", component.ID, ErrNotFound)
	}
	s.components[component.ID] = cloneComponent(component)
	return nil
}

func (s *MemoryStore) GetTimeSummary(_ context.Context, workloadID string, status v1alpha1.WorkloadStatus) (*v1alpha1.WorkloadTimeSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.summaries[summaryKey(workloadID, status)]
	if !ok {
		return nil, fmt.Errorf("time summary for %q/%s: %w", workloadID, status, ErrNotFound)
	}
	return cloneSummary(summary), nil
}

func (s *MemoryStore) PutTimeSummary(_ context.Context, summary *v1alpha1.WorkloadTimeSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[summaryKey(summary.WorkloadID, summary.Status)] = cloneSummary(summary)
	return nil
}

func (s *MemoryStore) ListAIMs(_ context.Context) ([]*v1alpha1.AIM, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	aims := make([]*v1alpha1.AIM, 0, len(s.aims))
	for _, aim := range s.aims {
		aims = append(aims, cloneAIM(aim))
	}
	slices.SortFunc(aims, func(a, b *v1alpha1.AIM) int {
		return compareStrings(a.ID, b.ID)
	})
	return aims, nil
}

func (s *MemoryStore) CreateAIM(_ context.Context, aim *v1alpha1.AIM) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.aims[aim.ID]; exists {
		return fmt.Errorf("aim %q already exists", aim.ID)
	}
	s.aims[aim.ID] = cloneAIM(aim)
	return nil
}

func (s *MemoryStore) UpdateAIM(_ context.Context, aim *v1alpha1.AIM) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.aims[aim.ID]; !ok {
		return fmt.Errorf("aim %q: %w", aim.ID, ErrNotFound)
	}
	s.aims[aim.ID] = cloneAIM(aim)
	return nil
}

func (s *MemoryStore) ListClusterNodes(_ context.Context, clusterID string) ([]*v1alpha1.ClusterNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var nodes []*v1alpha1.ClusterNode
	for _, node := range s.nodes {
		if node.ClusterID == clusterID {
			nodes = append(nodes, cloneNode(node))
		}
	}
	slices.SortFunc(nodes, func(a, b *v1alpha1.ClusterNode) int {
		return compareStrings(a.ID, b.ID)
	})
	return nodes, nil
}

func (s *MemoryStore) CreateClusterNode(_ context.Context, node *v1alpha1.ClusterNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[node.ID]; exists {
		return fmt.Errorf("cluster node %q already exists", node.ID)
	}
	s.nodes[node.ID] = cloneNode(node)
	return nil
}

func (s *MemoryStore) UpdateClusterNode(_ context.Context, node *v1alpha1.ClusterNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[node.ID]; !ok {
		return fmt.Errorf("cluster node %q: %w", node.ID, ErrNotFound)
	}
	s.nodes[node.ID] = cloneNode(node)
	return nil
}

func (s *MemoryStore) ListQuotas(_ context.Context, clusterID string) ([]*v1alpha1.Quota, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var quotas []*v1alpha1.Quota
	for _, quota := range s.quotas {
		if quota.ClusterID == clusterID {
			quotas = append(quotas, cloneQuota(quota))
		}
	}
	slices.SortFunc(quotas, func(a, b *v1alpha1.Quota) int {
		return compareStrings(a.ID, b.ID)
	})
	return quotas, nil
}

func (s *MemoryStore) CreateQuota(_ context.Context, quota *v1alpha1.Quota) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.quotas[quota.ID]; exists {
		return fmt.Errorf("quota %q already exists", quota.ID)
	}
	s.quotas[quota.ID] = cloneQuota(quota)
	return nil
}

func (s *MemoryStore) UpdateQuota(_ context.Context, quota *v1alpha1.Quota) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotas[quota.ID]; !ok {
		return fmt.Errorf("quota %q: %w", quota.ID, ErrNotFound)
	}
	s.quotas[quota.ID] = cloneQuota(quota)
	return nil
}

func summaryKey(workloadID string, status v1alpha1.WorkloadStatus) string {
	return workloadID + "/" + string(status)
}

func cloneMap[V any](in map[string]V, cloneValue func(V) V) map[string]V {
	out := make(map[string]V, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneWorkload(w *v1alpha1.Workload) *v1alpha1.Workload {
	out := *w
	return &out
}

func cloneComponent(c *v1alpha1.WorkloadComponent) *v1alpha1.WorkloadComponent {
	out := *c
	return &out
}

func cloneSummary(s *v1alpha1.WorkloadTimeSummary) *v1alpha1.WorkloadTimeSummary {
	out := *s
	return &out
}

func cloneAIM(a *v1alpha1.AIM) *v1alpha1.AIM {
	out := *a
	out.Labels = maps.Clone(a.Labels)
	return &out
}

func cloneNode(n *v1alpha1.ClusterNode) *v1alpha1.ClusterNode {
	out := *n
	return &out
}

func cloneQuota(q *v1alpha1.Quota) *v1alpha1.Quota {
	out := *q
	out.Namespaces = slices.Clone(q.Namespaces)
	return &out
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
