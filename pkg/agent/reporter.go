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

package agent

import (
	"context"
	"fmt"
	"slices"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	kueuev1beta1 "sigs.k8s.io/kueue/apis/kueue/v1beta1"

	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/messaging"
)

// GPU resource names and the node labels the GPU labellers publish.
const (
	AmdGpuResource    = "amd.com/gpu"
	NvidiaGpuResource = "nvidia.com/gpu"

	amdGpuProductLabel    = "amd.com/gpu.product-name"
	amdGpuVramLabel       = "amd.com/gpu.vram"
	nvidiaGpuProductLabel = "nvidia.com/gpu.product"
	nvidiaGpuMemoryLabel  = "nvidia.com/gpu.memory"
)

var aimClusterModelGVR = schema.GroupVersionResource{
	Group:    "aim.silogen.ai",
	Version:  "v1alpha1",
	Resource: "aimclustermodels",
}

// Reporter periodically publishes the cluster's authoritative snapshots: node
// inventory, enforced quota allocations and the AIM model catalog.
type Reporter struct {
	client    client.Client
	dynamic   dynamic.Interface
	publisher messaging.Publisher
	clusterID string
	interval  time.Duration

	now func() time.Time
}

func NewReporter(c client.Client, dyn dynamic.Interface, publisher messaging.Publisher, clusterID string, interval time.Duration) *Reporter {
	return &Reporter{
		client:    c,
		dynamic:   dyn,
		publisher: publisher,
		clusterID: clusterID,
		interval:  interval,
		now:       time.Now,
	}
}

// Run publishes one snapshot set per interval until the context is cancelled.
// Individual snapshot failures are logged and retried on the next tick.
func (r *Reporter) Run(ctx context.Context) error {
	logger := log.FromContext(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.syncOnce(ctx, logger.Error)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Reporter) syncOnce(ctx context.Context, onError func(err error, msg string, keysAndValues ...any)) {
	if msg, err := r.CollectNodes(ctx); err != nil {
		onError(err, "Failed to collect cluster nodes")
	} else if err := messaging.Publish(ctx, r.publisher, messaging.TopicClusterNodes, r.clusterID, msg); err != nil {
		onError(err, "Failed to publish cluster nodes")
	}

	if msg, err := r.CollectQuotas(ctx); err != nil {
		onError(err, "Failed to collect quota allocations")
	} else if err := messaging.Publish(ctx, r.publisher, messaging.TopicQuotasStatus, r.clusterID, msg); err != nil {
		onError(err, "Failed to publish quota allocations")
	}

	if msg, err := r.CollectCatalog(ctx); err != nil {
		onError(err, "Failed to collect AIM catalog")
	} else if err := messaging.Publish(ctx, r.publisher, messaging.TopicAIMCatalog, r.clusterID, msg); err != nil {
		onError(err, "Failed to publish AIM catalog")
	}
}

// CollectNodes builds the cluster-nodes snapshot from the node objects.
func (r *Reporter) CollectNodes(ctx context.Context) (v1alpha1.ClusterNodesMessage, error) {
	nodeList := &corev1.NodeList{}
	if err := r.client.List(ctx, nodeList); err != nil {
		return v1alpha1.ClusterNodesMessage{}, fmt.Errorf("failed to list nodes: %w", err)
	}

	msg := v1alpha1.ClusterNodesMessage{UpdatedAt: r.now().UTC()}
	for _, node := range nodeList.Items {
		msg.ClusterNodes = append(msg.ClusterNodes, nodeInfo(&node))
	}
	return msg, nil
}

func nodeInfo(node *corev1.Node) v1alpha1.ClusterNodeInfo {
	capacity := node.Status.Capacity
	info := v1alpha1.ClusterNodeInfo{
		Name:                  node.Name,
		CPUMilliCores:         capacity.Cpu().MilliValue(),
		MemoryBytes:           capacity.Memory().Value(),
		EphemeralStorageBytes: capacity.StorageEphemeral().Value(),
		GpuInformation:        gpuInfo(node),
	}

	info.Status = v1alpha1.ClusterNodeStatusUnknown
	for _, condition := range node.Status.Conditions {
		if condition.Type != corev1.NodeReady {
			continue
		}
		switch condition.Status {
		case corev1.ConditionTrue:
			info.Status = v1alpha1.ClusterNodeStatusReady
			info.IsReady = true
		case corev1.ConditionFalse:
			info.Status = v1alpha1.ClusterNodeStatusNotReady
		default:
			info.Status = v1alpha1.ClusterNodeStatusUnknown
		}
	}
	return info
}

func gpuInfo(node *corev1.Node) v1alpha1.GpuInformation {
	labels := node.Labels

	if quantity, ok := node.Status.Capacity[AmdGpuResource]; ok && !quantity.IsZero() {
		return v1alpha1.GpuInformation{
			Count:              int32(quantity.Value()),
			Vendor:             "AMD",
			Type:               AmdGpuResource,
			ProductName:        labels[amdGpuProductLabel],
			VRAMBytesPerDevice: quantityLabelBytes(labels[amdGpuVramLabel]),
		}
	}
	if quantity, ok := node.Status.Capacity[NvidiaGpuResource]; ok && !quantity.IsZero() {
		return v1alpha1.GpuInformation{
			Count:              int32(quantity.Value()),
			Vendor:             "NVIDIA",
			Type:               NvidiaGpuResource,
			ProductName:        labels[nvidiaGpuProductLabel],
			VRAMBytesPerDevice: quantityLabelBytes(labels[nvidiaGpuMemoryLabel]),
		}
	}
	return v1alpha1.GpuInformation{}
}

func quantityLabelBytes(value string) int64 {
	if value == "" {
		return 0
	}
	quantity, err := resource.ParseQuantity(value)
	if err != nil {
		return 0
	}
	return quantity.Value()
}

// CollectQuotas builds the quotas-status snapshot from the Kueue cluster
// queues. Each cluster queue maps to one quota allocation; its namespaces are
// the namespaces of the local queues pointing at it.
func (r *Reporter) CollectQuotas(ctx context.Context) (v1alpha1.QuotasStatusMessage, error) {
	clusterQueues := &kueuev1beta1.ClusterQueueList{}
	if err := r.client.List(ctx, clusterQueues); err != nil {
		return v1alpha1.QuotasStatusMessage{}, fmt.Errorf("failed to list cluster queues: %w", err)
	}
	localQueues := &kueuev1beta1.LocalQueueList{}
	if err := r.client.List(ctx, localQueues); err != nil {
		return v1alpha1.QuotasStatusMessage{}, fmt.Errorf("failed to list local queues: %w", err)
	}

	namespacesByQueue := map[string][]string{}
	for _, lq := range localQueues.Items {
		name := string(lq.Spec.ClusterQueue)
		if !slices.Contains(namespacesByQueue[name], lq.Namespace) {
			namespacesByQueue[name] = append(namespacesByQueue[name], lq.Namespace)
		}
	}

	msg := v1alpha1.QuotasStatusMessage{UpdatedAt: r.now().UTC()}
	for _, cq := range clusterQueues.Items {
		allocation := v1alpha1.QuotaAllocation{
			QuotaName:  cq.Name,
			Namespaces: namespacesByQueue[cq.Name],
		}
		slices.Sort(allocation.Namespaces)
		for _, group := range cq.Spec.ResourceGroups {
			for _, flavor := range group.Flavors {
				for _, quota := range flavor.Resources {
					switch quota.Name {
					case corev1.ResourceCPU:
						allocation.CPUMilliCores += quota.NominalQuota.MilliValue()
					case corev1.ResourceMemory:
						allocation.MemoryBytes += quota.NominalQuota.Value()
					case corev1.ResourceEphemeralStorage:
						allocation.EphemeralStorageBytes += quota.NominalQuota.Value()
					case AmdGpuResource, NvidiaGpuResource:
						allocation.GpuCount += int32(quota.NominalQuota.Value())
					}
				}
			}
		}
		msg.QuotaAllocations = append(msg.QuotaAllocations, allocation)
	}
	return msg, nil
}

// CollectCatalog builds the AIM-catalog snapshot from the cluster model
// resources.
func (r *Reporter) CollectCatalog(ctx context.Context) (v1alpha1.AIMCatalogMessage, error) {
	models, err := r.dynamic.Resource(aimClusterModelGVR).List(ctx, metav1.ListOptions{})
	if err != nil {
		return v1alpha1.AIMCatalogMessage{}, fmt.Errorf("failed to list AIM cluster models: %w", err)
	}

	msg := v1alpha1.AIMCatalogMessage{SyncedAt: r.now().UTC()}
	for _, model := range models.Items {
		msg.Models = append(msg.Models, modelInfo(&model))
	}
	return msg, nil
}

func modelInfo(model *unstructured.Unstructured) v1alpha1.AIMModelInfo {
	image, _, _ := unstructured.NestedString(model.Object, "spec", "image")
	status, _, _ := unstructured.NestedString(model.Object, "status", "status")

	info := v1alpha1.AIMModelInfo{
		ResourceName:   model.GetName(),
		ImageReference: image,
		Labels:         model.GetLabels(),
		Status:         v1alpha1.AIMStatusPending,
	}
	if status == "Ready" {
		info.Status = v1alpha1.AIMStatusReady
	}
	return info
}
