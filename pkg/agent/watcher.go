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
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/dynamic/dynamicinformer"
	"k8s.io/client-go/tools/cache"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/silogen/airm/pkg/messaging"
	"github.com/silogen/airm/pkg/observe"
	baseutils "github.com/silogen/airm/pkg/utils"
)

// WatchedResources is the set of resource types the agent tracks for workload
// components.
var WatchedResources = []schema.GroupVersionResource{
	{Group: "apps", Version: "v1", Resource: "deployments"},
	{Group: "apps", Version: "v1", Resource: "statefulsets"},
	{Group: "apps", Version: "v1", Resource: "daemonsets"},
	{Group: "batch", Version: "v1", Resource: "jobs"},
	{Group: "batch", Version: "v1", Resource: "cronjobs"},
	{Group: "", Version: "v1", Resource: "pods"},
	{Group: "", Version: "v1", Resource: "services"},
	{Group: "", Version: "v1", Resource: "configmaps"},
	{Group: "kaiwo.silogen.ai", Version: "v1alpha1", Resource: "kaiwojobs"},
	{Group: "kaiwo.silogen.ai", Version: "v1alpha1", Resource: "kaiwoservices"},
	{Group: "aim.silogen.ai", Version: "v1alpha1", Resource: "aimservices"},
}

// Watcher observes workload component resources through shared informers and
// publishes a status message for every observation of a managed resource.
// Deletion events are not published: the server-side deletion workflow owns the
// delete lifecycle, and a vanished resource carries no classifiable state.
type Watcher struct {
	factory   dynamicinformer.DynamicSharedInformerFactory
	publisher messaging.Publisher
	clusterID string
	resources []schema.GroupVersionResource

	// now is swappable in tests.
	now func() time.Time
}

func NewWatcher(client dynamic.Interface, publisher messaging.Publisher, clusterID string) *Watcher {
	return &Watcher{
		factory:   dynamicinformer.NewDynamicSharedInformerFactory(client, 10*time.Minute),
		publisher: publisher,
		clusterID: clusterID,
		resources: WatchedResources,
		now:       time.Now,
	}
}

// Run registers the informers and blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := log.FromContext(ctx)

	for _, gvr := range w.resources {
		informer := w.factory.ForResource(gvr).Informer()
		if _, err := informer.AddEventHandler(cache.ResourceEventHandlerFuncs{
			AddFunc: func(obj interface{}) {
				w.observe(ctx, obj, observe.EventAdded)
			},
			UpdateFunc: func(_, obj interface{}) {
				w.observe(ctx, obj, observe.EventModified)
			},
		}); err != nil {
			return err
		}
		baseutils.Debug(logger, "Watching resource", "gvr", gvr.String())
	}

	w.factory.Start(ctx.Done())
	w.factory.WaitForCacheSync(ctx.Done())
	logger.Info("Component watcher started", "clusterID", w.clusterID, "resources", len(w.resources))

	<-ctx.Done()
	return ctx.Err()
}

func (w *Watcher) observe(ctx context.Context, obj interface{}, event observe.EventType) {
	logger := log.FromContext(ctx)

	u, ok := obj.(*unstructured.Unstructured)
	if !ok {
		return
	}
	res := observe.FromUnstructured(u)
	if !observe.IsManaged(res) {
		return
	}

	status, reason := observe.Classify(res, event)
	data, err := observe.ExtractComponentData(res)
	if err != nil {
		// IsManaged checked the labels, so this signals label mutation racing
		// the informer cache. Surface it; do not publish a broken correlation.
		logger.Error(err, "Failed to extract component data", "kind", res.GetKind(), "name", res.GetName())
		return
	}

	msg := messaging.BuildStatusMessage(data, status, reason, w.now())
	if err := messaging.Publish(ctx, w.publisher, messaging.TopicComponentStatus, w.clusterID, msg); err != nil {
		logger.Error(err, "Failed to publish component status", "componentID", data.ComponentID)
	}
}
