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

	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/dynamic"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	kueuev1beta1 "sigs.k8s.io/kueue/apis/kueue/v1beta1"

	"github.com/silogen/airm/pkg/messaging"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(kueuev1beta1.AddToScheme(scheme))
}

// Agent runs the cluster-side pipeline: the component watcher plus the
// periodic snapshot reporter.
type Agent struct {
	watcher  *Watcher
	reporter *Reporter
}

// New builds an agent against the given cluster connection.
func New(config *rest.Config, publisher messaging.Publisher, clusterID string, opts Options) (*Agent, error) {
	dynamicClient, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, err
	}
	k8sClient, err := client.New(config, client.Options{Scheme: scheme})
	if err != nil {
		return nil, err
	}

	return &Agent{
		watcher:  NewWatcher(dynamicClient, publisher, clusterID),
		reporter: NewReporter(k8sClient, dynamicClient, publisher, clusterID, opts.SyncInterval),
	}, nil
}

// Options carries the agent's tunables.
type Options struct {
	SyncInterval time.Duration
}

// Run blocks until the context is cancelled or one of the loops fails.
func (a *Agent) Run(ctx context.Context) error {
	log.FromContext(ctx).Info("Starting cluster agent")
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return a.watcher.Run(ctx) })
	group.Go(func() error { return a.reporter.Run(ctx) })
	return group.Wait()
}
