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

package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/silogen/airm/pkg/agent"
	"github.com/silogen/airm/pkg/config"
	"github.com/silogen/airm/pkg/messaging"
	"github.com/silogen/airm/pkg/store"
	baseutils "github.com/silogen/airm/pkg/utils"
)

var (
	configPath string
	withAgent  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "airm-server",
		Short:        "AIRM status-resolution server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the config file")
	rootCmd.Flags().BoolVar(&withAgent, "with-agent", false, "Run the cluster agent in-process against the local cluster")

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := baseutils.SetupLogging(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}

	ctx := ctrllog.IntoContext(ctrl.SetupSignalHandler(), logger)

	queue := messaging.NewQueue(cfg.Server.QueueBufferSize)
	handler := messaging.NewHandler(store.NewMemoryStore())

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return queue.Consume(ctx, handler.Handle)
	})

	if withAgent {
		clusterID := cfg.Agent.ClusterID
		if clusterID == "" {
			if clusterID, err = agent.ClusterIdentity(); err != nil {
				return err
			}
		}
		clusterAgent, err := agent.New(ctrl.GetConfigOrDie(), queue, clusterID, agent.Options{
			SyncInterval: cfg.Agent.SyncInterval,
		})
		if err != nil {
			return err
		}
		group.Go(func() error {
			return clusterAgent.Run(ctx)
		})
	}

	logger.Info("Server started", "withAgent", withAgent)
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
