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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/silogen/airm/pkg/agent"
	"github.com/silogen/airm/pkg/config"
	"github.com/silogen/airm/pkg/messaging"
	baseutils "github.com/silogen/airm/pkg/utils"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "airm-agent",
		Short:        "AIRM cluster agent",
		Long:         "Watches workload resources on the local cluster and emits status and sync messages. Messages are written to stdout as JSON lines; the deployment's transport sidecar owns delivery.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the config file")

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

	clusterID := cfg.Agent.ClusterID
	if clusterID == "" {
		if clusterID, err = agent.ClusterIdentity(); err != nil {
			return err
		}
	}

	clusterAgent, err := agent.New(ctrl.GetConfigOrDie(), messaging.NewWriterPublisher(os.Stdout), clusterID, agent.Options{
		SyncInterval: cfg.Agent.SyncInterval,
	})
	if err != nil {
		return err
	}

	ctx := ctrllog.IntoContext(ctrl.SetupSignalHandler(), logger)
	if err := clusterAgent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
