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

// Package agent is the cluster-side half of the status pipeline: it watches
// workload resources, classifies their status and ships status and sync
// messages to the server over the queue.
package agent

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	baseutils "github.com/silogen/airm/pkg/utils"
)

// ClusterIdentity resolves the cluster id this agent reports as. The id is
// normally injected at deployment time; the hostname fallback keeps local
// development working.
func ClusterIdentity() (string, error) {
	if clusterID := os.Getenv("AIRM_CLUSTER_ID"); clusterID != "" {
		return baseutils.MakeRFC1123Compliant(clusterID), nil
	}

	logrus.Warn("AIRM_CLUSTER_ID not set. Falling back to hostname")
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to retrieve hostname: %w", err)
	}
	return baseutils.MakeRFC1123Compliant(hostname), nil
}
