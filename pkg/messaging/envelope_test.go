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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/observe"
)

func TestBuildStatusMessage(t *testing.T) {
	data := observe.ComponentData{
		Name:        "train-llama",
		Kind:        "Job",
		APIVersion:  "batch/v1",
		WorkloadID:  "w-1",
		ComponentID: "c-1",
		ProjectID:   "p-1",
		SubmittedBy: "alice",
	}
	observedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := BuildStatusMessage(data, v1alpha1.JobStatusRunning, "Job is actively running.", observedAt)
	want := v1alpha1.ComponentStatusMessage{
		ComponentID:  "c-1",
		WorkloadID:   "w-1",
		ProjectID:    "p-1",
		Kind:         v1alpha1.ComponentKindJob,
		Name:         "train-llama",
		APIVersion:   "batch/v1",
		Status:       v1alpha1.JobStatusRunning,
		StatusReason: "Job is actively running.",
		SubmittedBy:  "alice",
		UpdatedAt:    observedAt,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected message (-want +got):\n%s", diff)
	}
}

func TestBuildStatusMessageFillsDefaultReason(t *testing.T) {
	data := observe.ComponentData{Kind: "ConfigMap", ComponentID: "c-2", WorkloadID: "w-1", ProjectID: "p-1"}

	got := BuildStatusMessage(data, v1alpha1.ConfigMapStatusAdded, "", time.Now())
	if got.StatusReason != "Status: Added" {
		t.Fatalf("expected deterministic default reason, got %q", got.StatusReason)
	}
}
