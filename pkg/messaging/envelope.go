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
	"time"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/observe"
)

// BuildStatusMessage assembles the outbound status message for one observed
// component from the extracted correlation data and the classifier output. A
// missing reason is filled with a deterministic default so consumers always
// see an explanation.
func BuildStatusMessage(data observe.ComponentData, status v1alpha1.ComponentStatus, reason string, observedAt time.Time) v1alpha1.ComponentStatusMessage {
	return v1alpha1.ComponentStatusMessage{
		ComponentID:    data.ComponentID,
		WorkloadID:     data.WorkloadID,
		ProjectID:      data.ProjectID,
		Kind:           v1alpha1.ComponentKind(data.Kind),
		Name:           data.Name,
		APIVersion:     data.APIVersion,
		Status:         status,
		StatusReason:   observe.DefaultReason(status, reason),
		SubmittedBy:    data.SubmittedBy,
		AutoDiscovered: data.AutoDiscovered,
		UpdatedAt:      observedAt.UTC(),
	}
}
