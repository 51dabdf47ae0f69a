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

package v1alpha1

import (
	"time"
)

// AIMStatus is the catalog status of a discovered model image.
type AIMStatus string

const (
	AIMStatusReady   AIMStatus = "Ready"
	AIMStatusPending AIMStatus = "Pending"
	AIMStatusDeleted AIMStatus = "Deleted"
)

// AIM is a cluster-discovered inference model image. ImageReference is the true
// identity key across clusters; ResourceName is cosmetic and may change when a
// model moves between clusters. At most one non-deleted AIM exists per image
// reference.
type AIM struct {
	ID             string
	ResourceName   string
	ImageReference string
	Labels         map[string]string
	Status         AIMStatus
	StatusReason   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CreatedBy      string
	UpdatedBy      string
}
