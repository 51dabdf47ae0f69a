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

package observe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	baseutils "github.com/silogen/airm/pkg/utils"
)

// System labels and annotations injected at submission time. Their presence is
// what makes a cluster resource part of a tracked workload.
const (
	LabelBase = "airm.silogen.ai"

	WorkloadIDLabel  = LabelBase + "/workload-id"
	ComponentIDLabel = LabelBase + "/component-id"
	ProjectIDLabel   = LabelBase + "/project-id"

	SubmittedByAnnotation    = LabelBase + "/submitted-by"
	AutoDiscoveredAnnotation = LabelBase + "/auto-discovered"

	// Submitter identity markers. Service accounts submit through the cluster
	// API, human users through the OIDC proxy.
	ServiceAccountPrefix = "system:serviceaccount:"
	OIDCUserPrefix       = "oidc:"
)

// ErrMissingCorrelationLabel signals a resource that reached the status
// pipeline without the labels injected at submission time. This is a bug
// upstream and must not be swallowed.
var ErrMissingCorrelationLabel = errors.New("missing required correlation label")

// ComponentData is the correlation and identity information extracted from a
// resource's metadata.
type ComponentData struct {
	Name        string
	Kind        string
	APIVersion  string
	WorkloadID  string
	ComponentID string
	ProjectID   string

	// SubmittedBy is the parsed submitter identity, empty when the submitter
	// annotation is absent.
	SubmittedBy string

	// AutoDiscovered marks components whose workload may not exist server-side
	// yet and must be created implicitly instead of rejected.
	AutoDiscovered bool
}

// IsManaged reports whether the resource carries all correlation labels, i.e.
// whether it belongs to a tracked workload at all. Watchers use this to filter
// before extraction, which treats missing labels as a hard failure.
func IsManaged(res Resource) bool {
	labels := res.GetLabels()
	for _, key := range []string{WorkloadIDLabel, ComponentIDLabel, ProjectIDLabel} {
		if labels[key] == "" {
			return false
		}
	}
	return true
}

// ExtractComponentData pulls the correlation labels and submitter identity out
// of a resource's metadata. All three correlation labels are required.
func ExtractComponentData(res Resource) (ComponentData, error) {
	labels := res.GetLabels()
	data := ComponentData{
		Name:       res.GetName(),
		Kind:       res.GetKind(),
		APIVersion: res.GetAPIVersion(),
	}

	for _, field := range []struct {
		key  string
		into *string
	}{
		{WorkloadIDLabel, &data.WorkloadID},
		{ComponentIDLabel, &data.ComponentID},
		{ProjectIDLabel, &data.ProjectID},
	} {
		value := labels[field.key]
		if value == "" {
			return ComponentData{}, fmt.Errorf("%w: %s on %s/%s", ErrMissingCorrelationLabel, field.key, res.GetKind(), res.GetName())
		}
		*field.into = value
	}

	annotations := res.GetAnnotations()
	data.SubmittedBy = ParseSubmitter(annotations[SubmittedByAnnotation])
	if raw := annotations[AutoDiscoveredAnnotation]; raw != "" {
		discovered, err := strconv.ParseBool(raw)
		data.AutoDiscovered = err == nil && discovered
	}

	return data, nil
}

// ParseSubmitter normalizes a submitter annotation value into a bare identity.
// Known service-account and OIDC markers are stripped and the result is bounded
// to a Kubernetes object-name-like length.
func ParseSubmitter(value string) string {
	if value == "" {
		return ""
	}
	value = strings.TrimPrefix(value, ServiceAccountPrefix)
	value = strings.TrimPrefix(value, OIDCUserPrefix)
	return baseutils.Truncate(value, baseutils.MaxIdentityLength)
}
