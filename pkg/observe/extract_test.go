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
	"strings"
	"testing"
)

func managedResource() map[string]interface{} {
	return map[string]interface{}{
		"kind":       "Deployment",
		"apiVersion": "apps/v1",
		"metadata": map[string]interface{}{
			"name":      "inference-server",
			"namespace": "proj-ns",
			"labels": map[string]interface{}{
				WorkloadIDLabel:  "wl-1",
				ComponentIDLabel: "comp-1",
				ProjectIDLabel:   "proj-1",
			},
			"annotations": map[string]interface{}{
				SubmittedByAnnotation: "oidc:alice@example.com",
			},
		},
	}
}

func TestExtractComponentData(t *testing.T) {
	data, err := ExtractComponentData(FromMap(managedResource()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.WorkloadID != "wl-1" || data.ComponentID != "comp-1" || data.ProjectID != "proj-1" {
		t.Errorf("unexpected correlation ids: %+v", data)
	}
	if data.Name != "inference-server" || data.Kind != "Deployment" || data.APIVersion != "apps/v1" {
		t.Errorf("unexpected identity fields: %+v", data)
	}
	if data.SubmittedBy != "alice@example.com" {
		t.Errorf("expected OIDC prefix stripped, got %q", data.SubmittedBy)
	}
	if data.AutoDiscovered {
		t.Error("expected auto-discovery to default to false")
	}
}

func TestExtractComponentDataMissingLabel(t *testing.T) {
	for _, missing := range []string{WorkloadIDLabel, ComponentIDLabel, ProjectIDLabel} {
		resource := managedResource()
		labels := resource["metadata"].(map[string]interface{})["labels"].(map[string]interface{})
		delete(labels, missing)

		res := FromMap(resource)
		if IsManaged(res) {
			t.Errorf("resource without %s should not be managed", missing)
		}
		if _, err := ExtractComponentData(res); !errors.Is(err, ErrMissingCorrelationLabel) {
			t.Errorf("expected ErrMissingCorrelationLabel for %s, got %v", missing, err)
		}
	}
}

func TestExtractAutoDiscovered(t *testing.T) {
	resource := managedResource()
	annotations := resource["metadata"].(map[string]interface{})["annotations"].(map[string]interface{})
	annotations[AutoDiscoveredAnnotation] = "true"

	data, err := ExtractComponentData(FromMap(resource))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !data.AutoDiscovered {
		t.Error("expected auto-discovery flag to be set")
	}

	annotations[AutoDiscoveredAnnotation] = "not-a-bool"
	data, err = ExtractComponentData(FromMap(resource))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.AutoDiscovered {
		t.Error("unparsable auto-discovery value must be treated as false")
	}
}

func TestParseSubmitter(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"missing annotation", "", ""},
		{"service account marker", "system:serviceaccount:proj-ns:runner", "proj-ns:runner"},
		{"oidc marker", "oidc:bob@example.com", "bob@example.com"},
		{"no marker passes through", "plain-user", "plain-user"},
		{"pathological value is truncated", "oidc:" + strings.Repeat("x", 100), strings.Repeat("x", 63)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ParseSubmitter(test.value); got != test.expected {
				t.Errorf("ParseSubmitter(%q) = %q, want %q", test.value, got, test.expected)
			}
		})
	}
}
