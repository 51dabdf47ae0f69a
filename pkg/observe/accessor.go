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
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
)

// scheme resolves the group/version/kind of typed objects whose TypeMeta is not
// populated, which is the norm for objects fetched through a client.
var scheme = clientgoscheme.Scheme

// EventType is the watch event that accompanied a resource observation.
type EventType string

const (
	EventAdded    EventType = "ADDED"
	EventModified EventType = "MODIFIED"
	EventDeleted  EventType = "DELETED"
)

// Resource is the single accessor the classifier and the extractor depend on.
// It normalizes the two representations a resource can arrive in: a nested
// mapping decoded from the wire, or a typed client object.
type Resource interface {
	GetKind() string
	GetAPIVersion() string
	GetName() string
	GetNamespace() string
	GetLabels() map[string]string
	GetAnnotations() map[string]string

	// GetStatusFields returns the resource's status sub-object. ok is false when
	// the field is absent or is not a mapping.
	GetStatusFields() (map[string]interface{}, bool)

	// GetSpecFields returns the resource's spec sub-object.
	GetSpecFields() (map[string]interface{}, bool)
}

type unstructuredResource struct {
	obj *unstructured.Unstructured
}

// FromUnstructured wraps an unstructured object in the Resource accessor.
func FromUnstructured(obj *unstructured.Unstructured) Resource {
	return &unstructuredResource{obj: obj}
}

// FromMap wraps a raw nested mapping, as decoded from a message payload.
func FromMap(content map[string]interface{}) Resource {
	return &unstructuredResource{obj: &unstructured.Unstructured{Object: content}}
}

// FromObject converts a typed client object into the same accessor the mapping
// representation uses, so the classifier only ever sees one shape.
func FromObject(obj runtime.Object) (Resource, error) {
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %T to unstructured: %w", obj, err)
	}
	u := &unstructured.Unstructured{Object: content}
	if u.GetKind() == "" {
		gvks, _, err := scheme.ObjectKinds(obj)
		if err == nil && len(gvks) > 0 {
			u.SetGroupVersionKind(gvks[0])
		}
	}
	return &unstructuredResource{obj: u}, nil
}

func (r *unstructuredResource) GetKind() string       { return r.obj.GetKind() }
func (r *unstructuredResource) GetAPIVersion() string { return r.obj.GetAPIVersion() }
func (r *unstructuredResource) GetName() string       { return r.obj.GetName() }
func (r *unstructuredResource) GetNamespace() string  { return r.obj.GetNamespace() }

func (r *unstructuredResource) GetLabels() map[string]string {
	return r.obj.GetLabels()
}

func (r *unstructuredResource) GetAnnotations() map[string]string {
	return r.obj.GetAnnotations()
}

func (r *unstructuredResource) GetStatusFields() (map[string]interface{}, bool) {
	return nestedMap(r.obj.Object, "status")
}

func (r *unstructuredResource) GetSpecFields() (map[string]interface{}, bool) {
	return nestedMap(r.obj.Object, "spec")
}

func nestedMap(content map[string]interface{}, field string) (map[string]interface{}, bool) {
	m, found, err := unstructured.NestedMap(content, field)
	if err != nil || !found {
		return nil, false
	}
	return m, true
}
