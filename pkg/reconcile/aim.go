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

package reconcile

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/store"
)

const aimRemovedReason = "Model was removed from the cluster catalog"

// AIMReconciler synchronizes the stored model catalog against an AIM-catalog
// sync message. The image reference is the identity key: clusters may rename a
// model's resource, but the same image reference always means the same AIM.
type AIMReconciler struct {
	store store.Store
}

func NewAIMReconciler(s store.Store) *AIMReconciler {
	return &AIMReconciler{store: s}
}

// Reconcile applies one catalog snapshot. The whole sync runs in a single
// transaction; the returned counts describe what was committed.
func (r *AIMReconciler) Reconcile(ctx context.Context, msg v1alpha1.AIMCatalogMessage) (Result, error) {
	logger := log.FromContext(ctx)

	var result Result
	err := r.store.Atomically(ctx, func(ctx context.Context) error {
		existing, err := r.store.ListAIMs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list AIMs: %w", err)
		}

		byImage := map[string]*v1alpha1.AIM{}
		byName := map[string]*v1alpha1.AIM{}
		for _, aim := range existing {
			if aim.ImageReference != "" {
				byImage[normalizeImageReference(aim.ImageReference)] = aim
			}
			byName[aim.ResourceName] = aim
		}

		seen := map[string]bool{}
		for _, model := range msg.Models {
			matched := matchAIM(model, byImage, byName)
			if matched == nil {
				aim := &v1alpha1.AIM{
					ID:             uuid.NewString(),
					ResourceName:   model.ResourceName,
					ImageReference: model.ImageReference,
					Labels:         maps.Clone(model.Labels),
					Status:         aimStatusOrDefault(model.Status),
					CreatedAt:      msg.SyncedAt,
					UpdatedAt:      msg.SyncedAt,
					CreatedBy:      Actor,
					UpdatedBy:      Actor,
				}
				if err := r.store.CreateAIM(ctx, aim); err != nil {
					return fmt.Errorf("failed to create AIM %s: %w", model.ImageReference, err)
				}
				byImage[normalizeImageReference(aim.ImageReference)] = aim
				byName[aim.ResourceName] = aim
				seen[aim.ID] = true
				result.Added++
				continue
			}

			seen[matched.ID] = true
			if aimUpToDate(matched, model) {
				result.Skipped++
				continue
			}
			matched.ResourceName = model.ResourceName
			matched.Labels = maps.Clone(model.Labels)
			matched.Status = aimStatusOrDefault(model.Status)
			matched.StatusReason = ""
			if model.ImageReference != "" && !sameImageReference(matched.ImageReference, model.ImageReference) {
				matched.ImageReference = model.ImageReference
			}
			matched.UpdatedAt = msg.SyncedAt
			matched.UpdatedBy = Actor
			if err := r.store.UpdateAIM(ctx, matched); err != nil {
				return fmt.Errorf("failed to update AIM %s: %w", matched.ImageReference, err)
			}
			result.Updated++
		}

		for _, aim := range existing {
			if seen[aim.ID] {
				continue
			}
			if aim.Status == v1alpha1.AIMStatusDeleted {
				result.Skipped++
				continue
			}
			aim.Status = v1alpha1.AIMStatusDeleted
			aim.StatusReason = aimRemovedReason
			aim.UpdatedAt = msg.SyncedAt
			aim.UpdatedBy = Actor
			if err := r.store.UpdateAIM(ctx, aim); err != nil {
				return fmt.Errorf("failed to delete AIM %s: %w", aim.ImageReference, err)
			}
			result.Deleted++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info("Reconciled AIM catalog", "models", len(msg.Models), "result", result.String())
	return result, nil
}

// matchAIM resolves an incoming model to a stored record by image reference,
// falling back to the resource name when the message echoes back a record that
// was created before its image reference was known.
func matchAIM(model v1alpha1.AIMModelInfo, byImage, byName map[string]*v1alpha1.AIM) *v1alpha1.AIM {
	if model.ImageReference != "" {
		if aim, ok := byImage[normalizeImageReference(model.ImageReference)]; ok {
			return aim
		}
	}
	if aim, ok := byName[model.ResourceName]; ok {
		if aim.ImageReference == "" || model.ImageReference == "" {
			return aim
		}
	}
	return nil
}

func aimUpToDate(aim *v1alpha1.AIM, model v1alpha1.AIMModelInfo) bool {
	return aim.ResourceName == model.ResourceName &&
		(model.ImageReference == "" || sameImageReference(aim.ImageReference, model.ImageReference)) &&
		aim.Status == aimStatusOrDefault(model.Status) &&
		maps.Equal(aim.Labels, model.Labels)
}

// sameImageReference reports whether two references name the same image once
// canonicalized, so an equivalent spelling never counts as a change.
func sameImageReference(a, b string) bool {
	return normalizeImageReference(a) == normalizeImageReference(b)
}

func aimStatusOrDefault(status v1alpha1.AIMStatus) v1alpha1.AIMStatus {
	if status == "" {
		return v1alpha1.AIMStatusReady
	}
	return status
}

// normalizeImageReference canonicalizes an image reference so that e.g.
// "llama:1.0" and "docker.io/library/llama:1.0" compare equal. Unparseable
// references are compared verbatim.
func normalizeImageReference(ref string) string {
	parsed, err := name.ParseReference(ref, name.WeakValidation)
	if err != nil {
		return ref
	}
	return parsed.Name()
}
