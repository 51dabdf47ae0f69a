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

// Package timetrack accumulates how long a workload has spent in each status.
// Totals feed billing and observability of time spent Pending, Running and so
// on.
package timetrack

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/silogen/airm/apis/airm/v1alpha1"
	"github.com/silogen/airm/pkg/store"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Accumulator records elapsed time for the status a workload just left.
type Accumulator struct {
	store store.TimeSummaryStore
}

func NewAccumulator(summaries store.TimeSummaryStore) *Accumulator {
	return &Accumulator{store: summaries}
}

// RecordTransition adds transitionAt minus enteredAt to the running total for
// (workload, previous). The caller has already rejected stale messages, so a
// non-positive elapsed duration here indicates clock skew between agent and
// server; it is skipped rather than allowed to shrink the monotonic total.
func (a *Accumulator) RecordTransition(ctx context.Context, workloadID string, previous v1alpha1.WorkloadStatus, enteredAt, transitionAt time.Time) error {
	logger := log.FromContext(ctx)

	if previous == v1alpha1.WorkloadStatusUnknown || previous == "" {
		return nil
	}

	elapsed := transitionAt.Sub(enteredAt)
	if elapsed <= 0 {
		logger.V(1).Info("Skipping non-forward status transition", "workloadID", workloadID, "status", previous, "elapsed", elapsed)
		return nil
	}
	seconds := int64(elapsed / time.Second)
	if seconds == 0 {
		return nil
	}

	summary, err := a.store.GetTimeSummary(ctx, workloadID, previous)
	if errors.Is(err, store.ErrNotFound) {
		summary = &v1alpha1.WorkloadTimeSummary{
			WorkloadID: workloadID,
			Status:     previous,
		}
	} else if err != nil {
		return fmt.Errorf("failed to load time summary for workload %s: %w", workloadID, err)
	}

	summary.TotalElapsedSeconds += seconds
	summary.UpdatedAt = transitionAt
	if err := a.store.PutTimeSummary(ctx, summary); err != nil {
		return fmt.Errorf("failed to store time summary for workload %s: %w", workloadID, err)
	}

	logger.V(1).Info("Accumulated time in status", "workloadID", workloadID, "status", previous, "addedSeconds", seconds, "totalSeconds", summary.TotalElapsedSeconds)
	return nil
}
