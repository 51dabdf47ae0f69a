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

// Package reconcile synchronizes persisted collections against the periodic
// snapshot messages cluster agents send: the AIM model catalog, the cluster's
// nodes and the quota allocations it enforces. Each sync is applied inside one
// store transaction so a partial failure leaves the collection unchanged.
package reconcile

import "fmt"

// Actor is the identity recorded on rows written by a reconciler.
const Actor = "system"

// Result classifies every record touched by one sync cycle.
type Result struct {
	Added   int
	Updated int
	Deleted int
	Skipped int
}

func (r Result) String() string {
	return fmt.Sprintf("added=%d updated=%d deleted=%d skipped=%d", r.Added, r.Updated, r.Deleted, r.Skipped)
}
