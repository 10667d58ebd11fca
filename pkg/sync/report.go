/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sync

import "github.com/carverauto/sdnsync/pkg/models"

// Action names the store operation attempted for a device.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionArchive  Action = "archive"
	ActionConflict Action = "conflict"
)

// DeviceOutcome is the collected result of one per-device operation.
// Failures are isolated here instead of aborting the batch.
type DeviceOutcome struct {
	Key    string
	Action Action
	Tag    models.LifecycleTag // tag after the operation, when it applies
	Err    error
}

// Report aggregates the per-device outcomes of one cycle's apply stage.
type Report struct {
	Outcomes []DeviceOutcome
	Canceled bool
}

func (r *Report) add(outcome DeviceOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
}

// HasFailures reports whether any device operation failed, any conflict was
// detected, or the cycle was canceled mid-apply.
func (r *Report) HasFailures() bool {
	if r.Canceled {
		return true
	}

	for i := range r.Outcomes {
		if r.Outcomes[i].Err != nil {
			return true
		}
	}

	return false
}

// Applied returns the number of store writes that succeeded.
func (r *Report) Applied() int {
	n := 0

	for i := range r.Outcomes {
		o := &r.Outcomes[i]
		if o.Err == nil && o.Action != ActionConflict {
			n++
		}
	}

	return n
}

// ImportedCount counts devices whose row was created as, or transitioned
// to, Imported in this cycle.
func (r *Report) ImportedCount() int {
	return r.countTag(models.TagImported)
}

// DiscoveredCount counts devices whose row was created as, or transitioned
// to, Discovered in this cycle.
func (r *Report) DiscoveredCount() int {
	return r.countTag(models.TagDiscovered)
}

// ArchivedCount counts devices archived in this cycle.
func (r *Report) ArchivedCount() int {
	n := 0

	for i := range r.Outcomes {
		o := &r.Outcomes[i]
		if o.Err == nil && o.Action == ActionArchive {
			n++
		}
	}

	return n
}

// FailureCount counts per-device failures, conflicts included.
func (r *Report) FailureCount() int {
	n := 0

	for i := range r.Outcomes {
		if r.Outcomes[i].Err != nil {
			n++
		}
	}

	return n
}

func (r *Report) countTag(tag models.LifecycleTag) int {
	n := 0

	for i := range r.Outcomes {
		o := &r.Outcomes[i]
		if o.Err != nil || o.Tag != tag {
			continue
		}

		if o.Action == ActionCreate || o.Action == ActionUpdate {
			n++
		}
	}

	return n
}
