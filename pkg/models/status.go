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

package models

import "time"

// Phase is the job state machine position. It is a closed enumeration inside
// the core; it is serialized to a string only at the Status API edge.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseSyncing
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "fetching"
	case PhaseSyncing:
		return "syncing"
	case PhaseCompleted:
		return "completed"
	case PhaseIdle:
		return "idle"
	default:
		return "idle"
	}
}

// Job status strings surfaced to the polling client. "N/A" mirrors the state
// before any job has run.
const (
	JobStatusNA        = "N/A"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// SyncJobStatus is the point-in-time status of the latest fetch/sync job.
// Snapshot copies of this struct are handed to concurrent readers; the
// mutable original lives inside the tracker.
type SyncJobStatus struct {
	JobID                string    `json:"job_id,omitempty"`
	Phase                Phase     `json:"-"`
	LastFetchStatus      string    `json:"last_fetch_status"`
	LastSyncStatus       string    `json:"last_sync_status"`
	LastError            string    `json:"last_error,omitempty"`
	LastSyncJobSuccess   bool      `json:"last_sync_job_success"`
	LastFetchJobNotReady bool      `json:"last_fetch_job_not_ready"`
	ImportedCount        int       `json:"imported_count"`
	DiscoveredCount      int       `json:"discovered_count"`
	DeletedCount         int       `json:"deleted_count"`
	InventoryCount       int       `json:"inventory_count"`
	StartedAt            time.Time `json:"started_at,omitempty"`
	CompletedAt          time.Time `json:"completed_at,omitempty"`
}
