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

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/sdnsync/pkg/models"
)

// Tracker holds the process-wide status of the latest fetch/sync job. It is
// an explicitly owned, injectable state holder: the job writes it, the
// Status API reads copies of it. Exactly one job may hold the run-slot at a
// time.
type Tracker struct {
	mu     sync.Mutex
	now    func() time.Time
	status models.SyncJobStatus
}

// NewTracker creates a tracker in the Idle phase with no job history.
func NewTracker() *Tracker {
	return &Tracker{
		now: time.Now,
		status: models.SyncJobStatus{
			Phase:           models.PhaseIdle,
			LastFetchStatus: models.JobStatusNA,
			LastSyncStatus:  models.JobStatusNA,
		},
	}
}

// BeginFetch atomically claims the run-slot. It returns false, raising the
// not-ready flag, when any job is already past Idle; the caller then performs
// no fetch.
func (t *Tracker) BeginFetch() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Phase != models.PhaseIdle {
		t.status.LastFetchJobNotReady = true
		return false
	}

	t.status.Phase = models.PhaseFetching
	t.status.JobID = uuid.New().String()
	t.status.StartedAt = t.now()
	t.status.CompletedAt = time.Time{}
	t.status.LastFetchJobNotReady = true // held until the job releases the slot

	return true
}

// BeginSync transitions Fetching → Syncing after a successful fetch.
func (t *Tracker) BeginSync() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Phase != models.PhaseFetching {
		return
	}

	t.status.Phase = models.PhaseSyncing
	t.status.LastFetchStatus = models.JobStatusCompleted
}

// RecordFetchFailure ends the cycle after a fetch-level error. Nothing was
// written; counts and the last sync status are left exactly as the previous
// completed cycle set them.
func (t *Tracker) RecordFetchFailure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.LastFetchStatus = models.JobStatusFailed
	t.status.LastSyncJobSuccess = false

	if err != nil {
		t.status.LastError = err.Error()
	}

	t.finishLocked()
}

// RecordSyncResult ends a cycle that reached the apply stage. Counts are
// taken from the buckets actually applied; a cycle that applied nothing
// leaves the previous counts standing. inventory is the recomputed number of
// active rows; a negative value means the recount itself failed and the
// previous inventory stands.
func (t *Tracker) RecordSyncResult(report *Report, inventory int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status.LastSyncStatus = models.JobStatusCompleted
	t.status.LastSyncJobSuccess = !report.HasFailures()
	t.status.LastError = "" // the fetch succeeded; any stale fetch error is gone

	if report.Applied() > 0 {
		t.status.ImportedCount = report.ImportedCount()
		t.status.DiscoveredCount = report.DiscoveredCount()
		t.status.DeletedCount = report.ArchivedCount()
	}

	if inventory >= 0 {
		t.status.InventoryCount = inventory
	}

	t.finishLocked()
}

// finishLocked walks Completed → Idle and releases the not-ready gate.
func (t *Tracker) finishLocked() {
	t.status.Phase = models.PhaseCompleted
	t.status.CompletedAt = t.now()

	// Completed → Idle is immediate; Completed is observable only through
	// the CompletedAt timestamp.
	t.status.Phase = models.PhaseIdle
	t.status.LastFetchJobNotReady = false
}

// Snapshot returns a consistent point-in-time copy, never a live reference.
// Safe to call at arbitrary frequency, concurrently with a running job.
func (t *Tracker) Snapshot() models.SyncJobStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.status
}
