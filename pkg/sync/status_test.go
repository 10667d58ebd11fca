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
	"errors"
	stdsync "sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/sdnsync/pkg/models"
)

func TestTrackerInitialState(t *testing.T) {
	tracker := NewTracker()
	snap := tracker.Snapshot()

	assert.Equal(t, models.PhaseIdle, snap.Phase)
	assert.Equal(t, models.JobStatusNA, snap.LastFetchStatus)
	assert.Equal(t, models.JobStatusNA, snap.LastSyncStatus)
	assert.False(t, snap.LastSyncJobSuccess)
	assert.False(t, snap.LastFetchJobNotReady)
	assert.Zero(t, snap.InventoryCount)
}

func TestTrackerBeginFetchClaimsSlot(t *testing.T) {
	tracker := NewTracker()

	require.True(t, tracker.BeginFetch())

	snap := tracker.Snapshot()
	assert.Equal(t, models.PhaseFetching, snap.Phase)
	assert.NotEmpty(t, snap.JobID)
	assert.True(t, snap.LastFetchJobNotReady)

	// Second claim is refused while the first holds the slot.
	assert.False(t, tracker.BeginFetch())
}

func TestTrackerConcurrentBeginFetchGrantsExactlyOne(t *testing.T) {
	tracker := NewTracker()

	var (
		wg      stdsync.WaitGroup
		granted atomic.Int32
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if tracker.BeginFetch() {
				granted.Add(1)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), granted.Load())
}

func TestTrackerFetchFailureReleasesSlot(t *testing.T) {
	tracker := NewTracker()

	require.True(t, tracker.BeginFetch())
	tracker.RecordFetchFailure(errors.New("controller unreachable"))

	snap := tracker.Snapshot()
	assert.Equal(t, models.PhaseIdle, snap.Phase)
	assert.Equal(t, models.JobStatusFailed, snap.LastFetchStatus)
	assert.False(t, snap.LastSyncJobSuccess)
	assert.False(t, snap.LastFetchJobNotReady)
	assert.False(t, snap.CompletedAt.IsZero())

	// Slot is free again.
	assert.True(t, tracker.BeginFetch())
}

func TestTrackerFetchFailurePreservesCounts(t *testing.T) {
	tracker := NewTracker()

	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()
	tracker.RecordSyncResult(&Report{Outcomes: []DeviceOutcome{
		{Key: "a", Action: ActionCreate, Tag: models.TagImported},
	}}, 1)

	require.True(t, tracker.BeginFetch())
	tracker.RecordFetchFailure(errors.New("rate limited"))

	snap := tracker.Snapshot()
	assert.Equal(t, 1, snap.ImportedCount, "a failed fetch must not disturb the previous counts")
	assert.Equal(t, 1, snap.InventoryCount)
	assert.Equal(t, models.JobStatusFailed, snap.LastFetchStatus)
	assert.Equal(t, models.JobStatusCompleted, snap.LastSyncStatus)
}

func TestTrackerFetchFailureSurfacesErrorText(t *testing.T) {
	tracker := NewTracker()

	require.True(t, tracker.BeginFetch())
	tracker.RecordFetchFailure(errors.New("list devices: status 429, retry after 30s"))

	snap := tracker.Snapshot()
	assert.Equal(t, "list devices: status 429, retry after 30s", snap.LastError,
		"the polling client sees the fetch error verbatim")

	// The next clean cycle clears it.
	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()
	tracker.RecordSyncResult(&Report{}, 0)

	assert.Empty(t, tracker.Snapshot().LastError)
}

func TestTrackerSyncResultSetsCountsFromAppliedBuckets(t *testing.T) {
	tracker := NewTracker()

	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()
	tracker.RecordSyncResult(&Report{Outcomes: []DeviceOutcome{
		{Key: "a", Action: ActionCreate, Tag: models.TagImported},
		{Key: "b", Action: ActionCreate, Tag: models.TagDiscovered},
		{Key: "c", Action: ActionArchive, Tag: models.TagArchived},
		{Key: "d", Action: ActionUpdate}, // field refresh, no tag transition
	}}, 3)

	snap := tracker.Snapshot()
	assert.Equal(t, models.PhaseIdle, snap.Phase)
	assert.Equal(t, models.JobStatusCompleted, snap.LastSyncStatus)
	assert.True(t, snap.LastSyncJobSuccess)
	assert.Equal(t, 1, snap.ImportedCount)
	assert.Equal(t, 1, snap.DiscoveredCount)
	assert.Equal(t, 1, snap.DeletedCount)
	assert.Equal(t, 3, snap.InventoryCount)
}

func TestTrackerNoopCycleLeavesCountsStanding(t *testing.T) {
	tracker := NewTracker()

	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()
	tracker.RecordSyncResult(&Report{Outcomes: []DeviceOutcome{
		{Key: "a", Action: ActionCreate, Tag: models.TagImported},
	}}, 1)

	// Second cycle sees the same remote set: everything unchanged, zero
	// writes, counts unchanged.
	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()
	tracker.RecordSyncResult(&Report{}, 1)

	snap := tracker.Snapshot()
	assert.Equal(t, 1, snap.ImportedCount)
	assert.Equal(t, 1, snap.InventoryCount)
	assert.True(t, snap.LastSyncJobSuccess)
}

func TestTrackerPartialFailureMarksUnsuccessful(t *testing.T) {
	tracker := NewTracker()

	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()
	tracker.RecordSyncResult(&Report{Outcomes: []DeviceOutcome{
		{Key: "a", Action: ActionCreate, Tag: models.TagImported},
		{Key: "b", Action: ActionUpdate, Err: errors.New("disk full")},
	}}, 2)

	snap := tracker.Snapshot()
	assert.Equal(t, models.JobStatusCompleted, snap.LastSyncStatus)
	assert.False(t, snap.LastSyncJobSuccess)
	assert.Equal(t, 1, snap.ImportedCount)
}

func TestTrackerNegativeInventoryKeepsPrevious(t *testing.T) {
	tracker := NewTracker()

	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()
	tracker.RecordSyncResult(&Report{Outcomes: []DeviceOutcome{
		{Key: "a", Action: ActionCreate, Tag: models.TagImported},
	}}, 7)

	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()
	tracker.RecordSyncResult(&Report{}, -1)

	assert.Equal(t, 7, tracker.Snapshot().InventoryCount)
}

func TestTrackerSnapshotIsACopy(t *testing.T) {
	tracker := NewTracker()

	snap := tracker.Snapshot()
	snap.ImportedCount = 99
	snap.Phase = models.PhaseSyncing

	fresh := tracker.Snapshot()
	assert.Zero(t, fresh.ImportedCount)
	assert.Equal(t, models.PhaseIdle, fresh.Phase)
}

func TestTrackerBeginSyncRequiresFetching(t *testing.T) {
	tracker := NewTracker()

	// Without a claimed slot, BeginSync is a no-op.
	tracker.BeginSync()
	assert.Equal(t, models.PhaseIdle, tracker.Snapshot().Phase)

	require.True(t, tracker.BeginFetch())
	tracker.BeginSync()

	snap := tracker.Snapshot()
	assert.Equal(t, models.PhaseSyncing, snap.Phase)
	assert.Equal(t, models.JobStatusCompleted, snap.LastFetchStatus)
}
