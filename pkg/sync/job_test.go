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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/sdnsync/pkg/logger"
	"github.com/carverauto/sdnsync/pkg/models"
	"github.com/carverauto/sdnsync/pkg/sdn"
)

func testJobConfig(t *testing.T) *Config {
	t.Helper()

	cfg := &Config{
		Workers:       2,
		DefaultTenant: "net-ops",
		RegexTemplate: `^(?P<site>[a-z]{3})-(?P<role>[a-z]+)-\d+$`,
		DBPath:        ":memory:",
		Controller: ControllerConfig{
			Hostname:    "sdn.example.com",
			Credentials: map[string]string{"username": "admin", "password": "secret"},
		},
	}
	require.NoError(t, cfg.Validate())

	return cfg
}

func newTestJob(t *testing.T, controller ControllerClient, store DeviceStore) (*Job, *Tracker) {
	t.Helper()

	tracker := NewTracker()
	job := NewJob(testJobConfig(t), controller, store, tracker, logger.NewTestLogger())

	return job, tracker
}

func TestJobRunCreatesNewDevices(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-1", Hostname: "nyc-leaf-01", ManagementIP: "10.0.0.1"},
		{Key: "uuid-2", Hostname: "unresolvable"},
	}

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(remote, nil)
	store.EXPECT().List(gomock.Any()).Return(nil, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).Return(nil)
	store.EXPECT().CountActive(gomock.Any()).Return(2, nil)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(context.Background()))

	snap := tracker.Snapshot()
	assert.Equal(t, models.PhaseIdle, snap.Phase)
	assert.Equal(t, models.JobStatusCompleted, snap.LastFetchStatus)
	assert.Equal(t, models.JobStatusCompleted, snap.LastSyncStatus)
	assert.True(t, snap.LastSyncJobSuccess)
	assert.Equal(t, 1, snap.ImportedCount)
	assert.Equal(t, 1, snap.DiscoveredCount)
	assert.Equal(t, 2, snap.InventoryCount)
}

func TestJobRunIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-1", Hostname: "nyc-leaf-01", ManagementIP: "10.0.0.1"},
	}
	local := []models.LocalDevice{
		{
			Key: "uuid-1", Hostname: "nyc-leaf-01", Site: "nyc", Role: "leaf",
			ManagementIP: "10.0.0.1", Lifecycle: models.TagImported, Score: 3,
		},
	}

	// Second run sees the state the first run left behind: every device
	// classifies as unchanged and no store write happens.
	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(remote, nil)
	store.EXPECT().List(gomock.Any()).Return(local, nil)
	store.EXPECT().CountActive(gomock.Any()).Return(1, nil)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(context.Background()))

	snap := tracker.Snapshot()
	assert.True(t, snap.LastSyncJobSuccess)
	assert.Equal(t, 1, snap.InventoryCount)
}

func TestJobRunMixedRemoteAndLocalSets(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	// Remote: A is new, B renamed, C unchanged. Local: B, C, and D which
	// the controller no longer reports.
	remote := []models.RemoteDevice{
		{Key: "A", Hostname: "nyc-leaf-01", ManagementIP: "10.0.0.1"},
		{Key: "B", Hostname: "nyc-leaf-02", ManagementIP: "10.0.0.2"},
		{Key: "C", Hostname: "sfo-spine-01", ManagementIP: "10.0.0.3"},
	}
	local := []models.LocalDevice{
		{
			Key: "B", Hostname: "nyc-leaf-99", Site: "nyc", Role: "leaf",
			ManagementIP: "10.0.0.2", Lifecycle: models.TagImported, Score: 3,
		},
		{
			Key: "C", Hostname: "sfo-spine-01", Site: "sfo", Role: "spine",
			ManagementIP: "10.0.0.3", Lifecycle: models.TagImported, Score: 3,
		},
		{Key: "D", Hostname: "nyc-leaf-50", Lifecycle: models.TagImported},
	}

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(remote, nil)
	store.EXPECT().List(gomock.Any()).Return(local, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, device *models.LocalDevice) error {
			assert.Equal(t, "A", device.Key)
			return nil
		})
	store.EXPECT().Update(gomock.Any(), "B", gomock.Any()).Return(nil)
	store.EXPECT().Archive(gomock.Any(), "D").Return(nil)
	store.EXPECT().CountActive(gomock.Any()).Return(3, nil)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(context.Background()))

	snap := tracker.Snapshot()
	assert.True(t, snap.LastSyncJobSuccess)
	assert.Equal(t, 1, snap.ImportedCount)
	assert.Equal(t, 0, snap.DiscoveredCount)
	assert.Equal(t, 1, snap.DeletedCount)
	assert.Equal(t, 3, snap.InventoryCount)
}

func TestJobRunFetchFailureWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	rateErr := &sdn.RateLimitedError{Op: "list devices", RetryAfter: 30 * time.Second}
	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(nil, rateErr)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(context.Background()))

	snap := tracker.Snapshot()
	assert.Equal(t, models.PhaseIdle, snap.Phase)
	assert.Equal(t, models.JobStatusFailed, snap.LastFetchStatus)
	assert.Equal(t, models.JobStatusNA, snap.LastSyncStatus)
	assert.False(t, snap.LastSyncJobSuccess)
	assert.Zero(t, snap.InventoryCount)
}

func TestJobRunPartialWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-ok", Hostname: "nyc-leaf-01", ManagementIP: "10.0.0.1"},
		{Key: "uuid-bad", Hostname: "nyc-leaf-02", ManagementIP: "10.0.0.2"},
	}

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(remote, nil)
	store.EXPECT().List(gomock.Any()).Return(nil, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
		func(_ context.Context, device *models.LocalDevice) error {
			if device.Key == "uuid-bad" {
				return errors.New("disk full")
			}
			return nil
		})
	store.EXPECT().CountActive(gomock.Any()).Return(1, nil)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(context.Background()))

	snap := tracker.Snapshot()
	assert.Equal(t, models.JobStatusCompleted, snap.LastSyncStatus)
	assert.False(t, snap.LastSyncJobSuccess, "a single write failure marks the cycle unsuccessful")
	assert.Equal(t, 1, snap.ImportedCount, "the successful create is still counted")
	assert.Equal(t, 1, snap.InventoryCount, "inventory reflects rows actually present")
}

func TestJobRunUpdateFailureRecordsPerDeviceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-1", Hostname: "nyc-leaf-01", ManagementIP: "10.0.0.9"},
	}
	local := []models.LocalDevice{
		{
			Key: "uuid-1", Hostname: "nyc-leaf-01", Site: "nyc", Role: "leaf",
			ManagementIP: "10.0.0.1", Lifecycle: models.TagImported, Score: 3,
		},
	}

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(remote, nil)
	store.EXPECT().List(gomock.Any()).Return(local, nil)

	writeErr := errors.New("database is locked")
	gomock.InOrder(
		// The sync update fails, then the failure is stamped on the row.
		store.EXPECT().Update(gomock.Any(), "uuid-1", gomock.Any()).Return(writeErr),
		store.EXPECT().Update(gomock.Any(), "uuid-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, fields *models.FieldUpdate) error {
				require.NotNil(t, fields.SyncError)
				assert.Contains(t, *fields.SyncError, "database is locked")
				return nil
			}),
	)
	store.EXPECT().CountActive(gomock.Any()).Return(1, nil)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(context.Background()))

	assert.False(t, tracker.Snapshot().LastSyncJobSuccess)
}

func TestJobRunArchivesMissingDevices(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	local := []models.LocalDevice{
		{Key: "uuid-gone", Hostname: "nyc-leaf-01", Lifecycle: models.TagImported},
	}

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(nil, nil)
	store.EXPECT().List(gomock.Any()).Return(local, nil)
	store.EXPECT().Archive(gomock.Any(), "uuid-gone").Return(nil)
	store.EXPECT().CountActive(gomock.Any()).Return(0, nil)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(context.Background()))

	snap := tracker.Snapshot()
	assert.True(t, snap.LastSyncJobSuccess)
	assert.Equal(t, 1, snap.DeletedCount)
	assert.Zero(t, snap.InventoryCount)
}

func TestJobRunRefusedWhileSlotHeld(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	job, tracker := newTestJob(t, controller, store)

	require.True(t, tracker.BeginFetch())

	err := job.Run(context.Background())
	require.ErrorIs(t, err, ErrJobNotReady)
	assert.True(t, tracker.Snapshot().LastFetchJobNotReady)
}

func TestJobRunFetchesInterfacesWhenConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-1", Hostname: "nyc-leaf-01", ManagementIP: "10.0.0.1"},
	}

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(remote, nil)
	controller.EXPECT().ListInterfaces(gomock.Any(), "uuid-1").
		Return([]models.Interface{{Name: "GigabitEthernet1/0/1"}}, nil)
	store.EXPECT().List(gomock.Any()).Return(nil, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().CountActive(gomock.Any()).Return(1, nil)

	cfg := testJobConfig(t)
	cfg.FetchInterfaces = true

	tracker := NewTracker()
	job := NewJob(cfg, controller, store, tracker, logger.NewTestLogger())

	require.NoError(t, job.Run(context.Background()))
	assert.True(t, tracker.Snapshot().LastSyncJobSuccess)
}

func TestJobRunInterfaceFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-1", Hostname: "nyc-leaf-01", ManagementIP: "10.0.0.1"},
	}

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(remote, nil)
	controller.EXPECT().ListInterfaces(gomock.Any(), "uuid-1").
		Return(nil, &sdn.UpstreamError{Op: "list interfaces", StatusCode: 500})
	store.EXPECT().List(gomock.Any()).Return(nil, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().CountActive(gomock.Any()).Return(1, nil)

	cfg := testJobConfig(t)
	cfg.FetchInterfaces = true

	tracker := NewTracker()
	job := NewJob(cfg, controller, store, tracker, logger.NewTestLogger())

	require.NoError(t, job.Run(context.Background()))
	assert.True(t, tracker.Snapshot().LastSyncJobSuccess)
}

func TestFetchInterfacesDrainsPoolOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-1", Hostname: "nyc-leaf-01"},
		{Key: "uuid-2", Hostname: "nyc-leaf-02"},
		{Key: "uuid-3", Hostname: "nyc-leaf-03"},
	}

	ctx, cancel := context.WithCancel(context.Background())

	ifaces := []models.Interface{{Name: "GigabitEthernet1/0/1"}}

	// The first listing cancels the run and lingers; its result is still
	// written into the shared slice, so the pool must be drained before
	// fetchInterfaces returns.
	controller.EXPECT().ListInterfaces(gomock.Any(), "uuid-1").DoAndReturn(
		func(context.Context, string) ([]models.Interface, error) {
			cancel()
			time.Sleep(50 * time.Millisecond)
			return ifaces, nil
		})
	controller.EXPECT().ListInterfaces(gomock.Any(), gomock.Any()).
		Return(nil, context.Canceled).AnyTimes()

	cfg := testJobConfig(t)
	cfg.Workers = 1

	job := NewJob(cfg, controller, store, NewTracker(), logger.NewTestLogger())

	job.fetchInterfaces(ctx, remote)

	assert.Equal(t, ifaces, remote[0].Interfaces, "the in-flight listing completed before return")
}

func TestJobRunConflictExcludesDeviceAndFailsCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-dup", Hostname: "nyc-leaf-01"},
	}
	local := []models.LocalDevice{
		{Key: "uuid-dup", Hostname: "nyc-leaf-01", Lifecycle: models.TagImported},
		{Key: "uuid-dup", Hostname: "nyc-leaf-01-copy", Lifecycle: models.TagImported},
	}

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(remote, nil)
	store.EXPECT().List(gomock.Any()).Return(local, nil)
	store.EXPECT().CountActive(gomock.Any()).Return(2, nil)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(context.Background()))

	snap := tracker.Snapshot()
	assert.False(t, snap.LastSyncJobSuccess, "a conflict marks the cycle unsuccessful")
	assert.Equal(t, models.JobStatusCompleted, snap.LastSyncStatus)
}

func TestJobRunCanceledContextStopsDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	controller := NewMockControllerClient(ctrl)
	store := NewMockDeviceStore(ctrl)

	remote := []models.RemoteDevice{
		{Key: "uuid-1", Hostname: "nyc-leaf-01"},
		{Key: "uuid-2", Hostname: "nyc-leaf-02"},
	}

	ctx, cancel := context.WithCancel(context.Background())

	controller.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).DoAndReturn(
		func(context.Context, []string) ([]models.RemoteDevice, error) {
			// Cancel once the fetch has succeeded, before apply starts.
			cancel()
			return remote, nil
		})
	store.EXPECT().List(gomock.Any()).Return(nil, nil)
	store.EXPECT().CountActive(gomock.Any()).Return(0, nil)

	job, tracker := newTestJob(t, controller, store)

	require.NoError(t, job.Run(ctx))

	snap := tracker.Snapshot()
	assert.False(t, snap.LastSyncJobSuccess, "a canceled apply stage is not a clean cycle")
	assert.Equal(t, models.PhaseIdle, snap.Phase, "the run-slot is always released")
}
