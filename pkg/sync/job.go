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
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/sdnsync/pkg/logger"
	"github.com/carverauto/sdnsync/pkg/models"
)

// Job runs one reconciliation cycle: fetch, classify, apply, report. The
// caller holds the tracker's run-slot before invoking cycle.
type Job struct {
	config     *Config
	controller ControllerClient
	store      DeviceStore
	tracker    *Tracker
	breaker    *CircuitBreaker
	logger     logger.Logger
}

// NewJob wires a reconciliation job with explicit dependencies.
func NewJob(config *Config, controller ControllerClient, store DeviceStore, tracker *Tracker, log logger.Logger) *Job {
	return &Job{
		config:     config,
		controller: controller,
		store:      store,
		tracker:    tracker,
		breaker:    NewCircuitBreaker("controller", DefaultCircuitBreakerConfig(), log),
		logger:     log.WithComponent("sync"),
	}
}

// Run claims the run-slot and executes one full cycle. It returns
// ErrJobNotReady when another job holds the slot.
func (j *Job) Run(ctx context.Context) error {
	if !j.tracker.BeginFetch() {
		return ErrJobNotReady
	}

	j.cycle(ctx)

	return nil
}

// cycle executes fetch → classify → apply with the run-slot already held.
// Fetch-level errors abort cleanly with nothing written; per-device errors
// are collected and never abort the batch.
func (j *Job) cycle(ctx context.Context) {
	started := time.Now()

	remote, err := j.fetch(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("Fetch failed; cycle aborted with no writes")
		j.tracker.RecordFetchFailure(err)

		return
	}

	local, err := j.store.List(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("Failed to read local catalog; cycle aborted with no writes")
		j.tracker.RecordFetchFailure(err)

		return
	}

	j.tracker.BeginSync()

	// Classification is a single pass completed before any write begins,
	// so the whole apply stage works from one consistent partition.
	classification := Classify(remote, local, j.config.Template(), j.config.DefaultTenant)

	report := j.apply(ctx, &classification)

	inventory, err := j.store.CountActive(ctx)
	if err != nil {
		j.logger.Warn().Err(err).Msg("Failed to recount inventory; previous count stands")

		inventory = -1
	}

	j.tracker.RecordSyncResult(report, inventory)

	j.logger.Info().
		Int("remote", len(remote)).
		Int("created", len(classification.ToCreate)).
		Int("updated", len(classification.ToUpdate)).
		Int("archived", len(classification.ToArchive)).
		Int("unchanged", len(classification.Unchanged)).
		Int("conflicts", len(classification.Conflicts)).
		Int("failures", report.FailureCount()).
		Dur("elapsed", time.Since(started)).
		Msg("Reconciliation cycle completed")
}

// fetch lists devices through the circuit breaker and, when configured,
// enriches them with their interfaces. An interface listing failure is a
// per-device warning, never a cycle abort.
func (j *Job) fetch(ctx context.Context) ([]models.RemoteDevice, error) {
	var remote []models.RemoteDevice

	err := j.breaker.Execute(ctx, func() error {
		var listErr error

		remote, listErr = j.controller.ListDevices(ctx, j.config.Controller.DeviceFamilies)

		return listErr
	})
	if err != nil {
		return nil, err
	}

	if j.config.FetchInterfaces {
		j.fetchInterfaces(ctx, remote)
	}

	return remote, nil
}

func (j *Job) fetchInterfaces(ctx context.Context, remote []models.RemoteDevice) {
	var wg sync.WaitGroup

	sem := make(chan struct{}, j.config.Workers)

	for i := range remote {
		// Stop dispatching on cancellation, but always drain the pool:
		// an in-flight listing still writes into the shared slice.
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(rd *models.RemoteDevice) {
			defer wg.Done()
			defer func() { <-sem }()

			interfaces, err := j.controller.ListInterfaces(ctx, rd.Key)
			if err != nil {
				j.logger.Warn().Err(err).Str("device", rd.Key).Msg("Failed to list interfaces")
				return
			}

			rd.Interfaces = interfaces
		}(&remote[i])
	}

	wg.Wait()
}

// apply writes the classification through the store, one unit of work per
// device, bounded by the worker pool. Cancellation is honored between
// devices, never mid-write.
func (j *Job) apply(ctx context.Context, classification *Classification) *Report {
	report := &Report{}

	for i := range classification.Conflicts {
		c := classification.Conflicts[i]
		j.logger.Warn().Str("device", c.Key).Int("rows", c.Count).Msg("Identity key conflict; device excluded from cycle")
		report.add(DeviceOutcome{Key: c.Key, Action: ActionConflict, Err: &c})
	}

	type work struct {
		run func(context.Context) DeviceOutcome
	}

	var tasks []work

	for i := range classification.ToCreate {
		device := classification.ToCreate[i]
		tasks = append(tasks, work{run: func(ctx context.Context) DeviceOutcome {
			return j.applyCreate(ctx, &device)
		}})
	}

	for i := range classification.ToUpdate {
		update := classification.ToUpdate[i]
		tasks = append(tasks, work{run: func(ctx context.Context) DeviceOutcome {
			return j.applyUpdate(ctx, &update)
		}})
	}

	for i := range classification.ToArchive {
		key := classification.ToArchive[i]
		tasks = append(tasks, work{run: func(ctx context.Context) DeviceOutcome {
			return j.applyArchive(ctx, key)
		}})
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	sem := make(chan struct{}, j.config.Workers)

	for _, task := range tasks {
		// Cooperative cancellation checkpoint: stop dispatching between
		// devices; in-flight writes run to completion.
		if ctx.Err() != nil {
			report.Canceled = true
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(task work) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := task.run(ctx)

			mu.Lock()
			report.add(outcome)
			mu.Unlock()
		}(task)
	}

	wg.Wait()

	return report
}

func (j *Job) applyCreate(ctx context.Context, device *models.LocalDevice) DeviceOutcome {
	row := *device
	row.LastSynced = time.Now().UTC()

	if err := j.store.Create(ctx, &row); err != nil {
		j.logger.Error().Err(err).Str("device", device.Key).Msg("Failed to create device")

		return DeviceOutcome{Key: device.Key, Action: ActionCreate, Err: fmt.Errorf("store write: %w", err)}
	}

	return DeviceOutcome{Key: device.Key, Action: ActionCreate, Tag: row.Lifecycle}
}

func (j *Job) applyUpdate(ctx context.Context, update *DeviceUpdate) DeviceOutcome {
	fields := update.Fields

	// A successful sync clears any stale per-device error.
	empty := ""
	fields.SyncError = &empty

	if err := j.store.Update(ctx, update.Key, &fields); err != nil {
		j.logger.Error().Err(err).Str("device", update.Key).Msg("Failed to update device")
		j.recordDeviceError(ctx, update.Key, err)

		return DeviceOutcome{Key: update.Key, Action: ActionUpdate, Err: fmt.Errorf("store write: %w", err)}
	}

	outcome := DeviceOutcome{Key: update.Key, Action: ActionUpdate}

	// Only a lifecycle transition moves category counts; a plain field
	// refresh leaves them alone.
	if update.Fields.Lifecycle != nil {
		outcome.Tag = *update.Fields.Lifecycle
	}

	return outcome
}

func (j *Job) applyArchive(ctx context.Context, key string) DeviceOutcome {
	if err := j.store.Archive(ctx, key); err != nil {
		j.logger.Error().Err(err).Str("device", key).Msg("Failed to archive device")
		j.recordDeviceError(ctx, key, err)

		return DeviceOutcome{Key: key, Action: ActionArchive, Err: fmt.Errorf("store write: %w", err)}
	}

	return DeviceOutcome{Key: key, Action: ActionArchive, Tag: models.TagArchived}
}

// recordDeviceError best-effort stamps the failure on the row for the admin
// UI; the authoritative record is the cycle report.
func (j *Job) recordDeviceError(ctx context.Context, key string, cause error) {
	msg := cause.Error()

	if err := j.store.Update(ctx, key, &models.FieldUpdate{SyncError: &msg}); err != nil {
		j.logger.Debug().Err(err).Str("device", key).Msg("Could not record per-device error")
	}
}
