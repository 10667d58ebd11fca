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
	"sync"

	"github.com/carverauto/sdnsync/pkg/logger"
)

// Service owns the reconciliation job and its optional poll loop. Cycles run
// on a background goroutine; Trigger and the poller share the tracker's
// run-slot, so at most one cycle is in flight at any time.
type Service struct {
	config  *Config
	job     *Job
	tracker *Tracker
	clock   Clock
	logger  logger.Logger

	// runCtx outlives any request: cycles run on it so a caller's context
	// ending cannot abort a cycle mid-flight. Only Stop cancels it.
	runCtx    context.Context
	runCancel context.CancelFunc

	mu      sync.Mutex
	polling bool
	wg      sync.WaitGroup
}

// NewService assembles a sync service from its dependencies. A nil clock
// falls back to the wall clock.
func NewService(config *Config, controller ControllerClient, store DeviceStore, tracker *Tracker, clock Clock, log logger.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}

	runCtx, runCancel := context.WithCancel(context.Background())

	return &Service{
		config:    config,
		job:       NewJob(config, controller, store, tracker, log),
		tracker:   tracker,
		clock:     clock,
		logger:    log.WithComponent("sync"),
		runCtx:    runCtx,
		runCancel: runCancel,
	}
}

// Start launches the poll loop when a poll interval is configured. With a
// zero interval the service runs in manual-trigger mode and Start is a no-op.
func (s *Service) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.polling {
		return errors.New("sync service already started")
	}

	if s.config.PollDuration() <= 0 {
		s.logger.Info().Msg("No poll interval configured; cycles run on manual trigger only")
		return nil
	}

	s.polling = true

	s.wg.Add(1)

	go s.poll(s.runCtx)

	s.logger.Info().Dur("interval", s.config.PollDuration()).Msg("Poll loop started")

	return nil
}

// Stop cancels the poll loop and any in-flight cycle, then waits for them to
// drain.
func (s *Service) Stop(_ context.Context) error {
	s.runCancel()
	s.wg.Wait()

	return nil
}

// Trigger starts one cycle on a background goroutine. The cycle runs on the
// service's own context, never the caller's: a request context ending after
// the trigger is acknowledged must not abort the cycle. It returns
// ErrJobNotReady when a cycle is already holding the run-slot.
func (s *Service) Trigger(_ context.Context) error {
	if !s.tracker.BeginFetch() {
		return ErrJobNotReady
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.job.cycle(s.runCtx)
	}()

	return nil
}

func (s *Service) poll(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.Ticker(s.config.PollDuration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			// A tick that lands while a cycle is still running is
			// skipped, not queued.
			if !s.tracker.BeginFetch() {
				s.logger.Debug().Msg("Skipping poll tick; previous cycle still running")
				continue
			}

			s.job.cycle(ctx)
		}
	}
}
