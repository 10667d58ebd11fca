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

// Package lifecycle runs services until an OS signal asks them to stop.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/carverauto/sdnsync/pkg/logger"
)

// Service is anything with a managed start/stop lifecycle. Start may block
// for the life of the service or return once it is running in the
// background; both styles are supported.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Run starts every service, blocks until SIGINT/SIGTERM or the first service
// failure, then stops them in reverse order.
func Run(ctx context.Context, log logger.Logger, services ...Service) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, len(services))

	for _, svc := range services {
		svc := svc

		go func() {
			if err := svc.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("Service failed")
	}

	// Fresh context: the signal context is already done by now.
	stopAll(context.Background(), log, services)

	return runErr
}

func stopAll(ctx context.Context, log logger.Logger, services []Service) {
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to stop service")
		}
	}
}
