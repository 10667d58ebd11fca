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
	"fmt"
)

var (
	// ErrJobNotReady is returned when a fetch is requested while another
	// job holds the run-slot.
	ErrJobNotReady = errors.New("a fetch/sync job is already running")

	errMissingControllerHost = errors.New("controller hostname is required")
	errMissingCredentials    = errors.New("controller credentials are required")
	errUnsupportedSDNType    = errors.New("unsupported sdn type")
	errMissingStorePath      = errors.New("db_path is required")
)

// ConflictError records a data-integrity anomaly: one identity key matching
// more than one row. The key is excluded from the cycle and surfaced as a
// per-device error instead of aborting the run.
type ConflictError struct {
	Key   string
	Count int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("identity key %s matches %d rows", e.Key, e.Count)
}
