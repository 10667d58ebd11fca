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

//go:generate mockgen -destination=mock_sync.go -package=sync github.com/carverauto/sdnsync/pkg/sync ControllerClient,DeviceStore

package sync

import (
	"context"
	"time"

	"github.com/carverauto/sdnsync/pkg/models"
)

// ControllerClient lists devices and interfaces from the remote SDN
// controller. One call is one full restartable pass; no cursor survives
// across calls.
type ControllerClient interface {
	ListDevices(ctx context.Context, families []string) ([]models.RemoteDevice, error)
	ListInterfaces(ctx context.Context, deviceKey string) ([]models.Interface, error)
}

// DeviceStore is the narrow interface to the host's device catalog. All
// engine mutation goes through it; the host's persistence technology is
// irrelevant to the core.
type DeviceStore interface {
	FindByKey(ctx context.Context, key string) (*models.LocalDevice, error)
	List(ctx context.Context) ([]models.LocalDevice, error)
	Create(ctx context.Context, device *models.LocalDevice) error
	Update(ctx context.Context, key string, fields *models.FieldUpdate) error
	Archive(ctx context.Context, key string) error
	CountActive(ctx context.Context) (int, error)
	CountByTag(ctx context.Context, tag models.LifecycleTag) (int, error)
}

// Clock abstracts time for the poll loop (to mock the ticker).
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker used in polling.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}
