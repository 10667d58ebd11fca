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

// Package models holds the data types shared across the sdnsync packages.
package models

import "time"

// LifecycleTag is the classification state of a local device.
type LifecycleTag string

const (
	TagImported   LifecycleTag = "imported"
	TagDiscovered LifecycleTag = "discovered"
	TagArchived   LifecycleTag = "archived"
)

// RemoteDevice is a device as reported by the SDN controller. It is sourced
// fresh on every fetch and never persisted by the engine.
type RemoteDevice struct {
	Key          string      `json:"key"` // controller-assigned UUID or serial
	Hostname     string      `json:"hostname"`
	Model        string      `json:"model"`
	Family       string      `json:"family"`
	ManagementIP string      `json:"management_ip"`
	Interfaces   []Interface `json:"interfaces,omitempty"`
}

// Interface is a single interface on a remote device.
type Interface struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	MACAddress  string `json:"mac_address,omitempty"`
	IPv4Address string `json:"ipv4_address,omitempty"`
	Description string `json:"description,omitempty"`
}

// LocalDevice is the system-of-record's view of a device. The engine mutates
// it only through the store interface; rows are archived, never deleted.
type LocalDevice struct {
	Key           string       `json:"key"`
	Hostname      string       `json:"hostname"`
	Site          string       `json:"site,omitempty"`
	Role          string       `json:"role,omitempty"`
	Tenant        string       `json:"tenant,omitempty"`
	Model         string       `json:"model,omitempty"`
	ManagementIP  string       `json:"management_ip,omitempty"`
	Lifecycle     LifecycleTag `json:"lifecycle"`
	Score         int          `json:"score"`
	LastSynced    time.Time    `json:"last_synced"`
	LastSyncError string       `json:"last_sync_error,omitempty"`
}

// FieldUpdate carries only the changed fields for a device update. Nil
// pointers leave the stored value untouched.
type FieldUpdate struct {
	Hostname     *string       `json:"hostname,omitempty"`
	Site         *string       `json:"site,omitempty"`
	Role         *string       `json:"role,omitempty"`
	Model        *string       `json:"model,omitempty"`
	ManagementIP *string       `json:"management_ip,omitempty"`
	Lifecycle    *LifecycleTag `json:"lifecycle,omitempty"`
	Score        *int          `json:"score,omitempty"`
	SyncError    *string       `json:"sync_error,omitempty"`
}

// Empty reports whether the update would change nothing.
func (f *FieldUpdate) Empty() bool {
	return f.Hostname == nil && f.Site == nil && f.Role == nil &&
		f.Model == nil && f.ManagementIP == nil && f.Lifecycle == nil &&
		f.Score == nil && f.SyncError == nil
}
