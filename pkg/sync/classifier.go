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
	"time"

	"github.com/carverauto/sdnsync/pkg/models"
	"github.com/carverauto/sdnsync/pkg/siterole"
)

// DeviceUpdate pairs an identity key with the fields that changed for it.
type DeviceUpdate struct {
	Key    string
	Fields models.FieldUpdate
}

// Classification is the partition of one fetch against the local catalog.
// Every key lands in exactly one bucket; conflicted keys land only in
// Conflicts.
type Classification struct {
	ToCreate  []models.LocalDevice
	ToUpdate  []DeviceUpdate
	ToArchive []string
	Unchanged []string
	Conflicts []ConflictError
}

// Classify partitions the remote set against the local set. It is a pure
// function of its inputs: no side effects, identical inputs yield identical
// output. tmpl may be nil, in which case no site/role is ever derived and
// creates fall back to the default tenant with a Discovered tag.
func Classify(remote []models.RemoteDevice, local []models.LocalDevice, tmpl *siterole.Template, defaultTenant string) Classification {
	var result Classification

	localByKey, conflicted := indexLocal(local)

	seen := make(map[string]struct{}, len(remote))

	for i := range remote {
		rd := &remote[i]

		if rd.Key == "" {
			continue
		}

		if _, dup := seen[rd.Key]; dup {
			// Duplicate key inside the remote set is the same
			// integrity anomaly as a duplicate local row.
			if _, already := conflicted[rd.Key]; !already {
				conflicted[rd.Key] = ConflictError{Key: rd.Key, Count: 2}
			}

			continue
		}

		seen[rd.Key] = struct{}{}

		if _, bad := conflicted[rd.Key]; bad {
			continue
		}

		resolved := resolve(tmpl, rd.Hostname)

		ld, exists := localByKey[rd.Key]
		if !exists {
			result.ToCreate = append(result.ToCreate, newLocalDevice(rd, resolved, defaultTenant))
			continue
		}

		fields := diff(rd, &ld, resolved)
		if fields.Empty() {
			result.Unchanged = append(result.Unchanged, rd.Key)
			continue
		}

		result.ToUpdate = append(result.ToUpdate, DeviceUpdate{Key: rd.Key, Fields: fields})
	}

	// Anything local, active, and unseen in this fetch gets archived,
	// exactly once per cycle that misses it, never silently dropped.
	for i := range local {
		ld := &local[i]

		if _, bad := conflicted[ld.Key]; bad {
			continue
		}

		if ld.Lifecycle == models.TagArchived {
			continue
		}

		if _, ok := seen[ld.Key]; !ok {
			result.ToArchive = append(result.ToArchive, ld.Key)
		}
	}

	for _, c := range conflicted {
		result.Conflicts = append(result.Conflicts, c)
	}

	return result
}

// indexLocal builds the key lookup and flags duplicate keys, which are
// excluded from every bucket.
func indexLocal(local []models.LocalDevice) (map[string]models.LocalDevice, map[string]ConflictError) {
	byKey := make(map[string]models.LocalDevice, len(local))
	counts := make(map[string]int, len(local))

	for i := range local {
		counts[local[i].Key]++
		byKey[local[i].Key] = local[i]
	}

	conflicted := make(map[string]ConflictError)

	for key, n := range counts {
		if n > 1 {
			conflicted[key] = ConflictError{Key: key, Count: n}
			delete(byKey, key)
		}
	}

	return byKey, conflicted
}

func resolve(tmpl *siterole.Template, hostname string) siterole.Result {
	if tmpl == nil {
		return siterole.Result{}
	}

	return tmpl.Resolve(hostname)
}

// newLocalDevice builds the row for a device seen for the first time. A
// fully resolved device is accepted as Imported straight away; anything
// missing site or role is held as Discovered for review.
func newLocalDevice(rd *models.RemoteDevice, resolved siterole.Result, defaultTenant string) models.LocalDevice {
	ld := models.LocalDevice{
		Key:          rd.Key,
		Hostname:     rd.Hostname,
		Tenant:       defaultTenant,
		Model:        rd.Model,
		ManagementIP: rd.ManagementIP,
		Lifecycle:    models.TagDiscovered,
		LastSynced:   time.Time{},
	}

	if resolved.Site != nil {
		ld.Site = *resolved.Site
	}

	if resolved.Role != nil {
		ld.Role = *resolved.Role
	}

	if resolved.Site != nil && resolved.Role != nil {
		ld.Lifecycle = models.TagImported
	}

	ld.Score = score(&ld)

	return ld
}

// diff computes the changed tracked fields between a remote device and its
// local row: hostname, management address, model, derived site and role.
// A derived token that did not resolve never clears a stored value.
func diff(rd *models.RemoteDevice, ld *models.LocalDevice, resolved siterole.Result) models.FieldUpdate {
	var fields models.FieldUpdate

	if rd.Hostname != "" && rd.Hostname != ld.Hostname {
		fields.Hostname = &rd.Hostname
	}

	if rd.ManagementIP != "" && rd.ManagementIP != ld.ManagementIP {
		fields.ManagementIP = &rd.ManagementIP
	}

	if rd.Model != "" && rd.Model != ld.Model {
		fields.Model = &rd.Model
	}

	if resolved.Site != nil && *resolved.Site != ld.Site {
		fields.Site = resolved.Site
	}

	if resolved.Role != nil && *resolved.Role != ld.Role {
		fields.Role = resolved.Role
	}

	// A device that reappears after archival is revived, never left
	// archived: fully resolvable rows come back as Imported, the rest as
	// Discovered.
	if ld.Lifecycle == models.TagArchived {
		tag := models.TagDiscovered

		if siteOf(ld, fields) != "" && roleOf(ld, fields) != "" {
			tag = models.TagImported
		}

		fields.Lifecycle = &tag
	}

	if !fields.Empty() {
		projected := *ld
		applyProjection(&projected, &fields)

		if s := score(&projected); s != ld.Score {
			fields.Score = &s
		}
	}

	return fields
}

func siteOf(ld *models.LocalDevice, fields models.FieldUpdate) string {
	if fields.Site != nil {
		return *fields.Site
	}

	return ld.Site
}

func roleOf(ld *models.LocalDevice, fields models.FieldUpdate) string {
	if fields.Role != nil {
		return *fields.Role
	}

	return ld.Role
}

// score is the match-completeness of a row: one point each for a derived
// site, a derived role, and a management address.
func score(ld *models.LocalDevice) int {
	s := 0

	if ld.Site != "" {
		s++
	}

	if ld.Role != "" {
		s++
	}

	if ld.ManagementIP != "" {
		s++
	}

	return s
}

func applyProjection(ld *models.LocalDevice, fields *models.FieldUpdate) {
	if fields.Hostname != nil {
		ld.Hostname = *fields.Hostname
	}

	if fields.Site != nil {
		ld.Site = *fields.Site
	}

	if fields.Role != nil {
		ld.Role = *fields.Role
	}

	if fields.Model != nil {
		ld.Model = *fields.Model
	}

	if fields.ManagementIP != nil {
		ld.ManagementIP = *fields.ManagementIP
	}

	if fields.Lifecycle != nil {
		ld.Lifecycle = *fields.Lifecycle
	}
}
