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

// Package store provides the SQLite-backed reference implementation of the
// engine's device store interface. Hosts with their own persistence plug in
// behind the same interface instead.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/carverauto/sdnsync/pkg/models"
)

var (
	// ErrNotFound is returned when no device row matches the identity key.
	ErrNotFound = errors.New("device not found")

	// ErrDuplicateKey is returned when creating a device whose identity
	// key already exists.
	ErrDuplicateKey = errors.New("device key already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS devices (
	key             TEXT PRIMARY KEY,
	hostname        TEXT NOT NULL,
	site            TEXT NOT NULL DEFAULT '',
	role            TEXT NOT NULL DEFAULT '',
	tenant          TEXT NOT NULL DEFAULT '',
	model           TEXT NOT NULL DEFAULT '',
	management_ip   TEXT NOT NULL DEFAULT '',
	lifecycle       TEXT NOT NULL,
	score           INTEGER NOT NULL DEFAULT 0,
	last_synced     TIMESTAMP,
	last_sync_error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_devices_lifecycle ON devices(lifecycle);
`

// SQLiteStore persists local devices in a single SQLite database. Every
// write is its own statement; the engine never holds a transaction across a
// reconciliation cycle.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (and if needed initializes) the device database at path. Use
// ":memory:" for an ephemeral store.
func New(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open device database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to initialize device schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindByKey returns the device with the given identity key, or nil when the
// key is unknown.
func (s *SQLiteStore) FindByKey(ctx context.Context, key string) (*models.LocalDevice, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, hostname, site, role, tenant, model, management_ip, lifecycle, score, last_synced, last_sync_error
		 FROM devices WHERE key = ?`, key)

	device, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query device %s: %w", key, err)
	}

	return device, nil
}

// List returns every device row, archived rows included. The classifier
// needs the full set to compute archival.
func (s *SQLiteStore) List(ctx context.Context) ([]models.LocalDevice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, hostname, site, role, tenant, model, management_ip, lifecycle, score, last_synced, last_sync_error
		 FROM devices ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []models.LocalDevice

	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}

		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device rows: %w", err)
	}

	return devices, nil
}

// Create inserts a new device row. The identity key must be unique.
func (s *SQLiteStore) Create(ctx context.Context, device *models.LocalDevice) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO devices (key, hostname, site, role, tenant, model, management_ip, lifecycle, score, last_synced, last_sync_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		device.Key, device.Hostname, device.Site, device.Role, device.Tenant,
		device.Model, device.ManagementIP, string(device.Lifecycle), device.Score,
		device.LastSynced, device.LastSyncError)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, device.Key)
		}

		return fmt.Errorf("failed to create device %s: %w", device.Key, err)
	}

	return nil
}

// Update applies the non-nil fields to the device with the given key and
// stamps last_synced.
func (s *SQLiteStore) Update(ctx context.Context, key string, fields *models.FieldUpdate) error {
	query := "UPDATE devices SET last_synced = ?"
	args := []interface{}{time.Now().UTC()}

	if fields.Hostname != nil {
		query += ", hostname = ?"
		args = append(args, *fields.Hostname)
	}

	if fields.Site != nil {
		query += ", site = ?"
		args = append(args, *fields.Site)
	}

	if fields.Role != nil {
		query += ", role = ?"
		args = append(args, *fields.Role)
	}

	if fields.Model != nil {
		query += ", model = ?"
		args = append(args, *fields.Model)
	}

	if fields.ManagementIP != nil {
		query += ", management_ip = ?"
		args = append(args, *fields.ManagementIP)
	}

	if fields.Lifecycle != nil {
		query += ", lifecycle = ?"
		args = append(args, string(*fields.Lifecycle))
	}

	if fields.Score != nil {
		query += ", score = ?"
		args = append(args, *fields.Score)
	}

	if fields.SyncError != nil {
		query += ", last_sync_error = ?"
		args = append(args, *fields.SyncError)
	}

	query += " WHERE key = ?"
	args = append(args, key)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update device %s: %w", key, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of device %s: %w", key, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return nil
}

// Archive transitions the device's lifecycle tag to archived, preserving the
// row. Archiving an already-archived device is a no-op.
func (s *SQLiteStore) Archive(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE devices SET lifecycle = ?, last_synced = ? WHERE key = ?`,
		string(models.TagArchived), time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("failed to archive device %s: %w", key, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check archive of device %s: %w", key, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	return nil
}

// CountActive returns the number of devices whose lifecycle tag is not
// archived.
func (s *SQLiteStore) CountActive(ctx context.Context) (int, error) {
	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE lifecycle != ?`, string(models.TagArchived)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active devices: %w", err)
	}

	return count, nil
}

// CountByTag returns the number of devices with the given lifecycle tag.
func (s *SQLiteStore) CountByTag(ctx context.Context, tag models.LifecycleTag) (int, error) {
	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM devices WHERE lifecycle = ?`, string(tag)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count devices by tag: %w", err)
	}

	return count, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(row scanner) (*models.LocalDevice, error) {
	var (
		device    models.LocalDevice
		lifecycle string
		synced    sql.NullTime
	)

	err := row.Scan(&device.Key, &device.Hostname, &device.Site, &device.Role,
		&device.Tenant, &device.Model, &device.ManagementIP, &lifecycle,
		&device.Score, &synced, &device.LastSyncError)
	if err != nil {
		return nil, err
	}

	device.Lifecycle = models.LifecycleTag(lifecycle)

	if synced.Valid {
		device.LastSynced = synced.Time
	}

	return &device, nil
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text;
	// the driver does not export a typed error for them.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
