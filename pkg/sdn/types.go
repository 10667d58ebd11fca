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

package sdn

import (
	"net/http"
	"sync"

	"github.com/carverauto/sdnsync/pkg/logger"
)

// HTTPClient abstracts the underlying HTTP client for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CatalystClient talks to a Catalyst-Center-style controller REST API. It
// carries no business logic; it lists devices and interfaces, nothing more.
type CatalystClient struct {
	endpoint   string
	apiVersion string
	username   string
	password   string
	httpClient HTTPClient
	logger     logger.Logger

	// tokenMu guards the cached token: interface listings fan out across
	// goroutines, so reads, refreshes, and the 401 invalidation race
	// without it. Holding it across the auth call keeps refresh
	// single-flight.
	tokenMu sync.Mutex
	token   string
}

// device is the controller's wire representation of a network device.
type device struct {
	InstanceUUID        string `json:"instanceUuid"`
	Hostname            string `json:"hostname"`
	SerialNumber        string `json:"serialNumber"`
	PlatformID          string `json:"platformId"`
	Family              string `json:"family"`
	ManagementIPAddress string `json:"managementIpAddress"`
}

// iface is the controller's wire representation of a device interface.
type iface struct {
	PortName    string `json:"portName"`
	Type        string `json:"interfaceType"`
	MACAddress  string `json:"macAddress"`
	IPv4Address string `json:"ipv4Address"`
	Description string `json:"description"`
}

// deviceResponse is the paginated envelope for device listings.
type deviceResponse struct {
	Response []device `json:"response"`
}

// interfaceResponse is the paginated envelope for interface listings.
type interfaceResponse struct {
	Response []iface `json:"response"`
}

// tokenResponse is the auth token envelope.
type tokenResponse struct {
	Token string `json:"Token"`
}
