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

// Package sdn implements the thin client for the remote SDN controller's
// "list devices" and "list interfaces" capabilities.
package sdn

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/sdnsync/pkg/logger"
	"github.com/carverauto/sdnsync/pkg/models"
)

const (
	// pageSize matches the controller's maximum page; a short page ends
	// the pass.
	pageSize = 500

	defaultTimeout = 30 * time.Second
)

// ClientOption configures a CatalystClient.
type ClientOption func(*CatalystClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc HTTPClient) ClientOption {
	return func(c *CatalystClient) {
		c.httpClient = hc
	}
}

// NewCatalystClient builds a client for the controller at endpoint
// (scheme://host). Credentials are used once per token lifetime against the
// controller's auth endpoint.
func NewCatalystClient(endpoint, apiVersion, username, password string, insecureSkipVerify bool, log logger.Logger, opts ...ClientOption) *CatalystClient {
	c := &CatalystClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiVersion: apiVersion,
		username:   username,
		password:   password,
		logger:     log.WithComponent("sdn"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: insecureSkipVerify, //nolint:gosec // operator-controlled lab setting
				},
			},
		},
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// ListDevices performs one full paginated pass over the controller's device
// inventory, optionally narrowed to the given device families. An empty
// filter means all families. The pass is restartable: no cursor survives
// across calls.
func (c *CatalystClient) ListDevices(ctx context.Context, families []string) ([]models.RemoteDevice, error) {
	if len(families) == 0 {
		return c.listDevicesForFamily(ctx, "")
	}

	seen := make(map[string]struct{})

	var all []models.RemoteDevice

	for _, family := range families {
		devices, err := c.listDevicesForFamily(ctx, family)
		if err != nil {
			return nil, err
		}

		for _, d := range devices {
			if _, ok := seen[d.Key]; ok {
				continue
			}

			seen[d.Key] = struct{}{}
			all = append(all, d)
		}
	}

	return all, nil
}

func (c *CatalystClient) listDevicesForFamily(ctx context.Context, family string) ([]models.RemoteDevice, error) {
	var devices []models.RemoteDevice

	// The controller pages from offset 1 in steps of pageSize; a short or
	// empty page ends the pass.
	for offset := 1; ; offset += pageSize {
		params := url.Values{}
		params.Set("offset", strconv.Itoa(offset))
		params.Set("limit", strconv.Itoa(pageSize))

		if family != "" {
			params.Set("family", family)
		}

		var page deviceResponse
		if err := c.get(ctx, "network-device", params, &page); err != nil {
			return nil, err
		}

		for i := range page.Response {
			devices = append(devices, toRemoteDevice(&page.Response[i]))
		}

		if len(page.Response) < pageSize {
			break
		}
	}

	c.logger.Debug().Int("count", len(devices)).Str("family", family).Msg("Fetched devices from controller")

	return devices, nil
}

// ListInterfaces performs one full paginated pass over a device's interfaces.
func (c *CatalystClient) ListInterfaces(ctx context.Context, deviceKey string) ([]models.Interface, error) {
	var interfaces []models.Interface

	for offset := 1; ; offset += pageSize {
		params := url.Values{}
		params.Set("offset", strconv.Itoa(offset))
		params.Set("limit", strconv.Itoa(pageSize))

		var page interfaceResponse
		if err := c.get(ctx, "interface/network-device/"+url.PathEscape(deviceKey), params, &page); err != nil {
			return nil, err
		}

		for i := range page.Response {
			in := &page.Response[i]
			interfaces = append(interfaces, models.Interface{
				Name:        in.PortName,
				Type:        in.Type,
				MACAddress:  in.MACAddress,
				IPv4Address: in.IPv4Address,
				Description: in.Description,
			})
		}

		if len(page.Response) < pageSize {
			break
		}
	}

	return interfaces, nil
}

func toRemoteDevice(d *device) models.RemoteDevice {
	key := d.InstanceUUID
	if key == "" {
		key = d.SerialNumber
	}

	// Hostnames are shortened at ingestion; the local store never sees the
	// domain suffix.
	hostname := strings.SplitN(d.Hostname, ".", 2)[0]

	return models.RemoteDevice{
		Key:          key,
		Hostname:     hostname,
		Model:        d.PlatformID,
		Family:       d.Family,
		ManagementIP: d.ManagementIPAddress,
	}
}

func (c *CatalystClient) get(ctx context.Context, path string, params url.Values, dst interface{}) error {
	token, err := c.authToken(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/dna/intent/api/%s/%s?%s", c.endpoint, c.apiVersion, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}

	req.Header.Set("X-Auth-Token", token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	defer c.closeBody(resp)

	if err := c.checkStatus(resp, path); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &UpstreamError{Op: path, Err: fmt.Errorf("malformed response: %w", err)}
	}

	return nil
}

func (c *CatalystClient) checkStatus(resp *http.Response, op string) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitedError{Op: op, RetryAfter: retryAfter(resp)}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Token may have expired; drop it so the next cycle re-authenticates.
		c.tokenMu.Lock()
		c.token = ""
		c.tokenMu.Unlock()

		return &TransportError{Op: op, Err: fmt.Errorf("authentication rejected with status %d", resp.StatusCode)}
	default:
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode}
	}
}

// authToken returns the cached controller token, fetching one if needed.
// The token mutex is held across the fetch, so concurrent callers behind a
// cold cache authenticate exactly once.
func (c *CatalystClient) authToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	u := c.endpoint + "/dna/system/api/" + c.apiVersion + "/auth/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, http.NoBody)
	if err != nil {
		return "", &TransportError{Op: "auth", Err: err}
	}

	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: "auth", Err: err}
	}
	defer c.closeBody(resp)

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &RateLimitedError{Op: "auth", RetryAfter: retryAfter(resp)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{Op: "auth", Err: fmt.Errorf("authentication failed with status %d", resp.StatusCode)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", &UpstreamError{Op: "auth", Err: fmt.Errorf("malformed token response: %w", err)}
	}

	c.token = tr.Token

	return c.token, nil
}

func (c *CatalystClient) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to close response body")
	}
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	return 0
}
