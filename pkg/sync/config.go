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
	"fmt"
	"os"
	"time"

	"github.com/carverauto/sdnsync/pkg/logger"
	"github.com/carverauto/sdnsync/pkg/models"
	"github.com/carverauto/sdnsync/pkg/siterole"
)

const (
	// SDNTypeCatalystCenter is the only controller type the client
	// currently speaks.
	SDNTypeCatalystCenter = "catalyst-center"

	defaultWorkers      = 10
	defaultPollInterval = models.Duration(0) // manual trigger only
)

// ControllerConfig describes the remote SDN controller.
type ControllerConfig struct {
	Hostname           string            `json:"hostname"`
	APIVersion         string            `json:"api_version"`
	SDNType            string            `json:"sdn_type"`
	DeviceFamilies     []string          `json:"device_families,omitempty"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify,omitempty"`
	Credentials        map[string]string `json:"credentials,omitempty"`
}

// Username returns the controller username from the credentials map, falling
// back to the environment.
func (c *ControllerConfig) Username() string {
	if v, ok := c.Credentials["username"]; ok && v != "" {
		return v
	}

	return os.Getenv("SDN_USER")
}

// Password returns the controller password from the credentials map, falling
// back to the environment.
func (c *ControllerConfig) Password() string {
	if v, ok := c.Credentials["password"]; ok && v != "" {
		return v
	}

	return os.Getenv("SDN_PASSWORD")
}

// Config is the sync service configuration, loaded once per process and
// validated eagerly. Jobs never start with an invalid configuration.
type Config struct {
	ListenAddr      string           `json:"listen_addr"`
	APIKey          string           `json:"api_key,omitempty"`
	DBPath          string           `json:"db_path"`
	PollInterval    models.Duration  `json:"poll_interval,omitempty"`
	Workers         int              `json:"workers,omitempty"`
	FetchInterfaces bool             `json:"fetch_interfaces,omitempty"`
	DefaultTenant   string           `json:"default_tenant,omitempty"`
	RegexTemplate   string           `json:"regex_template,omitempty"`
	Controller      ControllerConfig `json:"controller"`
	Logging         *logger.Config   `json:"logging,omitempty"`

	template *siterole.Template
}

// Validate checks the configuration and compiles the regex template. Any
// error here is a ConfigurationError class failure: the service refuses to
// start and no job ever leaves Idle.
func (c *Config) Validate() error {
	if c.Controller.Hostname == "" {
		return errMissingControllerHost
	}

	if c.Controller.SDNType == "" {
		c.Controller.SDNType = SDNTypeCatalystCenter
	}

	if c.Controller.SDNType != SDNTypeCatalystCenter {
		return fmt.Errorf("%w: %q", errUnsupportedSDNType, c.Controller.SDNType)
	}

	if c.Controller.APIVersion == "" {
		c.Controller.APIVersion = "v1"
	}

	if c.Controller.Username() == "" || c.Controller.Password() == "" {
		return errMissingCredentials
	}

	if c.DBPath == "" {
		return errMissingStorePath
	}

	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}

	if c.PollInterval < 0 {
		c.PollInterval = defaultPollInterval
	}

	if c.ListenAddr == "" {
		c.ListenAddr = ":8090"
	}

	if c.RegexTemplate != "" {
		tmpl, err := siterole.Compile(c.RegexTemplate)
		if err != nil {
			return err
		}

		c.template = tmpl
	}

	return nil
}

// Template returns the compiled hostname template, or nil when none is
// configured (every resolution then degrades to "no match").
func (c *Config) Template() *siterole.Template {
	return c.template
}

// PollDuration returns the poll interval as a time.Duration.
func (c *Config) PollDuration() time.Duration {
	return time.Duration(c.PollInterval)
}
