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

// Package siterole derives site and role tokens from device hostnames using
// a configurable regex template with named capture groups.
package siterole

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var errNoCaptureGroups = errors.New("regex template has neither a 'site' nor a 'role' capture group")

// Template is a compiled hostname template. Compilation happens at
// configuration time; Resolve itself never fails.
type Template struct {
	re        *regexp.Regexp
	siteIndex int
	roleIndex int
}

// Result holds the tokens extracted from a hostname. A nil field means the
// corresponding group did not match; callers treat that as a classification
// input, not an error.
type Result struct {
	Site *string
	Role *string
}

// Compile parses a regex template containing named capture groups `site`
// and/or `role`. A malformed expression or one without either group is
// rejected here so jobs never start with a broken template.
func Compile(expr string) (*Template, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regex template %q: %w", expr, err)
	}

	t := &Template{
		re:        re,
		siteIndex: re.SubexpIndex("site"),
		roleIndex: re.SubexpIndex("role"),
	}

	if t.siteIndex < 0 && t.roleIndex < 0 {
		return nil, fmt.Errorf("%w: %q", errNoCaptureGroups, expr)
	}

	return t, nil
}

// Resolve extracts the site and role tokens from hostname. Tokens are
// whitespace-trimmed; an empty match degrades to nil.
func (t *Template) Resolve(hostname string) Result {
	var result Result

	if hostname == "" {
		return result
	}

	match := t.re.FindStringSubmatch(hostname)
	if match == nil {
		return result
	}

	if t.siteIndex >= 0 {
		if site := strings.TrimSpace(match[t.siteIndex]); site != "" {
			result.Site = &site
		}
	}

	if t.roleIndex >= 0 {
		if role := strings.TrimSpace(match[t.roleIndex]); role != "" {
			result.Role = &role
		}
	}

	return result
}
