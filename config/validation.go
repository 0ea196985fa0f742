// Copyright (C) 2025 wultra
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import "fmt"

// Issue is one configuration validation finding.
type Issue struct {
	Field   string
	Message string
	Level   string // "error" or "warning"
}

// Validate checks cfg for structurally invalid values. Errors abort
// loading; warnings are advisory only.
func Validate(cfg *Config) []Issue {
	var issues []Issue

	if cfg.Protocol != nil {
		if cfg.Protocol.CounterLookAheadWindow < 0 {
			issues = append(issues, Issue{
				Field:   "protocol.counter_look_ahead_window",
				Message: fmt.Sprintf("must not be negative, got %d", cfg.Protocol.CounterLookAheadWindow),
				Level:   "error",
			})
		}
		if cfg.Protocol.RngRetryLimit <= 0 {
			issues = append(issues, Issue{
				Field:   "protocol.rng_retry_limit",
				Message: "must be positive",
				Level:   "error",
			})
		}
		if cfg.Protocol.AllowLegacyV2 {
			issues = append(issues, Issue{
				Field:   "protocol.allow_legacy_v2",
				Message: "legacy v2 signature family is enabled; new deployments should disable it",
				Level:   "warning",
			})
		}
	}

	if cfg.Logging != nil {
		switch cfg.Logging.Level {
		case "debug", "info", "warn", "error":
		default:
			issues = append(issues, Issue{
				Field:   "logging.level",
				Message: fmt.Sprintf("unknown log level %q", cfg.Logging.Level),
				Level:   "warning",
			})
		}
	}

	return issues
}
