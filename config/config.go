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

// Package config loads the deployment knobs for the cryptographic core's
// surrounding collaborator: which protocol family to accept, the RNG retry
// and counter look-ahead bounds, and the usual logging/metrics/health
// toggles.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Environment string          `yaml:"environment" json:"environment"`
	Protocol    *ProtocolConfig `yaml:"protocol" json:"protocol"`
	Logging     *LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig  `yaml:"metrics" json:"metrics"`
	Health      *HealthConfig   `yaml:"health" json:"health"`
}

// ProtocolConfig holds the knobs that are specific to this repository's
// domain: the signature-counter and password-KDF parameters, and the
// legacy-family deprecation switch called for in the design notes.
type ProtocolConfig struct {
	// AllowLegacyV2 gates acceptance of the numeric-counter signature
	// family. New deployments should leave this false; it exists only for
	// bit-compatible migration from v2-only clients.
	AllowLegacyV2 bool `yaml:"allow_legacy_v2" json:"allow_legacy_v2"`

	// CounterLookAheadWindow is how many future counter materializations
	// the server collaborator should precompute when verifying a signature,
	// to tolerate a bounded number of missed client signatures.
	CounterLookAheadWindow int `yaml:"counter_look_ahead_window" json:"counter_look_ahead_window"`

	// RngRetryLimit records the retry bound for the ad-hoc/MAC index draw
	// loop in the non-personalized encryptor. The e2e package does not read
	// it; its loop uses a fixed bound of 1000 attempts.
	RngRetryLimit int `yaml:"rng_retry_limit" json:"rng_retry_limit"`

	// PBKDF2Iterations and PBKDF2KeyLength are the fixed password-KDF
	// parameters; overridable only for test fixtures, never in production.
	PBKDF2Iterations int `yaml:"pbkdf2_iterations" json:"pbkdf2_iterations"`
	PBKDF2KeyLength  int `yaml:"pbkdf2_key_length" json:"pbkdf2_key_length"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Port      int    `yaml:"port" json:"port"`
	Path      string `yaml:"path" json:"path"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// HealthConfig configures the health-check endpoint.
type HealthConfig struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Port    int      `yaml:"port" json:"port"`
	Path    string   `yaml:"path" json:"path"`
	Checks  []string `yaml:"checks" json:"checks"`
}

// LoadFromFile loads configuration from a YAML (or, failing that, JSON)
// file and fills in defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile saves configuration to path, choosing JSON or YAML by
// extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Protocol == nil {
		cfg.Protocol = &ProtocolConfig{}
	}
	if cfg.Protocol.CounterLookAheadWindow == 0 {
		cfg.Protocol.CounterLookAheadWindow = 10
	}
	if cfg.Protocol.RngRetryLimit == 0 {
		cfg.Protocol.RngRetryLimit = 1000
	}
	if cfg.Protocol.PBKDF2Iterations == 0 {
		cfg.Protocol.PBKDF2Iterations = 10000
	}
	if cfg.Protocol.PBKDF2KeyLength == 0 {
		cfg.Protocol.PBKDF2KeyLength = 16
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "powerauth"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Health == nil {
		cfg.Health = &HealthConfig{}
	}
	if cfg.Health.Path == "" {
		cfg.Health.Path = "/health"
	}
}
