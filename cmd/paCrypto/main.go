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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wultra/powerauth-crypto-core/config"
	"github.com/wultra/powerauth-crypto-core/internal/logger"
)

var (
	cfgDotEnvPath string

	// loadedConfig is populated by the root command's PersistentPreRunE and
	// consulted by subcommands that need the deployment's protocol knobs
	// (e.g. sign/verify default --allow-legacy-v2 from Protocol.AllowLegacyV2).
	loadedConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "paCrypto",
	Short: "PowerAuth crypto core CLI - key derivation, signing and token tooling",
	Long: `paCrypto exposes the cryptographic core operations from the command line,
mainly for interop debugging and generating known-answer fixtures:

- derive-keys: derive the named key hierarchy from a master secret
- sign: compute a multi-factor request signature
- verify: verify a multi-factor request signature
- token-digest: compute or verify a token digest
- status-blob: encode or decode an activation-status blob
- serve: mount the /metrics and /health endpoints over HTTP`,
	PersistentPreRunE: loadRootConfig,
}

func loadRootConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{
		ConfigDir:  "config",
		DotEnvPath: cfgDotEnvPath,
	})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loadedConfig = cfg

	switch cfg.Logging.Level {
	case "debug":
		logger.GetDefaultLogger().SetLevel(logger.DebugLevel)
	case "warn":
		logger.GetDefaultLogger().SetLevel(logger.WarnLevel)
	case "error":
		logger.GetDefaultLogger().SetLevel(logger.ErrorLevel)
	default:
		logger.GetDefaultLogger().SetLevel(logger.InfoLevel)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&cfgDotEnvPath, "dotenv", "", "Optional .env file to load before reading config")
}
