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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wultra/powerauth-crypto-core/counter"
	"github.com/wultra/powerauth-crypto-core/signature"
)

var (
	signDataStr       string
	signKeysHex       []string
	signCounterHex    string
	signFamily        string
	signAllowLegacyV2 bool
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Compute a multi-factor request signature",
	Example: `  paCrypto sign --data "POST&/pa/signature/validate&..." \
    --key 0F0E0D0C0B0A09080706050403020100 \
    --counter 00000000000000000000000000000001`,
	RunE: runSign,
}

func init() {
	rootCmd.AddCommand(signCmd)
	signCmd.Flags().StringVar(&signDataStr, "data", "", "Signature base string")
	signCmd.Flags().StringArrayVar(&signKeysHex, "key", nil, "Signature key, hex-encoded (repeat for 2FA/3FA, in possession/knowledge/biometry order)")
	signCmd.Flags().StringVar(&signCounterHex, "counter", "", "16-byte counter material, hex-encoded")
	signCmd.Flags().StringVar(&signFamily, "family", "v3", `Counter family the material materializes, "v2" or "v3"`)
	signCmd.Flags().BoolVar(&signAllowLegacyV2, "allow-legacy-v2", false, "Permit the v2 family (overrides the loaded config's protocol.allow_legacy_v2 when set)")
	signCmd.MarkFlagRequired("data")
	signCmd.MarkFlagRequired("key")
	signCmd.MarkFlagRequired("counter")
}

func runSign(cmd *cobra.Command, args []string) error {
	keyBytes, err := decodeHexKeys(signKeysHex)
	if err != nil {
		return err
	}
	ctr, err := parseCounterFlag(signFamily, signCounterHex)
	if err != nil {
		return err
	}

	sig, err := signature.ComputeForCounter(keyBytes, []byte(signDataStr), ctr, allowLegacyV2(cmd, signAllowLegacyV2))
	if err != nil {
		return err
	}
	fmt.Println(sig)
	return nil
}

// parseCounterFlag decodes a hex-encoded 16-byte counter material string
// into a counter.Counter of the requested family.
func parseCounterFlag(family, hexMaterial string) (counter.Counter, error) {
	raw, err := hex.DecodeString(hexMaterial)
	if err != nil {
		return counter.Counter{}, fmt.Errorf("invalid --counter hex: %w", err)
	}
	if len(raw) != 16 {
		return counter.Counter{}, fmt.Errorf("--counter material must be 16 bytes, got %d", len(raw))
	}
	var material [16]byte
	copy(material[:], raw)

	switch family {
	case "v2":
		return counter.FromMaterialized(counter.V2, material), nil
	case "v3":
		return counter.FromMaterialized(counter.V3, material), nil
	default:
		return counter.Counter{}, fmt.Errorf(`--family must be "v2" or "v3", got %q`, family)
	}
}

// allowLegacyV2 resolves the effective v2-gate toggle: an explicit
// --allow-legacy-v2 flag on the command line wins, otherwise fall back to
// the deployment's loaded config.
func allowLegacyV2(cmd *cobra.Command, flagValue bool) bool {
	if cmd.Flags().Changed("allow-legacy-v2") {
		return flagValue
	}
	if loadedConfig != nil && loadedConfig.Protocol != nil {
		return loadedConfig.Protocol.AllowLegacyV2
	}
	return flagValue
}

func decodeHexKeys(hexKeys []string) ([][]byte, error) {
	out := make([][]byte, len(hexKeys))
	for i, h := range hexKeys {
		b, err := hex.DecodeString(strings.TrimSpace(h))
		if err != nil {
			return nil, fmt.Errorf("invalid --key hex at position %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}
