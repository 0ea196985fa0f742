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

	"github.com/spf13/cobra"

	"github.com/wultra/powerauth-crypto-core/keys"
)

var deriveKeysMasterSecretHex string

var deriveKeysCmd = &cobra.Command{
	Use:   "derive-keys",
	Short: "Derive SK_POSSESSION, SK_KNOWLEDGE, SK_BIOMETRY, SK_TRANSPORT, SK_VAULT from a master secret",
	Example: `  paCrypto derive-keys --ms 00112233445566778899AABBCCDDEEFF`,
	RunE: runDeriveKeys,
}

func init() {
	rootCmd.AddCommand(deriveKeysCmd)
	deriveKeysCmd.Flags().StringVar(&deriveKeysMasterSecretHex, "ms", "", "Master secret, 16 bytes hex-encoded")
	deriveKeysCmd.MarkFlagRequired("ms")
}

func runDeriveKeys(cmd *cobra.Command, args []string) error {
	raw, err := hex.DecodeString(deriveKeysMasterSecretHex)
	if err != nil {
		return fmt.Errorf("invalid --ms hex: %w", err)
	}
	if len(raw) != 16 {
		return fmt.Errorf("master secret must be 16 bytes, got %d", len(raw))
	}

	var ms keys.MasterSecret
	copy(ms[:], raw)

	nk, err := keys.DeriveNamedKeys(ms)
	if err != nil {
		return err
	}

	fmt.Printf("SK_POSSESSION: %s\n", hex.EncodeToString(nk.Possession[:]))
	fmt.Printf("SK_KNOWLEDGE:  %s\n", hex.EncodeToString(nk.Knowledge[:]))
	fmt.Printf("SK_BIOMETRY:   %s\n", hex.EncodeToString(nk.Biometry[:]))
	fmt.Printf("SK_TRANSPORT:  %s\n", hex.EncodeToString(nk.Transport[:]))
	fmt.Printf("SK_VAULT:      %s\n", hex.EncodeToString(nk.Vault[:]))
	return nil
}
