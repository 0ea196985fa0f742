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

	"github.com/wultra/powerauth-crypto-core/statusblob"
)

var (
	statusBlobKeyHex    string
	statusBlobCipherHex string
	statusBlobStatus    uint8
	statusBlobCurrent   uint8
	statusBlobUpgrade   uint8
	statusBlobFailed    uint8
	statusBlobMaxFailed uint8
	statusBlobDecode    bool
)

var statusBlobCmd = &cobra.Command{
	Use:   "status-blob",
	Short: "Encode or decode the 16-byte activation-status blob",
	RunE:  runStatusBlob,
}

func init() {
	rootCmd.AddCommand(statusBlobCmd)
	statusBlobCmd.Flags().StringVar(&statusBlobKeyHex, "key", "", "SK_TRANSPORT, hex-encoded")
	statusBlobCmd.Flags().BoolVar(&statusBlobDecode, "decode", false, "Decode --ciphertext instead of encoding fields")
	statusBlobCmd.Flags().StringVar(&statusBlobCipherHex, "ciphertext", "", "16-byte ciphertext, hex-encoded (for --decode)")
	statusBlobCmd.Flags().Uint8Var(&statusBlobStatus, "status", 0, "activationStatus")
	statusBlobCmd.Flags().Uint8Var(&statusBlobCurrent, "current-version", 0, "currentVersion")
	statusBlobCmd.Flags().Uint8Var(&statusBlobUpgrade, "upgrade-version", 0, "upgradeVersion")
	statusBlobCmd.Flags().Uint8Var(&statusBlobFailed, "failed-attempts", 0, "failedAttempts")
	statusBlobCmd.Flags().Uint8Var(&statusBlobMaxFailed, "max-failed-attempts", 0, "maxFailedAttempts")
	statusBlobCmd.MarkFlagRequired("key")
}

func runStatusBlob(cmd *cobra.Command, args []string) error {
	key, err := hex.DecodeString(statusBlobKeyHex)
	if err != nil {
		return fmt.Errorf("invalid --key hex: %w", err)
	}

	if statusBlobDecode {
		ct, err := hex.DecodeString(statusBlobCipherHex)
		if err != nil {
			return fmt.Errorf("invalid --ciphertext hex: %w", err)
		}
		blob, err := statusblob.Decode(ct, key)
		if err != nil {
			return err
		}
		fmt.Printf("activationStatus:  %d\n", blob.ActivationStatus)
		fmt.Printf("currentVersion:    %d\n", blob.CurrentVersion)
		fmt.Printf("upgradeVersion:    %d\n", blob.UpgradeVersion)
		fmt.Printf("failedAttempts:    %d\n", blob.FailedAttempts)
		fmt.Printf("maxFailedAttempts: %d\n", blob.MaxFailedAttempts)
		return nil
	}

	blob := statusblob.Blob{
		ActivationStatus:  statusBlobStatus,
		CurrentVersion:    statusBlobCurrent,
		UpgradeVersion:    statusBlobUpgrade,
		FailedAttempts:    statusBlobFailed,
		MaxFailedAttempts: statusBlobMaxFailed,
	}
	ct, err := statusblob.Encode(blob, key)
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(ct))
	return nil
}
