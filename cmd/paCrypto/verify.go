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

	"github.com/wultra/powerauth-crypto-core/signature"
)

var (
	verifyDataStr       string
	verifyKeysHex       []string
	verifyCounterHex    string
	verifyCandidate     string
	verifyFamily        string
	verifyAllowLegacyV2 bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a multi-factor request signature",
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyDataStr, "data", "", "Signature base string")
	verifyCmd.Flags().StringArrayVar(&verifyKeysHex, "key", nil, "Signature key, hex-encoded (repeat for 2FA/3FA)")
	verifyCmd.Flags().StringVar(&verifyCounterHex, "counter", "", "16-byte counter material, hex-encoded")
	verifyCmd.Flags().StringVar(&verifyCandidate, "signature", "", "Candidate signature string to verify")
	verifyCmd.Flags().StringVar(&verifyFamily, "family", "v3", `Counter family the material materializes, "v2" or "v3"`)
	verifyCmd.Flags().BoolVar(&verifyAllowLegacyV2, "allow-legacy-v2", false, "Permit the v2 family (overrides the loaded config's protocol.allow_legacy_v2 when set)")
	verifyCmd.MarkFlagRequired("data")
	verifyCmd.MarkFlagRequired("key")
	verifyCmd.MarkFlagRequired("counter")
	verifyCmd.MarkFlagRequired("signature")
}

func runVerify(cmd *cobra.Command, args []string) error {
	keyBytes, err := decodeHexKeys(verifyKeysHex)
	if err != nil {
		return err
	}
	ctr, err := parseCounterFlag(verifyFamily, verifyCounterHex)
	if err != nil {
		return err
	}

	ok, err := signature.VerifyForCounter(keyBytes, []byte(verifyDataStr), ctr, allowLegacyV2(cmd, verifyAllowLegacyV2), verifyCandidate)
	if err != nil {
		return err
	}
	if ok {
		fmt.Println("valid")
		return nil
	}
	fmt.Println("invalid")
	os.Exit(1)
	return nil
}
