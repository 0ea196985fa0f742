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
	"time"

	"github.com/spf13/cobra"

	"github.com/wultra/powerauth-crypto-core/token"
)

var (
	tokenNonceHex  string
	tokenSecretHex string
	tokenTimestamp string
)

var tokenDigestCmd = &cobra.Command{
	Use:   "token-digest",
	Short: "Compute a token digest, generating the nonce or timestamp when its flag is omitted",
	RunE:  runTokenDigest,
}

func init() {
	rootCmd.AddCommand(tokenDigestCmd)
	tokenDigestCmd.Flags().StringVar(&tokenNonceHex, "nonce", "", "16-byte nonce, hex-encoded (generated if omitted)")
	tokenDigestCmd.Flags().StringVar(&tokenSecretHex, "secret", "", "Token secret, hex-encoded")
	tokenDigestCmd.Flags().StringVar(&tokenTimestamp, "timestamp", "", "ASCII millisecond timestamp (generated if omitted)")
	tokenDigestCmd.MarkFlagRequired("secret")
}

func runTokenDigest(cmd *cobra.Command, args []string) error {
	secret, err := hex.DecodeString(tokenSecretHex)
	if err != nil {
		return fmt.Errorf("invalid --secret hex: %w", err)
	}

	var nonce []byte
	if tokenNonceHex == "" {
		nonce, err = token.GenerateNonce()
		if err != nil {
			return err
		}
	} else {
		nonce, err = hex.DecodeString(tokenNonceHex)
		if err != nil {
			return fmt.Errorf("invalid --nonce hex: %w", err)
		}
	}

	var timestamp []byte
	if tokenTimestamp == "" {
		timestamp = token.GenerateTimestamp(time.Now())
	} else {
		timestamp = []byte(tokenTimestamp)
	}

	digest, err := token.ComputeDigest(nonce, timestamp, secret)
	if err != nil {
		return err
	}

	fmt.Printf("nonce:     %s\n", hex.EncodeToString(nonce))
	fmt.Printf("timestamp: %s\n", timestamp)
	fmt.Printf("digest:    %s\n", hex.EncodeToString(digest))
	return nil
}
