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

// Package statusblob encodes and decodes the opaque 16-byte
// activation-status blob exchanged between device and server. The zero-IV,
// no-padding encryption is intentional: each call produces a fresh
// plaintext whose randomness is not load-bearing, and the magic value
// doubles as an integrity check. Do not introduce a random IV or PKCS7
// padding here.
package statusblob

import (
	"encoding/binary"
	"fmt"

	"github.com/wultra/powerauth-crypto-core/internal/logger"
	"github.com/wultra/powerauth-crypto-core/internal/metrics"
	"github.com/wultra/powerauth-crypto-core/perrors"
	"github.com/wultra/powerauth-crypto-core/primitives"
)

// Magic is the fixed 4-byte prefix that marks a decoded blob as valid.
const Magic uint32 = 0xDEC0DED1

// Blob is the decoded, fixed-layout activation-status record.
type Blob struct {
	ActivationStatus byte
	CurrentVersion   byte
	UpgradeVersion   byte
	FailedAttempts   byte
	MaxFailedAttempts byte
}

// IsValid reports whether a decrypted 16-byte plaintext blob carries the
// expected magic in its leading 4 bytes.
func IsValid(plain []byte) bool {
	if len(plain) < 4 {
		return false
	}
	return binary.BigEndian.Uint32(plain[0:4]) == Magic
}

// Encode serializes b into the 16-byte layout and encrypts it under key
// (SK_TRANSPORT) with AES-CBC, zero IV, no padding.
func Encode(b Blob, key []byte) ([]byte, error) {
	var plain [16]byte
	binary.BigEndian.PutUint32(plain[0:4], Magic)
	plain[4] = b.ActivationStatus
	plain[5] = b.CurrentVersion
	plain[6] = b.UpgradeVersion
	// offsets 7..12 stay zero (reserved)
	plain[13] = b.FailedAttempts
	plain[14] = b.MaxFailedAttempts
	// offset 15 stays zero (reserved)

	iv := make([]byte, primitives.BlockSize)
	ct, err := primitives.AESCBCEncrypt(plain[:], iv, key, primitives.NoPadding)
	if err != nil {
		metrics.ObserveStatusBlob("encode", "error")
		return nil, err
	}
	metrics.ObserveStatusBlob("encode", "ok")
	return ct, nil
}

// Decode decrypts ciphertext under key and parses the fixed layout,
// returning ErrProtocolViolation if the leading magic does not match.
func Decode(ciphertext, key []byte) (Blob, error) {
	var blob Blob
	if len(ciphertext) != 16 {
		metrics.ObserveStatusBlob("decode", "error")
		return blob, fmt.Errorf("%w: status blob ciphertext must be 16 bytes, got %d", perrors.ErrInvalidInput, len(ciphertext))
	}

	iv := make([]byte, primitives.BlockSize)
	plain, err := primitives.AESCBCDecrypt(ciphertext, iv, key, primitives.NoPadding)
	if err != nil {
		metrics.ObserveStatusBlob("decode", "error")
		return blob, err
	}

	if !IsValid(plain) {
		metrics.ObserveStatusBlob("decode", "invalid_magic")
		logger.Warn("status blob magic mismatch")
		return blob, fmt.Errorf("%w: status blob magic mismatch", perrors.ErrProtocolViolation)
	}
	metrics.ObserveStatusBlob("decode", "ok")

	blob.ActivationStatus = plain[4]
	blob.CurrentVersion = plain[5]
	blob.UpgradeVersion = plain[6]
	blob.FailedAttempts = plain[13]
	blob.MaxFailedAttempts = plain[14]
	return blob, nil
}
