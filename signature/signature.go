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

// Package signature computes and verifies the multi-factor request
// signature over an already-formatted signature base string. It does not
// format the base string itself — that's the collaborator's job — and it
// does not advance counters; it only materializes and verifies against
// whatever counter value it is given.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/wultra/powerauth-crypto-core/counter"
	"github.com/wultra/powerauth-crypto-core/internal/logger"
	"github.com/wultra/powerauth-crypto-core/internal/metrics"
	"github.com/wultra/powerauth-crypto-core/perrors"
)

// decimalWidth is the protocol's fixed decimal-digits-per-factor, L=8.
const decimalWidth = 8

var decimalModulus = pow10(decimalWidth)

func pow10(n int) uint64 {
	v := uint64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// Compute produces the "-"-joined decimal signature string for the given
// ordered keys (1 to 3, drawn from {SK_POSSESSION, SK_KNOWLEDGE,
// SK_BIOMETRY} in that order) over data, using the 16-byte counter
// material ctrBytes.
//
// The inner-chaining loop reuses keys[1..i] in order for each component i;
// this reproduces the reference algorithm exactly and is intentional, not
// a bug to be simplified away.
func Compute(keys [][]byte, data, ctrBytes []byte) (string, error) {
	if len(keys) < 1 || len(keys) > 3 {
		return "", fmt.Errorf("%w: key count must be 1..3, got %d", perrors.ErrInvalidInput, len(keys))
	}
	if len(ctrBytes) != 16 {
		return "", fmt.Errorf("%w: counter material must be 16 bytes, got %d", perrors.ErrInvalidInput, len(ctrBytes))
	}

	components := make([]string, len(keys))
	for i := range keys {
		d := hmacSHA256(keys[i], ctrBytes)
		for j := 0; j < i; j++ {
			inner := hmacSHA256(keys[j+1], ctrBytes)
			d = hmacSHA256(inner, d)
		}
		mac := hmacSHA256(d, data)
		components[i] = decimalComponent(mac)
	}

	return strings.Join(components, "-"), nil
}

// Verify recomputes the signature over the same inputs and compares it to
// candidate in constant time.
func Verify(keys [][]byte, data, ctrBytes []byte, candidate string) (bool, error) {
	expected, err := Compute(keys, data, ctrBytes)
	if err != nil {
		return false, err
	}
	if len(expected) != len(candidate) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1, nil
}

// ComputeForCounter is the production entry point for the signature
// engine: it materializes ctr and refuses v2 counter material with
// ErrProtocolViolation when allowLegacyV2 is false, the deprecation gate
// called for in the design notes. Callers that already know they want v2
// bit-compatibility and have explicitly opted in (config.ProtocolConfig.
// AllowLegacyV2) pass true. Every call is observed on the process-wide
// metrics collector and logged at debug level.
func ComputeForCounter(keys [][]byte, data []byte, ctr counter.Counter, allowLegacyV2 bool) (string, error) {
	family, err := legacyGate(ctr, allowLegacyV2)
	if err != nil {
		metrics.ObserveSignature("compute", family, len(keys))
		logger.Warn("signature compute rejected", logger.String("family", family), logger.Error(err))
		return "", err
	}

	material := ctr.Materialize()
	sig, err := Compute(keys, data, material[:])
	metrics.ObserveSignature("compute", family, len(keys))
	if err != nil {
		logger.Warn("signature compute failed", logger.String("family", family), logger.Error(err))
		return "", err
	}
	logger.Debug("signature computed", logger.String("family", family), logger.Int("factors", len(keys)))
	return sig, nil
}

// VerifyForCounter is the production entry point for signature
// verification, mirroring ComputeForCounter's v2 gate and instrumentation.
func VerifyForCounter(keys [][]byte, data []byte, ctr counter.Counter, allowLegacyV2 bool, candidate string) (bool, error) {
	family, err := legacyGate(ctr, allowLegacyV2)
	if err != nil {
		metrics.ObserveSignature("verify", family, len(keys))
		logger.Warn("signature verify rejected", logger.String("family", family), logger.Error(err))
		return false, err
	}

	material := ctr.Materialize()
	ok, err := Verify(keys, data, material[:], candidate)
	metrics.ObserveSignature("verify", family, len(keys))
	if err != nil {
		logger.Warn("signature verify failed", logger.String("family", family), logger.Error(err))
		return false, err
	}
	if !ok {
		logger.Warn("signature mismatch", logger.String("family", family))
	}
	return ok, nil
}

// legacyGate returns the counter family label ("v2"/"v3") and rejects v2
// material when allowLegacyV2 is false.
func legacyGate(ctr counter.Counter, allowLegacyV2 bool) (string, error) {
	if ctr.Kind == counter.V2 {
		if !allowLegacyV2 {
			return "v2", fmt.Errorf("%w: legacy v2 signature family is disabled", perrors.ErrProtocolViolation)
		}
		return "v2", nil
	}
	return "v3", nil
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func decimalComponent(mac []byte) string {
	idx := len(mac) - 4
	raw := binary.BigEndian.Uint32(mac[idx : idx+4])
	masked := raw & 0x7FFFFFFF
	v := uint64(masked) % decimalModulus
	return fmt.Sprintf("%0*d", decimalWidth, v)
}
