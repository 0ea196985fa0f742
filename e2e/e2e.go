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

// Package e2e implements the non-personalized (application-scoped, not
// activation-scoped) end-to-end encryptor: encrypt-then-MAC under keys
// derived per-message from a long-lived session secret, distinct ad-hoc
// and MAC indices, and a fresh nonce used as the AES-CBC IV.
package e2e

import (
	"bytes"
	"crypto/hmac"
	"fmt"

	"github.com/wultra/powerauth-crypto-core/internal/logger"
	"github.com/wultra/powerauth-crypto-core/internal/metrics"
	"github.com/wultra/powerauth-crypto-core/keys"
	"github.com/wultra/powerauth-crypto-core/perrors"
	"github.com/wultra/powerauth-crypto-core/primitives"
)

// maxIndexRetries bounds the retry loop drawing distinct ad-hoc/MAC
// indices, defending against a stuck RNG.
const maxIndexRetries = 1000

// Message is the full non-personalized message on the wire. Binary fields
// are Base64-standard encoded by the collaborator; this package deals only
// in raw bytes.
type Message struct {
	ApplicationKey          []byte
	SessionIndex            [16]byte
	SessionRelatedSecretKey [16]byte
	EphemeralPublicKey      []byte
	AdHocIndex              [16]byte
	MacIndex                [16]byte
	Nonce                   [16]byte
	EncryptedData           []byte
	MAC                     []byte
}

// Encrypt produces a Message carrying originalData encrypted under keys
// derived from sessionRelatedSecretKey, with fresh ad-hoc/MAC indices and
// nonce drawn for this call.
func Encrypt(applicationKey []byte, sessionIndex, sessionRelatedSecretKey [16]byte, ephemeralPublicKey, originalData []byte) (Message, error) {
	var msg Message

	adHocIndex, macIndex, err := distinctIndices()
	if err != nil {
		metrics.ObserveE2E("encrypt", "error")
		return msg, err
	}

	nonce, err := primitives.RandomBytes(16)
	if err != nil {
		metrics.ObserveE2E("encrypt", "error")
		return msg, err
	}
	var nonceArr [16]byte
	copy(nonceArr[:], nonce)

	encKey, macKey, err := deriveMessageKeys(sessionRelatedSecretKey, adHocIndex, macIndex)
	if err != nil {
		metrics.ObserveE2E("encrypt", "error")
		return msg, err
	}

	encryptedData, err := primitives.AESCBCEncrypt(originalData, nonce, encKey[:], primitives.PKCS7)
	if err != nil {
		metrics.ObserveE2E("encrypt", "error")
		return msg, err
	}

	mac := primitives.HMACSHA256(macKey[:], encryptedData)

	msg.ApplicationKey = applicationKey
	msg.SessionIndex = sessionIndex
	msg.SessionRelatedSecretKey = sessionRelatedSecretKey
	msg.EphemeralPublicKey = ephemeralPublicKey
	msg.AdHocIndex = adHocIndex
	msg.MacIndex = macIndex
	msg.Nonce = nonceArr
	msg.EncryptedData = encryptedData
	msg.MAC = mac
	metrics.ObserveE2E("encrypt", "ok")
	logger.Debug("non-personalized message encrypted", logger.Int("plaintext_len", len(originalData)))
	return msg, nil
}

// Decrypt validates and decrypts msg, deriving the same per-message keys
// from sessionRelatedSecretKey. Any structural check failure or MAC
// mismatch is reported as perrors.ErrCryptoFailure or perrors.ErrMacMismatch
// without distinguishing further, to avoid leaking which check failed.
func Decrypt(msg Message) ([]byte, error) {
	if msg.AdHocIndex == msg.MacIndex {
		metrics.ObserveE2E("decrypt", "error")
		return nil, fmt.Errorf("%w: ad-hoc index equals mac index", perrors.ErrCryptoFailure)
	}
	if len(msg.Nonce) != 16 {
		metrics.ObserveE2E("decrypt", "error")
		return nil, fmt.Errorf("%w: nonce must be 16 bytes", perrors.ErrCryptoFailure)
	}

	encKey, macKey, err := deriveMessageKeys(msg.SessionRelatedSecretKey, msg.AdHocIndex, msg.MacIndex)
	if err != nil {
		metrics.ObserveE2E("decrypt", "error")
		return nil, err
	}

	expectedMAC := primitives.HMACSHA256(macKey[:], msg.EncryptedData)
	if !hmac.Equal(expectedMAC, msg.MAC) {
		metrics.ObserveE2E("decrypt", "mac_mismatch")
		logger.Warn("non-personalized message mac mismatch")
		return nil, fmt.Errorf("%w: non-personalized message mac mismatch", perrors.ErrMacMismatch)
	}

	plain, err := primitives.AESCBCDecrypt(msg.EncryptedData, msg.Nonce[:], encKey[:], primitives.PKCS7)
	if err != nil {
		metrics.ObserveE2E("decrypt", "error")
		return nil, fmt.Errorf("%w: %v", perrors.ErrCryptoFailure, err)
	}
	metrics.ObserveE2E("decrypt", "ok")
	return plain, nil
}

func deriveMessageKeys(sessionRelatedSecretKey, adHocIndex, macIndex [16]byte) (encKey, macKey [16]byte, err error) {
	var ms keys.MasterSecret
	copy(ms[:], sessionRelatedSecretKey[:])

	encKey, err = keys.DeriveHmac(ms, adHocIndex[:])
	if err != nil {
		return encKey, macKey, err
	}
	macKey, err = keys.DeriveHmac(ms, macIndex[:])
	if err != nil {
		return encKey, macKey, err
	}
	return encKey, macKey, nil
}

func distinctIndices() (adHocIndex, macIndex [16]byte, err error) {
	for attempt := 0; attempt < maxIndexRetries; attempt++ {
		a, err := primitives.RandomBytes(16)
		if err != nil {
			return adHocIndex, macIndex, err
		}
		b, err := primitives.RandomBytes(16)
		if err != nil {
			return adHocIndex, macIndex, err
		}
		if bytes.Equal(a, b) {
			continue
		}
		copy(adHocIndex[:], a)
		copy(macIndex[:], b)
		return adHocIndex, macIndex, nil
	}
	metrics.IncRngRetryExhaustion()
	logger.Warn("rng retry budget exhausted drawing distinct indices", logger.Int("attempts", maxIndexRetries))
	return adHocIndex, macIndex, fmt.Errorf("%w: could not draw distinct ad-hoc/mac indices after %d attempts", perrors.ErrRngExhaustion, maxIndexRetries)
}
