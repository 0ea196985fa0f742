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

// Package keys derives the hierarchy of named symmetric keys from the
// ECDH shared secret established during activation. Every derivation here
// is bit-reproducible: the same master secret and index always yield the
// same 16-byte key, on either side of the wire.
package keys

import (
	"crypto/ecdh"
	"encoding/binary"
	"fmt"

	"github.com/wultra/powerauth-crypto-core/perrors"
	"github.com/wultra/powerauth-crypto-core/primitives"
)

// Named-key indices, fixed by the wire contract.
const (
	IndexPossession uint64 = 1
	IndexKnowledge  uint64 = 2
	IndexBiometry   uint64 = 3
	IndexTransport  uint64 = 1000
	IndexVault      uint64 = 2000
)

// MasterSecret is the 16-byte MS derived once at activation. Never
// transmitted; discard after deriving the named keys if not needed again.
type MasterSecret [16]byte

// DeriveMasterSecret computes MS = xor_fold_32_to_16(ECDH(priv, peerPub)).
func DeriveMasterSecret(priv *ecdh.PrivateKey, peerPubBytes []byte) (MasterSecret, error) {
	var ms MasterSecret
	shared, err := primitives.ECDHSecp256r1(priv, peerPubBytes)
	if err != nil {
		return ms, err
	}
	folded, err := primitives.XorFold32To16(shared)
	if err != nil {
		return ms, err
	}
	copy(ms[:], folded)
	return ms, nil
}

// Derive implements the AES-index KDF (§4.2): derive(MS, index) is the
// first 16 bytes of AES-CBC-Encrypt(0^8 || index_be, IV=0^16, key=MS,
// NoPadding) — equivalent to AES-ECB of a single block. Used for v2-style
// named keys and the transport/vault keys.
func Derive(ms MasterSecret, index uint64) ([16]byte, error) {
	var out [16]byte

	var block [16]byte
	binary.BigEndian.PutUint64(block[8:], index)

	iv := make([]byte, 16)
	ct, err := primitives.AESCBCEncrypt(block[:], iv, ms[:], primitives.NoPadding)
	if err != nil {
		return out, fmt.Errorf("%w: derive(MS,%d): %v", perrors.ErrCryptoFailure, index, err)
	}
	copy(out[:], ct[:16])
	return out, nil
}

// DeriveHmac implements the HMAC-index KDF (§4.2), used by the v3 protocol
// family and the non-personalized encryptor: deriveHmac(MS, indexBytes) =
// xor_fold_32_to_16(HMAC-SHA256(MS, indexBytes)).
func DeriveHmac(ms MasterSecret, indexBytes []byte) ([16]byte, error) {
	var out [16]byte
	h := primitives.HMACSHA256(ms[:], indexBytes)
	folded, err := primitives.XorFold32To16(h)
	if err != nil {
		return out, err
	}
	copy(out[:], folded)
	return out, nil
}

// NamedKeys holds the full set of symmetric keys derived from one master
// secret at activation time.
type NamedKeys struct {
	Possession [16]byte
	Knowledge  [16]byte
	Biometry   [16]byte
	Transport  [16]byte
	Vault      [16]byte
}

// DeriveNamedKeys derives SK_POSSESSION, SK_KNOWLEDGE, SK_BIOMETRY,
// SK_TRANSPORT and SK_VAULT from MS via the fixed indices in §4.2.
func DeriveNamedKeys(ms MasterSecret) (NamedKeys, error) {
	var nk NamedKeys
	var err error

	if nk.Possession, err = Derive(ms, IndexPossession); err != nil {
		return nk, err
	}
	if nk.Knowledge, err = Derive(ms, IndexKnowledge); err != nil {
		return nk, err
	}
	if nk.Biometry, err = Derive(ms, IndexBiometry); err != nil {
		return nk, err
	}
	if nk.Transport, err = Derive(ms, IndexTransport); err != nil {
		return nk, err
	}
	if nk.Vault, err = Derive(ms, IndexVault); err != nil {
		return nk, err
	}
	return nk, nil
}

// Factors returns the ordered subset of signature keys for the given
// number of authentication factors (1, 2 or 3), in the fixed order
// possession, knowledge, biometry required by the signature engine.
func (nk NamedKeys) Factors(count int) ([][]byte, error) {
	switch count {
	case 1:
		return [][]byte{nk.Possession[:]}, nil
	case 2:
		return [][]byte{nk.Possession[:], nk.Knowledge[:]}, nil
	case 3:
		return [][]byte{nk.Possession[:], nk.Knowledge[:], nk.Biometry[:]}, nil
	default:
		return nil, fmt.Errorf("%w: factor count must be 1, 2 or 3, got %d", perrors.ErrInvalidInput, count)
	}
}
