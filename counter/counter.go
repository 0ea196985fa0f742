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

// Package counter models the two counter flavors that index signing keys:
// the legacy v2 monotonic 64-bit integer and the v3 rolling SHA-256 hash
// chain. A Counter is a small immutable value; advancing it returns a new
// value rather than mutating in place, so callers control persistence and
// serialize advancement themselves.
package counter

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/wultra/powerauth-crypto-core/internal/logger"
	"github.com/wultra/powerauth-crypto-core/perrors"
	"github.com/wultra/powerauth-crypto-core/primitives"
)

// Kind distinguishes the two counter families.
type Kind int

const (
	// V2 is the legacy monotonic numeric counter.
	V2 Kind = iota
	// V3 is the current rolling hash-chain counter.
	V3
)

// Counter is a tagged union: exactly one of Numeric (for V2) or Chain (for
// V3) is meaningful, selected by Kind. A single signature function accepts
// either and branches only at Materialize.
type Counter struct {
	Kind    Kind
	Numeric uint64
	Chain   [16]byte
}

// NewV2 returns the initial v2 counter (CTR = 0), per the activation ceremony.
func NewV2() Counter {
	return Counter{Kind: V2}
}

// NewV3 returns a v3 counter seeded with the 16-byte value agreed during
// activation (transmitted under SK_TRANSPORT).
func NewV3(seed [16]byte) Counter {
	return Counter{Kind: V3, Chain: seed}
}

// FromMaterialized reconstructs a Counter of the given Kind from its
// materialized 16-byte form (the inverse of Materialize): for v2 it reads
// the big-endian CTR out of the trailing 8 bytes, for v3 it takes the
// chain value as-is. Used by collaborators that persist or transmit only
// the materialized form and need to advance it later.
func FromMaterialized(kind Kind, material [16]byte) Counter {
	switch kind {
	case V2:
		return Counter{Kind: V2, Numeric: binary.BigEndian.Uint64(material[8:16])}
	default:
		return Counter{Kind: V3, Chain: material}
	}
}

// Materialize produces the 16-byte counter material used by the signature
// engine: for v2, 8 zero bytes followed by the big-endian CTR; for v3, the
// chain value used directly.
func (c Counter) Materialize() [16]byte {
	var out [16]byte
	switch c.Kind {
	case V2:
		binary.BigEndian.PutUint64(out[8:], c.Numeric)
	case V3:
		out = c.Chain
	}
	return out
}

// Advance returns the next counter value: CTR+1 for v2, or
// truncate16(SHA-256(CTR_DATA)) for v3. Called only after the surrounding
// collaborator has confirmed the signature at the current value was
// accepted; the core does not track acceptance itself.
func (c Counter) Advance() Counter {
	switch c.Kind {
	case V2:
		next := Counter{Kind: V2, Numeric: c.Numeric + 1}
		logger.Debug("counter advanced", logger.String("family", "v2"), logger.Any("ctr", next.Numeric))
		return next
	case V3:
		digest := sha256.Sum256(c.Chain[:])
		var next [16]byte
		copy(next[:], digest[:16])
		result := Counter{Kind: V3, Chain: next}
		logger.Debug("counter advanced", logger.String("family", "v3"))
		return result
	default:
		return c
	}
}

// AdvanceBy advances the counter n steps in one call, equivalent to calling
// Advance n times. Used by the server's out-of-sync recovery to resynchronize
// after a device skips ahead.
func (c Counter) AdvanceBy(n uint64) Counter {
	cur := c
	for i := uint64(0); i < n; i++ {
		cur = cur.Advance()
	}
	return cur
}

// MaterializeAhead returns the next w materialized values after the current
// one (not including the current value), in order. Used by server-side
// verification look-ahead to tolerate a bounded number of missed or
// out-of-order client signatures without resynchronizing explicitly.
func MaterializeAhead(c Counter, w int) ([][16]byte, error) {
	if w < 0 {
		return nil, fmt.Errorf("%w: negative look-ahead window %d", perrors.ErrInvalidInput, w)
	}
	out := make([][16]byte, w)
	cur := c
	for i := 0; i < w; i++ {
		cur = cur.Advance()
		out[i] = cur.Materialize()
	}
	return out, nil
}

// truncate16 keeps the first 16 bytes of a SHA-256 digest, named after the
// protocol's own term for the v3 chain step.
func truncate16(b []byte) [16]byte {
	var out [16]byte
	copy(out[:], b[:16])
	return out
}

// HashChainStep exposes the single v3 chain step, truncate16(SHA-256(x)),
// directly — useful for building known-answer fixtures without going
// through the Counter wrapper.
func HashChainStep(x [16]byte) [16]byte {
	digest := primitives.SHA256(x[:])
	return truncate16(digest[:])
}
