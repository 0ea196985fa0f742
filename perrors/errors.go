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

// Package perrors defines the small, kind-based error taxonomy shared by
// every package in the cryptographic core.
package perrors

import "errors"

// Sentinel errors, one per failure kind. Callers should compare with
// errors.Is; every exported operation that fails wraps one of these with
// %w so the kind survives additional context.
var (
	// ErrInvalidInput marks a malformed call: wrong length, wrong format,
	// unknown version. Recovered locally by rejecting the call.
	ErrInvalidInput = errors.New("powerauth: invalid input")

	// ErrInvalidKey marks key material rejected by a primitive. Fatal for
	// the operation; propagated to the caller.
	ErrInvalidKey = errors.New("powerauth: invalid key")

	// ErrCryptoFailure marks a failure reported by the underlying provider
	// (e.g. bad padding). Surfaced without distinguishing cause, to avoid
	// padding-oracle-style leaks.
	ErrCryptoFailure = errors.New("powerauth: crypto operation failed")

	// ErrMacMismatch marks a MAC verification failure.
	ErrMacMismatch = errors.New("powerauth: mac mismatch")

	// ErrSignatureMismatch marks a signature verification failure.
	ErrSignatureMismatch = errors.New("powerauth: signature mismatch")

	// ErrRngExhaustion marks exhaustion of the bounded retry budget for
	// drawing distinct random values.
	ErrRngExhaustion = errors.New("powerauth: rng exhausted")

	// ErrProtocolViolation marks a structural handshake or state-machine
	// violation (e.g. wrong magic, illegal state transition).
	ErrProtocolViolation = errors.New("powerauth: protocol violation")
)
