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

// Package token computes and verifies the short-lived authentication token
// digest used once an activation has established a transport key. It also
// mints UUIDv4 token ids and keeps issued (id, secret) pairs in an in-memory
// Store; the token secret is supplied by the caller, and encrypting the pair
// under the transport key is left to the collaborator.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wultra/powerauth-crypto-core/internal/logger"
	"github.com/wultra/powerauth-crypto-core/internal/metrics"
	"github.com/wultra/powerauth-crypto-core/perrors"
	"github.com/wultra/powerauth-crypto-core/primitives"
)

// nonceSeparator is the single ASCII byte placed between nonce and
// timestamp before MACing.
const nonceSeparator = 0x26

// GenerateTokenID returns a fresh UUIDv4 token identifier.
func GenerateTokenID() string {
	return uuid.New().String()
}

// GenerateNonce returns 16 cryptographically random bytes.
func GenerateNonce() ([]byte, error) {
	return primitives.RandomBytes(16)
}

// GenerateTimestamp renders the current Unix time in milliseconds as ASCII
// decimal bytes.
func GenerateTimestamp(now time.Time) []byte {
	return []byte(strconv.FormatInt(now.UnixMilli(), 10))
}

// ComputeDigest returns HMAC-SHA256(tokenSecret, nonce || 0x26 || timestamp).
func ComputeDigest(nonce, timestamp, tokenSecret []byte) ([]byte, error) {
	if len(nonce) != 16 {
		return nil, fmt.Errorf("%w: token nonce must be 16 bytes, got %d", perrors.ErrInvalidInput, len(nonce))
	}
	if len(timestamp) == 0 {
		return nil, fmt.Errorf("%w: token timestamp must not be empty", perrors.ErrInvalidInput)
	}

	data := make([]byte, 0, len(nonce)+1+len(timestamp))
	data = append(data, nonce...)
	data = append(data, nonceSeparator)
	data = append(data, timestamp...)

	mac := hmac.New(sha256.New, tokenSecret)
	mac.Write(data)
	digest := mac.Sum(nil)
	metrics.ObserveTokenDigest("compute", "ok")
	return digest, nil
}

// VerifyDigest recomputes the digest and compares it to candidate in
// constant time.
func VerifyDigest(nonce, timestamp, tokenSecret, candidate []byte) (bool, error) {
	expected, err := ComputeDigest(nonce, timestamp, tokenSecret)
	if err != nil {
		metrics.ObserveTokenDigest("verify", "error")
		return false, err
	}
	if len(expected) != len(candidate) {
		metrics.ObserveTokenDigest("verify", "mismatch")
		return false, nil
	}
	ok := subtle.ConstantTimeCompare(expected, candidate) == 1
	result := "mismatch"
	if ok {
		result = "match"
	}
	metrics.ObserveTokenDigest("verify", result)
	return ok, nil
}

// Store is a minimal in-memory keeper of issued (token_id, token_secret)
// pairs, standing in for the collaborator's token-store persistence
// referenced by the activation ceremony's §4.5 handoff. It logs issuance
// and destruction through the package logger the same way the activation
// ceremony logs its own state transitions.
type Store struct {
	mu     sync.Mutex
	tokens map[string][]byte
}

// NewStore returns an empty token store.
func NewStore() *Store {
	return &Store{tokens: make(map[string][]byte)}
}

// Issue mints a fresh token id for secret, records the pair, and logs the
// issuance.
func (s *Store) Issue(secret []byte) string {
	id := GenerateTokenID()
	s.mu.Lock()
	s.tokens[id] = secret
	s.mu.Unlock()
	logger.Info("token issued", logger.String("token_id", id))
	return id
}

// Secret looks up the secret for id, reporting whether it is known.
func (s *Store) Secret(id string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	secret, ok := s.tokens[id]
	return secret, ok
}

// Destroy removes id from the store, e.g. on activation removal, and logs
// the destruction if the id was present.
func (s *Store) Destroy(id string) {
	s.mu.Lock()
	_, existed := s.tokens[id]
	delete(s.tokens, id)
	s.mu.Unlock()
	if existed {
		logger.Info("token destroyed", logger.String("token_id", id))
	}
}
