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

// Package activation implements the device-to-server activation ceremony
// as an explicit state machine on both sides, and the key/counter
// derivation that concludes it. Failure at any step is fatal for the
// attempt: there is no partial-success state to resume from.
package activation

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"fmt"

	"github.com/wultra/powerauth-crypto-core/counter"
	"github.com/wultra/powerauth-crypto-core/internal/logger"
	"github.com/wultra/powerauth-crypto-core/internal/metrics"
	"github.com/wultra/powerauth-crypto-core/keys"
	"github.com/wultra/powerauth-crypto-core/perrors"
	"github.com/wultra/powerauth-crypto-core/primitives"
)

// ClientState is one of the four states a device-side activation can be in.
type ClientState int

const (
	ClientIdle ClientState = iota
	ClientStarted
	ClientKeyExchanged
	ClientActive
)

func (s ClientState) String() string {
	switch s {
	case ClientIdle:
		return "Idle"
	case ClientStarted:
		return "Started"
	case ClientKeyExchanged:
		return "KeyExchanged"
	case ClientActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// Transition moves from s to next, rejecting any jump that is not the
// single legal next step in Idle -> Started -> KeyExchanged -> Active.
func (s ClientState) Transition(next ClientState) (ClientState, error) {
	legal := map[ClientState]ClientState{
		ClientIdle:         ClientStarted,
		ClientStarted:      ClientKeyExchanged,
		ClientKeyExchanged: ClientActive,
	}
	want, ok := legal[s]
	if !ok || want != next {
		metrics.ObserveActivationTransition("client", "rejected")
		return s, fmt.Errorf("%w: illegal client transition %s -> %s", perrors.ErrProtocolViolation, s, next)
	}
	metrics.ObserveActivationTransition("client", "accepted")
	logger.Info("activation client state transition", logger.String("from", s.String()), logger.String("to", next.String()))
	return next, nil
}

// ServerState is one of the five states a server-side activation record
// can be in.
type ServerState int

const (
	ServerCreated ServerState = iota
	ServerOtpUsed
	ServerActive
	ServerBlocked
	ServerRemoved
)

func (s ServerState) String() string {
	switch s {
	case ServerCreated:
		return "Created"
	case ServerOtpUsed:
		return "OtpUsed"
	case ServerActive:
		return "Active"
	case ServerBlocked:
		return "Blocked"
	case ServerRemoved:
		return "Removed"
	default:
		return "Unknown"
	}
}

// Transition moves from s to next. From Created and OtpUsed the only
// forward step is the next state in the ceremony; Active may move to
// Blocked or Removed; Blocked may be reactivated or Removed; Removed is
// terminal.
func (s ServerState) Transition(next ServerState) (ServerState, error) {
	legal := map[ServerState][]ServerState{
		ServerCreated: {ServerOtpUsed},
		ServerOtpUsed: {ServerActive},
		ServerActive:  {ServerBlocked, ServerRemoved},
		ServerBlocked: {ServerActive, ServerRemoved},
	}
	for _, allowed := range legal[s] {
		if allowed == next {
			metrics.ObserveActivationTransition("server", "accepted")
			logger.Info("activation server state transition", logger.String("from", s.String()), logger.String("to", next.String()))
			return next, nil
		}
	}
	metrics.ObserveActivationTransition("server", "rejected")
	return s, fmt.Errorf("%w: illegal server transition %s -> %s", perrors.ErrProtocolViolation, s, next)
}

// DeviceHello is the first ceremony message: the device's ephemeral ECDH
// public key plus the activation OTP it obtained out of band.
type DeviceHello struct {
	DevicePublicKey []byte
	OTP             string
}

// ServerHello is the server's reply: its ephemeral ECDH public key and an
// ECDSA signature over DevicePublicKey||ServerPublicKey made with the
// server's long-term master private key.
type ServerHello struct {
	ServerPublicKey []byte
	Signature       []byte
}

// SignHello builds a ServerHello for devicePubBytes from the caller-supplied
// server ECDH private key, signing devicePubBytes||serverPub with masterPriv.
func SignHello(devicePubBytes []byte, serverECDHPriv *ecdh.PrivateKey, masterPriv *ecdsa.PrivateKey) (ServerHello, error) {
	serverPubBytes := serverECDHPriv.PublicKey().Bytes()
	msg := append(append([]byte{}, devicePubBytes...), serverPubBytes...)
	sig, err := primitives.ECDSASignSHA256(masterPriv, msg)
	if err != nil {
		logger.Warn("activation server hello signing failed", logger.Error(err))
		return ServerHello{}, err
	}
	logger.Debug("activation server hello signed")
	return ServerHello{ServerPublicKey: serverPubBytes, Signature: sig}, nil
}

// VerifyHello checks the server's signature over devicePubBytes||hello's
// public key against the provisioned master public key, authenticating
// the server before the device trusts the ECDH exchange.
func VerifyHello(devicePubBytes []byte, hello ServerHello, masterPub *ecdsa.PublicKey) error {
	msg := append(append([]byte{}, devicePubBytes...), hello.ServerPublicKey...)
	if !primitives.ECDSAVerifySHA256(masterPub, msg, hello.Signature) {
		logger.Warn("activation server hello signature verification failed")
		return fmt.Errorf("%w: server hello signature verification failed", perrors.ErrSignatureMismatch)
	}
	logger.Debug("activation server hello signature verified")
	return nil
}

// Result is the full set of derived key/counter material produced by a
// completed activation, identical on both sides given the same ECDH
// exchange and v3 counter seed.
type Result struct {
	MasterSecret keys.MasterSecret
	NamedKeys    keys.NamedKeys
	CounterV2    counter.Counter
	CounterV3    counter.Counter
}

// Complete derives MS and the named-key hierarchy from a local ECDH
// private key and the peer's public key bytes, initializing a fresh v2
// counter at zero and a v3 counter seeded by v3Seed (the 16 random bytes
// agreed during the ceremony and transmitted under SK_TRANSPORT).
func Complete(priv *ecdh.PrivateKey, peerPubBytes []byte, v3Seed [16]byte) (Result, error) {
	var res Result

	ms, err := keys.DeriveMasterSecret(priv, peerPubBytes)
	if err != nil {
		logger.Warn("activation master secret derivation failed", logger.Error(err))
		return res, err
	}
	nk, err := keys.DeriveNamedKeys(ms)
	if err != nil {
		logger.Warn("activation named-key derivation failed", logger.Error(err))
		return res, err
	}

	res.MasterSecret = ms
	res.NamedKeys = nk
	res.CounterV2 = counter.NewV2()
	res.CounterV3 = counter.NewV3(v3Seed)
	logger.Info("activation ceremony completed, named keys derived")
	return res, nil
}

// GenerateV3Seed draws the 16 random bytes used to seed the shared v3
// hash-chain counter at activation time.
func GenerateV3Seed() ([16]byte, error) {
	var seed [16]byte
	b, err := primitives.RandomBytes(16)
	if err != nil {
		return seed, err
	}
	copy(seed[:], b)
	return seed, nil
}
