// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package ethconfig contains the configuration of the signchecker service.
package ethconfig

import (
	"fmt"
	"math/big"
	"time"

	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/internal/bridge"
	"github.com/biiot/signchecker/params"
)

// Defaults contains default settings for use on the signchecker deployment.
var Defaults = Config{
	NetworkId:           params.DefaultNetworkID,
	ChainID:             big.NewInt(params.DefaultChainID),
	DatabaseCache:       64,
	DatabaseHandles:     128,
	PreimageMode:        types.StandardPreimage.String(),
	RPCTxFeeCap:         params.RPCTxFeeCap,
	AllowUnprotectedTxs: true,
	Bridge: BridgeConfig{
		Timeout: bridge.DefaultTimeout,
	},
}

// Config contains configuration options of the transaction service.
type Config struct {
	// NetworkId is reported by net_version.
	NetworkId uint64

	// ChainID is the chain transactions are signed for and checked against.
	ChainID *big.Int `toml:",omitempty"`

	// Journal database options
	DatabaseCache   int
	DatabaseHandles int `toml:"-"`

	// SignerKeyFile is a hex encoded secp256k1 key used by eth_signTransaction
	// and eth_sendTransaction. Without it no account is exposed.
	SignerKeyFile string `toml:",omitempty"`

	// PreimageMode is the hashing rule senders are recovered with:
	// "standard" or "observed".
	PreimageMode string

	// StrictSender rejects raw transactions whose sender cannot be recovered
	// instead of journaling them without one.
	StrictSender bool `toml:",omitempty"`

	// TxDumpDir receives one text file per accepted raw transaction. Empty
	// disables dumping.
	TxDumpDir string `toml:",omitempty"`

	// RPCTxFeeCap is the global transaction fee (price * gaslimit) cap for
	// send-transaction variants. The unit is ether.
	RPCTxFeeCap float64

	// AllowUnprotectedTxs allows non EIP-155 protected transactions to be send over RPC.
	AllowUnprotectedTxs bool

	// Bridge forwards eth_call to a remote execution engine.
	Bridge BridgeConfig
}

// BridgeConfig describes the remote execution engine.
type BridgeConfig struct {
	Endpoint  string        `toml:",omitempty"` // ws:// or wss:// url, empty disables forwarding
	JWTSecret string        `toml:",omitempty"` // path to the hex secret shared with the engine
	Timeout   time.Duration `toml:",omitempty"`
}

// ChainConfig derives the signing rules from the configured ids.
func (c *Config) ChainConfig() *params.ChainConfig {
	cfg := *params.DefaultChainConfig
	if c.ChainID != nil {
		cfg.ChainID = new(big.Int).Set(c.ChainID)
	}
	if c.NetworkId != 0 {
		cfg.NetworkID = c.NetworkId
	}
	return &cfg
}

// Sanitize checks the option values and returns the parsed preimage mode.
func (c *Config) Sanitize() (types.PreimageMode, error) {
	mode, err := types.ParsePreimageMode(c.PreimageMode)
	if err != nil {
		return 0, err
	}
	if c.ChainID != nil && c.ChainID.Sign() <= 0 {
		return 0, fmt.Errorf("invalid chain id %v", c.ChainID)
	}
	if c.RPCTxFeeCap < 0 {
		return 0, fmt.Errorf("invalid tx fee cap %v", c.RPCTxFeeCap)
	}
	return mode, nil
}
