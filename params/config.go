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

package params

import (
	"fmt"
	"math/big"
)

// Network constants of the signchecker deployment. Wallets see these through
// eth_chainId, net_version and eth_protocolVersion.
const (
	DefaultChainID   = 84   // 0x54
	DefaultNetworkID = 8504 // net_version
	ProtocolVersion  = 54   // eth_protocolVersion
)

// NetworkNames are user friendly names to use in the chain spec banner.
var NetworkNames = map[string]string{
	DefaultChainConfig.ChainID.String(): "signchecker",
	MainnetChainConfig.ChainID.String(): "mainnet",
}

var (
	// DefaultChainConfig is the chain configuration served when no override is given.
	DefaultChainConfig = &ChainConfig{
		ChainID:        big.NewInt(DefaultChainID),
		NetworkID:      DefaultNetworkID,
		HomesteadBlock: big.NewInt(0),
		EIP155Block:    big.NewInt(0),
	}

	// MainnetChainConfig is the chain parameters to run a node on the main network.
	MainnetChainConfig = &ChainConfig{
		ChainID:        big.NewInt(1),
		NetworkID:      1,
		HomesteadBlock: big.NewInt(1_150_000),
		EIP155Block:    big.NewInt(2_675_000),
	}
)

// ChainConfig is the core config which determines the signing rules. It is
// fixed at process start and handed explicitly to the signers and the API.
type ChainConfig struct {
	ChainID   *big.Int `json:"chainId"` // chainId identifies the current chain and is used for replay protection
	NetworkID uint64   `json:"networkId"`

	HomesteadBlock *big.Int `json:"homesteadBlock,omitempty"` // Homestead switch block (nil = no fork, 0 = already homestead)
	EIP155Block    *big.Int `json:"eip155Block,omitempty"`    // EIP155 HF block
}

// Description returns a human-readable description of ChainConfig.
func (c *ChainConfig) Description() string {
	network := NetworkNames[c.ChainID.String()]
	if network == "" {
		network = "unknown"
	}
	banner := fmt.Sprintf("Chain ID:   %v (%s)\n", c.ChainID, network)
	banner += fmt.Sprintf("Network ID: %d\n", c.NetworkID)
	banner += fmt.Sprintf(" - Homestead: #%-8v\n", c.HomesteadBlock)
	banner += fmt.Sprintf(" - EIP-155:   #%-8v\n", c.EIP155Block)
	return banner
}

// IsHomestead returns whether num is either equal to the homestead block or greater.
func (c *ChainConfig) IsHomestead(num *big.Int) bool {
	return isBlockForked(c.HomesteadBlock, num)
}

// IsEIP155 returns whether num is either equal to the EIP155 fork block or greater.
func (c *ChainConfig) IsEIP155(num *big.Int) bool {
	return isBlockForked(c.EIP155Block, num)
}

// CheckConfigForkOrder checks that EIP-155 is not scheduled before homestead
// and that a chain id is present.
func (c *ChainConfig) CheckConfigForkOrder() error {
	if c.ChainID == nil || c.ChainID.Sign() <= 0 {
		return fmt.Errorf("invalid chain id %v", c.ChainID)
	}
	if c.EIP155Block != nil && c.HomesteadBlock != nil && c.EIP155Block.Cmp(c.HomesteadBlock) < 0 {
		return fmt.Errorf("unsupported fork ordering: eip155 enabled at block %v, but homestead enabled at block %v",
			c.EIP155Block, c.HomesteadBlock)
	}
	return nil
}

// isBlockForked returns whether a fork scheduled at block s is active at the
// given head block.
func isBlockForked(s, head *big.Int) bool {
	if s == nil || head == nil {
		return false
	}
	return s.Cmp(head) <= 0
}
