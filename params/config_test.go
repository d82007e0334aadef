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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultChainConfig(t *testing.T) {
	c := DefaultChainConfig
	require.NoError(t, c.CheckConfigForkOrder())
	assert.Equal(t, int64(0x54), c.ChainID.Int64())
	assert.Equal(t, uint64(8504), c.NetworkID)
	assert.True(t, c.IsEIP155(big.NewInt(0)))
	assert.Contains(t, c.Description(), "signchecker")
}

func TestForkActivation(t *testing.T) {
	c := MainnetChainConfig
	assert.False(t, c.IsHomestead(big.NewInt(1_149_999)))
	assert.True(t, c.IsHomestead(big.NewInt(1_150_000)))
	assert.False(t, c.IsEIP155(big.NewInt(2_674_999)))
	assert.True(t, c.IsEIP155(big.NewInt(2_675_000)))
	assert.False(t, c.IsEIP155(nil))
}

func TestCheckConfigForkOrder(t *testing.T) {
	bad := &ChainConfig{ChainID: big.NewInt(1), HomesteadBlock: big.NewInt(10), EIP155Block: big.NewInt(5)}
	assert.Error(t, bad.CheckConfigForkOrder())
	assert.Error(t, (&ChainConfig{}).CheckConfigForkOrder())
}
