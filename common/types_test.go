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

package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytesToAddressCrop(t *testing.T) {
	a := BytesToAddress(FromHex("0x01" + "35353535353535353535353535353535353535353535"[:40]))
	assert.Equal(t, "0x3535353535353535353535353535353535353535", a.Hex())
}

func TestHexToAddress(t *testing.T) {
	a := HexToAddress("0x71562b71999873DB5b286dF957af199Ec94617F7")
	assert.Equal(t, "0x71562b71999873db5b286df957af199ec94617f7", a.Hex())
	assert.True(t, IsHexAddress("71562b71999873db5b286df957af199ec94617f7"))
	assert.False(t, IsHexAddress("0x71562b"))
}

func TestHashJSON(t *testing.T) {
	h := HexToHash("0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788")
	enc, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `"0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788"`, string(enc))

	var dec Hash
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.Equal(t, h, dec)

	assert.Error(t, json.Unmarshal([]byte(`"0x1234"`), &dec))
}

func TestLeftPadBytes(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 1, 2}, LeftPadBytes([]byte{1, 2}, 4))
	assert.Equal(t, []byte{1, 2}, LeftPadBytes([]byte{1, 2}, 1))
	assert.Equal(t, []byte{1, 0}, TrimLeftZeroes([]byte{0, 0, 1, 0}))
}
