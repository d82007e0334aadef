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

package rawdb

import (
	"testing"

	"github.com/biiot/signchecker/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainConfigStorage(t *testing.T) {
	db := NewMemoryDatabase()
	assert.Nil(t, ReadChainConfig(db))
	assert.Nil(t, ReadDatabaseVersion(db))

	WriteChainConfig(db, params.DefaultChainConfig)
	cfg := ReadChainConfig(db)
	require.NotNil(t, cfg)
	assert.Equal(t, params.DefaultChainConfig.ChainID.String(), cfg.ChainID.String())
	assert.Equal(t, params.DefaultChainConfig.NetworkID, cfg.NetworkID)

	WriteDatabaseVersion(db, 7)
	assert.Equal(t, uint64(7), *ReadDatabaseVersion(db))

	require.NoError(t, db.Put(databaseVersionKey, []byte{0x88}))
	assert.Nil(t, ReadDatabaseVersion(db), "truncated version")
}

func TestUncleanShutdownMarkers(t *testing.T) {
	db := NewMemoryDatabase()

	previous, discards, err := PushUncleanShutdownMarker(db)
	require.NoError(t, err)
	assert.Empty(t, previous)
	assert.Zero(t, discards)

	// A run that never popped its marker shows up on the next start.
	previous, _, err = PushUncleanShutdownMarker(db)
	require.NoError(t, err)
	assert.Len(t, previous, 1)

	PopUncleanShutdownMarker(db)
	assert.Len(t, readUncleanShutdowns(db), 1)
	UpdateUncleanShutdownMarker(db)
	assert.Len(t, readUncleanShutdowns(db), 1)

	for i := 0; i < crashesToKeep+2; i++ {
		_, _, err = PushUncleanShutdownMarker(db)
		require.NoError(t, err)
	}
	previous, discards, err = PushUncleanShutdownMarker(db)
	require.NoError(t, err)
	assert.Len(t, previous, crashesToKeep)
	assert.Equal(t, uint64(1), discards)
}
