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
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/biiot/signchecker/ethdb"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/params"
	"github.com/biiot/signchecker/rlp"
)

// ReadDatabaseVersion retrieves the version number of the database.
func ReadDatabaseVersion(db ethdb.KeyValueReader) *uint64 {
	enc, _ := db.Get(databaseVersionKey)
	if len(enc) == 0 {
		return nil
	}
	version, rest, err := rlp.SplitUint64(enc)
	if err != nil || len(rest) != 0 {
		return nil
	}
	return &version
}

// WriteDatabaseVersion stores the version number of the database
func WriteDatabaseVersion(db ethdb.KeyValueWriter, version uint64) {
	if err := db.Put(databaseVersionKey, rlp.AppendUint64(nil, version)); err != nil {
		log.Crit("Failed to store the database version", "err", err)
	}
}

// ReadChainConfig retrieves the chain settings the journal was written under.
func ReadChainConfig(db ethdb.KeyValueReader) *params.ChainConfig {
	data, _ := db.Get(chainConfigKey)
	if len(data) == 0 {
		return nil
	}
	var config params.ChainConfig
	if err := json.Unmarshal(data, &config); err != nil {
		log.Error("Invalid chain config JSON", "err", err)
		return nil
	}
	return &config
}

// WriteChainConfig writes the chain config settings to the database.
func WriteChainConfig(db ethdb.KeyValueWriter, cfg *params.ChainConfig) {
	if cfg == nil {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		log.Crit("Failed to JSON encode chain config", "err", err)
	}
	if err := db.Put(chainConfigKey, data); err != nil {
		log.Crit("Failed to store chain config", "err", err)
	}
}

// crashesToKeep is the number of unclean shutdown markers retained.
const crashesToKeep = 10

func readUncleanShutdowns(db ethdb.KeyValueReader) []uint64 {
	data, _ := db.Get(uncleanShutdownKey)
	if len(data)%8 != 0 {
		log.Warn("Discarding malformed unclean shutdown markers", "len", len(data))
		return nil
	}
	markers := make([]uint64, 0, len(data)/8)
	for i := 0; i < len(data); i += 8 {
		markers = append(markers, binary.BigEndian.Uint64(data[i:]))
	}
	return markers
}

func writeUncleanShutdowns(db ethdb.KeyValueWriter, markers []uint64) error {
	data := make([]byte, 0, 8*len(markers))
	for _, m := range markers {
		data = append(data, encodeSeq(m)...)
	}
	return db.Put(uncleanShutdownKey, data)
}

// PushUncleanShutdownMarker appends a new unclean shutdown marker and returns
// the previous markers along with the number of discarded ones.
func PushUncleanShutdownMarker(db ethdb.KeyValueStore) ([]uint64, uint64, error) {
	var (
		previous = readUncleanShutdowns(db)
		discards uint64
	)
	if len(previous) > crashesToKeep {
		discards = uint64(len(previous) - crashesToKeep)
		previous = previous[discards:]
	}
	markers := append(append([]uint64{}, previous...), uint64(time.Now().Unix()))
	if err := writeUncleanShutdowns(db, markers); err != nil {
		return nil, 0, err
	}
	return previous, discards, nil
}

// PopUncleanShutdownMarker removes the last unclean shutdown marker.
func PopUncleanShutdownMarker(db ethdb.KeyValueStore) {
	markers := readUncleanShutdowns(db)
	if len(markers) == 0 {
		return
	}
	if err := writeUncleanShutdowns(db, markers[:len(markers)-1]); err != nil {
		log.Error("Failed to clear unclean-shutdown marker", "err", err)
	}
}

// UpdateUncleanShutdownMarker updates the last marker's timestamp to now.
func UpdateUncleanShutdownMarker(db ethdb.KeyValueStore) {
	markers := readUncleanShutdowns(db)
	if len(markers) == 0 {
		log.Warn("No unclean shutdown marker to update")
		return
	}
	markers[len(markers)-1] = uint64(time.Now().Unix())
	if err := writeUncleanShutdowns(db, markers); err != nil {
		log.Warn("Failed to write unclean-shutdown marker", "err", err)
	}
}
