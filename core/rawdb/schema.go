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

// Package rawdb contains a collection of low level database accessors.
package rawdb

import (
	"encoding/binary"

	"github.com/biiot/signchecker/common"
)

// The fields below define the low level database schema prefixing.
var (
	// databaseVersionKey tracks the current database version.
	databaseVersionKey = []byte("DatabaseVersion")

	// journalCountKey tracks the sequence number of the next journal entry.
	journalCountKey = []byte("JournalCount")

	// chainConfigKey stores the chain config the journal was written under.
	chainConfigKey = []byte("ChainConfig")

	// uncleanShutdownKey tracks the start-up times of runs that did not shut down cleanly.
	uncleanShutdownKey = []byte("unclean-shutdown")

	// Data item prefixes (use single byte to avoid mixing data types).
	rawTxPrefix    = []byte("t") // rawTxPrefix + hash -> journal entry (RLP)
	txSeqPrefix    = []byte("n") // txSeqPrefix + seq (uint64 big endian) -> hash
	txSenderPrefix = []byte("s") // txSenderPrefix + sender + hash -> seq (uint64 big endian)
)

// DatabaseVersion is the version of the journal layout written by this code.
const DatabaseVersion = 1

// encodeSeq encodes a journal sequence number as big endian uint64
func encodeSeq(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// rawTxKey = rawTxPrefix + hash
func rawTxKey(hash common.Hash) []byte {
	return append(rawTxPrefix, hash.Bytes()...)
}

// txSeqKey = txSeqPrefix + seq (uint64 big endian)
func txSeqKey(seq uint64) []byte {
	return append(txSeqPrefix, encodeSeq(seq)...)
}

// txSenderKey = txSenderPrefix + sender + hash
func txSenderKey(sender common.Address, hash common.Hash) []byte {
	key := append(txSenderPrefix, sender.Bytes()...)
	return append(key, hash.Bytes()...)
}
