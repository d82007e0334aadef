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
	"errors"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/ethdb"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/rlp"
)

// errInvalidEntry is returned for journal records that fail to decode.
var errInvalidEntry = errors.New("invalid journal entry")

// JournalEntry is a raw transaction as accepted over RPC, together with the
// sender it recovered to at the time.
type JournalEntry struct {
	Seq      uint64
	Hash     common.Hash
	Raw      []byte
	Sender   *common.Address // nil when recovery failed
	Received time.Time
}

// encodeJournalEntry packs an entry as the RLP list [seq, raw, sender, received].
// The hash is the key and not repeated.
func encodeJournalEntry(e *JournalEntry) []byte {
	var sender []byte
	if e.Sender != nil {
		sender = e.Sender.Bytes()
	}
	return rlp.EncodeBytesList(
		encodeSeq(e.Seq),
		e.Raw,
		sender,
		encodeSeq(uint64(e.Received.Unix())),
	)
}

func decodeJournalEntry(hash common.Hash, enc []byte) (*JournalEntry, error) {
	l, err := rlp.DecodeListN(enc, 4)
	if err != nil {
		return nil, err
	}
	e := &JournalEntry{Hash: hash}
	if e.Seq, err = l.Uint64(0); err != nil {
		return nil, err
	}
	raw, _ := l.At(1)
	e.Raw = common.CopyBytes(raw)

	switch sender, _ := l.At(2); len(sender) {
	case 0:
	case common.AddressLength:
		addr := common.BytesToAddress(sender)
		e.Sender = &addr
	default:
		return nil, errInvalidEntry
	}
	received, err := l.Uint64(3)
	if err != nil {
		return nil, err
	}
	e.Received = time.Unix(int64(received), 0)
	return e, nil
}

// ReadJournalCount retrieves the number of entries ever appended to the journal,
// which is also the sequence number of the next entry.
func ReadJournalCount(db ethdb.KeyValueReader) uint64 {
	data, _ := db.Get(journalCountKey)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteJournalEntry appends e to the journal. The sequence number is taken from
// the journal counter, so concurrent writers must be serialized by the caller.
// Writing a hash that is already journaled is a no-op.
func WriteJournalEntry(db ethdb.KeyValueStore, e *JournalEntry) error {
	if ok, _ := db.Has(rawTxKey(e.Hash)); ok {
		return nil
	}
	e.Seq = ReadJournalCount(db)

	batch := db.NewBatch()
	if err := batch.Put(rawTxKey(e.Hash), encodeJournalEntry(e)); err != nil {
		return err
	}
	if err := batch.Put(txSeqKey(e.Seq), e.Hash.Bytes()); err != nil {
		return err
	}
	if e.Sender != nil {
		if err := batch.Put(txSenderKey(*e.Sender, e.Hash), encodeSeq(e.Seq)); err != nil {
			return err
		}
	}
	if err := batch.Put(journalCountKey, encodeSeq(e.Seq+1)); err != nil {
		return err
	}
	return batch.Write()
}

// ReadJournalEntry retrieves the journaled entry of a transaction hash.
func ReadJournalEntry(db ethdb.KeyValueReader, hash common.Hash) *JournalEntry {
	data, _ := db.Get(rawTxKey(hash))
	if len(data) == 0 {
		return nil
	}
	e, err := decodeJournalEntry(hash, data)
	if err != nil {
		log.Error("Invalid journal entry", "hash", hash, "err", err)
		return nil
	}
	return e
}

// HasRawTransaction checks if the transaction with the given hash is journaled.
func HasRawTransaction(db ethdb.KeyValueReader, hash common.Hash) bool {
	if has, err := db.Has(rawTxKey(hash)); !has || err != nil {
		return false
	}
	return true
}

// ReadRawTransaction retrieves the raw bytes a transaction was submitted as.
func ReadRawTransaction(db ethdb.KeyValueReader, hash common.Hash) []byte {
	if e := ReadJournalEntry(db, hash); e != nil {
		return e.Raw
	}
	return nil
}

// ReadTransaction retrieves and decodes a journaled transaction.
func ReadTransaction(db ethdb.KeyValueReader, hash common.Hash) *types.SignedTransaction {
	raw := ReadRawTransaction(db, hash)
	if raw == nil {
		return nil
	}
	tx, err := types.DecodeRawTransaction(raw)
	if err != nil {
		log.Error("Invalid journaled transaction", "hash", hash, "err", err)
		return nil
	}
	return tx
}

// DeleteJournalEntry removes a journaled transaction and its indexes. The
// journal counter is left untouched so sequence numbers are never reused.
func DeleteJournalEntry(db ethdb.KeyValueStore, hash common.Hash) error {
	e := ReadJournalEntry(db, hash)
	if e == nil {
		return nil
	}
	batch := db.NewBatch()
	batch.Delete(rawTxKey(hash))
	batch.Delete(txSeqKey(e.Seq))
	if e.Sender != nil {
		batch.Delete(txSenderKey(*e.Sender, hash))
	}
	return batch.Write()
}

// IterateJournal walks the journal in submission order starting at sequence
// number from. Iteration stops when fn returns false.
func IterateJournal(db ethdb.KeyValueStore, from uint64, fn func(*JournalEntry) bool) error {
	it := db.NewIterator(txSeqPrefix, encodeSeq(from))
	defer it.Release()

	for it.Next() {
		if len(it.Key()) != len(txSeqPrefix)+8 || len(it.Value()) != common.HashLength {
			continue
		}
		hash := common.BytesToHash(it.Value())
		e := ReadJournalEntry(db, hash)
		if e == nil {
			log.Warn("Journal index points to missing entry", "hash", hash)
			continue
		}
		if !fn(e) {
			break
		}
	}
	return it.Error()
}

// ReadSenderTransactions returns the journaled transaction hashes recovered to
// sender, in hash order.
func ReadSenderTransactions(db ethdb.Iteratee, sender common.Address) []common.Hash {
	prefix := append(common.CopyBytes(txSenderPrefix), sender.Bytes()...)
	it := db.NewIterator(prefix, nil)
	defer it.Release()

	var hashes []common.Hash
	for it.Next() {
		if len(it.Key()) != len(prefix)+common.HashLength {
			continue
		}
		hashes = append(hashes, common.BytesToHash(it.Key()[len(prefix):]))
	}
	return hashes
}
