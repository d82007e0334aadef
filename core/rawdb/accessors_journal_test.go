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
	"bytes"
	"math/big"
	"testing"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/crypto"
	"github.com/biiot/signchecker/ethdb"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey, _    = crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	testAddr      = crypto.PubkeyToAddress(testKey.PublicKey)
	testSigner    = types.NewEIP155Signer(big.NewInt(84))
	testRecipient = common.HexToAddress("0x3535353535353535353535353535353535353535")
)

func makeEntry(t *testing.T, nonce uint64) *JournalEntry {
	tx := types.MustSignNewTx(testKey, testSigner, &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: uint256.NewInt(1),
		Gas:      21000,
		To:       &testRecipient,
		Value:    uint256.NewInt(nonce),
	})
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	sender := testAddr
	return &JournalEntry{Hash: tx.Hash(), Raw: raw, Sender: &sender, Received: time.Unix(1700000000+int64(nonce), 0)}
}

func testJournal(t *testing.T, db ethdb.KeyValueStore) {
	assert.Equal(t, uint64(0), ReadJournalCount(db))

	e0, e1 := makeEntry(t, 0), makeEntry(t, 1)
	e1.Sender = nil

	require.NoError(t, WriteJournalEntry(db, e0))
	require.NoError(t, WriteJournalEntry(db, e1))
	require.NoError(t, WriteJournalEntry(db, e0), "rewriting is a no-op")
	assert.Equal(t, uint64(2), ReadJournalCount(db))

	got := ReadJournalEntry(db, e0.Hash)
	require.NotNil(t, got)
	assert.Equal(t, uint64(0), got.Seq)
	assert.Equal(t, e0.Raw, got.Raw)
	assert.Equal(t, testAddr, *got.Sender)
	assert.True(t, e0.Received.Equal(got.Received))

	got = ReadJournalEntry(db, e1.Hash)
	require.NotNil(t, got)
	assert.Equal(t, uint64(1), got.Seq)
	assert.Nil(t, got.Sender)

	assert.True(t, HasRawTransaction(db, e0.Hash))
	assert.False(t, HasRawTransaction(db, common.Hash{1}))
	assert.Nil(t, ReadRawTransaction(db, common.Hash{1}))

	tx := ReadTransaction(db, e1.Hash)
	require.NotNil(t, tx)
	assert.Equal(t, e1.Hash, tx.Hash())
	assert.Equal(t, uint64(1), tx.Nonce())

	var order []common.Hash
	require.NoError(t, IterateJournal(db, 0, func(e *JournalEntry) bool {
		order = append(order, e.Hash)
		return true
	}))
	assert.Equal(t, []common.Hash{e0.Hash, e1.Hash}, order)

	order = order[:0]
	require.NoError(t, IterateJournal(db, 1, func(e *JournalEntry) bool {
		order = append(order, e.Hash)
		return true
	}))
	assert.Equal(t, []common.Hash{e1.Hash}, order)

	assert.Equal(t, []common.Hash{e0.Hash}, ReadSenderTransactions(db, testAddr))

	require.NoError(t, DeleteJournalEntry(db, e0.Hash))
	assert.False(t, HasRawTransaction(db, e0.Hash))
	assert.Empty(t, ReadSenderTransactions(db, testAddr))
	assert.Equal(t, uint64(2), ReadJournalCount(db), "sequence numbers are not reused")

	e2 := makeEntry(t, 2)
	require.NoError(t, WriteJournalEntry(db, e2))
	assert.Equal(t, uint64(2), e2.Seq)
}

func TestJournalMemory(t *testing.T) {
	testJournal(t, NewMemoryDatabase())
}

func TestJournalBackends(t *testing.T) {
	for _, typ := range []string{DBPebble, DBLeveldb} {
		t.Run(typ, func(t *testing.T) {
			db, err := Open(OpenOptions{Type: typ, Directory: t.TempDir()})
			require.NoError(t, err)
			defer db.Close()
			testJournal(t, db)
		})
	}
}

func TestOpenDetectsEngine(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(OpenOptions{Type: DBLeveldb, Directory: dir})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	assert.Equal(t, DBLeveldb, PreexistingDatabase(dir))

	_, err = Open(OpenOptions{Type: DBPebble, Directory: dir})
	assert.ErrorContains(t, err, "pre-existing leveldb")

	db, err = Open(OpenOptions{Directory: dir})
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, uint64(DatabaseVersion), *ReadDatabaseVersion(db))

	_, err = Open(OpenOptions{Type: "rocksdb", Directory: t.TempDir()})
	assert.ErrorContains(t, err, "unknown db.engine")
}

func TestOpenRejectsVersion(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(OpenOptions{Type: DBPebble, Directory: dir})
	require.NoError(t, err)
	WriteDatabaseVersion(db, DatabaseVersion+1)
	require.NoError(t, db.Close())

	_, err = Open(OpenOptions{Directory: dir})
	assert.ErrorContains(t, err, "journal database version")
}

func TestInspectDatabase(t *testing.T) {
	db := NewMemoryDatabase()
	WriteDatabaseVersion(db, DatabaseVersion)
	require.NoError(t, WriteJournalEntry(db, makeEntry(t, 0)))

	var buf bytes.Buffer
	require.NoError(t, InspectDatabase(db, &buf))
	out := buf.String()
	assert.Contains(t, out, "Journaled transactions")
	assert.Contains(t, out, "Sender index")

	buf.Reset()
	PrintJournalMetadata(&buf, db)
	assert.Contains(t, buf.String(), "journalCount: 1 (0x1)")
}
