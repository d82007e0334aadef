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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/ethdb"
	"github.com/biiot/signchecker/ethdb/leveldb"
	"github.com/biiot/signchecker/ethdb/memorydb"
	"github.com/biiot/signchecker/ethdb/pebble"
	"github.com/biiot/signchecker/log"
	"github.com/olekukonko/tablewriter"
)

const (
	DBPebble  = "pebble"
	DBLeveldb = "leveldb"
	DBMemory  = "memory"
)

// NewMemoryDatabase creates an ephemeral in-memory key-value database.
func NewMemoryDatabase() ethdb.KeyValueStore {
	return memorydb.New()
}

// NewLevelDBDatabase creates a persistent key-value database using leveldb.
func NewLevelDBDatabase(file string, cache int, handles int, readonly bool) (ethdb.KeyValueStore, error) {
	db, err := leveldb.New(file, cache, handles, readonly)
	if err != nil {
		return nil, err
	}
	log.Info("Using LevelDB as the backing database")
	return db, nil
}

// NewPebbleDBDatabase creates a persistent key-value database using pebble.
func NewPebbleDBDatabase(file string, cache int, handles int, readonly bool) (ethdb.KeyValueStore, error) {
	db, err := pebble.New(file, cache, handles, readonly)
	if err != nil {
		return nil, err
	}
	log.Info("Using pebble as the backing database")
	return db, nil
}

// PreexistingDatabase checks the given data directory whether a database is already
// instantiated at that location, and if so, returns the type of database (or the
// empty string).
func PreexistingDatabase(path string) string {
	if _, err := os.Stat(filepath.Join(path, "CURRENT")); err != nil {
		return "" // No pre-existing db
	}
	if matches, err := filepath.Glob(filepath.Join(path, "OPTIONS*")); len(matches) > 0 || err != nil {
		if err != nil {
			panic(err) // only possible if the pattern is malformed
		}
		return DBPebble
	}
	return DBLeveldb
}

// OpenOptions contains the options to apply when opening a database.
type OpenOptions struct {
	Type      string // "leveldb" | "pebble" | "memory"
	Directory string // the datadir
	Cache     int    // the capacity(in megabytes) of the data caching
	Handles   int    // number of files to be open simultaneously
	ReadOnly  bool
}

// openKeyValueDatabase opens a disk-based key-value database, e.g. leveldb or pebble.
//
//	                      type == null          type != null
//	                   +----------------------------------------
//	db is non-existent |  pebble default  |  specified type
//	db is existent     |  from db         |  specified type (if compatible)
func openKeyValueDatabase(o OpenOptions) (ethdb.KeyValueStore, error) {
	if o.Type == DBMemory {
		return NewMemoryDatabase(), nil
	}
	// Reject any unsupported database type
	if len(o.Type) != 0 && o.Type != DBLeveldb && o.Type != DBPebble {
		return nil, fmt.Errorf("unknown db.engine %v", o.Type)
	}
	// Retrieve any pre-existing database's type and use that or the requested one
	// as long as there's no conflict between the two types
	existingDb := PreexistingDatabase(o.Directory)
	if len(existingDb) != 0 && len(o.Type) != 0 && o.Type != existingDb {
		return nil, fmt.Errorf("db.engine choice was %v but found pre-existing %v database in specified data directory", o.Type, existingDb)
	}
	if o.Type == DBPebble || existingDb == DBPebble {
		return NewPebbleDBDatabase(o.Directory, o.Cache, o.Handles, o.ReadOnly)
	}
	if o.Type == DBLeveldb || existingDb == DBLeveldb {
		return NewLevelDBDatabase(o.Directory, o.Cache, o.Handles, o.ReadOnly)
	}
	// No pre-existing database, no user-requested one either. Default to Pebble.
	log.Info("Defaulting to pebble as the backing database")
	return NewPebbleDBDatabase(o.Directory, o.Cache, o.Handles, o.ReadOnly)
}

// Open opens the journal database and checks its layout version. A fresh
// database is stamped with the current version.
func Open(o OpenOptions) (ethdb.KeyValueStore, error) {
	kvdb, err := openKeyValueDatabase(o)
	if err != nil {
		return nil, err
	}
	switch version := ReadDatabaseVersion(kvdb); {
	case version == nil:
		if !o.ReadOnly {
			WriteDatabaseVersion(kvdb, DatabaseVersion)
		}
	case *version != DatabaseVersion:
		kvdb.Close()
		return nil, fmt.Errorf("journal database version %d, want %d", *version, DatabaseVersion)
	}
	return kvdb, nil
}

type counter uint64

func (c counter) String() string {
	return fmt.Sprintf("%d", c)
}

// stat stores sizes and count for a parameter
type stat struct {
	size  common.StorageSize
	count counter
}

// Add size to the stat and increase the counter by 1
func (s *stat) Add(size common.StorageSize) {
	s.size += size
	s.count++
}

func (s *stat) Size() string {
	return s.size.String()
}

func (s *stat) Count() string {
	return s.count.String()
}

// InspectDatabase traverses the entire database and writes the size of all
// different categories of data to w.
func InspectDatabase(db ethdb.KeyValueStore, w io.Writer) error {
	it := db.NewIterator(nil, nil)
	defer it.Release()

	var (
		count  int64
		start  = time.Now()
		logged = time.Now()

		entries     stat
		seqIndex    stat
		senderIndex stat
		metadata    stat
		unaccounted stat

		total common.StorageSize
	)
	for it.Next() {
		var (
			key  = it.Key()
			size = common.StorageSize(len(key) + len(it.Value()))
		)
		total += size
		switch {
		case bytes.HasPrefix(key, rawTxPrefix) && len(key) == len(rawTxPrefix)+common.HashLength:
			entries.Add(size)
		case bytes.HasPrefix(key, txSeqPrefix) && len(key) == len(txSeqPrefix)+8:
			seqIndex.Add(size)
		case bytes.HasPrefix(key, txSenderPrefix) && len(key) == len(txSenderPrefix)+common.AddressLength+common.HashLength:
			senderIndex.Add(size)
		default:
			var accounted bool
			for _, meta := range [][]byte{databaseVersionKey, journalCountKey, chainConfigKey, uncleanShutdownKey} {
				if bytes.Equal(key, meta) {
					metadata.Add(size)
					accounted = true
					break
				}
			}
			if !accounted {
				unaccounted.Add(size)
			}
		}
		count++
		if count%1000 == 0 && time.Since(logged) > 8*time.Second {
			log.Info("Inspecting database", "count", count, "elapsed", common.PrettyDuration(time.Since(start)))
			logged = time.Now()
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	stats := [][]string{
		{"Key-Value store", "Journaled transactions", entries.Size(), entries.Count()},
		{"Key-Value store", "Sequence index", seqIndex.Size(), seqIndex.Count()},
		{"Key-Value store", "Sender index", senderIndex.Size(), senderIndex.Count()},
		{"Key-Value store", "Singleton metadata", metadata.Size(), metadata.Count()},
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Database", "Category", "Size", "Items"})
	table.SetFooter([]string{"", "Total", total.String(), " "})
	table.AppendBulk(stats)
	table.Render()

	if unaccounted.size > 0 {
		log.Error("Database contains unaccounted data", "size", unaccounted.size, "count", unaccounted.count)
	}
	return nil
}

// ReadJournalMetadata returns a set of key/value pairs that describe the
// journal. This can be used for diagnostic purposes.
func ReadJournalMetadata(db ethdb.KeyValueStore) [][]string {
	pp := func(val *uint64) string {
		if val == nil {
			return "<nil>"
		}
		return fmt.Sprintf("%d (%#x)", *val, *val)
	}
	count := ReadJournalCount(db)
	data := [][]string{
		{"databaseVersion", pp(ReadDatabaseVersion(db))},
		{"journalCount", pp(&count)},
	}
	if cfg := ReadChainConfig(db); cfg != nil {
		data = append(data, []string{"chainId", cfg.ChainID.String()})
		data = append(data, []string{"networkId", fmt.Sprintf("%d", cfg.NetworkID)})
	}
	return data
}

// PrintJournalMetadata prints out journal metadata to w.
func PrintJournalMetadata(w io.Writer, db ethdb.KeyValueStore) {
	fmt.Fprintf(w, "Journal metadata\n")
	for _, v := range ReadJournalMetadata(db) {
		fmt.Fprintf(w, "  %s\n", strings.Join(v, ": "))
	}
	fmt.Fprintf(w, "\n")
}
