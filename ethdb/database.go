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

// Package ethdb defines the interfaces for the key-value stores backing the
// transaction journal.
package ethdb

import (
	"errors"
	"io"
)

// ErrNotFound is returned by Get when the key is not present. Backends map
// their own not-found errors onto it.
var ErrNotFound = errors.New("not found")

// KeyValueReader wraps the Has and Get method of a backing data store.
type KeyValueReader interface {
	Has(key []byte) (bool, error)

	// Get returns ErrNotFound for a missing key.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put method of a backing data store.
type KeyValueWriter interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// KeyValueStater wraps the Stat method of a backing data store.
type KeyValueStater interface {
	// Stat returns a backend specific, human readable statistics dump.
	Stat() (string, error)
}

// Compacter wraps the Compact method of a backing data store.
type Compacter interface {
	// Compact flattens the store for the given key range. A nil start or limit
	// leaves that side of the range open.
	Compact(start []byte, limit []byte) error
}

// Batch buffers writes until Write is called. Journal appends go through a
// batch so an entry and its indexes land together. A batch cannot be used
// concurrently.
type Batch interface {
	KeyValueWriter

	// ValueSize retrieves the amount of data queued up for writing.
	ValueSize() int

	// Write flushes any accumulated data to the host store.
	Write() error

	// Reset resets the batch for reuse.
	Reset()
}

// Batcher wraps the NewBatch method of a backing data store.
type Batcher interface {
	NewBatch() Batch
}

// Iterator walks key/value pairs in ascending key order. Errors stop the walk
// and are reported by Error. Release must always be called.
type Iterator interface {
	Next() bool
	Error() error

	// Key and Value are only valid until the next call to Next.
	Key() []byte
	Value() []byte

	Release()
}

// Iteratee wraps the NewIterator methods of a backing data store.
type Iteratee interface {
	// NewIterator iterates the keys carrying prefix, beginning at prefix+start.
	NewIterator(prefix []byte, start []byte) Iterator
}

// KeyValueStore contains all the methods the journal needs from a backend.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	KeyValueStater
	Batcher
	Iteratee
	Compacter
	io.Closer
}
