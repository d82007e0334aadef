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

package rlp

import (
	"github.com/biiot/signchecker/common/bigendian"
	"github.com/holiman/uint256"
)

// ItemList is a decoded RLP list whose items are all byte strings. Items keep
// their content bytes exactly as received, so integers may still carry leading
// zeroes. The integer accessors decode them permissively.
type ItemList struct {
	items [][]byte
}

// DecodeList decodes b as exactly one RLP list of byte strings. Truncated
// input, nested lists, non-canonical headers and trailing bytes all fail with
// a *DecodeError.
func DecodeList(b []byte) (ItemList, error) {
	_, rest, err := SplitList(b)
	if err != nil {
		return ItemList{}, wrapErr(err, -1)
	}
	if len(rest) > 0 {
		return ItemList{}, wrapErr(ErrMoreThanOneValue, -1)
	}
	it, err := NewListIterator(b)
	if err != nil {
		return ItemList{}, wrapErr(err, -1)
	}
	var items [][]byte
	for it.Next() {
		if it.Err() != nil {
			return ItemList{}, wrapErr(it.Err(), it.Index())
		}
		content, _, err := SplitString(it.Value())
		if err != nil {
			return ItemList{}, wrapErr(err, it.Index())
		}
		items = append(items, content)
	}
	return ItemList{items: items}, nil
}

// DecodeListN is like DecodeList but also checks the number of items.
func DecodeListN(b []byte, n int) (ItemList, error) {
	l, err := DecodeList(b)
	if err != nil {
		return ItemList{}, err
	}
	if l.Len() != n {
		return ItemList{}, &DecodeError{Err: ErrWrongArity, Index: -1, Want: n, Have: l.Len()}
	}
	return l, nil
}

// NewList builds a list from raw item contents.
func NewList(items ...[]byte) ItemList {
	return ItemList{items: items}
}

// Len returns the number of items.
func (l ItemList) Len() int { return len(l.items) }

// At returns the content of item i.
func (l ItemList) At(i int) ([]byte, error) {
	if i < 0 || i >= len(l.items) {
		return nil, &DecodeError{Err: ErrIndexOutOfRange, Index: i, Have: len(l.items)}
	}
	return l.items[i], nil
}

// Uint64 decodes item i as a big-endian integer of at most 64 bits.
func (l ItemList) Uint64(i int) (uint64, error) {
	b, err := l.At(i)
	if err != nil {
		return 0, err
	}
	v, err := bigendian.Uint64(b)
	if err != nil {
		return 0, wrapErr(err, i)
	}
	return v, nil
}

// Uint256 decodes item i as a big-endian integer of at most 256 bits.
func (l ItemList) Uint256(i int) (*uint256.Int, error) {
	b, err := l.At(i)
	if err != nil {
		return nil, err
	}
	v, err := bigendian.Uint256(b)
	if err != nil {
		return nil, wrapErr(err, i)
	}
	return v, nil
}

// Encode returns the canonical encoding of the list.
func (l ItemList) Encode() []byte {
	return EncodeBytesList(l.items...)
}
