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
	"errors"
	"testing"

	"github.com/biiot/signchecker/common/bigendian"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeListRoundTrip(t *testing.T) {
	items := [][]byte{
		{},
		{0x01},
		{0x80},
		[]byte("signchecker"),
		make([]byte, 20),
		make([]byte, 70),
	}
	enc := EncodeBytesList(items...)

	kind, _, _, err := Split(enc)
	require.NoError(t, err)
	assert.Equal(t, List, kind)

	var l ItemList
	l, err = DecodeList(enc)
	require.NoError(t, err)
	require.Equal(t, len(items), l.Len())
	for i := range items {
		got, err := l.At(i)
		require.NoError(t, err)
		assert.Equal(t, len(items[i]), len(got), "item %d", i)
	}
	assert.Equal(t, enc, l.Encode())
}

func TestDecodeListErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
		index int
	}{
		{input: "", err: ErrUnexpectedEOF, index: -1},
		{input: "C3", err: ErrUnexpectedEOF, index: -1},
		{input: "C50102", err: ErrUnexpectedEOF, index: -1},
		{input: "C28301", err: ErrUnexpectedEOF, index: 0},
		{input: "C3018141", err: ErrCanonSize, index: 1},
		{input: "80", err: ErrExpectedList, index: -1},
		{input: "C0C0", err: ErrMoreThanOneValue, index: -1},
		{input: "C201C0", err: ErrExpectedString, index: 1},
	}
	for i, test := range tests {
		_, err := DecodeList(unhex(test.input))
		var derr *DecodeError
		if !errors.As(err, &derr) {
			t.Errorf("test %d: expected *DecodeError, got %v", i, err)
			continue
		}
		if !errors.Is(err, test.err) {
			t.Errorf("test %d: got %v, want %v", i, err, test.err)
		}
		if derr.Index != test.index {
			t.Errorf("test %d: index %d, want %d", i, derr.Index, test.index)
		}
	}
}

func TestListAccessors(t *testing.T) {
	// leading zeroes are accepted for integers
	l := NewList([]byte{}, []byte{0x01, 0x2F}, []byte{0x00, 0x05}, make([]byte, 9))
	v, err := l.Uint64(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	v, err = l.Uint64(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(303), v)

	v, err = l.Uint64(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)

	// nine zero bytes still fit
	v, err = l.Uint64(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	_, err = l.At(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = l.Uint256(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	over := NewList([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0})
	_, err = over.Uint64(0)
	assert.ErrorIs(t, err, bigendian.ErrOverflow)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 0, derr.Index)
}

func TestDecodeListN(t *testing.T) {
	enc := EncodeBytesList([]byte{1}, []byte{2})
	_, err := DecodeListN(enc, 9)
	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ErrWrongArity, derr.Err)
	assert.Equal(t, 9, derr.Want)
	assert.Equal(t, 2, derr.Have)

	l, err := DecodeListN(enc, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
}
