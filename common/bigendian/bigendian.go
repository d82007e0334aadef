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

// Package bigendian converts between unsigned big-endian byte strings and
// fixed-width integers.
//
// Decoding is permissive: the empty string is zero and leading zero bytes are
// accepted, as long as the significant bytes fit the target width. Encoding is
// canonical: the shortest representation without leading zero bytes, and the
// empty string for zero. RLP requires the canonical form on output while wallet
// payloads are not always minimal on input.
package bigendian

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when the significant bytes of an input exceed the
// width of the target integer.
var ErrOverflow = errors.New("big-endian integer overflow")

// OverflowError carries the target width and the offending input length.
type OverflowError struct {
	Width int // target width in bytes
	Len   int // significant bytes in the input
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%v: %d significant bytes, max %d", ErrOverflow, e.Len, e.Width)
}

func (e *OverflowError) Unwrap() error { return ErrOverflow }

// Trim returns b without leading zero bytes. The result shares memory with b.
func Trim(b []byte) []byte {
	for i, c := range b {
		if c != 0 {
			return b[i:]
		}
	}
	return b[len(b):]
}

// Uint64 decodes b as an unsigned big-endian integer of at most 64 bits.
func Uint64(b []byte) (uint64, error) {
	b = Trim(b)
	if len(b) > 8 {
		return 0, &OverflowError{Width: 8, Len: len(b)}
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}

// Uint256 decodes b as an unsigned big-endian integer of at most 256 bits.
func Uint256(b []byte) (*uint256.Int, error) {
	b = Trim(b)
	if len(b) > 32 {
		return nil, &OverflowError{Width: 32, Len: len(b)}
	}
	return new(uint256.Int).SetBytes(b), nil
}

// Uint64Bytes returns the minimal big-endian encoding of v.
// 零编码为空字节串。
func Uint64Bytes(v uint64) []byte {
	if v == 0 {
		return []byte{}
	}
	var (
		buf [8]byte
		i   = len(buf)
	)
	for ; v > 0; v >>= 8 {
		i--
		buf[i] = byte(v)
	}
	return append([]byte{}, buf[i:]...)
}

// Uint256Bytes returns the minimal big-endian encoding of v. A nil v encodes
// as zero.
func Uint256Bytes(v *uint256.Int) []byte {
	if v == nil || v.IsZero() {
		return []byte{}
	}
	return v.Bytes()
}
