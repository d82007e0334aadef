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

/*
Package rlp implements the RLP serialization format for flat lists of byte strings.

RLP (Recursive Length Prefix) encodes arbitrarily nested arrays of binary data. Integers
are represented in big endian binary form with no leading zeroes, which makes the value
zero equivalent to the empty string.

# Encoding Rules

A single byte in the range [0x00, 0x7F] is its own encoding.

A string of 0-55 bytes is prefixed with 0x80 plus its length. Longer strings are
prefixed with 0xB7 plus the length of the big-endian length, followed by the length.

A list payload is the concatenation of the encodings of its items. It carries the same
header scheme starting at 0xC0 (short) and 0xF7 (long).

EncoderBuffer writes strings, integers and nested lists. It always produces the
canonical form.

# Decoding Rules

Split, SplitString, SplitList and SplitUint64 read a single value from the front of a
buffer. DecodeList reads a whole buffer as a list of byte strings and wraps every
failure in a *DecodeError that records the failing item position. Non-canonical size
prefixes fail with ErrCanonSize; a value that claims more bytes than the input holds
fails with ErrUnexpectedEOF.
*/
package rlp
