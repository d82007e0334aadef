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
	"fmt"
	"io"
)

var (
	// ErrUnexpectedEOF is returned when a value claims more bytes than the input holds.
	// 输入被截断。
	ErrUnexpectedEOF = io.ErrUnexpectedEOF

	ErrExpectedString   = errors.New("rlp: expected String or Byte")
	ErrExpectedList     = errors.New("rlp: expected List")
	ErrCanonInt         = errors.New("rlp: non-canonical integer format")
	ErrCanonSize        = errors.New("rlp: non-canonical size information")
	ErrMoreThanOneValue = errors.New("rlp: input contains more than one value")
	ErrWrongArity       = errors.New("rlp: wrong number of list elements")
	ErrIndexOutOfRange  = errors.New("rlp: list index out of range")

	errUintOverflow = errors.New("rlp: uint overflow")
)

// DecodeError is returned by the list decoder. Err is one of the sentinel errors of
// this package, or an integer overflow from the big-endian codec.
type DecodeError struct {
	Err   error
	Index int // position of the failing item, -1 for the enclosing list
	Want  int // expected item count, set for ErrWrongArity
	Have  int
}

func (e *DecodeError) Error() string {
	switch {
	case e.Err == ErrWrongArity:
		return fmt.Sprintf("%v: have %d, want %d", e.Err, e.Have, e.Want)
	case e.Err == ErrIndexOutOfRange:
		return fmt.Sprintf("%v: index %d, length %d", e.Err, e.Index, e.Have)
	case e.Index >= 0:
		return fmt.Sprintf("rlp: item %d: %v", e.Index, e.Err)
	default:
		if e.Err == ErrUnexpectedEOF {
			return "rlp: " + e.Err.Error()
		}
		return e.Err.Error()
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

func wrapErr(err error, index int) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*DecodeError); ok {
		return err
	}
	return &DecodeError{Err: err, Index: index}
}
