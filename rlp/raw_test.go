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
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func unhex(str string) []byte {
	b, err := hex.DecodeString(str)
	if err != nil {
		panic("invalid hex string: " + str)
	}
	return b
}

func TestSplit(t *testing.T) {
	tests := []struct {
		input     string
		kind      Kind
		val, rest string
		err       error
	}{
		{input: "00FFFF", kind: Byte, val: "00", rest: "FFFF"},
		{input: "7FFFFF", kind: Byte, val: "7F", rest: "FFFF"},
		{input: "80FFFF", kind: String, val: "", rest: "FFFF"},
		{input: "C3010203", kind: List, val: "010203"},

		// errors
		{input: "", err: ErrUnexpectedEOF},

		{input: "8141", err: ErrCanonSize, rest: "8141"},
		{input: "B800", err: ErrCanonSize, rest: "B800"},
		{input: "B802FFFF", err: ErrCanonSize, rest: "B802FFFF"},
		{input: "B90000", err: ErrCanonSize, rest: "B90000"},
		{input: "B90055", err: ErrCanonSize, rest: "B90055"},
		{input: "BA0002FFFF", err: ErrCanonSize, rest: "BA0002FFFF"},
		{input: "F800", err: ErrCanonSize, rest: "F800"},
		{input: "F90000", err: ErrCanonSize, rest: "F90000"},

		{input: "81", err: ErrUnexpectedEOF, rest: "81"},
		{input: "8501010101", err: ErrUnexpectedEOF, rest: "8501010101"},
		{input: "C60607080902", err: ErrUnexpectedEOF, rest: "C60607080902"},
		{input: "B8", err: ErrUnexpectedEOF, rest: "B8"},
		{input: "B9", err: ErrUnexpectedEOF, rest: "B9"},
		{input: "F9", err: ErrUnexpectedEOF, rest: "F9"},
		{input: "BA010000", err: ErrUnexpectedEOF, rest: "BA010000"},
		{input: "F838", err: ErrUnexpectedEOF, rest: "F838"},
	}

	for i, test := range tests {
		kind, val, rest, err := Split(unhex(test.input))
		if kind != test.kind {
			t.Errorf("test %d: kind mismatch: got %v, want %v", i, kind, test.kind)
		}
		if !bytes.Equal(val, unhex(test.val)) {
			t.Errorf("test %d: val mismatch: got %x, want %s", i, val, test.val)
		}
		if !bytes.Equal(rest, unhex(test.rest)) {
			t.Errorf("test %d: rest mismatch: got %x, want %s", i, rest, test.rest)
		}
		if err != test.err {
			t.Errorf("test %d: error mismatch: got %q, want %q", i, err, test.err)
		}
	}
}

func TestSplitUint64(t *testing.T) {
	tests := []struct {
		input, rest string
		val         uint64
		err         error
	}{
		{input: "01", val: 1},
		{input: "7FFF", val: 0x7F, rest: "FF"},
		{input: "80FF", val: 0, rest: "FF"},
		{input: "81FAFF", val: 0xFA, rest: "FF"},
		{input: "82FAFAFF", val: 0xFAFA, rest: "FF"},
		{input: "88FAFAFAFAFAFAFAFAFF", val: 0xFAFAFAFAFAFAFAFA, rest: "FF"},

		// errors
		{input: "", err: ErrUnexpectedEOF},
		{input: "00", err: ErrCanonInt},
		{input: "81", err: ErrUnexpectedEOF},
		{input: "8100", err: ErrCanonSize},
		{input: "8200FF", err: ErrCanonInt},
		{input: "8103FF", err: ErrCanonSize},
		{input: "89FAFAFAFAFAFAFAFAFAFF", err: errUintOverflow},
	}

	for i, test := range tests {
		val, rest, err := SplitUint64(unhex(test.input))
		if val != test.val {
			t.Errorf("test %d: val mismatch: got %x, want %x (input %q)", i, val, test.val, test.input)
		}
		if test.err == nil && !bytes.Equal(rest, unhex(test.rest)) {
			t.Errorf("test %d: rest mismatch: got %x, want %s (input %q)", i, rest, test.rest, test.input)
		}
		if err != test.err {
			t.Errorf("test %d: error mismatch: got %q, want %q", i, err, test.err)
		}
	}
}

func TestCountValues(t *testing.T) {
	tests := []struct {
		input string // note: spaces in input are stripped by unhex
		count int
		err   error
	}{
		// simple cases
		{"", 0, nil},
		{"00", 1, nil},
		{"80", 1, nil},
		{"C0", 1, nil},
		{"01020304", 4, nil},
		{"80C001828080", 4, nil},

		// size errors
		{"8142", 0, ErrCanonSize},
		{"01018142", 0, ErrCanonSize},
		// truncated
		{"8301", 0, ErrUnexpectedEOF},
	}
	for i, test := range tests {
		count, err := CountValues(unhex(test.input))
		if count != test.count {
			t.Errorf("test %d: count mismatch, got %d want %d\ninput: %s", i, count, test.count, test.input)
		}
		if !errors.Is(err, test.err) {
			t.Errorf("test %d: err mismatch, got %q want %q\ninput: %s", i, err, test.err, test.input)
		}
	}
}

func TestAppendUint64(t *testing.T) {
	tests := []struct {
		input  uint64
		slice  []byte
		output string
	}{
		{0, nil, "80"},
		{1, nil, "01"},
		{2, nil, "02"},
		{127, nil, "7F"},
		{128, nil, "8180"},
		{129, nil, "8181"},
		{0xFFFFFF, nil, "83FFFFFF"},
		{127, []byte{1, 2, 3}, "0102037F"},
		{0xFFFFFF, []byte{1, 2, 3}, "01020383FFFFFF"},
		{0xFFFFFFFFFFFFFFFF, nil, "88FFFFFFFFFFFFFFFF"},
	}

	for _, test := range tests {
		x := AppendUint64(test.slice, test.input)
		if !bytes.Equal(x, unhex(test.output)) {
			t.Errorf("AppendUint64(%v, %d): got %x, want %s", test.slice, test.input, x, test.output)
		}

		// Check that IntSize returns the appended size.
		length := len(x) - len(test.slice)
		if s := IntSize(test.input); s != length {
			t.Errorf("IntSize(%d): got %d, want %d", test.input, s, length)
		}
	}
}

func TestEncoderBuffer(t *testing.T) {
	tests := []struct {
		write func(w EncoderBuffer)
		want  string
	}{
		{func(w EncoderBuffer) { w.WriteBytes(nil) }, "80"},
		{func(w EncoderBuffer) { w.WriteBytes([]byte{0x7f}) }, "7F"},
		{func(w EncoderBuffer) { w.WriteBytes([]byte{0x80}) }, "8180"},
		{func(w EncoderBuffer) { w.WriteString("dog") }, "83646F67"},
		{func(w EncoderBuffer) { w.WriteUint64(1024) }, "820400"},
		{func(w EncoderBuffer) { w.WriteUint256(nil) }, "80"},
		{func(w EncoderBuffer) { w.WriteUint256(uint256.NewInt(1_000_000_000_000_000_000)) }, "880DE0B6B3A7640000"},
		{func(w EncoderBuffer) {
			w.WriteUint256(new(uint256.Int).SetAllOne())
		}, "A0FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF"},
		{func(w EncoderBuffer) {
			l := w.List()
			w.ListEnd(l)
		}, "C0"},
		{func(w EncoderBuffer) {
			outer := w.List()
			w.WriteString("cat")
			inner := w.List()
			w.WriteString("dog")
			w.ListEnd(inner)
			w.ListEnd(outer)
		}, "C9836361 74C483646F67"},
		{func(w EncoderBuffer) {
			l := w.List()
			w.WriteBytes(bytes.Repeat([]byte{0xaa}, 60))
			w.ListEnd(l)
		}, "F83EB83C" + repeatHex("AA", 60)},
	}
	for i, test := range tests {
		w := NewEncoderBuffer(nil)
		test.write(w)
		got := w.ToBytes()
		w.Flush()
		want := unhex(stripSpaces(test.want))
		if !bytes.Equal(got, want) {
			t.Errorf("test %d: got %x, want %x", i, got, want)
		}
	}
}

func TestEncoderBufferFlush(t *testing.T) {
	var out bytes.Buffer
	w := NewEncoderBuffer(&out)
	l := w.List()
	w.WriteUint64(9)
	w.WriteBytes([]byte("abc"))
	w.ListEnd(l)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if want := unhex("C50983616263"); !bytes.Equal(out.Bytes(), want) {
		t.Errorf("got %x, want %x", out.Bytes(), want)
	}
}

func repeatHex(s string, n int) string {
	return string(bytes.Repeat([]byte(s), n))
}

func stripSpaces(s string) string {
	return string(bytes.ReplaceAll([]byte(s), []byte(" "), nil))
}
