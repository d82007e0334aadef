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

package hexutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/holiman/uint256"
)

func checkError(t *testing.T, input string, got, want error) bool {
	if got == nil {
		if want != nil {
			t.Errorf("input %s: got no error, want %q", input, want)
			return false
		}
		return true
	}
	if want == nil {
		t.Errorf("input %s: unexpected error %q", input, got)
	} else if got.Error() != want.Error() {
		t.Errorf("input %s: got error %q, want %q", input, got, want)
	}
	return false
}

var unmarshalBytesTests = []struct {
	input   string
	want    []byte
	wantErr error
}{
	// invalid encoding
	{input: "", wantErr: errJSONEOF},
	{input: "null", wantErr: errNonString(bytesT)},
	{input: "10", wantErr: errNonString(bytesT)},
	{input: `"0"`, wantErr: wrapTypeError(ErrMissingPrefix, bytesT)},
	{input: `"0x0"`, wantErr: wrapTypeError(ErrOddLength, bytesT)},
	{input: `"0xxx"`, wantErr: wrapTypeError(ErrSyntax, bytesT)},

	// valid encoding
	{input: `""`, want: []byte{}},
	{input: `"0x"`, want: []byte{}},
	{input: `"0x02"`, want: []byte{0x02}},
	{input: `"0X02"`, want: []byte{0x02}},
	{input: `"0xffffffffff"`, want: []byte{0xff, 0xff, 0xff, 0xff, 0xff}},
}

var errJSONEOF = errors.New("unexpected end of JSON input")

func TestUnmarshalBytes(t *testing.T) {
	for _, test := range unmarshalBytesTests {
		var v Bytes
		err := json.Unmarshal([]byte(test.input), &v)
		if !checkError(t, test.input, err, test.wantErr) {
			continue
		}
		if string(v) != string(test.want) {
			t.Errorf("input %s: value mismatch: got %x, want %x", test.input, &v, test.want)
			continue
		}
	}
}

func TestMarshalBytes(t *testing.T) {
	for _, test := range []struct {
		input []byte
		want  string
	}{
		{[]byte{}, "0x"},
		{[]byte{0}, "0x00"},
		{[]byte{0, 0, 1, 2}, "0x00000102"},
	} {
		out, err := json.Marshal(Bytes(test.input))
		if err != nil {
			t.Errorf("%x: %v", test.input, err)
			continue
		}
		if want := `"` + test.want + `"`; string(out) != want {
			t.Errorf("%x: MarshalJSON output mismatch: got %q, want %q", test.input, out, want)
		}
	}
}

func TestUnmarshalUint64(t *testing.T) {
	for _, test := range []struct {
		input   string
		want    uint64
		wantErr error
	}{
		{input: `"0x"`, wantErr: wrapTypeError(ErrEmptyNumber, uint64T)},
		{input: `"0x01"`, wantErr: wrapTypeError(ErrLeadingZero, uint64T)},
		{input: `"0xfffffffffffffffff"`, wantErr: wrapTypeError(ErrUint64Range, uint64T)},
		{input: `"0x0"`, want: 0},
		{input: `"0x54"`, want: 84},
		{input: `"0xffffffffffffffff"`, want: 0xffffffffffffffff},
	} {
		var v Uint64
		err := json.Unmarshal([]byte(test.input), &v)
		if !checkError(t, test.input, err, test.wantErr) {
			continue
		}
		if uint64(v) != test.want {
			t.Errorf("input %s: value mismatch: got %d, want %d", test.input, v, test.want)
		}
	}
}

func TestU256RoundTrip(t *testing.T) {
	want := uint256.NewInt(20_000_000_000)
	out, err := json.Marshal((*U256)(want))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"0x4a817c800"` {
		t.Fatalf("wrong encoding %s", out)
	}
	var got U256
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if !got.ToU256().Eq(want) {
		t.Errorf("got %v, want %v", got.ToU256(), want)
	}
}

func TestDecodeU256(t *testing.T) {
	if _, err := DecodeU256("0x10000000000000000000000000000000000000000000000000000000000000000"); err != ErrBig256Range {
		t.Errorf("expected range error, got %v", err)
	}
	v, err := DecodeU256("0xde0b6b3a7640000")
	if err != nil {
		t.Fatal(err)
	}
	if v.Uint64() != 1_000_000_000_000_000_000 {
		t.Errorf("got %d", v.Uint64())
	}
}
