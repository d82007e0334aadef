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

package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/bigendian"
	"github.com/biiot/signchecker/crypto"
	"github.com/biiot/signchecker/rlp"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The example transaction of EIP-155.
var (
	eip155Key, _ = crypto.HexToECDSA("4646464646464646464646464646464646464646464646464646464646464646")
	eip155Tx     = NewTransaction(
		9,
		common.HexToAddress("0x3535353535353535353535353535353535353535"),
		uint256.NewInt(1_000_000_000_000_000_000),
		21000,
		uint256.NewInt(20_000_000_000),
		nil,
	)
	eip155Raw = common.FromHex("f86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83")
)

// The zero transaction signed under chain id 84.
var (
	zeroKey, _ = crypto.HexToECDSA("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	zeroAddr   = common.HexToAddress("0x71562b71999873db5b286df957af199ec94617f7")
	zeroRaw    = common.FromHex("f85e808080940000000000000000000000000000000000000000808081cba0b8db88f4511e7bb379fffc94bbf88c84f96136e258cf67d0e94599abdf950513a067b6f9a6cd958aceddfc902deabf21dcb7221f96493038955867d2bcb2440516")
)

func zeroTx() *UnsignedTransaction {
	return NewTransaction(0, common.Address{}, nil, 0, nil, nil)
}

func TestEIP155SigningPreimage(t *testing.T) {
	pre := eip155Tx.EIP155SigningPreimage(big.NewInt(1))
	assert.Equal(t, common.FromHex("ec098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080018080"), pre)

	signer := NewEIP155Signer(big.NewInt(1))
	assert.Equal(t, common.HexToHash("daf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53"), signer.Hash(eip155Tx))

	zpre := zeroTx().EIP155SigningPreimage(big.NewInt(84))
	assert.Equal(t, common.FromHex("dd8080809400000000000000000000000000000000000000008080548080"), zpre)
	assert.Equal(t, common.HexToHash("202d6e720faff2a04a658d2de3f4af1cca20643a7a1e1b996435c1965553232c"), crypto.Keccak256Hash(zpre))
}

func TestSignEIP155Example(t *testing.T) {
	signer := NewEIP155Signer(big.NewInt(1))
	tx, err := SignTx(eip155Tx, signer, eip155Key)
	require.NoError(t, err)

	sig := tx.Signature()
	assert.Equal(t, uint64(37), sig.V)
	v, r, s := tx.RawSignatureValues()
	assert.Equal(t, uint64(37), v.Uint64())
	assert.Equal(t, "18515461264373351373200002665853028612451056578545711640558177340181847433846", r.String())
	assert.Equal(t, "46948507304638947509940763649030358759909902576025900602547168820602576006531", s.String())

	enc, err := tx.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, eip155Raw, enc)
	assert.Equal(t, common.HexToHash("33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788"), tx.Hash())

	from, err := Sender(signer, tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x9d8a62f656a8d1615c1294fd71e9cfb3e4855a4f"), from)
}

func TestSignZeroTransaction(t *testing.T) {
	signer := NewEIP155Signer(big.NewInt(84))
	tx, err := SignTx(zeroTx(), signer, zeroKey)
	require.NoError(t, err)

	sig := tx.Signature()
	assert.Equal(t, uint64(0xcb), sig.V)
	assert.Equal(t, common.FromHex("b8db88f4511e7bb379fffc94bbf88c84f96136e258cf67d0e94599abdf950513"), sig.R[:])
	assert.Equal(t, common.FromHex("67b6f9a6cd958aceddfc902deabf21dcb7221f96493038955867d2bcb2440516"), sig.S[:])
	assert.Equal(t, zeroRaw, tx.Encoded())
	assert.Equal(t, common.HexToHash("0203946ff8dbfd3998b8adde92c1f63449bfec47e81234ac5f6b830328ba8531"), tx.Hash())

	from, err := Sender(signer, tx)
	require.NoError(t, err)
	assert.Equal(t, zeroAddr, from)
}

func TestObservedPreimageSender(t *testing.T) {
	tx, err := DecodeRawTransaction(zeroRaw)
	require.NoError(t, err)
	assert.Equal(t, zeroRaw, tx.SigningPreimage())

	observed := NewEIP155Signer(big.NewInt(84)).WithPreimageMode(ObservedPreimage)
	from, err := Sender(observed, tx)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xece1ec1ac7d2f72b9a67dec6ebc9b56096137db7"), from)

	// the standard signer must not reuse the cached observed sender
	from, err = Sender(NewEIP155Signer(big.NewInt(84)), tx)
	require.NoError(t, err)
	assert.Equal(t, zeroAddr, from)
}

func TestObservedPreimageContractCreation(t *testing.T) {
	raw := rlp.EncodeBytesList(nil, nil, nil, nil, nil, nil, []byte{0xcb}, []byte{1}, []byte{1})
	tx, err := DecodeRawTransaction(raw)
	require.NoError(t, err)
	require.Nil(t, tx.To())
	assert.Equal(t, common.FromHex("de808080940000000000000000000000000000000000000000808081cb0101"), tx.SigningPreimage())
	assert.Equal(t, raw, tx.Encoded(), "the wire form keeps the empty recipient")

	// A creation carrying the zero transaction's signature recovers the same
	// observed sender as the zero transaction itself.
	zero, err := DecodeRawTransaction(zeroRaw)
	require.NoError(t, err)
	create := NewSignedTx(NewContractCreation(0, nil, 0, nil, nil), zero.Signature())
	assert.Equal(t, zero.SigningPreimage(), create.SigningPreimage())

	observed := NewEIP155Signer(big.NewInt(84)).WithPreimageMode(ObservedPreimage)
	from, err := Sender(observed, create)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xece1ec1ac7d2f72b9a67dec6ebc9b56096137db7"), from)
}

func TestDecodeRawTransaction(t *testing.T) {
	tx, err := DecodeRawTransaction(eip155Raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), tx.Nonce())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.Equal(t, uint64(20_000_000_000), tx.GasPrice().Uint64())
	assert.Equal(t, common.HexToAddress("0x3535353535353535353535353535353535353535"), *tx.To())
	assert.Equal(t, "1000000000000000000", tx.Value().Dec())
	assert.Empty(t, tx.Data())
	assert.Equal(t, big.NewInt(1), tx.ChainId())
	assert.True(t, tx.Protected())
	assert.True(t, tx.Unsigned().Equal(eip155Tx))
	assert.Equal(t, common.HexToHash("33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788"), tx.Hash())
}

func TestDecodeRawTransactionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		err   error
	}{
		{"empty", nil, rlp.ErrUnexpectedEOF},
		{"truncated", eip155Raw[:len(eip155Raw)-1], rlp.ErrUnexpectedEOF},
		{"trailing", append(common.CopyBytes(eip155Raw), 0x80), rlp.ErrMoreThanOneValue},
		{"arity", rlp.EncodeBytesList(nil, nil, nil), rlp.ErrWrongArity},
		{"not a list", common.FromHex("8401020304"), rlp.ErrExpectedList},
		{"recipient", rlp.EncodeBytesList(nil, nil, nil, []byte{1, 2, 3}, nil, nil, nil, nil, nil), ErrInvalidRecipient},
		{"nonce overflow", rlp.EncodeBytesList(make([]byte, 9), nil, nil, nil, nil, nil, nil, nil, nil), nil},
		{"r overflow", rlp.EncodeBytesList(nil, nil, nil, nil, nil, nil, nil, bytes.Repeat([]byte{1}, 33), nil), bigendian.ErrOverflow},
	}
	for _, test := range tests {
		_, err := DecodeRawTransaction(test.input)
		if test.err == nil {
			// nine zero bytes still fit a uint64
			assert.NoError(t, err, test.name)
			continue
		}
		var derr *rlp.DecodeError
		require.True(t, errors.As(err, &derr), "%s: got %v", test.name, err)
		assert.ErrorIs(t, err, test.err, test.name)
	}
}

func TestContractCreationRecipient(t *testing.T) {
	raw := rlp.EncodeBytesList(nil, nil, nil, nil, nil, []byte{0x60, 0x80}, []byte{27}, []byte{1}, []byte{1})
	tx, err := DecodeRawTransaction(raw)
	require.NoError(t, err)
	assert.Nil(t, tx.To())

	f := tx.WireFields()
	assert.Empty(t, f[toField])
	enc, _ := tx.MarshalBinary()
	assert.Equal(t, raw, enc)
}

func TestWireFieldsRoundTrip(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000deadbeef")
	unsigned := []*UnsignedTransaction{
		zeroTx(),
		eip155Tx,
		NewContractCreation(1, uint256.NewInt(5), 53000, uint256.NewInt(1), []byte{0x60, 0x80, 0x60, 0x40}),
		NewTransaction(^uint64(0), to, new(uint256.Int).SetAllOne(), ^uint64(0), new(uint256.Int).SetAllOne(), bytes.Repeat([]byte{0xaa}, 100)),
	}
	sigs := []Signature{
		{V: 27, R: [32]byte{1}, S: [32]byte{31: 2}},
		{V: 0xcb},
		{V: ^uint64(0), R: [32]byte{0xff}, S: [32]byte{0xff}},
	}
	for i, u := range unsigned {
		for j, sig := range sigs {
			tx := NewSignedTx(u, sig)
			dec, err := FromWireFields(tx.WireFields())
			require.NoError(t, err, "tx %d sig %d", i, j)
			assert.True(t, tx.Equal(dec), "tx %d sig %d", i, j)

			enc, err := tx.MarshalBinary()
			require.NoError(t, err)
			dec2, err := DecodeRawTransaction(enc)
			require.NoError(t, err)
			assert.True(t, tx.Equal(dec2), "tx %d sig %d", i, j)
			assert.Equal(t, tx.Hash(), dec2.Hash())
		}
	}
}

func TestFromWireFieldsPermissive(t *testing.T) {
	var f [WireFieldCount][]byte
	f[nonceField] = []byte{0x01, 0x2F}
	f[gasField] = []byte{0x00, 0x00, 0x52, 0x08}
	tx, err := FromWireFields(f)
	require.NoError(t, err)
	assert.Equal(t, uint64(303), tx.Nonce())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.True(t, tx.GasPrice().IsZero())

	// canonical form drops the leading zeroes
	assert.Equal(t, []byte{0x52, 0x08}, tx.WireFields()[gasField])
}

func TestImmutability(t *testing.T) {
	data := []byte{1, 2, 3}
	to := common.Address{1}
	tx := NewTx(&LegacyTx{To: &to, Data: data, Value: uint256.NewInt(7)})

	data[0] = 9
	to[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, tx.Data())
	assert.Equal(t, common.Address{1}, *tx.To())

	tx.Data()[0] = 9
	tx.Value().SetUint64(100)
	tx.To()[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, tx.Data())
	assert.Equal(t, uint64(7), tx.Value().Uint64())
	assert.Equal(t, common.Address{1}, *tx.To())
}

func TestHashIndependentOfRecovery(t *testing.T) {
	// a signature with zero r and s cannot be recovered, the hash still works
	raw := rlp.EncodeBytesList(nil, nil, nil, nil, nil, nil, []byte{0xcb}, nil, nil)
	tx, err := DecodeRawTransaction(raw)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash(raw), tx.Hash())
	assert.False(t, tx.Signature().Valid())

	_, err = Sender(NewEIP155Signer(big.NewInt(84)), tx)
	var rerr *crypto.RecoveryError
	assert.ErrorAs(t, err, &rerr)
}

func TestTransactionJSON(t *testing.T) {
	tx, err := DecodeRawTransaction(eip155Raw)
	require.NoError(t, err)
	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var parsed SignedTransaction
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, tx.Equal(&parsed))
	assert.Equal(t, tx.Hash(), parsed.Hash())

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "0x25", fields["v"])
	assert.Equal(t, "0x1", fields["chainId"])
	assert.Equal(t, "0x9", fields["nonce"])
	assert.Equal(t, "0x4a817c800", fields["gasPrice"])
}

func TestRPCTransaction(t *testing.T) {
	tx, err := DecodeRawTransaction(zeroRaw)
	require.NoError(t, err)
	rpcTx := NewRPCTransaction(tx, zeroAddr)

	data, err := json.Marshal(rpcTx)
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Nil(t, fields["blockHash"])
	assert.Nil(t, fields["blockNumber"])
	assert.Equal(t, "0x71562b71999873db5b286df957af199ec94617f7", fields["from"])
	assert.Equal(t, "0x54", fields["chainId"])
	assert.Equal(t, "0xcb", fields["v"])
	assert.Equal(t, tx.Hash().Hex(), fields["hash"])
}
