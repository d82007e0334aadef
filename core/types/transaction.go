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
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/bigendian"
	"github.com/biiot/signchecker/rlp"
	"github.com/holiman/uint256"
)

var (
	ErrInvalidSig       = errors.New("invalid transaction v, r, s values")
	ErrInvalidChainId   = errors.New("invalid chain id for signer")
	ErrInvalidRecipient = errors.New("recipient must be empty or 20 bytes")
)

// Positions of the fields in the RLP list of a signed transaction.
const (
	nonceField = iota
	gasPriceField
	gasField
	toField
	valueField
	dataField
	vField
	rField
	sField

	// WireFieldCount is the number of items in an encoded signed transaction.
	WireFieldCount
)

// Signature carries the signature values of a transaction. V encodes the
// recovery id, and since EIP-155 also the chain id.
type Signature struct {
	V    uint64
	R, S [32]byte
}

// Valid reports whether R and S are non-zero.
func (sig Signature) Valid() bool {
	return sig.R != [32]byte{} && sig.S != [32]byte{}
}

// Protected reports whether V is chain-id encoded (EIP-155).
func (sig Signature) Protected() bool {
	return sig.V >= 35
}

// ChainID derives the chain id from V, or returns zero for unprotected
// signatures.
func (sig Signature) ChainID() *big.Int {
	if !sig.Protected() {
		return new(big.Int)
	}
	return new(big.Int).SetUint64((sig.V - 35) / 2)
}

// Values returns v, r, s as big integers.
func (sig Signature) Values() (v, r, s *big.Int) {
	return new(big.Int).SetUint64(sig.V), new(big.Int).SetBytes(sig.R[:]), new(big.Int).SetBytes(sig.S[:])
}

// SignedTransaction is an unsigned transaction with a signature attached.
type SignedTransaction struct {
	UnsignedTransaction
	sig Signature

	// enc is the encoding the transaction was decoded from, nil for
	// transactions built locally.
	enc []byte

	// caches
	hash atomic.Pointer[common.Hash]
	from atomic.Pointer[sigCache]
}

// NewSignedTx attaches sig to a copy of tx.
func NewSignedTx(tx *UnsignedTransaction, sig Signature) *SignedTransaction {
	return &SignedTransaction{
		UnsignedTransaction: UnsignedTransaction{
			nonce:    tx.nonce,
			gasPrice: tx.gasPrice,
			gas:      tx.gas,
			to:       copyAddressPtr(tx.to),
			value:    tx.value,
			data:     common.CopyBytes(tx.data),
		},
		sig: sig,
	}
}

// FromWireFields builds a signed transaction from the nine raw items of the
// wire list. Integer items are decoded permissively: empty means zero and
// leading zero bytes are accepted. An empty recipient denotes contract
// creation.
func FromWireFields(fields [WireFieldCount][]byte) (*SignedTransaction, error) {
	l := rlp.NewList(fields[:]...)

	var (
		tx  = new(SignedTransaction)
		err error
		v   *uint256.Int
	)
	if tx.nonce, err = l.Uint64(nonceField); err != nil {
		return nil, err
	}
	if v, err = l.Uint256(gasPriceField); err != nil {
		return nil, err
	}
	tx.gasPrice = *v
	if tx.gas, err = l.Uint64(gasField); err != nil {
		return nil, err
	}
	switch to := fields[toField]; len(to) {
	case 0:
	case common.AddressLength:
		addr := common.BytesToAddress(to)
		tx.to = &addr
	default:
		return nil, &rlp.DecodeError{Err: ErrInvalidRecipient, Index: toField, Want: common.AddressLength, Have: len(to)}
	}
	if v, err = l.Uint256(valueField); err != nil {
		return nil, err
	}
	tx.value = *v
	tx.data = common.CopyBytes(fields[dataField])

	if tx.sig.V, err = l.Uint64(vField); err != nil {
		return nil, err
	}
	if v, err = l.Uint256(rField); err != nil {
		return nil, err
	}
	tx.sig.R = v.Bytes32()
	if v, err = l.Uint256(sField); err != nil {
		return nil, err
	}
	tx.sig.S = v.Bytes32()
	return tx, nil
}

// WireFields returns the nine list items in canonical form: integers are
// minimal big-endian and the recipient is empty for contract creation.
func (tx *SignedTransaction) WireFields() [WireFieldCount][]byte {
	var f [WireFieldCount][]byte
	f[nonceField] = bigendian.Uint64Bytes(tx.nonce)
	f[gasPriceField] = bigendian.Uint256Bytes(&tx.gasPrice)
	f[gasField] = bigendian.Uint64Bytes(tx.gas)
	if tx.to != nil {
		f[toField] = common.CopyBytes(tx.to[:])
	} else {
		f[toField] = []byte{}
	}
	f[valueField] = bigendian.Uint256Bytes(&tx.value)
	f[dataField] = common.CopyBytes(tx.data)
	f[vField] = bigendian.Uint64Bytes(tx.sig.V)
	f[rField] = common.CopyBytes(bigendian.Trim(tx.sig.R[:]))
	f[sField] = common.CopyBytes(bigendian.Trim(tx.sig.S[:]))
	return f
}

// DecodeRawTransaction decodes a raw signed transaction as submitted through
// eth_sendRawTransaction. The input must be exactly one RLP list of nine byte
// strings.
func DecodeRawTransaction(raw []byte) (*SignedTransaction, error) {
	l, err := rlp.DecodeListN(raw, WireFieldCount)
	if err != nil {
		return nil, err
	}
	var fields [WireFieldCount][]byte
	for i := range fields {
		fields[i], _ = l.At(i)
	}
	tx, err := FromWireFields(fields)
	if err != nil {
		return nil, err
	}
	tx.enc = common.CopyBytes(raw)
	return tx, nil
}

// MarshalBinary returns the canonical RLP encoding of the nine field tuple.
func (tx *SignedTransaction) MarshalBinary() ([]byte, error) {
	f := tx.WireFields()
	return rlp.EncodeBytesList(f[:]...), nil
}

// UnmarshalBinary decodes the canonical encoding of transactions.
func (tx *SignedTransaction) UnmarshalBinary(b []byte) error {
	dec, err := DecodeRawTransaction(b)
	if err != nil {
		return err
	}
	tx.UnsignedTransaction = dec.UnsignedTransaction
	tx.sig = dec.sig
	tx.enc = dec.enc
	tx.hash.Store(nil)
	tx.from.Store(nil)
	return nil
}

// Encoded returns the bytes the transaction was decoded from, or the canonical
// encoding for locally built transactions.
func (tx *SignedTransaction) Encoded() []byte {
	if tx.enc != nil {
		return common.CopyBytes(tx.enc)
	}
	enc, _ := tx.MarshalBinary()
	return enc
}

// SigningPreimage returns the RLP encoding of all nine fields including v, r
// and s. Sender recovery in ObservedPreimage mode hashes this instead of the
// EIP-155 preimage. A contract creation is encoded with the zero address as
// recipient, the way wallets relying on this form compute it.
func (tx *SignedTransaction) SigningPreimage() []byte {
	f := tx.WireFields()
	if tx.to == nil {
		f[toField] = make([]byte, common.AddressLength)
	}
	return rlp.EncodeBytesList(f[:]...)
}

// Signature returns the signature values of the transaction.
func (tx *SignedTransaction) Signature() Signature { return tx.sig }

// RawSignatureValues returns the V, R, S signature values of the transaction.
// The return values should not be modified by the caller.
func (tx *SignedTransaction) RawSignatureValues() (v, r, s *big.Int) {
	return tx.sig.Values()
}

// Protected says whether the transaction is replay-protected.
func (tx *SignedTransaction) Protected() bool { return tx.sig.Protected() }

// ChainId returns the EIP155 chain ID of the transaction. The return value will
// always be non-nil. For legacy transactions which are not replay-protected,
// the return value is zero.
func (tx *SignedTransaction) ChainId() *big.Int { return tx.sig.ChainID() }

// Unsigned returns the transaction without its signature.
func (tx *SignedTransaction) Unsigned() *UnsignedTransaction {
	return &tx.UnsignedTransaction
}

// Hash returns the transaction hash: keccak256 of the encoding it was received
// in. It never depends on signature validity.
func (tx *SignedTransaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return *hash
	}
	h := keccakHash(tx.Encoded())
	tx.hash.Store(&h)
	return h
}

// Size returns the encoded size of the transaction.
func (tx *SignedTransaction) Size() uint64 {
	return uint64(len(tx.Encoded()))
}

// Equal reports whether both transactions have the same fields and signature.
func (tx *SignedTransaction) Equal(other *SignedTransaction) bool {
	return tx.UnsignedTransaction.Equal(&other.UnsignedTransaction) && tx.sig == other.sig
}

// String implements fmt.Stringer for log output.
func (tx *SignedTransaction) String() string {
	to := "<contract creation>"
	if tx.to != nil {
		to = tx.to.Hex()
	}
	return fmt.Sprintf("tx %s nonce=%d to=%s value=%s v=%d", tx.Hash().TerminalString(), tx.nonce, to, tx.value.Dec(), tx.sig.V)
}
