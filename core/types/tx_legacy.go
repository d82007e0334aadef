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
	"math/big"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/rlp"
	"github.com/holiman/uint256"
)

// LegacyTx is the transaction data of the original Ethereum transactions. It is
// the mutable builder input of NewTx.
type LegacyTx struct {
	Nonce    uint64          // nonce of sender account
	GasPrice *uint256.Int    // wei per gas
	Gas      uint64          // gas limit
	To       *common.Address // nil means contract creation
	Value    *uint256.Int    // wei amount
	Data     []byte          // contract invocation input data
}

// UnsignedTransaction is an immutable legacy transaction without signature.
type UnsignedTransaction struct {
	nonce    uint64
	gasPrice uint256.Int
	gas      uint64
	to       *common.Address
	value    uint256.Int
	data     []byte
}

// NewTx creates an unsigned transaction from a deep copy of d. Nil amounts are
// treated as zero.
func NewTx(d *LegacyTx) *UnsignedTransaction {
	tx := &UnsignedTransaction{
		nonce: d.Nonce,
		gas:   d.Gas,
		to:    copyAddressPtr(d.To),
		data:  common.CopyBytes(d.Data),
	}
	if d.GasPrice != nil {
		tx.gasPrice.Set(d.GasPrice)
	}
	if d.Value != nil {
		tx.value.Set(d.Value)
	}
	return tx
}

// NewTransaction creates an unsigned value transfer or call.
func NewTransaction(nonce uint64, to common.Address, amount *uint256.Int, gasLimit uint64, gasPrice *uint256.Int, data []byte) *UnsignedTransaction {
	return NewTx(&LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// NewContractCreation creates an unsigned transaction without recipient.
func NewContractCreation(nonce uint64, amount *uint256.Int, gasLimit uint64, gasPrice *uint256.Int, data []byte) *UnsignedTransaction {
	return NewTx(&LegacyTx{
		Nonce:    nonce,
		Value:    amount,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
}

// Nonce returns the sender account nonce of the transaction.
func (tx *UnsignedTransaction) Nonce() uint64 { return tx.nonce }

// Gas returns the gas limit of the transaction.
func (tx *UnsignedTransaction) Gas() uint64 { return tx.gas }

// GasPrice returns a copy of the gas price of the transaction.
func (tx *UnsignedTransaction) GasPrice() *uint256.Int { return new(uint256.Int).Set(&tx.gasPrice) }

// Value returns a copy of the ether amount of the transaction.
func (tx *UnsignedTransaction) Value() *uint256.Int { return new(uint256.Int).Set(&tx.value) }

// Data returns a copy of the input data of the transaction.
func (tx *UnsignedTransaction) Data() []byte { return common.CopyBytes(tx.data) }

// To returns the recipient address of the transaction.
// For contract-creation transactions, To returns nil.
func (tx *UnsignedTransaction) To() *common.Address { return copyAddressPtr(tx.to) }

// Equal reports whether both transactions carry the same fields.
func (tx *UnsignedTransaction) Equal(other *UnsignedTransaction) bool {
	if tx.nonce != other.nonce || tx.gas != other.gas ||
		!tx.gasPrice.Eq(&other.gasPrice) || !tx.value.Eq(&other.value) ||
		string(tx.data) != string(other.data) {
		return false
	}
	if tx.to == nil || other.to == nil {
		return tx.to == nil && other.to == nil
	}
	return *tx.to == *other.to
}

// writeFields appends the six unsigned fields to an open list.
func (tx *UnsignedTransaction) writeFields(w rlp.EncoderBuffer) {
	w.WriteUint64(tx.nonce)
	w.WriteUint256(&tx.gasPrice)
	w.WriteUint64(tx.gas)
	if tx.to == nil {
		w.WriteBytes(nil)
	} else {
		w.WriteBytes(tx.to[:])
	}
	w.WriteUint256(&tx.value)
	w.WriteBytes(tx.data)
}

// EIP155SigningPreimage returns the RLP encoding of
// [nonce, gasPrice, gas, to, value, data, chainId, 0, 0]. Its keccak256 hash
// is what a replay protected signature commits to.
func (tx *UnsignedTransaction) EIP155SigningPreimage(chainID *big.Int) []byte {
	w := rlp.NewEncoderBuffer(nil)
	l := w.List()
	tx.writeFields(w)
	w.WriteBytes(chainID.Bytes())
	w.WriteUint64(0)
	w.WriteUint64(0)
	w.ListEnd(l)
	enc := w.ToBytes()
	w.Flush()
	return enc
}

// HomesteadSigningPreimage returns the RLP encoding of the six unsigned fields,
// signed by transactions without replay protection (v = 27 or 28).
func (tx *UnsignedTransaction) HomesteadSigningPreimage() []byte {
	w := rlp.NewEncoderBuffer(nil)
	l := w.List()
	tx.writeFields(w)
	w.ListEnd(l)
	enc := w.ToBytes()
	w.Flush()
	return enc
}

// copyAddressPtr copies an address.
func copyAddressPtr(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}
