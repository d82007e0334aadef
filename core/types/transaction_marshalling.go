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
	"encoding/json"
	"errors"
	"math/big"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/holiman/uint256"
)

// txJSON is the JSON representation of transactions.
type txJSON struct {
	Type hexutil.Uint64 `json:"type"`

	ChainID  *hexutil.Big    `json:"chainId,omitempty"`
	Nonce    *hexutil.Uint64 `json:"nonce"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.U256   `json:"gasPrice"`
	Value    *hexutil.U256   `json:"value"`
	Input    *hexutil.Bytes  `json:"input"`
	V        *hexutil.Uint64 `json:"v"`
	R        *hexutil.U256   `json:"r"`
	S        *hexutil.U256   `json:"s"`

	// Only used for encoding:
	Hash common.Hash `json:"hash"`
}

// MarshalJSON marshals as JSON with a hash.
func (tx *SignedTransaction) MarshalJSON() ([]byte, error) {
	var (
		enc   txJSON
		nonce = hexutil.Uint64(tx.nonce)
		gas   = hexutil.Uint64(tx.gas)
		v     = hexutil.Uint64(tx.sig.V)
		input = hexutil.Bytes(tx.Data())
	)
	enc.Hash = tx.Hash()
	enc.Nonce = &nonce
	enc.To = tx.To()
	enc.Gas = &gas
	enc.GasPrice = (*hexutil.U256)(tx.GasPrice())
	enc.Value = (*hexutil.U256)(tx.Value())
	enc.Input = &input
	enc.V = &v
	enc.R = (*hexutil.U256)(new(uint256.Int).SetBytes32(tx.sig.R[:]))
	enc.S = (*hexutil.U256)(new(uint256.Int).SetBytes32(tx.sig.S[:]))
	if tx.Protected() {
		enc.ChainID = (*hexutil.Big)(tx.ChainId())
	}
	return json.Marshal(&enc)
}

// UnmarshalJSON unmarshals from JSON.
func (tx *SignedTransaction) UnmarshalJSON(input []byte) error {
	var dec txJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.Type != 0 {
		return errors.New("only legacy transactions are supported")
	}
	if dec.Nonce == nil {
		return errors.New("missing required field 'nonce' in transaction")
	}
	if dec.Gas == nil {
		return errors.New("missing required field 'gas' in transaction")
	}
	if dec.GasPrice == nil {
		return errors.New("missing required field 'gasPrice' in transaction")
	}
	if dec.Value == nil {
		return errors.New("missing required field 'value' in transaction")
	}
	if dec.Input == nil {
		return errors.New("missing required field 'input' in transaction")
	}
	if dec.V == nil || dec.R == nil || dec.S == nil {
		return errors.New("missing signature values in transaction")
	}
	utx := NewTx(&LegacyTx{
		Nonce:    uint64(*dec.Nonce),
		GasPrice: dec.GasPrice.ToU256(),
		Gas:      uint64(*dec.Gas),
		To:       dec.To,
		Value:    dec.Value.ToU256(),
		Data:     *dec.Input,
	})
	sig := Signature{V: uint64(*dec.V), R: dec.R.ToU256().Bytes32(), S: dec.S.ToU256().Bytes32()}
	if dec.ChainID != nil && sig.Protected() && sig.ChainID().Cmp(dec.ChainID.ToInt()) != 0 {
		return ErrInvalidChainId
	}
	tx.UnsignedTransaction = *utx
	tx.sig = sig
	tx.enc = nil
	tx.hash.Store(nil)
	tx.from.Store(nil)
	return nil
}

// RPCTransaction represents a transaction that will serialize to the RPC
// representation of a transaction. Block fields stay null, transactions are
// never included in a block here.
type RPCTransaction struct {
	BlockHash        *common.Hash    `json:"blockHash"`
	BlockNumber      *hexutil.Big    `json:"blockNumber"`
	From             common.Address  `json:"from"`
	Gas              hexutil.Uint64  `json:"gas"`
	GasPrice         *hexutil.U256   `json:"gasPrice"`
	Hash             common.Hash     `json:"hash"`
	Input            hexutil.Bytes   `json:"input"`
	Nonce            hexutil.Uint64  `json:"nonce"`
	To               *common.Address `json:"to"`
	TransactionIndex *hexutil.Uint64 `json:"transactionIndex"`
	Value            *hexutil.U256   `json:"value"`
	Type             hexutil.Uint64  `json:"type"`
	ChainID          *hexutil.Big    `json:"chainId,omitempty"`
	V                hexutil.Uint64  `json:"v"`
	R                *hexutil.U256   `json:"r"`
	S                *hexutil.U256   `json:"s"`
}

// NewRPCTransaction returns a transaction that will serialize to the RPC
// representation. from is the recovered sender, the zero address when
// recovery failed.
func NewRPCTransaction(tx *SignedTransaction, from common.Address) *RPCTransaction {
	result := &RPCTransaction{
		From:     from,
		Gas:      hexutil.Uint64(tx.Gas()),
		GasPrice: (*hexutil.U256)(tx.GasPrice()),
		Hash:     tx.Hash(),
		Input:    hexutil.Bytes(tx.Data()),
		Nonce:    hexutil.Uint64(tx.Nonce()),
		To:       tx.To(),
		Value:    (*hexutil.U256)(tx.Value()),
		V:        hexutil.Uint64(tx.sig.V),
		R:        (*hexutil.U256)(new(uint256.Int).SetBytes32(tx.sig.R[:])),
		S:        (*hexutil.U256)(new(uint256.Int).SetBytes32(tx.sig.S[:])),
	}
	if tx.Protected() {
		result.ChainID = (*hexutil.Big)(new(big.Int).Set(tx.ChainId()))
	}
	return result
}
