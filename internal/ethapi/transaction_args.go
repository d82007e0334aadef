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

package ethapi

import (
	"bytes"
	"context"
	"fmt"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/internal/bridge"
	"github.com/biiot/signchecker/params"
)

// TransactionArgs represents the arguments to construct a new transaction
// or a message call.
type TransactionArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.U256   `json:"gasPrice"`
	Value    *hexutil.U256   `json:"value"`
	Nonce    *hexutil.Uint64 `json:"nonce"`

	// We accept "data" and "input" for backwards-compatibility reasons.
	// "input" is the newer name and should be preferred by clients.
	Data  *hexutil.Bytes `json:"data"`
	Input *hexutil.Bytes `json:"input"`

	ChainID *hexutil.Big `json:"chainId,omitempty"`
}

// from retrieves the transaction sender address.
func (args *TransactionArgs) from() common.Address {
	if args.From == nil {
		return common.Address{}
	}
	return *args.From
}

// data retrieves the transaction calldata. Input field is preferred.
func (args *TransactionArgs) data() []byte {
	if args.Input != nil {
		return *args.Input
	}
	if args.Data != nil {
		return *args.Data
	}
	return nil
}

// setDefaults fills in default values for unspecified tx fields.
func (args *TransactionArgs) setDefaults(ctx context.Context, b Backend) error {
	if args.GasPrice == nil {
		args.GasPrice = new(hexutil.U256)
	}
	if args.Value == nil {
		args.Value = new(hexutil.U256)
	}
	if args.Gas == nil {
		gas := hexutil.Uint64(params.TxGas)
		args.Gas = &gas
	}
	if args.Nonce == nil {
		nonce, err := b.GetPoolNonce(ctx, args.from())
		if err != nil {
			return err
		}
		args.Nonce = (*hexutil.Uint64)(&nonce)
	}
	if args.Data != nil && args.Input != nil && !bytes.Equal(*args.Data, *args.Input) {
		return errDataInputClash
	}
	if args.To == nil && len(args.data()) == 0 {
		return errEmptyCreation
	}

	want := b.ChainConfig().ChainID
	if args.ChainID != nil {
		if args.ChainID.ToInt().Cmp(want) != 0 {
			return fmt.Errorf("%w: have %v want %v", errChainIDMismatch, args.ChainID.ToInt(), want)
		}
	} else {
		args.ChainID = (*hexutil.Big)(want)
	}
	return nil
}

// ToTransaction converts the arguments to an unsigned transaction. This assumes
// that setDefaults has been called.
func (args *TransactionArgs) ToTransaction() *types.UnsignedTransaction {
	return types.NewTx(&types.LegacyTx{
		Nonce:    uint64(*args.Nonce),
		GasPrice: args.GasPrice.ToU256(),
		Gas:      uint64(*args.Gas),
		To:       args.To,
		Value:    args.Value.ToU256(),
		Data:     args.data(),
	})
}

// ToCallMsg converts the arguments to the message forwarded for eth_call.
// Unset amounts stay nil.
func (args *TransactionArgs) ToCallMsg() bridge.CallMsg {
	msg := bridge.CallMsg{
		From: args.from(),
		To:   args.To,
		Data: args.data(),
	}
	if args.Gas != nil {
		msg.Gas = uint64(*args.Gas)
	}
	if args.GasPrice != nil {
		msg.GasPrice = args.GasPrice.ToU256()
	}
	if args.Value != nil {
		msg.Value = args.Value.ToU256()
	}
	return msg
}
