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
	"errors"
	"fmt"

	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/crypto"
	"github.com/biiot/signchecker/rlp"
)

var (
	errUnprotectedTx   = errors.New("only replay-protected (EIP-155) transactions allowed over RPC")
	errDataInputClash  = errors.New(`both "data" and "input" are set and not equal. Please use "input" to pass transaction call data`)
	errEmptyCreation   = errors.New(`contract creation without any data provided`)
	errChainIDMismatch = errors.New("chainId does not match node's")
)

// invalidTxError is an API error for transactions that could not be accepted.
type invalidTxError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *invalidTxError) Error() string  { return e.Message }
func (e *invalidTxError) ErrorCode() int { return e.Code }

const (
	errCodeInternalError = -32603
	errCodeInvalidParams = -32602
	errCodeDefault       = -32000
	errCodeSenderUnknown = -32010
)

// txValidationError maps decoding and signature failures to JSON-RPC errors.
func txValidationError(err error) *invalidTxError {
	if err == nil {
		return nil
	}
	var (
		decErr *rlp.DecodeError
		recErr *crypto.RecoveryError
	)
	switch {
	case errors.As(err, &decErr):
		return &invalidTxError{Message: err.Error(), Code: errCodeInvalidParams}
	case errors.Is(err, types.ErrInvalidChainId), errors.Is(err, types.ErrInvalidSig):
		return &invalidTxError{Message: err.Error(), Code: errCodeSenderUnknown}
	case errors.As(err, &recErr):
		return &invalidTxError{Message: err.Error(), Code: errCodeSenderUnknown}
	}
	return &invalidTxError{
		Message: err.Error(),
		Code:    errCodeInternalError,
	}
}

// bridgeError is returned when the execution bridge failed a forwarded call.
// The underlying error is kept as data.
type bridgeError struct {
	error
	cause string
}

func newBridgeError(err error) *bridgeError {
	return &bridgeError{
		error: fmt.Errorf("call forwarding failed: %w", err),
		cause: err.Error(),
	}
}

func (e *bridgeError) ErrorCode() int { return errCodeDefault }

func (e *bridgeError) ErrorData() interface{} { return e.cause }

type invalidParamsError struct{ message string }

func (e *invalidParamsError) Error() string  { return e.message }
func (e *invalidParamsError) ErrorCode() int { return errCodeInvalidParams }
