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

// Package bridge forwards read-only calls to a remote execution engine.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/rpc"
	"github.com/holiman/uint256"
)

// DefaultTimeout bounds a forwarded call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// ErrNoBridge is returned when a call is forwarded without a configured bridge.
var ErrNoBridge = errors.New("no bridge configured")

// CallMsg contains the parameters of a forwarded contract call.
type CallMsg struct {
	From     common.Address  // the sender of the 'transaction'
	To       *common.Address // the destination contract (nil for contract creation)
	Gas      uint64          // if 0, the call executes with near-infinite gas
	GasPrice *uint256.Int    // wei <-> gas exchange ratio
	Value    *uint256.Int    // amount of wei sent along with the call
	Data     []byte          // input data, usually an ABI-encoded contract method invocation
}

// Forwarder executes calls on behalf of the API.
type Forwarder interface {
	Call(ctx context.Context, msg CallMsg) (hexutil.Bytes, error)
}

// Call forwards msg through f. A nil forwarder yields ErrNoBridge.
func Call(ctx context.Context, f Forwarder, msg CallMsg) (hexutil.Bytes, error) {
	if f == nil {
		return nil, ErrNoBridge
	}
	return f.Call(ctx, msg)
}

// Client is a Forwarder speaking JSON-RPC to the remote engine.
type Client struct {
	c       *rpc.Client
	timeout time.Duration
}

// Dial connects to the engine at endpoint. Options such as rpc.WithHTTPAuth are
// applied to the websocket handshake.
func Dial(ctx context.Context, endpoint string, timeout time.Duration, opts ...rpc.ClientOption) (*Client, error) {
	c, err := rpc.DialOptions(ctx, endpoint, opts...)
	if err != nil {
		return nil, err
	}
	log.Info("Connected execution bridge", "endpoint", endpoint)
	return NewClient(c, timeout), nil
}

// NewClient creates a forwarder that uses the given RPC client.
func NewClient(c *rpc.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{c: c, timeout: timeout}
}

// Close closes the underlying RPC connection.
func (fc *Client) Close() {
	fc.c.Close()
}

// Call sends msg as eth_call against the latest state of the engine and waits
// at most the configured timeout for the answer.
func (fc *Client) Call(ctx context.Context, msg CallMsg) (hexutil.Bytes, error) {
	ctx, cancel := context.WithTimeout(ctx, fc.timeout)
	defer cancel()

	var hex hexutil.Bytes
	if err := fc.c.CallContext(ctx, &hex, "eth_call", toCallArg(msg), "latest"); err != nil {
		return nil, err
	}
	return hex, nil
}

func toCallArg(msg CallMsg) interface{} {
	arg := map[string]interface{}{
		"from": msg.From,
		"to":   msg.To,
	}
	if len(msg.Data) > 0 {
		arg["input"] = hexutil.Bytes(msg.Data)
	}
	if msg.Value != nil {
		arg["value"] = (*hexutil.U256)(msg.Value)
	}
	if msg.Gas != 0 {
		arg["gas"] = hexutil.Uint64(msg.Gas)
	}
	if msg.GasPrice != nil {
		arg["gasPrice"] = (*hexutil.U256)(msg.GasPrice)
	}
	return arg
}
