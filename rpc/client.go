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

package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sync"

	"github.com/biiot/signchecker/log"
	"github.com/google/uuid"
)

var (
	ErrClientQuit = errors.New("client is closed")
	ErrNoResult   = errors.New("JSON-RPC response has no result")
)

// Client represents a connection to an RPC server. Requests are identified by
// StringID values holding random UUIDs unless another generator is configured.
type Client struct {
	conn  ServerCodec
	idgen func() ID

	mu      sync.Mutex
	pending map[ID]chan *jsonrpcMessage
	readErr error

	closeOnce sync.Once
	didClose  chan struct{} // closed when the read loop exits
}

// Dial creates a new client for the given URL.
//
// The currently supported URL schemes are "ws" and "wss".
func Dial(rawurl string) (*Client, error) {
	return DialOptions(context.Background(), rawurl)
}

// DialOptions creates a new RPC client for the given URL. You can supply any of the
// pre-defined client options to configure the underlying transport.
//
// The context is used to cancel or time out the initial connection establishment. It does
// not affect subsequent interactions with the client.
func DialOptions(ctx context.Context, rawurl string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, err
	}
	cfg := new(clientConfig)
	for _, opt := range options {
		opt.applyOption(cfg)
	}
	switch u.Scheme {
	case "ws", "wss":
		conn, err := dialWebsocket(ctx, rawurl, cfg)
		if err != nil {
			return nil, err
		}
		return newClient(conn, cfg), nil
	default:
		return nil, fmt.Errorf("no known transport for URL scheme %q", u.Scheme)
	}
}

func newClient(conn ServerCodec, cfg *clientConfig) *Client {
	c := &Client{
		conn:     conn,
		idgen:    cfg.idgen,
		pending:  make(map[ID]chan *jsonrpcMessage),
		didClose: make(chan struct{}),
	}
	if c.idgen == nil {
		c.idgen = func() ID { return StringID(uuid.NewString()) }
	}
	go c.read()
	return c
}

// Close closes the connection and fails all pending calls.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.conn.close()
	})
	<-c.didClose
}

// Call performs a JSON-RPC call with the given arguments and unmarshals into
// result if no error occurred.
//
// The result must be a pointer so that package json can unmarshal into it. You
// can also pass nil, in which case the result is ignored.
func (c *Client) Call(result interface{}, method string, args ...interface{}) error {
	return c.CallContext(context.Background(), result, method, args...)
}

// CallContext performs a JSON-RPC call with the given arguments. If the context is
// canceled before the call has successfully returned, CallContext returns immediately.
//
// The result must be a pointer so that package json can unmarshal into it. You
// can also pass nil, in which case the result is ignored.
func (c *Client) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if result != nil && reflect.TypeOf(result).Kind() != reflect.Ptr {
		return fmt.Errorf("call result parameter must be pointer or nil interface: %v", result)
	}
	msg, err := c.newMessage(method, args...)
	if err != nil {
		return err
	}
	id := msg.requestID()
	respc := make(chan *jsonrpcMessage, 1)

	c.mu.Lock()
	if c.readErr != nil {
		c.mu.Unlock()
		return c.readErr
	}
	c.pending[id] = respc
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.conn.writeJSON(ctx, msg, false); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case resp, ok := <-respc:
		if !ok {
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.readErr
		}
		switch {
		case resp.Error != nil:
			return resp.Error
		case len(resp.Result) == 0:
			return ErrNoResult
		case result == nil:
			return nil
		default:
			return json.Unmarshal(resp.Result, result)
		}
	}
}

func (c *Client) newMessage(method string, paramsIn ...interface{}) (*jsonrpcMessage, error) {
	msg := &jsonrpcMessage{Version: vsn, ID: encodeID(c.idgen()), Method: method}
	if paramsIn != nil { // prevent sending "params":null
		var err error
		if msg.Params, err = json.Marshal(paramsIn); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// read decodes RPC messages from the connection and routes responses to the
// waiting callers.
func (c *Client) read() {
	defer close(c.didClose)

	for {
		msgs, _, err := c.conn.readBatch()
		if err != nil {
			c.mu.Lock()
			c.readErr = ErrClientQuit
			for id, respc := range c.pending {
				close(respc)
				delete(c.pending, id)
			}
			c.mu.Unlock()
			c.conn.close()
			return
		}
		for _, msg := range msgs {
			if !msg.isResponse() {
				log.Debug("Ignoring RPC message from server", "method", msg.Method)
				continue
			}
			id := msg.requestID()
			c.mu.Lock()
			respc := c.pending[id]
			delete(c.pending, id)
			c.mu.Unlock()
			if respc == nil {
				log.Debug("Unsolicited RPC response", "reqid", idForLog{id})
				continue
			}
			respc <- msg
		}
	}
}
