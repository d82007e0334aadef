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

package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/rpc"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engine plays the remote execution engine.
type engine struct {
	calls chan map[string]interface{}
}

func (e *engine) Call(ctx context.Context, args map[string]interface{}, block string) (hexutil.Bytes, error) {
	e.calls <- args
	if args["input"] == "0xdead" {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return hexutil.Bytes{0x01, 0x02}, nil
}

func startEngine(t *testing.T) (*engine, string, chan string) {
	t.Helper()
	e := &engine{calls: make(chan map[string]interface{}, 4)}
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", e))

	auth := make(chan string, 4)
	wsh := srv.WebsocketHandler([]string{"*"})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("authorization")
		wsh.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		srv.Stop()
		ts.Close()
	})
	return e, "ws:" + strings.TrimPrefix(ts.URL, "http:"), auth
}

func TestNilForwarder(t *testing.T) {
	_, err := Call(context.Background(), nil, CallMsg{})
	assert.ErrorIs(t, err, ErrNoBridge)
}

func TestClientCall(t *testing.T) {
	e, url, auth := startEngine(t)

	bearer := rpc.WithHTTPAuth(func(h http.Header) error {
		h.Set("authorization", "Bearer secret")
		return nil
	})
	fc, err := Dial(context.Background(), url, time.Second, bearer)
	require.NoError(t, err)
	defer fc.Close()
	assert.Equal(t, "Bearer secret", <-auth)

	to := common.HexToAddress("0x3535353535353535353535353535353535353535")
	ret, err := Call(context.Background(), fc, CallMsg{
		From:  common.HexToAddress("0x01"),
		To:    &to,
		Gas:   21000,
		Value: uint256.NewInt(1),
		Data:  []byte{0xca, 0xfe},
	})
	require.NoError(t, err)
	assert.Equal(t, hexutil.Bytes{0x01, 0x02}, ret)

	args := <-e.calls
	assert.Equal(t, "0x0000000000000000000000000000000000000001", args["from"])
	assert.Equal(t, to.Hex(), args["to"])
	assert.Equal(t, "0x5208", args["gas"])
	assert.Equal(t, "0x1", args["value"])
	assert.Equal(t, "0xcafe", args["input"])
	assert.NotContains(t, args, "gasPrice")
}

func TestClientTimeout(t *testing.T) {
	_, url, _ := startEngine(t)

	fc, err := Dial(context.Background(), url, 50*time.Millisecond)
	require.NoError(t, err)
	defer fc.Close()

	start := time.Now()
	_, err = fc.Call(context.Background(), CallMsg{Data: []byte{0xde, 0xad}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDefaultTimeout(t *testing.T) {
	fc := NewClient(nil, 0)
	assert.Equal(t, DefaultTimeout, fc.timeout)
}
