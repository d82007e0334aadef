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

package node

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	status int
	header http.Header
	body   string
}

// rpcRequest posts a JSON-RPC body to url with the given extra headers.
func rpcRequest(t *testing.T, url, body string, extra map[string]string) rpcResponse {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("content-type", "application/json")
	for k, v := range extra {
		if k == "Host" {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	blob, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return rpcResponse{status: resp.StatusCode, header: resp.Header, body: string(blob)}
}

func startHTTPNode(t *testing.T, mutate func(*Config)) *Node {
	t.Helper()

	cfg := testNodeConfig()
	cfg.HTTPHost = "127.0.0.1"
	cfg.HTTPModules = []string{"web3"}
	cfg.HTTPVirtualHosts = []string{"localhost"}
	if mutate != nil {
		mutate(cfg)
	}
	stack, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, stack.Start())
	t.Cleanup(func() { stack.Close() })
	return stack
}

const clientVersionCall = `{"jsonrpc":"2.0","id":1,"method":"web3_clientVersion"}`

func TestHTTPServe(t *testing.T) {
	stack := startHTTPNode(t, nil)

	resp := rpcRequest(t, stack.HTTPEndpoint(), clientVersionCall, nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `"result"`)
}

func TestHTTPModulesRestricted(t *testing.T) {
	stack := startHTTPNode(t, func(cfg *Config) { cfg.HTTPModules = []string{"eth"} })

	resp := rpcRequest(t, stack.HTTPEndpoint(), clientVersionCall, nil)
	assert.Contains(t, resp.body, "-32601")
}

func TestVhosts(t *testing.T) {
	stack := startHTTPNode(t, nil)
	url := stack.HTTPEndpoint()

	resp := rpcRequest(t, url, clientVersionCall, map[string]string{"Host": "localhost"})
	assert.Equal(t, http.StatusOK, resp.status)

	resp = rpcRequest(t, url, clientVersionCall, map[string]string{"Host": "evil.example.com"})
	assert.Equal(t, http.StatusForbidden, resp.status)
}

func TestCorsHeaders(t *testing.T) {
	stack := startHTTPNode(t, func(cfg *Config) { cfg.HTTPCors = []string{"https://wallet.example"} })
	url := stack.HTTPEndpoint()

	resp := rpcRequest(t, url, clientVersionCall, map[string]string{"Origin": "https://wallet.example"})
	assert.Equal(t, "https://wallet.example", resp.header.Get("Access-Control-Allow-Origin"))

	resp = rpcRequest(t, url, clientVersionCall, map[string]string{"Origin": "https://other.example"})
	assert.Empty(t, resp.header.Get("Access-Control-Allow-Origin"))
}

func TestHTTPPathPrefix(t *testing.T) {
	stack := startHTTPNode(t, func(cfg *Config) { cfg.HTTPPathPrefix = "/wallet" })
	url := stack.HTTPEndpoint()

	assert.Equal(t, http.StatusNotFound, rpcRequest(t, url, clientVersionCall, nil).status)
	assert.Equal(t, http.StatusOK, rpcRequest(t, url+"/wallet", clientVersionCall, nil).status)
}

func TestLegacy404(t *testing.T) {
	stack := startHTTPNode(t, func(cfg *Config) { cfg.Legacy404 = true })
	url := stack.HTTPEndpoint()

	unknown := `{"jsonrpc":"2.0","id":1,"method":"eth_mining"}`
	assert.Equal(t, http.StatusNotFound, rpcRequest(t, url, unknown, nil).status)

	// Batches keep their JSON-RPC errors.
	resp := rpcRequest(t, url, "["+unknown+"]", nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "-32601")
}

func TestRateLimit(t *testing.T) {
	stack := startHTTPNode(t, func(cfg *Config) {
		cfg.HTTPRateLimit = 1
		cfg.HTTPRateBurst = 1
	})
	url := stack.HTTPEndpoint()

	assert.Equal(t, http.StatusOK, rpcRequest(t, url, clientVersionCall, nil).status)
	assert.Equal(t, http.StatusTooManyRequests, rpcRequest(t, url, clientVersionCall, nil).status)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(rpcEndpointConfig{}))

	l := newLimiter(rpcEndpointConfig{rateLimit: 10})
	require.NotNil(t, l)
	assert.Equal(t, 11, l.Burst())

	l = newLimiter(rpcEndpointConfig{rateLimit: 10, rateBurst: 3})
	assert.Equal(t, 3, l.Burst())
}

func TestJWTAuthentication(t *testing.T) {
	secretFile := filepath.Join(t.TempDir(), "jwt.hex")
	secret := [32]byte{0x01, 0x02, 0x03}
	require.NoError(t, os.WriteFile(secretFile, []byte(hexutil.Encode(secret[:])), 0600))

	stack := startHTTPNode(t, func(cfg *Config) {
		cfg.JWTSecret = secretFile
		cfg.HTTPModules = []string{"web3", "admin"}
	})
	url := stack.HTTPEndpoint()

	resp := rpcRequest(t, url, clientVersionCall, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = rpcRequest(t, url, clientVersionCall, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	header := make(http.Header)
	require.NoError(t, NewJWTAuth(secret)(header))
	resp = rpcRequest(t, url, `{"jsonrpc":"2.0","id":1,"method":"admin_datadir"}`, map[string]string{"Authorization": header.Get("Authorization")})
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `"result"`)

	// A token signed with another secret is rejected.
	other := make(http.Header)
	require.NoError(t, NewJWTAuth([32]byte{0xff})(other))
	resp = rpcRequest(t, url, clientVersionCall, map[string]string{"Authorization": other.Get("Authorization")})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}

func TestJWTSecretGenerated(t *testing.T) {
	cfg := testNodeConfig()
	cfg.DataDir = t.TempDir()
	stack, err := New(cfg)
	require.NoError(t, err)
	defer stack.Close()

	secret, err := stack.obtainJWTSecret("")
	require.NoError(t, err)
	assert.Len(t, secret, jwtSecretLength)

	// The generated secret is persisted and loaded again.
	loaded, err := ReadJWTSecret(stack.ResolvePath(datadirJWTKey))
	require.NoError(t, err)
	assert.Equal(t, secret, loaded[:])
}

func TestReadJWTSecretInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short")
	require.NoError(t, os.WriteFile(path, []byte("0x1234"), 0600))
	_, err := ReadJWTSecret(path)
	assert.ErrorContains(t, err, "invalid JWT secret")
}

func TestWebsocketSharedPort(t *testing.T) {
	stack := startHTTPNode(t, func(cfg *Config) {
		cfg.WSHost = "127.0.0.1"
		cfg.WSModules = []string{"web3"}
	})
	assert.Equal(t, strings.TrimPrefix(stack.HTTPEndpoint(), "http://"), strings.TrimPrefix(stack.WSEndpoint(), "ws://"))

	client, err := rpc.DialOptions(context.Background(), stack.WSEndpoint())
	require.NoError(t, err)
	defer client.Close()

	var version string
	require.NoError(t, client.Call(&version, "web3_clientVersion"))
	assert.NotEmpty(t, version)

	// Plain HTTP keeps working on the same listener.
	assert.Equal(t, http.StatusOK, rpcRequest(t, stack.HTTPEndpoint(), clientVersionCall, nil).status)
}

func TestValidatePrefix(t *testing.T) {
	assert.NoError(t, validatePrefix("HTTP", ""))
	assert.NoError(t, validatePrefix("HTTP", "/rpc"))
	assert.Error(t, validatePrefix("HTTP", "rpc"))
	assert.Error(t, validatePrefix("HTTP", "/rpc?x"))
}

func TestIsWebsocket(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, isWebsocket(r))
	r.Header.Set("Upgrade", "WebSocket")
	r.Header.Set("Connection", "keep-alive, Upgrade")
	assert.True(t, isWebsocket(r))
}
