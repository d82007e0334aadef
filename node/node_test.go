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
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNodeConfig() *Config {
	return &Config{
		Name:                 "test node",
		BatchRequestLimit:    100,
		BatchResponseMaxSize: 1 << 20,
	}
}

// recordingLifecycle logs its Start and Stop calls into a shared journal.
type recordingLifecycle struct {
	name     string
	calls    *[]string
	startErr error
	stopErr  error
}

func (l *recordingLifecycle) Start() error {
	*l.calls = append(*l.calls, "start "+l.name)
	return l.startErr
}

func (l *recordingLifecycle) Stop() error {
	*l.calls = append(*l.calls, "stop "+l.name)
	return l.stopErr
}

func TestNodeCloseMultipleTimes(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)
	require.NoError(t, stack.Close())
	assert.ErrorIs(t, stack.Close(), ErrNodeStopped)
}

func TestNodeStartMultipleTimes(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)

	require.NoError(t, stack.Start())
	assert.ErrorIs(t, stack.Start(), ErrNodeRunning)
	require.NoError(t, stack.Close())
	assert.ErrorIs(t, stack.Start(), ErrNodeStopped)
}

func TestNodeInvalidName(t *testing.T) {
	for _, name := range []string{"a/b", `a\b`, "journal"} {
		cfg := testNodeConfig()
		cfg.Name = name
		_, err := New(cfg)
		assert.Error(t, err, name)
	}
}

func TestNodeInvalidPrefix(t *testing.T) {
	cfg := testNodeConfig()
	cfg.HTTPPathPrefix = "rpc"
	_, err := New(cfg)
	assert.ErrorContains(t, err, "leading")
}

func TestNodeUsedDataDir(t *testing.T) {
	dir := t.TempDir()

	cfg := testNodeConfig()
	cfg.DataDir = dir
	original, err := New(cfg)
	require.NoError(t, err)
	defer original.Close()

	_, err = New(cfg)
	assert.True(t, errors.Is(err, ErrDatadirUsed), "got %v", err)

	// The lock is released on close.
	require.NoError(t, original.Close())
	again, err := New(cfg)
	require.NoError(t, err)
	again.Close()
}

func TestLifecycleStartStopOrder(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)

	var calls []string
	stack.RegisterLifecycle(&recordingLifecycle{name: "a", calls: &calls})
	stack.RegisterLifecycle(&recordingLifecycle{name: "b", calls: &calls})

	require.NoError(t, stack.Start())
	require.NoError(t, stack.Close())
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, calls)
}

func TestLifecycleStartFailure(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)

	var (
		calls  []string
		failed = errors.New("boom")
	)
	stack.RegisterLifecycle(&recordingLifecycle{name: "a", calls: &calls})
	stack.RegisterLifecycle(&recordingLifecycle{name: "b", calls: &calls, startErr: failed})
	stack.RegisterLifecycle(&recordingLifecycle{name: "c", calls: &calls})

	assert.ErrorIs(t, stack.Start(), failed)
	assert.Equal(t, []string{"start a", "start b", "stop a"}, calls)

	// The failed start closed the node.
	assert.ErrorIs(t, stack.Close(), ErrNodeStopped)
}

func TestLifecycleStopFailure(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)

	var calls []string
	stack.RegisterLifecycle(&recordingLifecycle{name: "a", calls: &calls, stopErr: errors.New("stuck")})
	require.NoError(t, stack.Start())

	err = stack.Close()
	var stopErr *StopError
	require.ErrorAs(t, err, &stopErr)
	assert.Len(t, stopErr.Services, 1)
}

func TestLifecycleRegisterTwice(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)
	defer stack.Close()

	var calls []string
	lc := &recordingLifecycle{name: "a", calls: &calls}
	stack.RegisterLifecycle(lc)
	assert.Panics(t, func() { stack.RegisterLifecycle(lc) })
}

func TestRegisterAfterStart(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)
	require.NoError(t, stack.Start())
	defer stack.Close()

	var calls []string
	assert.Panics(t, func() { stack.RegisterLifecycle(&recordingLifecycle{name: "a", calls: &calls}) })
	assert.Panics(t, func() { stack.RegisterAPIs(nil) })
}

func TestNodeOpenDatabaseEphemeral(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)

	db, err := stack.OpenDatabase("journal", 0, 0, false)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))

	// Closing the node closes databases the services left open.
	require.NoError(t, stack.Close())
	assert.Error(t, db.Put([]byte("k"), []byte("v")))

	_, err = stack.OpenDatabase("journal", 0, 0, false)
	assert.ErrorIs(t, err, ErrNodeStopped)
}

func TestNodeOpenDatabaseOnDisk(t *testing.T) {
	cfg := testNodeConfig()
	cfg.DataDir = t.TempDir()
	cfg.DBEngine = rawdb.DBLeveldb
	stack, err := New(cfg)
	require.NoError(t, err)

	db, err := stack.OpenDatabase("journal", 16, 16, false)
	require.NoError(t, err)
	assert.NotNil(t, rawdb.ReadDatabaseVersion(db))

	// A database closed by its owner is no longer tracked.
	require.NoError(t, db.Close())
	require.NoError(t, stack.Close())

	assert.Equal(t, rawdb.DBLeveldb, rawdb.PreexistingDatabase(filepath.Join(cfg.DataDir, cfg.Name, "journal")))
}

func TestNodeAttach(t *testing.T) {
	stack, err := New(testNodeConfig())
	require.NoError(t, err)
	require.NoError(t, stack.Start())
	defer stack.Close()

	client := stack.Attach()
	defer client.Close()

	var sha hexutil.Bytes
	require.NoError(t, client.Call(&sha, "web3_sha3", "0x"))
	assert.Equal(t, crypto.Keccak256(nil), []byte(sha))

	// The in-process handler serves every namespace.
	var dir string
	require.NoError(t, client.Call(&dir, "admin_datadir"))
	assert.Equal(t, "", dir)
}

func TestAuthenticatedAPIsHidden(t *testing.T) {
	cfg := testNodeConfig()
	cfg.HTTPHost = "127.0.0.1"
	stack, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, stack.Start())
	defer stack.Close()

	resp := rpcRequest(t, stack.HTTPEndpoint(), `{"jsonrpc":"2.0","id":1,"method":"admin_datadir"}`, nil)
	assert.Contains(t, resp.body, "-32601")
}

func TestNodeEndpointsStopped(t *testing.T) {
	cfg := testNodeConfig()
	cfg.HTTPHost = "127.0.0.1"
	stack, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, stack.Start())
	url := stack.HTTPEndpoint()
	require.NoError(t, stack.Close())

	_, err = http.Post(url, "application/json", nil)
	assert.Error(t, err)

	_, err = stack.RPCHandler()
	assert.ErrorIs(t, err, ErrNodeStopped)
}
