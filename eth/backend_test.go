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

package eth

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/crypto"
	"github.com/biiot/signchecker/eth/ethconfig"
	"github.com/biiot/signchecker/node"
	"github.com/biiot/signchecker/params"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRecipient = common.HexToAddress("0x3535353535353535353535353535353535353535")

// newTestService creates a node running the service. An empty datadir keeps
// the journal in memory.
func newTestService(t *testing.T, datadir string, mutate func(*ethconfig.Config)) (*node.Node, *Ethereum) {
	t.Helper()

	stack, err := node.New(&node.Config{Name: "signchecker", DataDir: datadir})
	require.NoError(t, err)

	cfg := ethconfig.Defaults
	if mutate != nil {
		mutate(&cfg)
	}
	eth, err := New(stack, &cfg)
	if err != nil {
		stack.Close()
		require.NoError(t, err)
	}
	require.NoError(t, stack.Start())
	t.Cleanup(func() { stack.Close() })
	return stack, eth
}

func writeTestKey(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "signer.key")
	require.NoError(t, crypto.SaveECDSA(file, key))
	return file, key
}

func signTestTx(t *testing.T, key *ecdsa.PrivateKey, nonce uint64) *types.SignedTransaction {
	t.Helper()

	tx, err := types.SignNewTx(key, types.LatestSignerForChainID(big.NewInt(params.DefaultChainID)), &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: uint256.NewInt(params.GWei),
		Gas:      params.TxGas,
		To:       &testRecipient,
		Value:    uint256.NewInt(1),
	})
	require.NoError(t, err)
	return tx
}

func TestServiceDefaults(t *testing.T) {
	stack, eth := newTestService(t, "", nil)

	assert.Equal(t, big.NewInt(params.DefaultChainID), eth.ChainID())
	assert.Nil(t, eth.APIBackend.Forwarder())
	assert.Empty(t, eth.APIBackend.Accounts())

	client := stack.Attach()
	defer client.Close()

	var chainID hexutil.Big
	require.NoError(t, client.Call(&chainID, "eth_chainId"))
	assert.Equal(t, int64(params.DefaultChainID), chainID.ToInt().Int64())

	var version string
	require.NoError(t, client.Call(&version, "net_version"))
	assert.Equal(t, "8504", version)

	stored := rawdb.ReadChainConfig(eth.JournalDb())
	require.NotNil(t, stored)
	assert.Equal(t, eth.ChainID(), stored.ChainID)
}

func TestServiceConfigOverrides(t *testing.T) {
	stack, _ := newTestService(t, "", func(cfg *ethconfig.Config) {
		cfg.ChainID = big.NewInt(1)
		cfg.NetworkId = 1
	})
	client := stack.Attach()
	defer client.Close()

	var chainID string
	require.NoError(t, client.Call(&chainID, "eth_chainId"))
	assert.Equal(t, "0x1", chainID)

	var version string
	require.NoError(t, client.Call(&version, "net_version"))
	assert.Equal(t, "1", version)
}

func TestServiceInvalidConfig(t *testing.T) {
	stack, err := node.New(&node.Config{Name: "signchecker"})
	require.NoError(t, err)
	defer stack.Close()

	cfg := ethconfig.Defaults
	cfg.PreimageMode = "sideways"
	_, err = New(stack, &cfg)
	assert.ErrorContains(t, err, "unknown preimage mode")

	cfg = ethconfig.Defaults
	cfg.SignerKeyFile = filepath.Join(t.TempDir(), "missing.key")
	_, err = New(stack, &cfg)
	assert.ErrorContains(t, err, "failed to load signer key")

	cfg = ethconfig.Defaults
	cfg.Bridge.Endpoint = "ws://127.0.0.1:1"
	cfg.Bridge.Timeout = 500 * time.Millisecond
	_, err = New(stack, &cfg)
	assert.Error(t, err)
}

func TestJournalChainIDMismatch(t *testing.T) {
	datadir := t.TempDir()

	stack, _ := newTestService(t, datadir, nil)
	require.NoError(t, stack.Close())

	stack, err := node.New(&node.Config{Name: "signchecker", DataDir: datadir})
	require.NoError(t, err)
	defer stack.Close()

	cfg := ethconfig.Defaults
	cfg.ChainID = big.NewInt(1)
	_, err = New(stack, &cfg)
	assert.ErrorContains(t, err, "journal was written for chain id 84")
}

func TestJournalSurvivesRestart(t *testing.T) {
	datadir := t.TempDir()
	_, key := writeTestKey(t)
	tx := signTestTx(t, key, 0)

	stack, eth := newTestService(t, datadir, nil)
	sender := crypto.PubkeyToAddress(key.PublicKey)
	require.NoError(t, eth.APIBackend.SendTx(context.Background(), tx, &sender))
	require.NoError(t, stack.Close())

	_, eth = newTestService(t, datadir, nil)
	entry, err := eth.APIBackend.GetTransaction(context.Background(), tx.Hash())
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, tx.Encoded(), entry.Raw)
	assert.Equal(t, &sender, entry.Sender)
}

func TestSignTx(t *testing.T) {
	keyfile, key := writeTestKey(t)
	_, eth := newTestService(t, "", func(cfg *ethconfig.Config) {
		cfg.SignerKeyFile = keyfile
	})
	addr := crypto.PubkeyToAddress(key.PublicKey)
	assert.Equal(t, []common.Address{addr}, eth.APIBackend.Accounts())

	unsigned := types.NewTx(&types.LegacyTx{Gas: params.TxGas, To: &testRecipient})
	signed, err := eth.APIBackend.SignTx(addr, unsigned)
	require.NoError(t, err)
	assert.True(t, signed.Protected())

	from, err := types.Sender(types.LatestSignerForChainID(eth.ChainID()), signed)
	require.NoError(t, err)
	assert.Equal(t, addr, from)

	_, err = eth.APIBackend.SignTx(testRecipient, unsigned)
	assert.ErrorIs(t, err, errUnknownAccount)
}

func TestSignTxWithoutKey(t *testing.T) {
	_, eth := newTestService(t, "", nil)
	_, err := eth.APIBackend.SignTx(testRecipient, types.NewTx(&types.LegacyTx{}))
	assert.ErrorIs(t, err, errNoSigningKey)
}

func TestSendTxDump(t *testing.T) {
	dumpDir := filepath.Join(t.TempDir(), "dumps")
	_, eth := newTestService(t, "", func(cfg *ethconfig.Config) {
		cfg.TxDumpDir = dumpDir
	})
	received := time.Date(2024, time.May, 1, 12, 30, 45, 123, time.UTC)
	eth.APIBackend.now = func() time.Time { return received }

	_, key := writeTestKey(t)
	tx := signTestTx(t, key, 0)
	require.NoError(t, eth.APIBackend.SendTx(context.Background(), tx, nil))

	files, err := os.ReadDir(dumpDir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "2024-05-01T12_30_45.000000123Z.txt", files[0].Name())
	assert.False(t, strings.Contains(files[0].Name(), ":"))

	data, err := os.ReadFile(filepath.Join(dumpDir, files[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, hexutil.Encode(tx.Encoded())+"\n", string(data))

	// A second transaction in the same instant lands on its own line.
	tx2 := signTestTx(t, key, 1)
	require.NoError(t, eth.APIBackend.SendTx(context.Background(), tx2, nil))
	data, err = os.ReadFile(filepath.Join(dumpDir, files[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, []string{hexutil.Encode(tx.Encoded()), hexutil.Encode(tx2.Encoded()), ""}, strings.Split(string(data), "\n"))
}

func TestPoolNonce(t *testing.T) {
	keyfile, key := writeTestKey(t)
	stack, eth := newTestService(t, "", func(cfg *ethconfig.Config) {
		cfg.SignerKeyFile = keyfile
	})
	addr := crypto.PubkeyToAddress(key.PublicKey)
	ctx := context.Background()

	nonce, err := eth.APIBackend.GetPoolNonce(ctx, addr)
	require.NoError(t, err)
	assert.Zero(t, nonce)

	client := stack.Attach()
	defer client.Close()

	gas := hexutil.Uint64(params.TxGas)
	for i := 0; i < 2; i++ {
		var hash common.Hash
		require.NoError(t, client.Call(&hash, "eth_sendTransaction", map[string]interface{}{
			"from": addr,
			"to":   testRecipient,
			"gas":  gas,
		}))
		entry, err := eth.APIBackend.GetTransaction(ctx, hash)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, uint64(i), entry.Seq)
	}
	nonce, err = eth.APIBackend.GetPoolNonce(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)
}
