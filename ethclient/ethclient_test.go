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

package ethclient_test

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/crypto"
	"github.com/biiot/signchecker/eth"
	"github.com/biiot/signchecker/eth/ethconfig"
	"github.com/biiot/signchecker/ethclient"
	"github.com/biiot/signchecker/node"
	"github.com/biiot/signchecker/params"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddr = common.HexToAddress("0x3535353535353535353535353535353535353535")

func newTestBackend(t *testing.T) (*ethclient.Client, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyfile := filepath.Join(t.TempDir(), "signer.key")
	require.NoError(t, crypto.SaveECDSA(keyfile, key))

	stack, err := node.New(&node.Config{Name: "signchecker"})
	require.NoError(t, err)
	t.Cleanup(func() { stack.Close() })

	cfg := ethconfig.Defaults
	cfg.SignerKeyFile = keyfile
	_, err = eth.New(stack, &cfg)
	require.NoError(t, err)
	require.NoError(t, stack.Start())

	client := ethclient.NewClient(stack.Attach())
	t.Cleanup(client.Close)
	return client, key
}

func TestChainInfo(t *testing.T) {
	ec, key := newTestBackend(t)
	ctx := context.Background()

	chainID, err := ec.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(params.DefaultChainID), chainID)

	networkID, err := ec.NetworkID(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(params.DefaultNetworkID), networkID)

	number, err := ec.BlockNumber(ctx)
	require.NoError(t, err)
	assert.Zero(t, number)

	accounts, err := ec.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{crypto.PubkeyToAddress(key.PublicKey)}, accounts)

	balance, err := ec.BalanceAt(ctx, testAddr, nil)
	require.NoError(t, err)
	assert.Positive(t, balance.Sign())
}

func TestSendTransaction(t *testing.T) {
	ec, key := newTestBackend(t)
	ctx := context.Background()

	tx, err := types.SignNewTx(key, types.LatestSignerForChainID(big.NewInt(params.DefaultChainID)), &types.LegacyTx{
		Nonce:    7,
		GasPrice: uint256.NewInt(params.GWei),
		Gas:      params.TxGas,
		To:       &testAddr,
		Value:    uint256.NewInt(1000),
	})
	require.NoError(t, err)
	require.NoError(t, ec.SendTransaction(ctx, tx))

	got, err := ec.TransactionByHash(ctx, tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), got.Hash)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), got.From)
	assert.Equal(t, uint64(7), uint64(got.Nonce))
	assert.Equal(t, &testAddr, got.To)

	raw, err := ec.RawTransactionByHash(ctx, tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, tx.Encoded(), raw)
}

func TestSendTransactionArgs(t *testing.T) {
	ec, key := newTestBackend(t)
	ctx := context.Background()
	from := crypto.PubkeyToAddress(key.PublicKey)

	hash, err := ec.SendTransactionArgs(ctx, ethclient.CallMsg{
		From:  from,
		To:    &testAddr,
		Gas:   params.TxGas,
		Value: uint256.NewInt(1),
	})
	require.NoError(t, err)

	got, err := ec.TransactionByHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, from, got.From)
	require.NotNil(t, got.ChainID)
	assert.Equal(t, big.NewInt(params.DefaultChainID), got.ChainID.ToInt())
}

func TestTransactionNotFound(t *testing.T) {
	ec, _ := newTestBackend(t)
	ctx := context.Background()

	_, err := ec.TransactionByHash(ctx, common.Hash{1})
	assert.ErrorIs(t, err, ethclient.NotFound)

	_, err = ec.RawTransactionByHash(ctx, common.Hash{1})
	assert.ErrorIs(t, err, ethclient.NotFound)
}

func TestCallWithoutBridge(t *testing.T) {
	ec, _ := newTestBackend(t)

	out, err := ec.CallContract(context.Background(), ethclient.CallMsg{To: &testAddr, Data: []byte{0x01}}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRevertErrorData(t *testing.T) {
	_, ok := ethclient.RevertErrorData(assert.AnError)
	assert.False(t, ok)
}
