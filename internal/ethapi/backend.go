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

// Package ethapi implements the Ethereum API functions served to wallets.
package ethapi

import (
	"context"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/ethdb"
	"github.com/biiot/signchecker/internal/bridge"
	"github.com/biiot/signchecker/params"
	"github.com/biiot/signchecker/rpc"
)

// Backend interface provides the API services with access to the journal,
// the held signing key and the execution bridge.
type Backend interface {
	// General API
	ChainConfig() *params.ChainConfig
	ChainDb() ethdb.KeyValueStore
	RPCTxFeeCap() float64     // global tx fee cap for all transaction related APIs
	UnprotectedAllowed() bool // allows only for EIP155 transactions.
	StrictSender() bool       // reject raw transactions whose sender does not recover
	PreimageMode() types.PreimageMode

	// Account API
	Accounts() []common.Address
	SignTx(account common.Address, tx *types.UnsignedTransaction) (*types.SignedTransaction, error)

	// Transaction journal API
	SendTx(ctx context.Context, tx *types.SignedTransaction, sender *common.Address) error
	GetTransaction(ctx context.Context, hash common.Hash) (*rawdb.JournalEntry, error)
	GetPoolNonce(ctx context.Context, addr common.Address) (uint64, error)

	// Forwarder returns the execution bridge, nil when none is configured.
	Forwarder() bridge.Forwarder
}

// Signer returns the signer senders are recovered with.
func Signer(b Backend) types.Signer {
	signer := types.LatestSignerForChainID(b.ChainConfig().ChainID)
	if eip155, ok := signer.(types.EIP155Signer); ok {
		return eip155.WithPreimageMode(b.PreimageMode())
	}
	return signer
}

func GetAPIs(apiBackend Backend) []rpc.API {
	nonceLock := new(AddrLocker)
	return []rpc.API{
		{
			Namespace: "eth",
			Service:   NewEthereumAPI(apiBackend),
		}, {
			Namespace: "eth",
			Service:   NewBlockChainAPI(apiBackend),
		}, {
			Namespace: "eth",
			Service:   NewTransactionAPI(apiBackend, nonceLock),
		}, {
			Namespace: "eth",
			Service:   NewEthereumAccountAPI(apiBackend),
		}, {
			Namespace: "net",
			Service:   NewNetAPI(apiBackend.ChainConfig().NetworkID),
		}, {
			Namespace: "debug",
			Service:   NewDebugAPI(apiBackend),
		},
	}
}
