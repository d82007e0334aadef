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

// Package eth implements the signchecker transaction service.
package eth

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/crypto"
	"github.com/biiot/signchecker/eth/ethconfig"
	"github.com/biiot/signchecker/ethdb"
	"github.com/biiot/signchecker/internal/bridge"
	"github.com/biiot/signchecker/internal/ethapi"
	"github.com/biiot/signchecker/internal/flags"
	"github.com/biiot/signchecker/internal/shutdowncheck"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/node"
	"github.com/biiot/signchecker/params"
	"github.com/biiot/signchecker/rpc"
)

// Config contains the configuration options of the service.
type Config = ethconfig.Config

// Ethereum implements the wallet facing transaction service: it journals what
// wallets submit, signs with the held key and forwards calls to the bridge.
type Ethereum struct {
	config      *ethconfig.Config
	chainConfig *params.ChainConfig

	// DB interfaces
	journalDb ethdb.KeyValueStore

	key    *ecdsa.PrivateKey // nil when no signer key is configured
	bridge *bridge.Client    // nil when no bridge is configured

	APIBackend *EthAPIBackend

	shutdownTracker *shutdowncheck.ShutdownTracker // Tracks if and when the node has shutdown ungracefully
}

// New creates the service and registers its APIs and lifecycle on the stack.
func New(stack *node.Node, config *ethconfig.Config) (*Ethereum, error) {
	mode, err := config.Sanitize()
	if err != nil {
		return nil, err
	}
	journalDb, err := stack.OpenDatabase("journal", config.DatabaseCache, config.DatabaseHandles, false)
	if err != nil {
		return nil, err
	}
	chainConfig, err := loadChainConfig(journalDb, config.ChainConfig())
	if err != nil {
		journalDb.Close()
		return nil, err
	}
	log.Info("Initialised chain configuration", "chainid", chainConfig.ChainID, "networkid", chainConfig.NetworkID, "preimage", mode)

	eth := &Ethereum{
		config:          config,
		chainConfig:     chainConfig,
		journalDb:       journalDb,
		shutdownTracker: shutdowncheck.NewShutdownTracker(journalDb),
	}
	if eth.key, err = loadSignerKey(config.SignerKeyFile); err != nil {
		journalDb.Close()
		return nil, err
	}
	if config.Bridge.Endpoint != "" {
		if eth.bridge, err = dialBridge(config.Bridge); err != nil {
			journalDb.Close()
			return nil, err
		}
	}
	dumpDir := config.TxDumpDir
	if dumpDir != "" {
		dumpDir = flags.ExpandPath(dumpDir)
		if err := os.MkdirAll(dumpDir, 0755); err != nil {
			eth.closeBridge()
			journalDb.Close()
			return nil, fmt.Errorf("failed to create tx dump directory: %w", err)
		}
	}
	eth.APIBackend = &EthAPIBackend{
		eth:                 eth,
		allowUnprotectedTxs: config.AllowUnprotectedTxs,
		strictSender:        config.StrictSender,
		preimageMode:        mode,
		dumpDir:             dumpDir,
	}
	if !config.AllowUnprotectedTxs {
		log.Info("Unprotected transactions not allowed")
	}

	// Register the backend on the node
	stack.RegisterAPIs(eth.APIs())
	stack.RegisterLifecycle(eth)

	// Successful startup; push a marker and check previous unclean shutdowns.
	eth.shutdownTracker.MarkStartup()

	return eth, nil
}

// loadChainConfig checks the journal was written under the same chain id, and
// stamps a fresh journal with the configured one.
func loadChainConfig(db ethdb.KeyValueStore, want *params.ChainConfig) (*params.ChainConfig, error) {
	if err := want.CheckConfigForkOrder(); err != nil {
		return nil, err
	}
	stored := rawdb.ReadChainConfig(db)
	if stored == nil {
		rawdb.WriteChainConfig(db, want)
		return want, nil
	}
	if stored.ChainID == nil || stored.ChainID.Cmp(want.ChainID) != 0 {
		return nil, fmt.Errorf("journal was written for chain id %v, configured chain id is %v", stored.ChainID, want.ChainID)
	}
	if stored.NetworkID != want.NetworkID {
		log.Warn("Updating stored network id", "stored", stored.NetworkID, "new", want.NetworkID)
		rawdb.WriteChainConfig(db, want)
	}
	return want, nil
}

func loadSignerKey(file string) (*ecdsa.PrivateKey, error) {
	if file == "" {
		log.Info("No signer key configured, signing disabled")
		return nil, nil
	}
	key, err := crypto.LoadECDSA(flags.ExpandPath(file))
	if err != nil {
		return nil, fmt.Errorf("failed to load signer key: %w", err)
	}
	log.Info("Loaded signer key", "address", crypto.PubkeyToAddress(key.PublicKey))
	return key, nil
}

func dialBridge(cfg ethconfig.BridgeConfig) (*bridge.Client, error) {
	var opts []rpc.ClientOption
	if cfg.JWTSecret != "" {
		secret, err := node.ReadJWTSecret(flags.ExpandPath(cfg.JWTSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to load bridge jwt secret: %w", err)
		}
		opts = append(opts, rpc.WithHTTPAuth(node.NewJWTAuth(secret)))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = bridge.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return bridge.Dial(ctx, cfg.Endpoint, timeout, opts...)
}

// APIs returns the collection of RPC services the service offers.
func (s *Ethereum) APIs() []rpc.API {
	return ethapi.GetAPIs(s.APIBackend)
}

// ChainConfig returns the signing rules the service runs under.
func (s *Ethereum) ChainConfig() *params.ChainConfig { return s.chainConfig }

// JournalDb returns the transaction journal.
func (s *Ethereum) JournalDb() ethdb.KeyValueStore { return s.journalDb }

// ChainID returns the configured chain id.
func (s *Ethereum) ChainID() *big.Int { return new(big.Int).Set(s.chainConfig.ChainID) }

// Signer returns the address of the held key.
func (s *Ethereum) Signer() (common.Address, bool) {
	if s.key == nil {
		return common.Address{}, false
	}
	return crypto.PubkeyToAddress(s.key.PublicKey), true
}

// Start implements node.Lifecycle.
func (s *Ethereum) Start() error {
	// Regularly update shutdown marker
	s.shutdownTracker.Start()
	log.Info("Transaction journal ready", "entries", rawdb.ReadJournalCount(s.journalDb), "signer", s.key != nil, "bridge", s.bridge != nil)
	return nil
}

// Stop implements node.Lifecycle, terminating the bridge connection and
// closing the journal.
func (s *Ethereum) Stop() error {
	s.closeBridge()

	// Clean shutdown marker as the last thing before closing db
	s.shutdownTracker.Stop()

	return s.journalDb.Close()
}

func (s *Ethereum) closeBridge() {
	if s.bridge != nil {
		s.bridge.Close()
	}
}

// signTx signs tx for the held key under the configured chain.
func (s *Ethereum) signTx(account common.Address, tx *types.UnsignedTransaction) (*types.SignedTransaction, error) {
	addr, ok := s.Signer()
	if !ok {
		return nil, errNoSigningKey
	}
	if account != addr {
		return nil, fmt.Errorf("%w: %v", errUnknownAccount, account)
	}
	return types.SignTx(tx, types.LatestSignerForChainID(s.chainConfig.ChainID), s.key)
}
