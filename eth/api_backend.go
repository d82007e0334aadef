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
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/ethdb"
	"github.com/biiot/signchecker/internal/bridge"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/params"
)

var (
	errNoSigningKey   = errors.New("no signing key configured")
	errUnknownAccount = errors.New("unknown account")
)

// dumpTimeFormat names dump files after their UTC arrival time. Colons are
// not allowed in file names on every platform.
const dumpTimeFormat = "2006-01-02T15_04_05.000000000Z"

// EthAPIBackend implements ethapi.Backend on top of the journal.
type EthAPIBackend struct {
	eth *Ethereum

	allowUnprotectedTxs bool
	strictSender        bool
	preimageMode        types.PreimageMode
	dumpDir             string

	journalMu sync.Mutex // serializes journal appends, which assign sequence numbers
	now       func() time.Time
}

func (b *EthAPIBackend) ChainConfig() *params.ChainConfig {
	return b.eth.chainConfig
}

func (b *EthAPIBackend) ChainDb() ethdb.KeyValueStore {
	return b.eth.journalDb
}

func (b *EthAPIBackend) RPCTxFeeCap() float64 {
	return b.eth.config.RPCTxFeeCap
}

func (b *EthAPIBackend) UnprotectedAllowed() bool {
	return b.allowUnprotectedTxs
}

func (b *EthAPIBackend) StrictSender() bool {
	return b.strictSender
}

func (b *EthAPIBackend) PreimageMode() types.PreimageMode {
	return b.preimageMode
}

func (b *EthAPIBackend) Accounts() []common.Address {
	if addr, ok := b.eth.Signer(); ok {
		return []common.Address{addr}
	}
	return []common.Address{}
}

func (b *EthAPIBackend) SignTx(account common.Address, tx *types.UnsignedTransaction) (*types.SignedTransaction, error) {
	return b.eth.signTx(account, tx)
}

// SendTx journals tx and, when a dump directory is configured, writes its raw
// encoding to a file of its own.
func (b *EthAPIBackend) SendTx(ctx context.Context, tx *types.SignedTransaction, sender *common.Address) error {
	received := b.timeNow()

	b.journalMu.Lock()
	err := rawdb.WriteJournalEntry(b.eth.journalDb, &rawdb.JournalEntry{
		Hash:     tx.Hash(),
		Raw:      tx.Encoded(),
		Sender:   sender,
		Received: received,
	})
	b.journalMu.Unlock()
	if err != nil {
		return err
	}
	if b.dumpDir != "" {
		if err := b.dumpTx(received, tx); err != nil {
			// Already journaled, only warn.
			log.Warn("Failed to dump raw transaction", "hash", tx.Hash(), "err", err)
		}
	}
	return nil
}

func (b *EthAPIBackend) dumpTx(received time.Time, tx *types.SignedTransaction) error {
	name := filepath.Join(b.dumpDir, received.UTC().Format(dumpTimeFormat)+".txt")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(hexutil.Encode(tx.Encoded()) + "\n"); err != nil {
		return err
	}
	log.Debug("Dumped raw transaction", "hash", tx.Hash(), "file", name)
	return nil
}

func (b *EthAPIBackend) GetTransaction(ctx context.Context, hash common.Hash) (*rawdb.JournalEntry, error) {
	return rawdb.ReadJournalEntry(b.eth.journalDb, hash), nil
}

// GetPoolNonce returns the number of journaled transactions recovered to addr.
func (b *EthAPIBackend) GetPoolNonce(ctx context.Context, addr common.Address) (uint64, error) {
	return uint64(len(rawdb.ReadSenderTransactions(b.eth.journalDb, addr))), nil
}

func (b *EthAPIBackend) Forwarder() bridge.Forwarder {
	// A typed nil would defeat the nil check in bridge.Call.
	if b.eth.bridge == nil {
		return nil
	}
	return b.eth.bridge
}

func (b *EthAPIBackend) timeNow() time.Time {
	if b.now != nil {
		return b.now()
	}
	return time.Now()
}
