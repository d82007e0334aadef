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

package ethapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/internal/bridge"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/params"
	"github.com/biiot/signchecker/rpc"
	"github.com/holiman/uint256"
)

// fakeBalance is reported for every account, large enough for any wallet to
// proceed with a transfer.
var fakeBalance = new(big.Int).SetUint64(0xffffffffffffffff)

const (
	fakeNonce       = 1   // reported by eth_getTransactionCount for every account
	bloomByteLength = 256 // size of the logs bloom of a block
)

// EthereumAPI provides an API to access Ethereum related information.
type EthereumAPI struct {
	b Backend
}

// NewEthereumAPI creates a new Ethereum protocol API.
func NewEthereumAPI(b Backend) *EthereumAPI {
	return &EthereumAPI{b}
}

// GasPrice returns a suggestion for a gas price for legacy transactions.
// Gas is free here.
func (api *EthereumAPI) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(new(big.Int)), nil
}

// ProtocolVersion returns the current Ethereum protocol version.
func (api *EthereumAPI) ProtocolVersion() string {
	return strconv.Itoa(params.ProtocolVersion)
}

// Syncing reports that the node is never syncing.
func (api *EthereumAPI) Syncing() (interface{}, error) {
	return false, nil
}

// EthereumAccountAPI provides an API to access accounts managed by this node.
type EthereumAccountAPI struct {
	b Backend
}

// NewEthereumAccountAPI creates a new EthereumAccountAPI.
func NewEthereumAccountAPI(b Backend) *EthereumAccountAPI {
	return &EthereumAccountAPI{b: b}
}

// Accounts returns the collection of accounts this node manages.
func (api *EthereumAccountAPI) Accounts() []common.Address {
	accounts := api.b.Accounts()
	if accounts == nil {
		return []common.Address{}
	}
	return accounts
}

// BlockChainAPI provides an API to access the pseudo chain.
type BlockChainAPI struct {
	b Backend
}

// NewBlockChainAPI creates a new blockchain API.
func NewBlockChainAPI(b Backend) *BlockChainAPI {
	return &BlockChainAPI{b}
}

// ChainId is the EIP-155 replay-protection chain id for the current chain.
func (api *BlockChainAPI) ChainId() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).Set(api.b.ChainConfig().ChainID))
}

// BlockNumber returns the block number of the chain head, always zero.
func (api *BlockChainAPI) BlockNumber() hexutil.Uint64 {
	return 0
}

// GetBalance returns the amount of wei for the given address. The state is not
// tracked, every account holds the same balance.
func (api *BlockChainAPI) GetBalance(ctx context.Context, address common.Address, blockNrOrHash *rpc.BlockNumberOrHash) (*hexutil.Big, error) {
	return (*hexutil.Big)(new(big.Int).Set(fakeBalance)), nil
}

// GetBlockByNumber returns the pseudo block. The number is accepted for any
// value and ignored.
func (api *BlockChainAPI) GetBlockByNumber(ctx context.Context, number rpc.BlockNumber, fullTx bool) (map[string]interface{}, error) {
	return RPCMarshalPseudoBlock(fullTx), nil
}

// GetBlockByHash returns the pseudo block for any hash.
func (api *BlockChainAPI) GetBlockByHash(ctx context.Context, hash common.Hash, fullTx bool) (map[string]interface{}, error) {
	return RPCMarshalPseudoBlock(fullTx), nil
}

// Call forwards a message call to the execution bridge and returns its output.
// Without a bridge the call yields empty output.
func (api *BlockChainAPI) Call(ctx context.Context, args TransactionArgs, blockNrOrHash *rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	if args.Data != nil && args.Input != nil && !bytes.Equal(*args.Data, *args.Input) {
		return nil, &invalidParamsError{errDataInputClash.Error()}
	}
	ret, err := bridge.Call(ctx, api.b.Forwarder(), args.ToCallMsg())
	switch {
	case errors.Is(err, bridge.ErrNoBridge):
		return hexutil.Bytes{}, nil
	case err != nil:
		log.Warn("Forwarded call failed", "to", args.To, "err", err)
		return nil, newBridgeError(err)
	}
	return ret, nil
}

// EstimateGas returns zero, gas is not metered.
func (api *BlockChainAPI) EstimateGas(ctx context.Context, args TransactionArgs, blockNrOrHash *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	return 0, nil
}

// RPCMarshalPseudoBlock returns the block wallets are shown: number zero, all
// hashes zero and no transactions.
func RPCMarshalPseudoBlock(fullTx bool) map[string]interface{} {
	var txs interface{} = []common.Hash{}
	if fullTx {
		txs = []*types.RPCTransaction{}
	}
	return map[string]interface{}{
		"number":           (*hexutil.Big)(new(big.Int)),
		"hash":             common.Hash{},
		"parentHash":       common.Hash{},
		"nonce":            hexutil.Bytes(make([]byte, 8)),
		"sha3Uncles":       common.Hash{},
		"logsBloom":        hexutil.Bytes(make([]byte, bloomByteLength)),
		"transactionsRoot": common.Hash{},
		"stateRoot":        common.Hash{},
		"receiptsRoot":     common.Hash{},
		"miner":            common.Address{},
		"difficulty":       (*hexutil.Big)(new(big.Int)),
		"totalDifficulty":  (*hexutil.Big)(new(big.Int)),
		"extraData":        hexutil.Bytes{},
		"size":             hexutil.Uint64(0),
		"gasLimit":         hexutil.Uint64(0),
		"gasUsed":          hexutil.Uint64(0),
		"timestamp":        hexutil.Uint64(0),
		"transactions":     txs,
		"uncles":           []common.Hash{},
	}
}

// TransactionAPI exposes methods for reading and creating transaction data.
type TransactionAPI struct {
	b         Backend
	nonceLock *AddrLocker
}

// NewTransactionAPI creates a new RPC service with methods for interacting with transactions.
func NewTransactionAPI(b Backend, nonceLock *AddrLocker) *TransactionAPI {
	return &TransactionAPI{b, nonceLock}
}

// GetTransactionCount returns the number of transactions the given address has sent.
// Every account reports the same count.
func (api *TransactionAPI) GetTransactionCount(ctx context.Context, address common.Address, blockNrOrHash *rpc.BlockNumberOrHash) (*hexutil.Uint64, error) {
	nonce := hexutil.Uint64(fakeNonce)
	return &nonce, nil
}

// GetTransactionByHash returns the journaled transaction for the given hash.
func (api *TransactionAPI) GetTransactionByHash(ctx context.Context, hash common.Hash) (*types.RPCTransaction, error) {
	entry, err := api.b.GetTransaction(ctx, hash)
	if entry == nil {
		return nil, err
	}
	tx, err := types.DecodeRawTransaction(entry.Raw)
	if err != nil {
		return nil, err
	}
	var from common.Address
	if entry.Sender != nil {
		from = *entry.Sender
	}
	return types.NewRPCTransaction(tx, from), nil
}

// GetRawTransactionByHash returns the bytes of the transaction for the given hash.
func (api *TransactionAPI) GetRawTransactionByHash(ctx context.Context, hash common.Hash) (hexutil.Bytes, error) {
	entry, err := api.b.GetTransaction(ctx, hash)
	if entry == nil {
		return nil, err
	}
	return entry.Raw, nil
}

// sign is a helper function that signs a transaction with the held key of the given address.
func (api *TransactionAPI) sign(addr common.Address, tx *types.UnsignedTransaction) (*types.SignedTransaction, error) {
	return api.b.SignTx(addr, tx)
}

// SubmitTransaction is a helper function that journals tx and logs a message.
func SubmitTransaction(ctx context.Context, b Backend, tx *types.SignedTransaction) (common.Hash, error) {
	// If the transaction fee cap is already specified, ensure the
	// fee of the given transaction is _reasonable_.
	if err := checkTxFee(tx.GasPrice(), tx.Gas(), b.RPCTxFeeCap()); err != nil {
		return common.Hash{}, err
	}
	if !b.UnprotectedAllowed() && !tx.Protected() {
		return common.Hash{}, errUnprotectedTx
	}
	var sender *common.Address
	from, err := types.Sender(Signer(b), tx)
	if err != nil {
		if b.StrictSender() {
			return common.Hash{}, txValidationError(err)
		}
		log.Warn("Failed to recover transaction sender", "hash", tx.Hash(), "v", tx.Signature().V, "err", err)
	} else {
		sender = &from
	}
	if err := b.SendTx(ctx, tx, sender); err != nil {
		return common.Hash{}, err
	}
	if tx.To() == nil {
		log.Info("Submitted contract creation", "hash", tx.Hash().Hex(), "from", sender, "nonce", tx.Nonce(), "value", tx.Value())
	} else {
		log.Info("Submitted transaction", "hash", tx.Hash().Hex(), "from", sender, "nonce", tx.Nonce(), "recipient", tx.To(), "value", tx.Value())
	}
	return tx.Hash(), nil
}

// SendTransaction creates a transaction for the given argument, signs it with
// the held key and journals it.
func (api *TransactionAPI) SendTransaction(ctx context.Context, args TransactionArgs) (common.Hash, error) {
	if args.Nonce == nil {
		// Hold the mutex around signing to prevent concurrent assignment of
		// the same nonce to multiple accounts.
		api.nonceLock.LockAddr(args.from())
		defer api.nonceLock.UnlockAddr(args.from())
	}
	if err := args.setDefaults(ctx, api.b); err != nil {
		return common.Hash{}, err
	}
	signed, err := api.sign(args.from(), args.ToTransaction())
	if err != nil {
		return common.Hash{}, err
	}
	return SubmitTransaction(ctx, api.b, signed)
}

// SendRawTransaction will journal the signed transaction. The sender is
// responsible for signing the transaction and using the correct nonce.
func (api *TransactionAPI) SendRawTransaction(ctx context.Context, input hexutil.Bytes) (common.Hash, error) {
	tx, err := types.DecodeRawTransaction(input)
	if err != nil {
		log.Warn("Rejected undecodable transaction", "len", len(input), "err", err)
		return common.Hash{}, txValidationError(err)
	}
	return SubmitTransaction(ctx, api.b, tx)
}

// SignTransactionResult represents a RLP encoded signed transaction.
type SignTransactionResult struct {
	Raw hexutil.Bytes            `json:"raw"`
	Tx  *types.SignedTransaction `json:"tx"`
}

// SignTransaction will sign the given transaction with the from account.
// The node needs to hold the private key of the account.
func (api *TransactionAPI) SignTransaction(ctx context.Context, args TransactionArgs) (*SignTransactionResult, error) {
	if args.Gas == nil {
		return nil, errors.New("gas not specified")
	}
	if args.GasPrice == nil {
		return nil, errors.New("missing gasPrice")
	}
	if args.Nonce == nil {
		return nil, errors.New("nonce not specified")
	}
	if err := args.setDefaults(ctx, api.b); err != nil {
		return nil, err
	}
	// Before actually sign the transaction, ensure the transaction fee is reasonable.
	tx := args.ToTransaction()
	if err := checkTxFee(tx.GasPrice(), tx.Gas(), api.b.RPCTxFeeCap()); err != nil {
		return nil, err
	}
	signed, err := api.sign(args.from(), tx)
	if err != nil {
		return nil, err
	}
	data, err := signed.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &SignTransactionResult{data, signed}, nil
}

// DebugAPI is the collection of APIs exposed over the debugging namespace.
type DebugAPI struct {
	b Backend
}

// NewDebugAPI creates a new instance of DebugAPI.
func NewDebugAPI(b Backend) *DebugAPI {
	return &DebugAPI{b: b}
}

// DecodedTransaction is the result of debug_decodeRawTransaction.
type DecodedTransaction struct {
	Tx               *types.RPCTransaction `json:"tx"`
	Sender           *common.Address       `json:"sender"`
	SenderError      string                `json:"senderError,omitempty"`
	PreimageMode     string                `json:"preimageMode"`
	RecoveryID       *hexutil.Uint64       `json:"recoveryId"`
	StandardPreimage hexutil.Bytes         `json:"standardPreimage"`
	ObservedPreimage hexutil.Bytes         `json:"observedPreimage"`
}

// DecodeRawTransaction decodes a raw transaction without journaling it and
// shows both payloads a sender could have been recovered from.
func (api *DebugAPI) DecodeRawTransaction(input hexutil.Bytes) (*DecodedTransaction, error) {
	tx, err := types.DecodeRawTransaction(input)
	if err != nil {
		return nil, txValidationError(err)
	}
	var (
		chainID = api.b.ChainConfig().ChainID
		sig     = tx.Signature()
		res     = &DecodedTransaction{
			PreimageMode:     api.b.PreimageMode().String(),
			ObservedPreimage: tx.SigningPreimage(),
		}
	)
	if sig.Protected() {
		res.StandardPreimage = tx.Unsigned().EIP155SigningPreimage(chainID)
	} else {
		res.StandardPreimage = tx.Unsigned().HomesteadSigningPreimage()
	}
	if recid, err := types.RecoveryID(sig.V, chainID); err == nil {
		id := hexutil.Uint64(recid)
		res.RecoveryID = &id
	}
	var from common.Address
	if from, err = types.Sender(Signer(api.b), tx); err != nil {
		res.SenderError = err.Error()
	} else {
		res.Sender = &from
	}
	res.Tx = types.NewRPCTransaction(tx, from)
	return res, nil
}

// GetRawTransaction returns the bytes of the transaction for the given hash.
func (api *DebugAPI) GetRawTransaction(ctx context.Context, hash common.Hash) (hexutil.Bytes, error) {
	entry, err := api.b.GetTransaction(ctx, hash)
	if entry == nil {
		return nil, err
	}
	return entry.Raw, nil
}

// JournalLength returns the number of transactions ever journaled.
func (api *DebugAPI) JournalLength() hexutil.Uint64 {
	return hexutil.Uint64(rawdb.ReadJournalCount(api.b.ChainDb()))
}

// DbGet returns the raw value of a key stored in the database.
func (api *DebugAPI) DbGet(key string) (hexutil.Bytes, error) {
	blob, err := hexutil.Decode(key)
	if err != nil {
		blob = []byte(key)
	}
	return api.b.ChainDb().Get(blob)
}

// ChaindbProperty returns properties of the key-value database.
func (api *DebugAPI) ChaindbProperty() (string, error) {
	return api.b.ChainDb().Stat()
}

// ChaindbCompact flattens the entire key-value database into a single level,
// removing all unused slots and merging all keys.
func (api *DebugAPI) ChaindbCompact() error {
	cstart := time.Now()
	for b := 0; b <= 255; b++ {
		var (
			start = []byte{byte(b)}
			end   = []byte{byte(b + 1)}
		)
		if b == 255 {
			end = nil
		}
		log.Info("Compacting database", "range", fmt.Sprintf("%#X-%#X", start, end), "elapsed", common.PrettyDuration(time.Since(cstart)))
		if err := api.b.ChainDb().Compact(start, end); err != nil {
			log.Error("Database compaction failed", "err", err)
			return err
		}
	}
	return nil
}

// NetAPI offers network related RPC methods
type NetAPI struct {
	networkVersion uint64
}

// NewNetAPI creates a new net API instance.
func NewNetAPI(networkVersion uint64) *NetAPI {
	return &NetAPI{networkVersion}
}

// Listening returns an indication if the node is listening for network connections.
func (api *NetAPI) Listening() bool {
	return true // always listening
}

// PeerCount returns the number of connected peers, there are none.
func (api *NetAPI) PeerCount() hexutil.Uint64 {
	return 0
}

// Version returns the current ethereum protocol version.
func (api *NetAPI) Version() string {
	return fmt.Sprintf("%d", api.networkVersion)
}

// checkTxFee is an internal function used to check whether the fee of
// the given transaction is _reasonable_(under the cap).
func checkTxFee(gasPrice *uint256.Int, gas uint64, cap float64) error {
	// Short circuit if there is no cap for transaction fee at all.
	if cap == 0 {
		return nil
	}
	fee := new(big.Int).Mul(gasPrice.ToBig(), new(big.Int).SetUint64(gas))
	feeEth := new(big.Float).Quo(new(big.Float).SetInt(fee), new(big.Float).SetInt(big.NewInt(params.Ether)))
	feeFloat, _ := feeEth.Float64()
	if feeFloat > cap {
		return fmt.Errorf("tx fee (%.2f ether) exceeds the configured cap (%.2f ether)", feeFloat, cap)
	}
	return nil
}
