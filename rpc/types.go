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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
)

// API describes the set of methods offered over the RPC interface
type API struct {
	Namespace     string      // namespace under which the rpc methods of Service are exposed
	Service       interface{} // receiver instance which holds the methods
	Authenticated bool        // whether the api should only be available behind authentication.
}

// ServerCodec implements reading, parsing and writing RPC messages for the server side of
// an RPC session. Implementations must be go-routine safe since the codec can be called in
// multiple go-routines concurrently.
type ServerCodec interface {
	peerInfo() PeerInfo
	readBatch() (msgs []*jsonrpcMessage, isBatch bool, err error)
	close()

	jsonWriter
}

// jsonWriter can write JSON messages to its underlying connection.
// Implementations must be safe for concurrent use.
type jsonWriter interface {
	// writeJSON writes a message to the connection.
	writeJSON(ctx context.Context, msg interface{}, isError bool) error

	// Closed returns a channel which is closed when the connection is closed.
	closed() <-chan interface{}
	// RemoteAddr returns the peer address of the connection.
	remoteAddr() string
}

// ID is the identifier of a JSON-RPC request. Wallets send either numbers or
// strings (typically UUIDs); the value is kept in the shape it arrived in and
// echoed back unchanged in the response.
//
// ID is a closed set: NumericID, NumberID and StringID are its only
// implementations.
type ID interface {
	isID()
	String() string
}

// NumericID is a request id sent as a JSON number that fits into 64 bits.
type NumericID uint64

// NumberID is a request id sent as any other JSON number, negative or
// fractional or too large. It holds the number text as received.
type NumberID string

// StringID is a request id sent as a JSON string.
type StringID string

func (NumericID) isID() {}
func (NumberID) isID()  {}
func (StringID) isID()  {}

func (id NumericID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id NumberID) String() string  { return string(id) }
func (id StringID) String() string  { return string(id) }

var errInvalidID = errors.New("invalid request id")

// ParseID classifies a raw JSON id. An absent or null id yields a nil ID.
func ParseID(raw json.RawMessage) (ID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, null) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errInvalidID
		}
		return StringID(s), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if !json.Valid(raw) {
			return nil, errInvalidID
		}
		if n, err := strconv.ParseUint(string(raw), 10, 64); err == nil {
			return NumericID(n), nil
		}
		return NumberID(raw), nil
	default:
		return nil, errInvalidID
	}
}

// encodeID returns the JSON form of id, null for a nil id.
func encodeID(id ID) json.RawMessage {
	switch id := id.(type) {
	case NumericID:
		return json.RawMessage(id.String())
	case NumberID:
		return json.RawMessage(id)
	case StringID:
		enc, _ := json.Marshal(string(id))
		return enc
	default:
		return null
	}
}

// Params is the parameter structure of a request. It is a closed set:
// NoParams, PositionalParams and ObjectParams.
type Params interface {
	isParams()
	Len() int
}

// NoParams is used when a request has no "params" member, or it is null.
type NoParams struct{}

// PositionalParams holds the elements of a by-position parameter array.
type PositionalParams []json.RawMessage

// ObjectParams holds a by-name parameter object.
type ObjectParams json.RawMessage

func (NoParams) isParams()         {}
func (PositionalParams) isParams() {}
func (ObjectParams) isParams()     {}

func (NoParams) Len() int           { return 0 }
func (p PositionalParams) Len() int { return len(p) }
func (ObjectParams) Len() int       { return 1 }

// ParseParams classifies the raw "params" member of a request.
func ParseParams(raw json.RawMessage) (Params, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, null) {
		return NoParams{}, nil
	}
	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, err
		}
		return PositionalParams(elems), nil
	case '{':
		if !json.Valid(raw) {
			return nil, errors.New("invalid params object")
		}
		return ObjectParams(raw), nil
	default:
		return nil, errors.New("non-array args")
	}
}

// MarshalJSON implements json.Marshaler.
func (p ObjectParams) MarshalJSON() ([]byte, error) {
	return json.RawMessage(p), nil
}

type BlockNumber int64

const (
	SafeBlockNumber      = BlockNumber(-4)
	FinalizedBlockNumber = BlockNumber(-3)
	LatestBlockNumber    = BlockNumber(-2)
	PendingBlockNumber   = BlockNumber(-1)
	EarliestBlockNumber  = BlockNumber(0)
)

// UnmarshalJSON parses the given JSON fragment into a BlockNumber. It supports:
// - "safe", "finalized", "latest", "earliest" or "pending" as string arguments
// - the block number
// Returned errors:
// - an invalid block number error when the given argument isn't a known strings
// - an out of range error when the given block number is either too little or too large
func (bn *BlockNumber) UnmarshalJSON(data []byte) error {
	input := strings.TrimSpace(string(data))
	if len(input) >= 2 && input[0] == '"' && input[len(input)-1] == '"' {
		input = input[1 : len(input)-1]
	}
	if tag, ok := blockNumberTag(input); ok {
		*bn = tag
		return nil
	}
	blckNum, err := hexutil.DecodeUint64(input)
	if err != nil {
		return err
	}
	if blckNum > math.MaxInt64 {
		return errors.New("block number larger than int64")
	}
	*bn = BlockNumber(blckNum)
	return nil
}

func blockNumberTag(input string) (BlockNumber, bool) {
	switch input {
	case "earliest":
		return EarliestBlockNumber, true
	case "latest":
		return LatestBlockNumber, true
	case "pending":
		return PendingBlockNumber, true
	case "finalized":
		return FinalizedBlockNumber, true
	case "safe":
		return SafeBlockNumber, true
	}
	return 0, false
}

// Int64 returns the block number as int64.
func (bn BlockNumber) Int64() int64 {
	return (int64)(bn)
}

// MarshalText implements encoding.TextMarshaler. It marshals:
// - "safe", "finalized", "latest", "earliest" or "pending" as strings
// - other numbers as hex
func (bn BlockNumber) MarshalText() ([]byte, error) {
	return []byte(bn.String()), nil
}

func (bn BlockNumber) String() string {
	switch bn {
	case EarliestBlockNumber:
		return "earliest"
	case LatestBlockNumber:
		return "latest"
	case PendingBlockNumber:
		return "pending"
	case FinalizedBlockNumber:
		return "finalized"
	case SafeBlockNumber:
		return "safe"
	default:
		if bn < 0 {
			return fmt.Sprintf("<invalid %d>", bn)
		}
		return hexutil.Uint64(bn).String()
	}
}

// BlockNumberOrHash is the block selector accepted by the account queries.
type BlockNumberOrHash struct {
	BlockNumber      *BlockNumber `json:"blockNumber,omitempty"`
	BlockHash        *common.Hash `json:"blockHash,omitempty"`
	RequireCanonical bool         `json:"requireCanonical,omitempty"`
}

func (bnh *BlockNumberOrHash) UnmarshalJSON(data []byte) error {
	type erased BlockNumberOrHash
	e := erased{}
	err := json.Unmarshal(data, &e)
	if err == nil {
		if e.BlockNumber != nil && e.BlockHash != nil {
			return errors.New("cannot specify both BlockHash and BlockNumber, choose one or the other")
		}
		bnh.BlockNumber = e.BlockNumber
		bnh.BlockHash = e.BlockHash
		bnh.RequireCanonical = e.RequireCanonical
		return nil
	}
	var input string
	if err := json.Unmarshal(data, &input); err != nil {
		return err
	}
	if tag, ok := blockNumberTag(input); ok {
		bnh.BlockNumber = &tag
		return nil
	}
	if len(input) == 66 {
		hash := common.Hash{}
		if err := hash.UnmarshalText([]byte(input)); err != nil {
			return err
		}
		bnh.BlockHash = &hash
		return nil
	}
	blckNum, err := hexutil.DecodeUint64(input)
	if err != nil {
		return err
	}
	if blckNum > math.MaxInt64 {
		return errors.New("blocknumber too high")
	}
	bn := BlockNumber(blckNum)
	bnh.BlockNumber = &bn
	return nil
}

func (bnh *BlockNumberOrHash) Number() (BlockNumber, bool) {
	if bnh.BlockNumber != nil {
		return *bnh.BlockNumber, true
	}
	return BlockNumber(0), false
}

func (bnh *BlockNumberOrHash) String() string {
	if bnh.BlockNumber != nil {
		return bnh.BlockNumber.String()
	}
	if bnh.BlockHash != nil {
		return bnh.BlockHash.String()
	}
	return "nil"
}

func (bnh *BlockNumberOrHash) Hash() (common.Hash, bool) {
	if bnh.BlockHash != nil {
		return *bnh.BlockHash, true
	}
	return common.Hash{}, false
}

func BlockNumberOrHashWithNumber(blockNr BlockNumber) BlockNumberOrHash {
	return BlockNumberOrHash{BlockNumber: &blockNr}
}

func BlockNumberOrHashWithHash(hash common.Hash, canonical bool) BlockNumberOrHash {
	return BlockNumberOrHash{BlockHash: &hash, RequireCanonical: canonical}
}
