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

package types

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/crypto"
	"github.com/biiot/signchecker/params"
	"github.com/holiman/uint256"
)

// sigCache is used to cache the derived sender and contains
// the signer used to derive it.
type sigCache struct {
	signer Signer
	from   common.Address
}

// PreimageMode selects which payload is hashed when recovering the sender of
// a replay protected transaction.
type PreimageMode int

const (
	// StandardPreimage recovers from the EIP-155 preimage for v >= 35 and from
	// the homestead preimage otherwise.
	StandardPreimage PreimageMode = iota

	// ObservedPreimage recovers from the full nine field encoding, v, r and s
	// included. Some deployed clients compute senders this way, so the mode
	// is kept for compatibility with their recorded vectors.
	ObservedPreimage
)

func (m PreimageMode) String() string {
	switch m {
	case StandardPreimage:
		return "standard"
	case ObservedPreimage:
		return "observed"
	default:
		return fmt.Sprintf("PreimageMode(%d)", int(m))
	}
}

// ParsePreimageMode parses the textual form used in config files and flags.
func ParsePreimageMode(s string) (PreimageMode, error) {
	switch s {
	case "", "standard":
		return StandardPreimage, nil
	case "observed":
		return ObservedPreimage, nil
	}
	return 0, fmt.Errorf("unknown preimage mode %q", s)
}

// MakeSigner returns a Signer based on the given chain config and block number.
func MakeSigner(config *params.ChainConfig, blockNumber *big.Int) Signer {
	if config.IsEIP155(blockNumber) {
		return NewEIP155Signer(config.ChainID)
	}
	return HomesteadSigner{}
}

// LatestSigner returns the 'most permissive' Signer available for the given chain
// configuration.
func LatestSigner(config *params.ChainConfig) Signer {
	if config.ChainID != nil && config.EIP155Block != nil {
		return NewEIP155Signer(config.ChainID)
	}
	return HomesteadSigner{}
}

// LatestSignerForChainID returns the EIP-155 signer for chainID, or the
// homestead signer if chainID is nil.
func LatestSignerForChainID(chainID *big.Int) Signer {
	if chainID == nil {
		return HomesteadSigner{}
	}
	return NewEIP155Signer(chainID)
}

// SignDigest signs a 32 byte digest and converts the result into the signature
// values of s.
func SignDigest(digest common.Hash, prv *ecdsa.PrivateKey, s Signer) (Signature, error) {
	sig, err := crypto.Sign(digest[:], prv)
	if err != nil {
		return Signature{}, err
	}
	return s.SignatureValues(sig)
}

// SignTx signs the transaction using the given signer and private key.
func SignTx(tx *UnsignedTransaction, s Signer, prv *ecdsa.PrivateKey) (*SignedTransaction, error) {
	sig, err := SignDigest(s.Hash(tx), prv, s)
	if err != nil {
		return nil, err
	}
	return NewSignedTx(tx, sig), nil
}

// SignNewTx creates a transaction and signs it.
func SignNewTx(prv *ecdsa.PrivateKey, s Signer, txdata *LegacyTx) (*SignedTransaction, error) {
	return SignTx(NewTx(txdata), s, prv)
}

// MustSignNewTx creates a transaction and signs it.
// This panics if the transaction cannot be signed.
func MustSignNewTx(prv *ecdsa.PrivateKey, s Signer, txdata *LegacyTx) *SignedTransaction {
	tx, err := SignNewTx(prv, s, txdata)
	if err != nil {
		panic(err)
	}
	return tx
}

// Sender returns the address derived from the signature (V, R, S) using secp256k1
// elliptic curve and an error if it failed deriving or upon an incorrect
// signature.
//
// Sender may cache the address, allowing it to be used regardless of
// signing method. The cache is invalidated if the cached signer does
// not match the signer used in the current call.
func Sender(signer Signer, tx *SignedTransaction) (common.Address, error) {
	if sc := tx.from.Load(); sc != nil {
		// If the signer used to derive from in a previous
		// call is not the same as used current, invalidate
		// the cache.
		if sc.signer.Equal(signer) {
			return sc.from, nil
		}
	}
	addr, err := signer.Sender(tx)
	if err != nil {
		return common.Address{}, err
	}
	tx.from.Store(&sigCache{signer: signer, from: addr})
	return addr, nil
}

// Signer encapsulates transaction signature handling. Signers don't sign,
// they derive the hash to sign and validate or recover signatures.
type Signer interface {
	// Sender returns the sender address of the transaction.
	Sender(tx *SignedTransaction) (common.Address, error)

	// SignatureValues converts a [R || S || V] signature with V in {0, 1}
	// into the signature values carried by transactions.
	SignatureValues(sig []byte) (Signature, error)
	ChainID() *big.Int

	// Hash returns 'signature hash', i.e. the transaction hash that is signed by the
	// private key. This hash does not uniquely identify the transaction.
	Hash(tx *UnsignedTransaction) common.Hash

	// Equal returns true if the given signer is the same as the receiver.
	Equal(Signer) bool
}

// RecoveryID derives the recovery id from v: v - 35 - 2*chainID for EIP-155
// values (v >= 35), v - 27 otherwise.
func RecoveryID(v uint64, chainID *big.Int) (byte, error) {
	if v < 35 {
		if v != 27 && v != 28 {
			return 0, fmt.Errorf("%w: v %d", ErrInvalidSig, v)
		}
		return byte(v - 27), nil
	}
	if chainID == nil {
		return 0, fmt.Errorf("%w: protected v %d without chain id", ErrInvalidChainId, v)
	}
	id := new(big.Int).SetUint64(v - 35)
	id.Sub(id, new(big.Int).Lsh(chainID, 1))
	if id.Sign() < 0 || id.Cmp(big.NewInt(1)) > 0 {
		return 0, fmt.Errorf("%w: have %d want %d", ErrInvalidChainId, (v-35)/2, chainID)
	}
	return byte(id.Uint64()), nil
}

// EIP155Signer implements Signer using the EIP-155 rules. This accepts transactions which
// are replay-protected as well as unprotected homestead transactions.
type EIP155Signer struct {
	chainId, chainIdMul *big.Int
	mode                PreimageMode
}

// NewEIP155Signer returns a signer for chainId using StandardPreimage.
func NewEIP155Signer(chainId *big.Int) EIP155Signer {
	if chainId == nil {
		chainId = new(big.Int)
	}
	return EIP155Signer{
		chainId:    chainId,
		chainIdMul: new(big.Int).Mul(chainId, big.NewInt(2)),
	}
}

// WithPreimageMode returns a copy of s recovering senders in the given mode.
func (s EIP155Signer) WithPreimageMode(mode PreimageMode) EIP155Signer {
	s.mode = mode
	return s
}

// PreimageMode returns the sender recovery mode of s.
func (s EIP155Signer) PreimageMode() PreimageMode { return s.mode }

func (s EIP155Signer) ChainID() *big.Int {
	return s.chainId
}

func (s EIP155Signer) Equal(s2 Signer) bool {
	eip155, ok := s2.(EIP155Signer)
	return ok && eip155.chainId.Cmp(s.chainId) == 0 && eip155.mode == s.mode
}

func (s EIP155Signer) Sender(tx *SignedTransaction) (common.Address, error) {
	sig := tx.Signature()
	if s.mode == ObservedPreimage {
		recid, err := RecoveryID(sig.V, s.chainId)
		if err != nil {
			return common.Address{}, err
		}
		return recoverPlain(keccakHash(tx.SigningPreimage()), sig, recid, false)
	}
	if !sig.Protected() {
		return HomesteadSigner{}.Sender(tx)
	}
	recid, err := RecoveryID(sig.V, s.chainId)
	if err != nil {
		return common.Address{}, err
	}
	return recoverPlain(s.Hash(tx.Unsigned()), sig, recid, true)
}

// SignatureValues returns signature values. This signature
// needs to be in the [R || S || V] format where V is 0 or 1.
func (s EIP155Signer) SignatureValues(sig []byte) (Signature, error) {
	out, err := decodeSignature(sig)
	if err != nil {
		return Signature{}, err
	}
	if s.chainId.Sign() != 0 {
		v := new(big.Int).SetUint64(uint64(sig[crypto.RecoveryIDOffset]) + 35)
		v.Add(v, s.chainIdMul)
		if !v.IsUint64() {
			return Signature{}, fmt.Errorf("%w: chain id %v too large", ErrInvalidChainId, s.chainId)
		}
		out.V = v.Uint64()
	}
	return out, nil
}

// Hash returns the hash to be signed by the sender.
// It does not uniquely identify the transaction.
func (s EIP155Signer) Hash(tx *UnsignedTransaction) common.Hash {
	return keccakHash(tx.EIP155SigningPreimage(s.chainId))
}

// HomesteadSigner implements Signer interface using the
// homestead rules.
type HomesteadSigner struct{}

func (hs HomesteadSigner) ChainID() *big.Int {
	return nil
}

func (hs HomesteadSigner) Equal(s2 Signer) bool {
	_, ok := s2.(HomesteadSigner)
	return ok
}

// SignatureValues returns signature values. This signature
// needs to be in the [R || S || V] format where V is 0 or 1.
func (hs HomesteadSigner) SignatureValues(sig []byte) (Signature, error) {
	return decodeSignature(sig)
}

func (hs HomesteadSigner) Sender(tx *SignedTransaction) (common.Address, error) {
	sig := tx.Signature()
	if sig.Protected() {
		return common.Address{}, fmt.Errorf("%w: protected v %d", ErrInvalidChainId, sig.V)
	}
	recid, err := RecoveryID(sig.V, nil)
	if err != nil {
		return common.Address{}, err
	}
	return recoverPlain(hs.Hash(tx.Unsigned()), sig, recid, true)
}

// Hash returns the hash to be signed by the sender.
// It does not uniquely identify the transaction.
func (hs HomesteadSigner) Hash(tx *UnsignedTransaction) common.Hash {
	return keccakHash(tx.HomesteadSigningPreimage())
}

// decodeSignature splits a 65 byte signature, V becomes 27 or 28.
func decodeSignature(sig []byte) (Signature, error) {
	if len(sig) != crypto.SignatureLength {
		return Signature{}, fmt.Errorf("wrong size for signature: got %d, want %d", len(sig), crypto.SignatureLength)
	}
	if sig[crypto.RecoveryIDOffset] > 1 {
		return Signature{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSig, sig[crypto.RecoveryIDOffset])
	}
	var out Signature
	copy(out.R[:], sig[:32])
	copy(out.S[:], sig[32:64])
	out.V = uint64(sig[crypto.RecoveryIDOffset]) + 27
	return out, nil
}

// recoverPlain recovers the signer address of sighash. Failures are
// *crypto.RecoveryError values. With homestead set, high s values are
// rejected.
func recoverPlain(sighash common.Hash, sig Signature, recid byte, homestead bool) (common.Address, error) {
	if homestead {
		s := new(uint256.Int).SetBytes32(sig.S[:])
		if s.Cmp(secp256k1halfN) > 0 {
			return common.Address{}, &crypto.RecoveryError{Err: crypto.ErrInvalidSignature}
		}
	}
	// encode the signature in uncompressed format
	enc := make([]byte, crypto.SignatureLength)
	copy(enc[:32], sig.R[:])
	copy(enc[32:64], sig.S[:])
	enc[crypto.RecoveryIDOffset] = recid

	pub, err := crypto.Ecrecover(sighash[:], enc)
	if err != nil {
		return common.Address{}, err
	}
	var addr common.Address
	copy(addr[:], crypto.Keccak256(pub[1:])[12:])
	return addr, nil
}

// secp256k1halfN is half the order of the curve, rounded down.
var secp256k1halfN = uint256.MustFromHex("0x7fffffffffffffffffffffffffffffff5d576e7357a4501ddfe92f46681b20a0")
