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

package crypto

import "errors"

var (
	// ErrInvalidMessage is returned for digests that are not exactly 32
	// bytes or are all zero.
	ErrInvalidMessage = errors.New("message has to be a non-zero 32-bytes slice")

	// ErrInvalidSignature is returned when a signature has out-of-range
	// scalars, a bad recovery id, or does not recover to a curve point.
	ErrInvalidSignature = errors.New("signature is invalid (check recovery id)")
)

// SigningError is returned by Sign.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string { return "signing failed: " + e.Err.Error() }
func (e *SigningError) Unwrap() error { return e.Err }

// RecoveryError is returned by Ecrecover and SigToPub.
type RecoveryError struct {
	Err error
}

func (e *RecoveryError) Error() string { return "recovery failed: " + e.Err.Error() }
func (e *RecoveryError) Unwrap() error { return e.Err }
