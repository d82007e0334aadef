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
	"crypto/rand"
	"errors"
	"fmt"
	"hash/crc32"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/rpc"
	"github.com/golang-jwt/jwt/v4"
)

// jwtSecretLength is the size of the shared HS256 secret.
const jwtSecretLength = 32

// NewJWTAuth creates an rpc client authentication provider that uses JWT. The
// secret MUST be 32 bytes (256 bits), the same format the HTTP endpoint checks.
func NewJWTAuth(jwtsecret [jwtSecretLength]byte) rpc.HTTPAuth {
	return func(h http.Header) error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iat": &jwt.NumericDate{Time: time.Now()},
		})
		s, err := token.SignedString(jwtsecret[:])
		if err != nil {
			return fmt.Errorf("failed to create JWT token: %w", err)
		}
		h.Set("Authorization", "Bearer "+s)
		return nil
	}
}

// ReadJWTSecret loads a hex encoded 32 byte secret from file.
func ReadJWTSecret(path string) ([jwtSecretLength]byte, error) {
	var secret [jwtSecretLength]byte
	data, err := os.ReadFile(path)
	if err != nil {
		return secret, err
	}
	blob := common.FromHex(strings.TrimSpace(string(data)))
	if len(blob) != jwtSecretLength {
		return secret, fmt.Errorf("invalid JWT secret in %s: have %d bytes, want %d", path, len(blob), jwtSecretLength)
	}
	copy(secret[:], blob)
	return secret, nil
}

// obtainJWTSecret loads the jwt-secret, either from the provided config,
// or from the default location. If neither of those are present, it generates
// a new secret and stores to the default location.
func (n *Node) obtainJWTSecret(cliParam string) ([]byte, error) {
	fileName := cliParam
	if len(fileName) == 0 {
		// no path provided, use default
		fileName = n.ResolvePath(datadirJWTKey)
	}
	secret, err := ReadJWTSecret(fileName)
	switch {
	case err == nil:
		log.Info("Loaded JWT secret file", "path", fileName, "crc32", fmt.Sprintf("%#x", crc32.ChecksumIEEE(secret[:])))
		return secret[:], nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}
	// Need to generate one
	fresh := make([]byte, jwtSecretLength)
	if _, err := rand.Read(fresh); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fileName), 0700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(fileName, []byte(hexutil.Encode(fresh)), 0600); err != nil {
		return nil, err
	}
	log.Info("Generated JWT secret", "path", fileName)
	return fresh, nil
}
