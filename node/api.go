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
	"github.com/biiot/signchecker/common/hexutil"
	"github.com/biiot/signchecker/crypto"
	"github.com/biiot/signchecker/internal/debug"
	"github.com/biiot/signchecker/internal/version"
	"github.com/biiot/signchecker/rpc"
)

// apis returns the collection of built-in RPC APIs.
func (n *Node) apis() []rpc.API {
	return []rpc.API{
		{
			Namespace:     "admin",
			Service:       &adminAPI{n},
			Authenticated: true,
		}, {
			Namespace:     "debug",
			Service:       debug.Handler,
			Authenticated: true,
		}, {
			Namespace: "web3",
			Service:   &web3API{n},
		},
	}
}

// adminAPI is the collection of administrative API methods. It is only
// served on endpoints guarded by a jwt secret.
type adminAPI struct {
	node *Node // Node interfaced by this API
}

// NodeInfo describes the running node.
type NodeInfo struct {
	Name          string   `json:"name"`
	DataDir       string   `json:"datadir"`
	HTTPEndpoint  string   `json:"http,omitempty"`
	WSEndpoint    string   `json:"ws,omitempty"`
	Modules       []string `json:"modules"`
	Authenticated bool     `json:"authenticated"`
}

// NodeInfo retrieves all the information we know about the host node.
func (api *adminAPI) NodeInfo() (*NodeInfo, error) {
	cfg := api.node.config
	info := &NodeInfo{
		Name:          cfg.NodeName(),
		DataDir:       api.node.DataDir(),
		Authenticated: cfg.JWTSecret != "",
	}
	if cfg.HTTPHost != "" {
		info.HTTPEndpoint = api.node.HTTPEndpoint()
	}
	if cfg.WSHost != "" {
		info.WSEndpoint = api.node.WSEndpoint()
	}
	seen := make(map[string]bool)
	for _, api := range api.node.rpcAPIs {
		if !seen[api.Namespace] {
			seen[api.Namespace] = true
			info.Modules = append(info.Modules, api.Namespace)
		}
	}
	return info, nil
}

// Datadir retrieves the current data directory the node is using.
func (api *adminAPI) Datadir() string {
	return api.node.DataDir()
}

// web3API offers helper utils
type web3API struct {
	stack *Node
}

// ClientVersion returns the node name
func (s *web3API) ClientVersion() string {
	return version.ClientVersion()
}

// Sha3 applies the ethereum sha3 implementation on the input.
// It assumes the input is hex encoded.
func (s *web3API) Sha3(input hexutil.Bytes) hexutil.Bytes {
	return crypto.Keccak256(input)
}
