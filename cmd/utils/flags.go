// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package utils contains internal helper functions for signchecker commands.
package utils

import (
	"fmt"
	"strings"

	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/core/types"
	"github.com/biiot/signchecker/eth/ethconfig"
	"github.com/biiot/signchecker/internal/flags"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/node"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.

var (
	// General settings
	DataDirFlag = &cli.PathFlag{
		Name:     "datadir",
		Usage:    "Data directory for the journal, the jwt secret and the instance lock",
		Value:    node.DefaultDataDir(),
		Category: flags.ChainCategory,
	}
	NetworkIdFlag = &cli.Uint64Flag{
		Name:     "networkid",
		Usage:    "Network id reported by net_version",
		Value:    ethconfig.Defaults.NetworkId,
		Category: flags.ChainCategory,
	}
	ChainIdFlag = &cli.GenericFlag{
		Name:     "chainid",
		Usage:    "Chain id transactions are signed for and checked against (decimal or 0x hex)",
		Value:    flags.NewBigValue(ethconfig.Defaults.ChainID),
		Category: flags.ChainCategory,
	}

	// Journal database
	DBEngineFlag = &cli.StringFlag{
		Name:     "db.engine",
		Usage:    "Backing database implementation to use ('pebble', 'leveldb' or 'memory')",
		Value:    node.DefaultConfig.DBEngine,
		Category: flags.DatabaseCategory,
	}
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to the journal database",
		Value:    ethconfig.Defaults.DatabaseCache,
		Category: flags.DatabaseCategory,
	}

	// Signing and journal
	SignerKeyFlag = &cli.StringFlag{
		Name:     "signer.key",
		Usage:    "File holding the hex encoded key used by eth_signTransaction and eth_sendTransaction",
		Category: flags.SigningCategory,
	}
	TxDumpDirFlag = &cli.StringFlag{
		Name:     "txdump",
		Usage:    "Directory receiving one file per accepted raw transaction (disabled if empty)",
		Category: flags.SigningCategory,
	}
	RPCStrictSenderFlag = &cli.BoolFlag{
		Name:     "rpc.strictsender",
		Usage:    "Reject raw transactions whose sender cannot be recovered",
		Category: flags.SigningCategory,
	}
	RPCPreimageModeFlag = &cli.StringFlag{
		Name:     "rpc.preimage",
		Usage:    "Hashing rule senders are recovered with ('standard' or 'observed')",
		Value:    ethconfig.Defaults.PreimageMode,
		Category: flags.SigningCategory,
	}
	RPCGlobalTxFeeCapFlag = &cli.Float64Flag{
		Name:     "rpc.txfeecap",
		Usage:    "Sets a cap on transaction fee (in ether) that can be sent via the RPC APIs (0 = no cap)",
		Value:    ethconfig.Defaults.RPCTxFeeCap,
		Category: flags.SigningCategory,
	}
	AllowUnprotectedTxs = &cli.BoolFlag{
		Name:     "rpc.allow-unprotected-txs",
		Usage:    "Allow for unprotected (non EIP155 signed) transactions to be submitted via RPC",
		Value:    ethconfig.Defaults.AllowUnprotectedTxs,
		Category: flags.SigningCategory,
	}

	// HTTP RPC settings
	HTTPListenAddrFlag = &cli.StringFlag{
		Name:     "http.addr",
		Usage:    "HTTP-RPC server listening interface (empty disables the server)",
		Value:    node.DefaultHTTPHost,
		Category: flags.APICategory,
	}
	HTTPPortFlag = &cli.IntFlag{
		Name:     "http.port",
		Usage:    "HTTP-RPC server listening port",
		Value:    node.DefaultHTTPPort,
		Category: flags.APICategory,
	}
	HTTPCORSDomainFlag = &cli.StringFlag{
		Name:     "http.corsdomain",
		Usage:    "Comma separated list of domains from which to accept cross origin requests (browser enforced)",
		Category: flags.APICategory,
	}
	HTTPVirtualHostsFlag = &cli.StringFlag{
		Name:     "http.vhosts",
		Usage:    "Comma separated list of virtual hostnames from which to accept requests (server enforced). Accepts '*' wildcard.",
		Value:    strings.Join(node.DefaultConfig.HTTPVirtualHosts, ","),
		Category: flags.APICategory,
	}
	HTTPApiFlag = &cli.StringFlag{
		Name:     "http.api",
		Usage:    "API's offered over the HTTP-RPC interface",
		Value:    strings.Join(node.DefaultModules, ","),
		Category: flags.APICategory,
	}
	HTTPPathPrefixFlag = &cli.StringFlag{
		Name:     "http.rpcprefix",
		Usage:    "HTTP path prefix on which JSON-RPC is served. Use '/' to serve on all paths.",
		Category: flags.APICategory,
	}
	HTTPRateLimitFlag = &cli.Float64Flag{
		Name:     "http.ratelimit",
		Usage:    "Requests per second accepted by each endpoint (0 = unlimited)",
		Category: flags.APICategory,
	}
	HTTPRateBurstFlag = &cli.IntFlag{
		Name:     "http.burst",
		Usage:    "Requests allowed in a burst above the rate limit",
		Category: flags.APICategory,
	}
	WSEnabledFlag = &cli.BoolFlag{
		Name:     "ws",
		Usage:    "Enable the WS-RPC server",
		Category: flags.APICategory,
	}
	WSListenAddrFlag = &cli.StringFlag{
		Name:     "ws.addr",
		Usage:    "WS-RPC server listening interface",
		Value:    node.DefaultWSHost,
		Category: flags.APICategory,
	}
	WSPortFlag = &cli.IntFlag{
		Name:     "ws.port",
		Usage:    "WS-RPC server listening port",
		Value:    node.DefaultWSPort,
		Category: flags.APICategory,
	}
	WSApiFlag = &cli.StringFlag{
		Name:     "ws.api",
		Usage:    "API's offered over the WS-RPC interface",
		Value:    strings.Join(node.DefaultModules, ","),
		Category: flags.APICategory,
	}
	WSAllowedOriginsFlag = &cli.StringFlag{
		Name:     "ws.origins",
		Usage:    "Origins from which to accept websockets requests",
		Category: flags.APICategory,
	}
	WSPathPrefixFlag = &cli.StringFlag{
		Name:     "ws.rpcprefix",
		Usage:    "HTTP path prefix on which JSON-RPC is served over WS. Use '/' to serve on all paths.",
		Category: flags.APICategory,
	}
	JWTSecretFlag = &cli.StringFlag{
		Name:     "authrpc.jwtsecret",
		Usage:    "Path to a JWT secret guarding the HTTP and WS endpoints (generated if missing)",
		Category: flags.APICategory,
	}
	RPCLegacy404Flag = &cli.BoolFlag{
		Name:     "rpc.legacy404",
		Usage:    "Answer calls of unknown methods with a bare HTTP 404",
		Category: flags.APICategory,
	}
	BatchRequestLimit = &cli.IntFlag{
		Name:     "rpc.batch-request-limit",
		Usage:    "Maximum number of requests in a batch",
		Value:    node.DefaultConfig.BatchRequestLimit,
		Category: flags.APICategory,
	}
	BatchResponseMaxSize = &cli.IntFlag{
		Name:     "rpc.batch-response-max-size",
		Usage:    "Maximum number of bytes returned from a batched call",
		Value:    node.DefaultConfig.BatchResponseMaxSize,
		Category: flags.APICategory,
	}

	// Execution bridge
	BridgeEndpointFlag = &cli.StringFlag{
		Name:     "bridge.endpoint",
		Usage:    "Websocket endpoint of the execution engine eth_call is forwarded to",
		Category: flags.BridgeCategory,
	}
	BridgeJWTSecretFlag = &cli.StringFlag{
		Name:     "bridge.jwtsecret",
		Usage:    "Path to the JWT secret shared with the execution engine",
		Category: flags.BridgeCategory,
	}
	BridgeTimeoutFlag = &cli.DurationFlag{
		Name:     "bridge.timeout",
		Usage:    "Upper bound of a forwarded call",
		Value:    ethconfig.Defaults.Bridge.Timeout,
		Category: flags.BridgeCategory,
	}
)

var (
	// NodeFlags is the flag group of the node and its endpoints.
	NodeFlags = []cli.Flag{
		DataDirFlag,
		DBEngineFlag,
		HTTPListenAddrFlag,
		HTTPPortFlag,
		HTTPCORSDomainFlag,
		HTTPVirtualHostsFlag,
		HTTPApiFlag,
		HTTPPathPrefixFlag,
		HTTPRateLimitFlag,
		HTTPRateBurstFlag,
		WSEnabledFlag,
		WSListenAddrFlag,
		WSPortFlag,
		WSApiFlag,
		WSAllowedOriginsFlag,
		WSPathPrefixFlag,
		JWTSecretFlag,
		RPCLegacy404Flag,
		BatchRequestLimit,
		BatchResponseMaxSize,
	}
	// EthFlags is the flag group of the transaction service.
	EthFlags = []cli.Flag{
		NetworkIdFlag,
		ChainIdFlag,
		CacheFlag,
		SignerKeyFlag,
		TxDumpDirFlag,
		RPCStrictSenderFlag,
		RPCPreimageModeFlag,
		RPCGlobalTxFeeCapFlag,
		AllowUnprotectedTxs,
		BridgeEndpointFlag,
		BridgeJWTSecretFlag,
		BridgeTimeoutFlag,
	}
	// DatabaseFlags is the flag group of the database commands.
	DatabaseFlags = []cli.Flag{
		DataDirFlag,
		DBEngineFlag,
	}
)

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

// setHTTP creates the HTTP RPC listener interface string from the set
// command line flags, returning empty if the HTTP endpoint is disabled.
func setHTTP(ctx *cli.Context, cfg *node.Config) {
	if ctx.IsSet(HTTPListenAddrFlag.Name) {
		cfg.HTTPHost = ctx.String(HTTPListenAddrFlag.Name)
	}
	if ctx.IsSet(HTTPPortFlag.Name) {
		cfg.HTTPPort = ctx.Int(HTTPPortFlag.Name)
	}
	if ctx.IsSet(HTTPCORSDomainFlag.Name) {
		cfg.HTTPCors = SplitAndTrim(ctx.String(HTTPCORSDomainFlag.Name))
	}
	if ctx.IsSet(HTTPApiFlag.Name) {
		cfg.HTTPModules = SplitAndTrim(ctx.String(HTTPApiFlag.Name))
	}
	if ctx.IsSet(HTTPVirtualHostsFlag.Name) {
		cfg.HTTPVirtualHosts = SplitAndTrim(ctx.String(HTTPVirtualHostsFlag.Name))
	}
	if ctx.IsSet(HTTPPathPrefixFlag.Name) {
		cfg.HTTPPathPrefix = ctx.String(HTTPPathPrefixFlag.Name)
	}
	if ctx.IsSet(HTTPRateLimitFlag.Name) {
		cfg.HTTPRateLimit = ctx.Float64(HTTPRateLimitFlag.Name)
	}
	if ctx.IsSet(HTTPRateBurstFlag.Name) {
		cfg.HTTPRateBurst = ctx.Int(HTTPRateBurstFlag.Name)
	}
	if ctx.IsSet(RPCLegacy404Flag.Name) {
		cfg.Legacy404 = ctx.Bool(RPCLegacy404Flag.Name)
	}
	if ctx.IsSet(BatchRequestLimit.Name) {
		cfg.BatchRequestLimit = ctx.Int(BatchRequestLimit.Name)
	}
	if ctx.IsSet(BatchResponseMaxSize.Name) {
		cfg.BatchResponseMaxSize = ctx.Int(BatchResponseMaxSize.Name)
	}
}

// setWS creates the WebSocket RPC listener interface string from the set
// command line flags, returning empty if the WS endpoint is disabled.
func setWS(ctx *cli.Context, cfg *node.Config) {
	if ctx.Bool(WSEnabledFlag.Name) && cfg.WSHost == "" {
		cfg.WSHost = node.DefaultWSHost
		if ctx.IsSet(WSListenAddrFlag.Name) {
			cfg.WSHost = ctx.String(WSListenAddrFlag.Name)
		}
	}
	if ctx.IsSet(WSPortFlag.Name) {
		cfg.WSPort = ctx.Int(WSPortFlag.Name)
	}
	if ctx.IsSet(WSAllowedOriginsFlag.Name) {
		cfg.WSOrigins = SplitAndTrim(ctx.String(WSAllowedOriginsFlag.Name))
	}
	if ctx.IsSet(WSApiFlag.Name) {
		cfg.WSModules = SplitAndTrim(ctx.String(WSApiFlag.Name))
	}
	if ctx.IsSet(WSPathPrefixFlag.Name) {
		cfg.WSPathPrefix = ctx.String(WSPathPrefixFlag.Name)
	}
}

// SetNodeConfig applies node-related command line flags to the config.
func SetNodeConfig(ctx *cli.Context, cfg *node.Config) {
	setHTTP(ctx, cfg)
	setWS(ctx, cfg)

	if ctx.IsSet(DataDirFlag.Name) {
		cfg.DataDir = flags.ExpandPath(ctx.Path(DataDirFlag.Name))
	}
	if ctx.IsSet(JWTSecretFlag.Name) {
		cfg.JWTSecret = ctx.String(JWTSecretFlag.Name)
	}
	if ctx.IsSet(DBEngineFlag.Name) {
		dbEngine := ctx.String(DBEngineFlag.Name)
		if dbEngine != rawdb.DBLeveldb && dbEngine != rawdb.DBPebble && dbEngine != rawdb.DBMemory {
			Fatalf("Invalid choice for db.engine '%s', allowed 'leveldb', 'pebble' or 'memory'", dbEngine)
		}
		log.Info(fmt.Sprintf("Using %s as db engine", dbEngine))
		cfg.DBEngine = dbEngine
	}
}

// SetEthConfig applies eth-related command line flags to the config.
func SetEthConfig(ctx *cli.Context, cfg *ethconfig.Config) {
	if ctx.IsSet(NetworkIdFlag.Name) {
		cfg.NetworkId = ctx.Uint64(NetworkIdFlag.Name)
	}
	if ctx.IsSet(ChainIdFlag.Name) {
		cfg.ChainID = flags.GlobalBig(ctx, ChainIdFlag.Name)
	}
	if ctx.IsSet(CacheFlag.Name) {
		cfg.DatabaseCache = ctx.Int(CacheFlag.Name)
	}

	if ctx.IsSet(SignerKeyFlag.Name) {
		cfg.SignerKeyFile = ctx.String(SignerKeyFlag.Name)
	}
	if ctx.IsSet(TxDumpDirFlag.Name) {
		cfg.TxDumpDir = ctx.String(TxDumpDirFlag.Name)
	}
	if ctx.IsSet(RPCStrictSenderFlag.Name) {
		cfg.StrictSender = ctx.Bool(RPCStrictSenderFlag.Name)
	}
	if ctx.IsSet(RPCPreimageModeFlag.Name) {
		mode := ctx.String(RPCPreimageModeFlag.Name)
		if _, err := types.ParsePreimageMode(mode); err != nil {
			Fatalf("Invalid choice for rpc.preimage '%s', allowed 'standard' or 'observed'", mode)
		}
		cfg.PreimageMode = mode
	}
	if ctx.IsSet(RPCGlobalTxFeeCapFlag.Name) {
		cfg.RPCTxFeeCap = ctx.Float64(RPCGlobalTxFeeCapFlag.Name)
	}
	if ctx.IsSet(AllowUnprotectedTxs.Name) {
		cfg.AllowUnprotectedTxs = ctx.Bool(AllowUnprotectedTxs.Name)
	}
	if ctx.IsSet(BridgeEndpointFlag.Name) {
		cfg.Bridge.Endpoint = ctx.String(BridgeEndpointFlag.Name)
	}
	if ctx.IsSet(BridgeJWTSecretFlag.Name) {
		cfg.Bridge.JWTSecret = ctx.String(BridgeJWTSecretFlag.Name)
	}
	if ctx.IsSet(BridgeTimeoutFlag.Name) {
		cfg.Bridge.Timeout = ctx.Duration(BridgeTimeoutFlag.Name)
	}
}
