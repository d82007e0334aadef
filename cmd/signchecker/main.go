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

// signchecker is a wallet facing Ethereum JSON-RPC endpoint that journals and
// checks signed transactions.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/biiot/signchecker/cmd/utils"
	"github.com/biiot/signchecker/eth"
	"github.com/biiot/signchecker/internal/debug"
	"github.com/biiot/signchecker/internal/flags"
	"github.com/biiot/signchecker/internal/version"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/node"
	"github.com/urfave/cli/v2"
)

const (
	clientIdentifier = "signchecker" // Client identifier used for the instance directory
)

var app = flags.NewApp("the signchecker command line interface")

var nodeFlags = flags.Merge([]cli.Flag{configFileFlag}, utils.NodeFlags, utils.EthFlags)

func init() {
	// Initialize the CLI app and start signchecker
	app.Action = signchecker
	app.Version = version.WithMeta
	app.Commands = []*cli.Command{
		dumpConfigCommand,
		dbCommand,
		versionCommand,
	}
	app.Flags = flags.Merge(nodeFlags, debug.Flags)

	app.Before = func(ctx *cli.Context) error {
		flags.MigrateGlobalFlags(ctx)
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signchecker is the main entry point into the system if no special subcommand is run.
// It creates a default node based on the command line arguments and runs it in
// blocking mode, waiting for it to be shut down.
func signchecker(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %s", args[0])
	}
	stack, backend := makeFullNode(ctx)
	defer stack.Close()

	startNode(stack, backend)
	stack.Wait()
	return nil
}

// startNode boots up the system node and reports the chain it serves.
func startNode(stack *node.Node, backend *eth.Ethereum) {
	log.Info("Starting signchecker", "version", version.WithMeta, "go", runtime.Version())
	log.Info(strings.Repeat("-", 60))
	for _, line := range strings.Split(strings.TrimRight(backend.ChainConfig().Description(), "\n"), "\n") {
		log.Info(line)
	}
	log.Info(strings.Repeat("-", 60))

	utils.StartNode(stack)

	if addr, ok := backend.Signer(); ok {
		log.Info("Signing enabled", "account", addr)
	}
}
