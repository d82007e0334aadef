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

package main

import (
	"fmt"
	"os"

	"github.com/biiot/signchecker/cmd/utils"
	"github.com/biiot/signchecker/common"
	"github.com/biiot/signchecker/core/rawdb"
	"github.com/biiot/signchecker/ethdb"
	"github.com/biiot/signchecker/log"
	"github.com/biiot/signchecker/node"
	"github.com/urfave/cli/v2"
)

var (
	dbCommand = &cli.Command{
		Name:      "db",
		Usage:     "Low level journal database operations",
		ArgsUsage: "",
		Subcommands: []*cli.Command{
			dbInspectCmd,
			dbStatCmd,
			dbMetadataCmd,
			dbGetTxCmd,
		},
	}
	dbInspectCmd = &cli.Command{
		Action:      inspect,
		Name:        "inspect",
		ArgsUsage:   " ",
		Flags:       utils.DatabaseFlags,
		Usage:       "Inspect the storage size for each type of data in the journal",
		Description: `This commands iterates the entire journal. It walks every key once.`,
	}
	dbStatCmd = &cli.Command{
		Action: dbStats,
		Name:   "stats",
		Usage:  "Print leveldb or pebble statistics",
		Flags:  utils.DatabaseFlags,
	}
	dbMetadataCmd = &cli.Command{
		Action:      showMetaData,
		Name:        "metadata",
		Usage:       "Shows metadata about the journal",
		Flags:       utils.DatabaseFlags,
		Description: "Shows metadata about the journal",
	}
	dbGetTxCmd = &cli.Command{
		Action:      dbGetTx,
		Name:        "tx",
		Usage:       "Show a journaled transaction",
		ArgsUsage:   "<hash>",
		Flags:       utils.DatabaseFlags,
		Description: "This command looks up the journal entry of the given transaction hash.",
	}
)

// openJournal opens the journal of the configured node. The returned node must
// be closed by the caller.
func openJournal(ctx *cli.Context, readonly bool) (*node.Node, ethdb.KeyValueStore) {
	stack, cfg := makeConfigNode(ctx)
	db, err := stack.OpenDatabase("journal", cfg.Eth.DatabaseCache, cfg.Eth.DatabaseHandles, readonly)
	if err != nil {
		stack.Close()
		utils.Fatalf("Could not open journal: %v", err)
	}
	return stack, db
}

func inspect(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return fmt.Errorf("max 0 arguments: %v", ctx.Command.ArgsUsage)
	}
	stack, db := openJournal(ctx, true)
	defer stack.Close()

	return rawdb.InspectDatabase(db, os.Stdout)
}

func showDBStats(db ethdb.KeyValueStater) {
	stats, err := db.Stat()
	if err != nil {
		log.Warn("Failed to read database stats", "error", err)
		return
	}
	fmt.Println(stats)
}

func dbStats(ctx *cli.Context) error {
	stack, db := openJournal(ctx, true)
	defer stack.Close()

	showDBStats(db)
	return nil
}

func showMetaData(ctx *cli.Context) error {
	stack, db := openJournal(ctx, true)
	defer stack.Close()

	rawdb.PrintJournalMetadata(os.Stdout, db)
	return nil
}

func dbGetTx(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("required arguments: %v", ctx.Command.ArgsUsage)
	}
	hash, err := parseHash(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	stack, db := openJournal(ctx, true)
	defer stack.Close()

	entry := rawdb.ReadJournalEntry(db, hash)
	if entry == nil {
		return fmt.Errorf("transaction %v not journaled", hash)
	}
	fmt.Printf("seq:      %d\n", entry.Seq)
	fmt.Printf("received: %v\n", entry.Received.UTC())
	if entry.Sender != nil {
		fmt.Printf("sender:   %v\n", entry.Sender.Hex())
	} else {
		fmt.Printf("sender:   <unrecovered>\n")
	}
	fmt.Printf("raw:      %#x\n", entry.Raw)
	return nil
}

func parseHash(s string) (common.Hash, error) {
	b := common.FromHex(s)
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash %q: want %d bytes, have %d", s, common.HashLength, len(b))
	}
	return common.BytesToHash(b), nil
}
