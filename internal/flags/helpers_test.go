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

package flags

import (
	"flag"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestExpandPath(t *testing.T) {
	home := HomeDir()
	t.Setenv("SIGNCHECKER_TEST_DIR", "/var/lib")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Join(home, "data"), ExpandPath("~/data"))
	assert.Equal(t, "/var/lib/journal", ExpandPath("$SIGNCHECKER_TEST_DIR/journal"))
	assert.Equal(t, "/a/c", ExpandPath("/a/b/../c"))
}

func TestBigValue(t *testing.T) {
	var v BigValue
	require.NoError(t, v.Set("84"))
	assert.Equal(t, "84", v.String())

	require.NoError(t, v.Set("0x54"))
	assert.Equal(t, int64(84), (*big.Int)(&v).Int64())

	assert.Error(t, v.Set("eighty-four"))
	assert.Error(t, v.Set("0x1"+strings.Repeat("0", 64)))
}

func newContext(t *testing.T, flags []cli.Flag, args ...string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestGlobalBig(t *testing.T) {
	chainFlag := &cli.GenericFlag{Name: "chainid", Value: NewBigValue(big.NewInt(84))}

	ctx := newContext(t, []cli.Flag{chainFlag})
	assert.Equal(t, big.NewInt(84), GlobalBig(ctx, "chainid"))

	ctx = newContext(t, []cli.Flag{&cli.GenericFlag{Name: "chainid", Value: NewBigValue(big.NewInt(84))}}, "--chainid", "0x1")
	assert.Equal(t, big.NewInt(1), GlobalBig(ctx, "chainid"))

	assert.Nil(t, GlobalBig(ctx, "missing"))
}

func TestCheckExclusive(t *testing.T) {
	a := &cli.StringFlag{Name: "a"}
	b := &cli.StringFlag{Name: "b"}

	ctx := newContext(t, []cli.Flag{a, b}, "--a", "x")
	assert.NoError(t, CheckExclusive(ctx, a, b))

	ctx = newContext(t, []cli.Flag{&cli.StringFlag{Name: "a"}, &cli.StringFlag{Name: "b"}}, "--a", "x", "--b", "y")
	assert.ErrorContains(t, CheckExclusive(ctx, a, b), "--a, --b")
}

func TestMerge(t *testing.T) {
	a := []cli.Flag{&cli.StringFlag{Name: "a"}}
	b := []cli.Flag{&cli.StringFlag{Name: "b"}, &cli.StringFlag{Name: "c"}}
	assert.Len(t, Merge(a, b), 3)
}

func TestHomeDir(t *testing.T) {
	t.Setenv("HOME", os.TempDir())
	assert.Equal(t, os.TempDir(), HomeDir())
}
