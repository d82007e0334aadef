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

package debug

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biiot/signchecker/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestExpandStackFilter(t *testing.T) {
	tests := []struct {
		filter string
		want   string
	}{
		{"rpc", "`rpc` in Value"},
		{"!node", "`node` not in Value"},
		{"rpc || ethapi", "`rpc` in Value or `ethapi` in Value"},
		{"(rpc || ethapi) && !node", "(`rpc` in Value or `ethapi` in Value) and `node` not in Value"},
		{"internal/debug.Stacks", "`internal/debug.Stacks` in Value"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandStackFilter(tt.filter), tt.filter)
	}
}

func TestStacksFilter(t *testing.T) {
	all := Handler.Stacks(nil)
	require.Contains(t, all, "TestStacksFilter")

	filter := "TestStacksFilter"
	assert.Contains(t, Handler.Stacks(&filter), "TestStacksFilter")

	filter = "!TestStacksFilter"
	assert.NotContains(t, Handler.Stacks(&filter), "TestStacksFilter")

	filter = "(unbalanced"
	assert.Empty(t, Handler.Stacks(&filter))
}

func TestCPUProfile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cpu.prof")
	require.NoError(t, Handler.StartCPUProfile(file))
	assert.Error(t, Handler.StartCPUProfile(file))
	require.NoError(t, Handler.StopCPUProfile())
	assert.Error(t, Handler.StopCPUProfile())
	assert.FileExists(t, file)
}

func TestWriteMemProfile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mem.prof")
	require.NoError(t, Handler.WriteMemProfile(file))
	assert.FileExists(t, file)
}

func TestSetGCPercent(t *testing.T) {
	prev := Handler.SetGCPercent(50)
	defer Handler.SetGCPercent(prev)
	assert.Equal(t, 50, Handler.SetGCPercent(prev))
}

// stderrFile returns a regular file standing in for stderr, which is
// never a terminal and so never coloured.
func stderrFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "stderr"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func readFile(t *testing.T, f *os.File) string {
	t.Helper()
	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return string(data)
}

func TestLogHandlerTerminal(t *testing.T) {
	stderr := stderrFile(t)
	file := filepath.Join(t.TempDir(), "logs", "signchecker.log")

	h, closer, err := newLogHandler(LogConfig{Verbosity: 3, File: file}, stderr)
	require.NoError(t, err)
	defer closer.Close()

	l := log.NewLogger(h)
	l.Info("Journaled transaction", "nonce", 7)
	l.Debug("hidden")

	assert.Contains(t, readFile(t, stderr), "Journaled transaction")
	assert.NotContains(t, readFile(t, stderr), "\x1b[")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nonce=7")
	assert.NotContains(t, string(data), "hidden")
}

func TestLogHandlerJSON(t *testing.T) {
	stderr := stderrFile(t)
	h, closer, err := newLogHandler(LogConfig{Verbosity: 4, Format: "json"}, stderr)
	require.NoError(t, err)
	assert.Nil(t, closer)

	log.NewLogger(h).Debug("Served RPC", "method", "eth_chainId")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, stderr)), &rec))
	assert.Equal(t, "Served RPC", rec["msg"])
	assert.Equal(t, "eth_chainId", rec["method"])
}

func TestLogHandlerLogfmt(t *testing.T) {
	stderr := stderrFile(t)
	h, _, err := newLogHandler(LogConfig{Verbosity: 3, Format: "logfmt"}, stderr)
	require.NoError(t, err)

	log.NewLogger(h).Warn("Bridge unreachable", "endpoint", "ws://127.0.0.1:8546")
	assert.Contains(t, readFile(t, stderr), "msg=\"Bridge unreachable\"")
}

func TestLogHandlerVmodule(t *testing.T) {
	stderr := stderrFile(t)
	h, _, err := newLogHandler(LogConfig{Verbosity: 1, Vmodule: "debug_test.go=5"}, stderr)
	require.NoError(t, err)

	log.NewLogger(h).Trace("raised by vmodule")
	assert.Contains(t, readFile(t, stderr), "raised by vmodule")
}

func TestLogHandlerErrors(t *testing.T) {
	stderr := stderrFile(t)

	_, _, err := newLogHandler(LogConfig{Format: "xml"}, stderr)
	assert.ErrorContains(t, err, "unknown log format")

	_, _, err = newLogHandler(LogConfig{Vmodule: "rpc"}, stderr)
	assert.Error(t, err)
}

func TestLogHandlerRotate(t *testing.T) {
	stderr := stderrFile(t)
	file := filepath.Join(t.TempDir(), "rotated.log")

	h, closer, err := newLogHandler(LogConfig{Verbosity: 3, File: file, Rotate: true, MaxSizeMB: 1, MaxBackups: 2}, stderr)
	require.NoError(t, err)
	defer closer.Close()

	lj, ok := closer.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, 1, lj.MaxSize)
	assert.Equal(t, 2, lj.MaxBackups)

	log.NewLogger(h).Info("rotating")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "rotating"))
}

func TestVerbosityThroughHandler(t *testing.T) {
	var out bytes.Buffer
	prev := glogger
	defer func() { glogger = prev }()

	glogger = log.NewGlogHandler(log.NewTerminalHandler(&out, false))
	l := log.NewLogger(glogger)

	Handler.Verbosity(2)
	l.Info("quiet")
	assert.Empty(t, out.String())

	Handler.Verbosity(3)
	l.Info("loud")
	assert.Contains(t, out.String(), "loud")

	assert.Error(t, Handler.Vmodule("bad"))
}

func TestValidateLogLocation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, validateLogLocation(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, "tmp"))
}
