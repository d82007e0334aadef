package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, time.March, 7, 9, 5, 3, 42*int(time.Millisecond), time.UTC)

func termRecord(h *TerminalHandler, lvl slog.Level, msg string, attrs ...any) string {
	r := slog.NewRecord(testTime, lvl, msg, 0)
	r.Add(attrs...)
	var out bytes.Buffer
	h.wr = &out
	h.Handle(context.Background(), r)
	return out.String()
}

func TestTerminalFormat(t *testing.T) {
	h := NewTerminalHandler(nil, false)

	have := termRecord(h, LevelInfo, "Served RPC", "method", "eth_chainId", "id", 1)
	want := "[03-07|09:05:03.042/INFO ] Served RPC" + strings.Repeat(" ", termMsgJust-len("Served RPC")) + " method=eth_chainId id=1\n"
	assert.Equal(t, want, have)

	have = termRecord(h, LevelWarn, "bare")
	assert.Equal(t, "[03-07|09:05:03.042/WARN ] bare\n", have)
}

func TestTerminalQuoting(t *testing.T) {
	h := NewTerminalHandler(nil, false)

	have := termRecord(h, LevelError, "a=b", "reason", "two words", "err", errors.New("bad \"thing\""))
	assert.Contains(t, have, `"a=b"`)
	assert.Contains(t, have, `reason="two words"`)
	assert.Contains(t, have, `err="bad \"thing\""`)
}

func TestTerminalWithAttrs(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(NewTerminalHandler(&out, false)).With("module", "journal")
	l.Info("opened", "entries", 3)
	assert.Contains(t, out.String(), " module=journal entries=3\n")
}

func TestTerminalColor(t *testing.T) {
	h := NewTerminalHandler(nil, true)
	have := termRecord(h, LevelError, "boom")
	assert.Contains(t, have, "\x1b[31mERROR\x1b[0m")
}

func TestTerminalLevel(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(NewTerminalHandlerWithLevel(&out, LevelWarn, false))
	l.Info("dropped")
	l.Warn("kept")
	assert.NotContains(t, out.String(), "dropped")
	assert.Contains(t, out.String(), "kept")
}

func TestNumberFormatting(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{int64(99999), "99999"},
		{int64(-1234567), "-1,234,567"},
		{uint64(1000000), "1,000,000"},
		{big.NewInt(123456789), "123,456,789"},
		{new(big.Int).Lsh(big.NewInt(1), 70), "1,180,591,620,717,411,303,424"},
		{uint256.NewInt(100000), "100,000"},
		{(*big.Int)(nil), "<nil>"},
		{(*uint256.Int)(nil), "<nil>"},
	}
	for _, tt := range tests {
		have := string(appendValue(nil, slog.AnyValue(tt.value)))
		assert.Equal(t, tt.want, have, "%v", tt.value)
	}
}

func TestAppendTermTime(t *testing.T) {
	assert.Equal(t, "03-07|09:05:03.042", string(appendTermTime(nil, testTime)))
}

func TestJSONHandler(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(JSONHandler(&out))
	l.Info("Journaled transaction", "value", big.NewInt(42), "gas", uint256.NewInt(21000))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "info", rec["lvl"])
	assert.Equal(t, "Journaled transaction", rec["msg"])
	assert.Equal(t, "42", rec["value"])
	assert.Equal(t, "21000", rec["gas"])
	assert.Contains(t, rec, "t")
}

func TestLogfmtHandler(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(LogfmtHandlerWithLevel(&out, LevelDebug))
	l.Trace("hidden")
	l.Debug("shown", "n", uint256.NewInt(7))

	line := out.String()
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "lvl=debug")
	assert.Contains(t, line, "n=7")
}

func TestOddAttrs(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(NewTerminalHandler(&out, false))
	l.Info("odd", "key")
	assert.Contains(t, out.String(), errorKey)
}

func TestLevels(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(0))
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))

	assert.Equal(t, "INFO ", LevelAlignedString(LevelInfo))
	assert.Equal(t, "warn", LevelString(LevelWarn))
	assert.Equal(t, "unknown", LevelString(slog.Level(3)))
}

func TestCritExits(t *testing.T) {
	var code int
	prev := exit
	exit = func(c int) { code = c }
	defer func() { exit = prev }()

	var out bytes.Buffer
	NewLogger(NewTerminalHandler(&out, false)).Crit("fatal")
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "CRIT")
}

func TestRootLogger(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	var out bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandler(&out, false)))
	Info("from root", "k", "v")
	New("sub", 1).Warn("from child")

	assert.Contains(t, out.String(), "from root")
	assert.Contains(t, out.String(), "sub=1")
}

func TestDiscardHandler(t *testing.T) {
	l := NewLogger(DiscardHandler())
	assert.False(t, l.Enabled(context.Background(), LevelCrit))
	l.Error("nothing")
}

func TestGlogVerbosity(t *testing.T) {
	var out bytes.Buffer
	glog := NewGlogHandler(NewTerminalHandler(&out, false))
	glog.Verbosity(LevelWarn)
	l := NewLogger(glog)

	l.Info("filtered")
	l.Warn("passed")
	assert.NotContains(t, out.String(), "filtered")
	assert.Contains(t, out.String(), "passed")
}

func TestGlogDefaultPassesAll(t *testing.T) {
	var out bytes.Buffer
	glog := NewGlogHandler(NewTerminalHandler(&out, false))
	assert.True(t, glog.Enabled(context.Background(), LevelTrace))
	assert.True(t, glog.Enabled(context.Background(), slog.Level(-1000)))

	NewLogger(glog).Trace("lowest")
	assert.Contains(t, out.String(), "lowest")
}

func TestGlogVmodule(t *testing.T) {
	var out bytes.Buffer
	glog := NewGlogHandler(NewTerminalHandler(&out, false))
	glog.Verbosity(LevelError)
	l := NewLogger(glog)

	require.NoError(t, glog.Vmodule("logger_test.go=5"))
	l.Trace("raised")
	assert.Contains(t, out.String(), "raised")

	require.NoError(t, glog.Vmodule("elsewhere.go=5"))
	l.Debug("not raised")
	assert.NotContains(t, out.String(), "not raised")

	assert.ErrorIs(t, glog.Vmodule("rpc"), errVmoduleSyntax)
	assert.ErrorIs(t, glog.Vmodule("rpc=x"), errVmoduleSyntax)
	assert.NoError(t, glog.Vmodule("rpc=3,"))
}

func TestVmoduleRuleMatch(t *testing.T) {
	pkg := vmoduleRule{pattern: "rpc", kind: matchPackage}
	assert.True(t, pkg.matches("/src/signchecker/rpc/server.go"))
	assert.False(t, pkg.matches("/src/signchecker/rpc/sub/server.go"))

	tree := vmoduleRule{pattern: "internal", kind: matchTree}
	assert.True(t, tree.matches("/src/signchecker/internal/ethapi/api.go"))
	assert.False(t, tree.matches("/src/signchecker/node/node.go"))

	file := vmoduleRule{pattern: "api.go", kind: matchFile}
	assert.True(t, file.matches("/src/ethapi/api.go"))
	assert.False(t, file.matches("/src/ethapi/eth_api.go"))
}
