package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"sync"
	"time"

	"github.com/holiman/uint256"
)

type discardHandler struct{}

// DiscardHandler returns a no-op handler.
func DiscardHandler() slog.Handler {
	return discardHandler{}
}

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }

var levelColors = map[slog.Level]string{
	LevelCrit:  "\x1b[35m",
	LevelError: "\x1b[31m",
	LevelWarn:  "\x1b[33m",
	LevelInfo:  "\x1b[32m",
	LevelDebug: "\x1b[36m",
	LevelTrace: "\x1b[34m",
}

// TerminalHandler writes human readable records:
//
//	[10-15|14:02:11.042/INFO ] Served RPC                               method=eth_chainId id=1
//
// Groups are not supported and flattened into the key.
type TerminalHandler struct {
	mu       *sync.Mutex
	wr       io.Writer
	lvl      slog.Level
	useColor bool
	attrs    []slog.Attr
	group    string
	buf      []byte
}

// NewTerminalHandler returns a terminal handler emitting records of every level.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewTerminalHandlerWithLevel(wr, levelMaxVerbosity, useColor)
}

// NewTerminalHandlerWithLevel returns a terminal handler that drops records
// below lvl.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl slog.Level, useColor bool) *TerminalHandler {
	return &TerminalHandler{mu: new(sync.Mutex), wr: wr, lvl: lvl, useColor: useColor}
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf = h.format(h.buf[:0], r)
	_, err := h.wr.Write(h.buf)
	return err
}

func (h *TerminalHandler) format(b []byte, r slog.Record) []byte {
	color := ""
	if h.useColor {
		color = levelColors[r.Level]
	}
	b = append(b, '[')
	b = appendTermTime(b, r.Time)
	b = append(b, '/')
	if color != "" {
		b = append(b, color...)
		b = append(b, LevelAlignedString(r.Level)...)
		b = append(b, "\x1b[0m"...)
	} else {
		b = append(b, LevelAlignedString(r.Level)...)
	}
	b = append(b, "] "...)

	msg := termMessage(r.Message)
	b = append(b, msg...)
	if n := len(h.attrs) + r.NumAttrs(); n > 0 && len(msg) < termMsgJust {
		for i := len(msg); i < termMsgJust; i++ {
			b = append(b, ' ')
		}
	}
	for _, attr := range h.attrs {
		b = h.appendAttr(b, attr, color)
	}
	r.Attrs(func(attr slog.Attr) bool {
		if h.group != "" {
			attr.Key = h.group + "." + attr.Key
		}
		b = h.appendAttr(b, attr, color)
		return true
	})
	return append(b, '\n')
}

func (h *TerminalHandler) appendAttr(b []byte, attr slog.Attr, color string) []byte {
	b = append(b, ' ')
	if color != "" {
		b = append(b, color...)
		b = appendQuoted(b, attr.Key)
		b = append(b, "\x1b[0m"...)
	} else {
		b = appendQuoted(b, attr.Key)
	}
	b = append(b, '=')
	return appendValue(b, attr.Value)
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cpy := *h
	cpy.buf = nil
	cpy.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	cpy.attrs = append(cpy.attrs, h.attrs...)
	for _, attr := range attrs {
		if h.group != "" {
			attr.Key = h.group + "." + attr.Key
		}
		cpy.attrs = append(cpy.attrs, attr)
	}
	return &cpy
}

func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	cpy := *h
	cpy.buf = nil
	if cpy.group != "" {
		name = cpy.group + "." + name
	}
	cpy.group = name
	return &cpy
}

// JSONHandler returns a handler which prints records in JSON format.
func JSONHandler(wr io.Writer) slog.Handler {
	return JSONHandlerWithLevel(wr, levelMaxVerbosity)
}

// JSONHandlerWithLevel returns a JSON handler that drops records below level.
func JSONHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceJSON,
		Level:       level,
	})
}

// LogfmtHandler returns a handler which prints records in logfmt format.
func LogfmtHandler(wr io.Writer) slog.Handler {
	return LogfmtHandlerWithLevel(wr, levelMaxVerbosity)
}

// LogfmtHandlerWithLevel returns a logfmt handler that drops records below level.
func LogfmtHandlerWithLevel(wr io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(wr, &slog.HandlerOptions{
		ReplaceAttr: replaceLogfmt,
		Level:       level,
	})
}

func replaceLogfmt(groups []string, attr slog.Attr) slog.Attr {
	return replaceBuiltin(groups, attr, true)
}

func replaceJSON(groups []string, attr slog.Attr) slog.Attr {
	return replaceBuiltin(groups, attr, false)
}

// replaceBuiltin renames the time and level keys to t and lvl and renders
// numbers and stringers as plain strings.
func replaceBuiltin(groups []string, attr slog.Attr, logfmt bool) slog.Attr {
	if len(groups) == 0 {
		switch attr.Key {
		case slog.TimeKey:
			if attr.Value.Kind() != slog.KindTime {
				break
			}
			if logfmt {
				return slog.String("t", attr.Value.Time().Format(timeFormat))
			}
			return slog.Attr{Key: "t", Value: attr.Value}
		case slog.LevelKey:
			if l, ok := attr.Value.Any().(slog.Level); ok {
				return slog.String("lvl", LevelString(l))
			}
		}
	}
	switch v := attr.Value.Any().(type) {
	case time.Time:
		if logfmt {
			attr.Value = slog.StringValue(v.Format(timeFormat))
		}
	case *big.Int:
		attr.Value = stringOrNil(v, func() string { return v.String() })
	case *uint256.Int:
		attr.Value = stringOrNil(v, func() string { return v.Dec() })
	case fmt.Stringer:
		attr.Value = stringOrNil(v, func() string { return v.String() })
	}
	return attr
}

func stringOrNil(v any, str func() string) slog.Value {
	if v == nil || (reflect.ValueOf(v).Kind() == reflect.Pointer && reflect.ValueOf(v).IsNil()) {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(str())
}
