package log

import (
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/holiman/uint256"
)

const (
	timeFormat  = "2006-01-02T15:04:05-0700"
	termMsgJust = 40 // messages followed by attributes are padded to this width
)

// TerminalStringer is implemented by types with a shortened form for terminal output.
type TerminalStringer interface {
	TerminalString() string
}

// appendTermTime appends t as MM-DD|HH:MM:SS.mmm.
func appendTermTime(dst []byte, t time.Time) []byte {
	_, month, day := t.Date()
	hour, min, sec := t.Clock()
	dst = appendPadded(dst, int(month), 2)
	dst = append(dst, '-')
	dst = appendPadded(dst, day, 2)
	dst = append(dst, '|')
	dst = appendPadded(dst, hour, 2)
	dst = append(dst, ':')
	dst = appendPadded(dst, min, 2)
	dst = append(dst, ':')
	dst = appendPadded(dst, sec, 2)
	dst = append(dst, '.')
	return appendPadded(dst, t.Nanosecond()/int(time.Millisecond), 3)
}

// appendPadded appends the non-negative n, zero padded to width digits.
func appendPadded(dst []byte, n, width int) []byte {
	var digits [20]byte
	i := len(digits)
	for n >= 10 || width > 1 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
		width--
	}
	i--
	digits[i] = byte('0' + n)
	return append(dst, digits[i:]...)
}

// appendValue formats v for the terminal handler.
func appendValue(dst []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendQuoted(dst, v.String())
	case slog.KindInt64:
		n := v.Int64()
		if n < 0 {
			return groupDigits(dst, strconv.FormatInt(n, 10))
		}
		return groupDigits(dst, strconv.FormatUint(uint64(n), 10))
	case slog.KindUint64:
		return groupDigits(dst, strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return strconv.AppendFloat(dst, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(dst, v.Bool())
	case slog.KindDuration:
		return appendQuoted(dst, v.Duration().String())
	case slog.KindTime:
		return v.Time().AppendFormat(dst, timeFormat)
	}
	return appendAny(dst, v.Resolve().Any())
}

func appendAny(dst []byte, value any) []byte {
	if isNil(value) {
		return append(dst, "<nil>"...)
	}
	switch v := value.(type) {
	case *big.Int:
		return groupDigits(dst, v.String())
	case *uint256.Int:
		if v.IsUint64() {
			return groupDigits(dst, strconv.FormatUint(v.Uint64(), 10))
		}
		return append(dst, v.PrettyDec(',')...)
	case error:
		return appendQuoted(dst, v.Error())
	case TerminalStringer:
		return appendQuoted(dst, v.TerminalString())
	case fmt.Stringer:
		return appendQuoted(dst, v.String())
	}
	return appendQuoted(dst, fmt.Sprintf("%+v", value))
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// groupDigits appends a decimal number with thousand separators. Numbers
// below 100000 are left alone.
func groupDigits(dst []byte, num string) []byte {
	sign := ""
	if len(num) > 0 && num[0] == '-' {
		sign, num = "-", num[1:]
	}
	dst = append(dst, sign...)
	if len(num) < 6 {
		return append(dst, num...)
	}
	lead := len(num) % 3
	if lead == 0 {
		lead = 3
	}
	dst = append(dst, num[:lead]...)
	for i := lead; i < len(num); i += 3 {
		dst = append(dst, ',')
		dst = append(dst, num[i:i+3]...)
	}
	return dst
}

// appendQuoted appends s, quoting it when it holds spaces, '=', quotes or
// anything outside printable ASCII.
func appendQuoted(dst []byte, s string) []byte {
	for _, r := range s {
		if r <= '"' || r > '~' || r == '=' {
			return strconv.AppendQuote(dst, s)
		}
	}
	return append(dst, s...)
}

// termMessage quotes a log message only if it holds control characters other
// than line breaks and tabs, or '='.
func termMessage(msg string) string {
	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if r < ' ' || r > '~' || r == '=' {
			return strconv.Quote(msg)
		}
	}
	return msg
}
