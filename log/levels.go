package log

import (
	"log/slog"
	"math"
)

const (
	levelMaxVerbosity slog.Level = math.MinInt32

	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

// legacyLevels maps the numeric --verbosity flag (0=crit .. 5=trace) onto slog levels.
var legacyLevels = [...]slog.Level{LevelCrit, LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}

// FromLegacyLevel converts a numeric verbosity into a slog level. Values above
// the trace verbosity clamp to trace, negative ones to crit.
func FromLegacyLevel(verbosity int) slog.Level {
	switch {
	case verbosity < 0:
		return LevelCrit
	case verbosity >= len(legacyLevels):
		return LevelTrace
	}
	return legacyLevels[verbosity]
}

type levelName struct {
	lower   string
	aligned string
}

var levelNames = map[slog.Level]levelName{
	LevelTrace: {"trace", "TRACE"},
	LevelDebug: {"debug", "DEBUG"},
	LevelInfo:  {"info", "INFO "},
	LevelWarn:  {"warn", "WARN "},
	LevelError: {"error", "ERROR"},
	LevelCrit:  {"crit", "CRIT "},
}

// LevelAlignedString returns the five character upper case name of a level.
func LevelAlignedString(l slog.Level) string {
	if n, ok := levelNames[l]; ok {
		return n.aligned
	}
	return "unknown level"
}

// LevelString returns the lower case name of a level.
func LevelString(l slog.Level) string {
	if n, ok := levelNames[l]; ok {
		return n.lower
	}
	return "unknown"
}
