package log

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// errVmoduleSyntax is returned when a user vmodule pattern is invalid.
var errVmoduleSyntax = errors.New("expect comma-separated list of filename=N")

// GlogHandler filters records glog style: a global verbosity ceiling which
// can be raised for single packages or files with vmodule rules.
type GlogHandler struct {
	origin slog.Handler

	level    atomic.Int32
	override atomic.Bool // set while any vmodule rule is active

	mu    sync.RWMutex
	rules []vmoduleRule
	sites map[uintptr]slog.Level // callsite -> effective level
}

// vmoduleRule is one pattern=N entry of a vmodule ruleset.
type vmoduleRule struct {
	pattern string
	kind    ruleKind
	level   slog.Level
}

type ruleKind int

const (
	matchPackage ruleKind = iota // "rpc": files directly in a package ending in rpc
	matchTree                    // "rpc/*": rpc and everything below it
	matchFile                    // "server.go": a file name
)

// NewGlogHandler wraps h with verbosity filtering. The initial verbosity lets
// everything through.
func NewGlogHandler(h slog.Handler) *GlogHandler {
	g := &GlogHandler{origin: h, sites: make(map[uintptr]slog.Level)}
	g.level.Store(int32(levelMaxVerbosity))
	return g
}

// Verbosity sets the global verbosity ceiling.
func (h *GlogHandler) Verbosity(level slog.Level) {
	h.level.Store(int32(level))
}

// Vmodule replaces the per-location rules. The ruleset is a comma separated
// list of pattern=N where N is a numeric verbosity:
//
//	server.go=5     every file named server.go
//	rpc=4           files of packages whose import path ends in rpc
//	internal/*=4    everything below a directory named internal
func (h *GlogHandler) Vmodule(ruleset string) error {
	var rules []vmoduleRule
	for _, entry := range strings.Split(ruleset, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		pat, lvl, ok := strings.Cut(entry, "=")
		pat, lvl = strings.TrimSpace(pat), strings.TrimSpace(lvl)
		if !ok || pat == "" || lvl == "" || strings.Contains(lvl, "=") {
			return errVmoduleSyntax
		}
		n, err := strconv.Atoi(lvl)
		if err != nil {
			return errVmoduleSyntax
		}
		rule := vmoduleRule{pattern: strings.Trim(pat, "/"), level: FromLegacyLevel(n)}
		switch {
		case strings.HasSuffix(pat, ".go"):
			rule.kind = matchFile
		case strings.HasSuffix(pat, "/*"):
			rule.kind = matchTree
			rule.pattern = strings.TrimSuffix(rule.pattern, "/*")
		}
		if rule.level == LevelCrit {
			continue
		}
		rules = append(rules, rule)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rules = rules
	h.sites = make(map[uintptr]slog.Level)
	h.override.Store(len(rules) != 0)
	return nil
}

func (r vmoduleRule) matches(file string) bool {
	file = "/" + strings.TrimPrefix(filepath.ToSlash(file), "/")
	switch r.kind {
	case matchFile:
		return strings.HasSuffix(file, "/"+r.pattern)
	case matchTree:
		return strings.Contains(file, "/"+r.pattern+"/")
	default:
		return strings.HasSuffix(path.Dir(file), "/"+r.pattern)
	}
}

// Enabled implements slog.Handler.
func (h *GlogHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return h.override.Load() || slog.Level(h.level.Load()) <= lvl
}

// WithAttrs implements slog.Handler. The returned handler keeps its own copy
// of the current verbosity and rules.
func (h *GlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(h.origin.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.
func (h *GlogHandler) WithGroup(name string) slog.Handler {
	return h.derive(h.origin.WithGroup(name))
}

func (h *GlogHandler) derive(origin slog.Handler) *GlogHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()

	res := &GlogHandler{
		origin: origin,
		rules:  append([]vmoduleRule(nil), h.rules...),
		sites:  make(map[uintptr]slog.Level, len(h.sites)),
	}
	for pc, lvl := range h.sites {
		res.sites[pc] = lvl
	}
	res.level.Store(h.level.Load())
	res.override.Store(h.override.Load())
	return res
}

// Handle implements slog.Handler.
func (h *GlogHandler) Handle(ctx context.Context, r slog.Record) error {
	if slog.Level(h.level.Load()) <= r.Level {
		return h.origin.Handle(ctx, r)
	}
	if h.siteLevel(r.PC) <= r.Level {
		return h.origin.Handle(ctx, r)
	}
	return nil
}

// siteLevel resolves the vmodule level of a callsite. The last matching rule
// wins; callsites without a match never pass the override.
func (h *GlogHandler) siteLevel(pc uintptr) slog.Level {
	h.mu.RLock()
	lvl, ok := h.sites[pc]
	h.mu.RUnlock()
	if ok {
		return lvl
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()

	h.mu.Lock()
	defer h.mu.Unlock()
	lvl = LevelCrit + 1
	for _, rule := range h.rules {
		if rule.matches(frame.File) {
			lvl = rule.level
		}
	}
	h.sites[pc] = lvl
	return lvl
}
