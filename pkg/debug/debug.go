// Package debug configures the process logger and gates verbose output
// behind named categories.
//
// Categories select what to debug (VRMACTION_DEBUG or logging.debug, a
// comma-separated list such as "mapping,engine" or "all"). The level
// selects how much is shown (VRMACTION_LOG_LEVEL or logging.level: ERROR,
// WARN, INFO, DEBUG or TRACE). Category output is emitted at DEBUG, so a
// category only shows up when the level allows it.
//
//	debug.Log("mapping", "bone dropped", "bone", name)
//
// Known categories: engine, mapping, mcp, auth, storage, vrm, config.
//
// Logs always go to stderr because stdout carries the stdio transport.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

const (
	EnvCategories = "VRMACTION_DEBUG"
	EnvLevel      = "VRMACTION_LOG_LEVEL"
)

// LevelTrace sits below slog.LevelDebug and is printed as TRACE.
const LevelTrace = slog.LevelDebug - 4

type categorySet map[string]struct{}

func (s categorySet) has(category string) bool {
	if _, ok := s["all"]; ok {
		return true
	}
	_, ok := s[category]
	return ok
}

var enabled atomic.Pointer[categorySet]

func init() {
	setCategories(os.Getenv(EnvCategories))
}

// Init installs the default slog logger on stderr. Environment variables
// win over the configured categories and level; format is "text" or
// "json".
func Init(categories, level, format string) {
	setCategories(firstNonEmpty(os.Getenv(EnvCategories), categories))
	slog.SetDefault(NewLogger(os.Stderr, ParseLevel(firstNonEmpty(os.Getenv(EnvLevel), level)), format))
}

// NewLogger returns a logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: traceLevelName}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name to a slog.Level, falling back to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Enabled reports whether category is switched on.
func Enabled(category string) bool {
	return (*enabled.Load()).has(category)
}

// Log emits msg at DEBUG when category is enabled.
func Log(category, msg string, args ...any) {
	emit(slog.LevelDebug, category, msg, args)
}

// Trace emits msg at TRACE when category is enabled. Use it for payloads
// too large for DEBUG.
func Trace(category, msg string, args ...any) {
	emit(LevelTrace, category, msg, args)
}

func emit(level slog.Level, category, msg string, args []any) {
	if !Enabled(category) {
		return
	}
	ctx := context.Background()
	logger := slog.Default()
	if !logger.Enabled(ctx, level) {
		return
	}
	logger.Log(ctx, level, msg, append([]any{"debug", category}, args...)...)
}

func setCategories(list string) {
	set := categorySet{}
	for _, c := range strings.Split(list, ",") {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			set[c] = struct{}{}
		}
	}
	enabled.Store(&set)
}

func traceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
