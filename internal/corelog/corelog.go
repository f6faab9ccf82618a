// Copyright 2026 CoreDev Systems, Inc. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package corelog provides the process-wide structured logger used by the
// driver and its command-line tools. It wraps log/slog with a package-level,
// atomically reconfigurable handler selected between text and JSON output,
// plus a context-scoped field set for correlating log lines with a single
// device session.
package corelog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func toSlogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config holds logger configuration, normally populated from pkg/config.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	currentLevel  atomic.Int32
	currentFormat atomic.Value // "text" or "json"

	mu      sync.RWMutex
	slogger *slog.Logger
	output  io.Writer = os.Stderr
)

func init() {
	currentLevel.Store(int32(LevelInfo))
	currentFormat.Store("text")
	reconfigure()
}

func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	levelVar := new(slog.LevelVar)
	levelVar.Set(toSlogLevel(Level(currentLevel.Load())))
	opts := &slog.HandlerOptions{Level: levelVar}

	format, _ := currentFormat.Load().(string)
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}
	slogger = slog.New(handler)
}

// Init applies cfg. An empty field leaves the corresponding setting at its
// current value, so a zero Config is a harmless no-op.
func Init(cfg Config) error {
	if cfg.Output != "" {
		mu.Lock()
		var w io.Writer
		switch strings.ToLower(cfg.Output) {
		case "stdout":
			w = os.Stdout
		case "stderr":
			w = os.Stderr
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				mu.Unlock()
				return fmt.Errorf("corelog: open log file %q: %w", cfg.Output, err)
			}
			w = f
		}
		output = w
		mu.Unlock()
	}
	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	return nil
}

// SetLevel sets the minimum level. An unrecognized name is ignored.
func SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel.Store(int32(LevelDebug))
	case "INFO":
		currentLevel.Store(int32(LevelInfo))
	case "WARN":
		currentLevel.Store(int32(LevelWarn))
	case "ERROR":
		currentLevel.Store(int32(LevelError))
	default:
		return
	}
	reconfigure()
}

// SetFormat sets the output encoding ("text" or "json"). An unrecognized
// name is ignored.
func SetFormat(format string) {
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return
	}
	currentFormat.Store(format)
	reconfigure()
}

func logger() *slog.Logger {
	mu.RLock()
	l := slogger
	mu.RUnlock()
	return l
}

func Debug(msg string, args ...any) { logger().Debug(msg, args...) }
func Info(msg string, args ...any)  { logger().Info(msg, args...) }
func Warn(msg string, args ...any)  { logger().Warn(msg, args...) }
func Error(msg string, args ...any) { logger().Error(msg, args...) }

// With returns a logger carrying the given attributes on every call.
func With(args ...any) *slog.Logger { return logger().With(args...) }

// SessionContext holds fields that correlate a line with one device
// session: its id and the address or path of the link it drives.
type SessionContext struct {
	SessionID string
	Device    string
}

type contextKey struct{}

var sessionContextKey = contextKey{}

// WithSession attaches sc to ctx for later retrieval by InfoCtx and friends.
func WithSession(ctx context.Context, sc *SessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey, sc)
}

func sessionFromContext(ctx context.Context) *SessionContext {
	if ctx == nil {
		return nil
	}
	sc, _ := ctx.Value(sessionContextKey).(*SessionContext)
	return sc
}

func appendSessionFields(ctx context.Context, args []any) []any {
	sc := sessionFromContext(ctx)
	if sc == nil {
		return args
	}
	out := make([]any, 0, 4+len(args))
	if sc.SessionID != "" {
		out = append(out, "session_id", sc.SessionID)
	}
	if sc.Device != "" {
		out = append(out, "device", sc.Device)
	}
	return append(out, args...)
}

func DebugCtx(ctx context.Context, msg string, args ...any) {
	logger().Debug(msg, appendSessionFields(ctx, args)...)
}

func InfoCtx(ctx context.Context, msg string, args ...any) {
	logger().Info(msg, appendSessionFields(ctx, args)...)
}

func WarnCtx(ctx context.Context, msg string, args ...any) {
	logger().Warn(msg, appendSessionFields(ctx, args)...)
}

func ErrorCtx(ctx context.Context, msg string, args ...any) {
	logger().Error(msg, appendSessionFields(ctx, args)...)
}
