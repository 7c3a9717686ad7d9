// Package logging wires up the structured, colourised logger used across
// the pipeline: slog with a tint handler for a human-friendly console, and
// an optional plain text handler for a log file, following the same
// "console + optional file" split the ingest pipeline has always used.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level mirrors slog.Level under the pipeline's own names, so callers don't
// need to import log/slog themselves.
type Level = slog.Level

const (
	DEBUG Level = slog.LevelDebug
	INFO  Level = slog.LevelInfo
	WARN  Level = slog.LevelWarn
	ERROR Level = slog.LevelError
)

// Logger is a thin, printf-style wrapper over *slog.Logger, kept so call
// sites read the same way the pipeline's logging always has:
// logging.L().Info("message %d", n).
type Logger struct {
	level *slog.LevelVar
	inner *slog.Logger
	file  *os.File
}

var (
	globalLogger *Logger
	logOnce      sync.Once
)

// InitLogger creates the singleton logger. Call once at startup; later
// calls return the logger already created. logFilePath may be empty to log
// to the console only.
func InitLogger(minLevel Level, logFilePath string) *Logger {
	logOnce.Do(func() {
		levelVar := &slog.LevelVar{}
		levelVar.Set(minLevel)

		consoleHandler := tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
			Level:      levelVar,
			TimeFormat: "2006-01-02 15:04:05.000",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		})

		var handler slog.Handler = consoleHandler
		var f *os.File
		if logFilePath != "" {
			var err error
			f, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				slog.New(consoleHandler).Warn("could not open log file", "path", logFilePath, "err", err)
			} else {
				fileHandler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar})
				handler = fanOutHandler{consoleHandler, fileHandler}
			}
		}

		globalLogger = &Logger{
			level: levelVar,
			inner: slog.New(handler),
			file:  f,
		}
	})
	return globalLogger
}

// L returns the global logger, initialising a console-only one at DEBUG if
// InitLogger has not been called yet.
func L() *Logger {
	if globalLogger == nil {
		return InitLogger(DEBUG, "")
	}
	return globalLogger
}

// SetLevel adjusts the minimum level that reaches either handler, for
// hot-reloading verbosity without rebuilding the logger.
func (l *Logger) SetLevel(lvl Level) {
	l.level.Set(lvl)
}

// Close closes the log file, if one was opened.
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func (l *Logger) Debug(format string, a ...any) { l.inner.Debug(fmt.Sprintf(format, a...)) }
func (l *Logger) Info(format string, a ...any)  { l.inner.Info(fmt.Sprintf(format, a...)) }
func (l *Logger) Warn(format string, a ...any)  { l.inner.Warn(fmt.Sprintf(format, a...)) }
func (l *Logger) Error(format string, a ...any) { l.inner.Error(fmt.Sprintf(format, a...)) }

// Fatal logs at error level and exits the process, matching the pipeline's
// long-standing convention that a fatal condition stops the engine
// immediately rather than trying to recover.
func (l *Logger) Fatal(format string, a ...any) {
	l.inner.Error(fmt.Sprintf(format, a...))
	os.Exit(1)
}

// fanOutHandler forwards every record to both an interactive console
// handler and a plain-text file handler.
type fanOutHandler struct {
	console slog.Handler
	file    slog.Handler
}

func (h fanOutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.file.Enabled(ctx, level)
}

func (h fanOutHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.console.Enabled(ctx, record.Level) {
		if err := h.console.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	if h.file.Enabled(ctx, record.Level) {
		if err := h.file.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (h fanOutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return fanOutHandler{h.console.WithAttrs(attrs), h.file.WithAttrs(attrs)}
}

func (h fanOutHandler) WithGroup(name string) slog.Handler {
	return fanOutHandler{h.console.WithGroup(name), h.file.WithGroup(name)}
}
