// Package log provides helpers for creating a configured slog.Logger.
//
// When a log file path is not provided, logs are written to stdout for
// non-error levels and to stderr for errors, so generated-file listings and
// failures can be redirected separately.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/wit-bindgen-scala/internal/diag"
)

// LevelTrace defines a custom slog level below Debug for very verbose output.
const LevelTrace slog.Level = -8

// ParseLevel maps a --log.level value to a slog level. Unknown values fall
// back to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// streams routes records by severity: errors go to err, everything else to
// out. Generated-file listings on stdout stay free of failures.
type streams struct {
	out, err slog.Handler
}

func (s streams) pick(level slog.Level) slog.Handler {
	if level >= slog.LevelError {
		return s.err
	}
	return s.out
}

func (s streams) Enabled(ctx context.Context, level slog.Level) bool {
	return s.pick(level).Enabled(ctx, level)
}

func (s streams) Handle(ctx context.Context, r slog.Record) error {
	return s.pick(r.Level).Handle(ctx, r)
}

func (s streams) WithAttrs(attrs []slog.Attr) slog.Handler {
	return streams{out: s.out.WithAttrs(attrs), err: s.err.WithAttrs(attrs)}
}

func (s streams) WithGroup(name string) slog.Handler {
	return streams{out: s.out.WithGroup(name), err: s.err.WithGroup(name)}
}

// tee copies every record to the console and the log file.
type tee []slog.Handler

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}

// SetupLogger builds the process logger. Without a log file, errors go to
// stderr and the rest to stdout. With one, the console receives everything
// on stderr and the file gets a full copy.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	if logFile == "" {
		return newLogger(logLevel, os.Stdout, os.Stderr, nil), nil, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(logLevel, os.Stderr, os.Stderr, f), []io.Closer{f}, nil
}

func newLogger(logLevel string, stdout, stderr, file io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(logLevel)}
	var h slog.Handler = streams{
		out: slog.NewTextHandler(stdout, opts),
		err: slog.NewTextHandler(stderr, opts),
	}
	if file != nil {
		h = tee{h, slog.NewTextHandler(file, opts)}
	}
	return slog.New(h)
}

// ErrorAttrs returns structured attributes for err. Diagnostics contribute
// their phase, kind and entity.
func ErrorAttrs(err error) []any {
	attrs := []any{"error", err.Error()}
	var d *diag.Error
	if errors.As(err, &d) {
		attrs = append(attrs, "phase", string(d.Phase), "kind", string(d.Kind))
		if d.Entity != "" {
			attrs = append(attrs, "entity", d.Entity)
		}
	}
	return attrs
}
