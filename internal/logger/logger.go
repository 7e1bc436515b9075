package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"jobboard/internal/errors"
)

var (
	// Logger is the process-wide logger. It is a no-op until Initialize runs.
	Logger *zap.SugaredLogger
	// JSONOutput records whether Initialize selected JSON encoding.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Options controls how Initialize builds the logger.
type Options struct {
	JSON  bool
	Level string
	// File redirects output to a file; empty means Writer (or stderr).
	File   string
	Writer io.Writer
}

// Initialize replaces Logger according to opts.
func Initialize(opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	sink, err := openSink(opts)
	if err != nil {
		return err
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cfg.CallerKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	JSONOutput = opts.JSON
	Logger = zap.New(zapcore.NewCore(encoder, sink, level)).Sugar()
	return nil
}

// Discard silences Logger. The TUI uses it when no log file is configured.
func Discard() {
	Logger = zap.NewNop().Sugar()
}

// Named returns a child of Logger tagged with the component name.
func Named(component string) *zap.SugaredLogger {
	return Logger.Named(component)
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l
}

// ParseLevel maps a config string onto a zap level; empty means warn.
func ParseLevel(raw string) (zapcore.Level, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return zapcore.WarnLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.WarnLevel, errors.Newf("invalid log level %q (expected debug, info, warn, or error)", raw)
	}
	return lvl, nil
}

func openSink(opts Options) (zapcore.WriteSyncer, error) {
	path := strings.TrimSpace(opts.File)
	if path == "" {
		if opts.Writer != nil {
			return zapcore.AddSync(opts.Writer), nil
		}
		return zapcore.Lock(os.Stderr), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create log directory for %s", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open log file %s", path)
	}
	return zapcore.Lock(f), nil
}
