package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediabuddy/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Writers receive every record. When both Writers and File are empty the
	// logger writes to stderr; generated text on stdout stays clean.
	Writers []io.Writer
	// File, when set, is opened for append and receives every record.
	File      string
	AddSource bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	addSource := opts.AddSource || levelVar.Level() <= slog.LevelDebug

	writers := append([]io.Writer(nil), opts.Writers...)
	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	var w io.Writer = os.Stderr
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "", "console":
		return slog.New(newConsoleHandler(w, levelVar, addSource)), nil
	case "json":
		return slog.New(newJSONHandler(w, levelVar, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig logs to stderr and, when a log directory is configured, to
// mediabuddy.log inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	opts := Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Writers: []io.Writer{os.Stderr},
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		opts.File = filepath.Join(dir, "mediabuddy.log")
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}
