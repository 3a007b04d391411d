package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelDebug
	LevelTrace
)

// zap has no trace level, use the one below debug.
const traceLevel = zapcore.DebugLevel - 1

type Logger struct {
	base       *zap.Logger
	enabled    zap.AtomicLevel
	out        io.Writer
	prefix     string
	timestamps bool
	level      LogLevel
	isVerbose  bool
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.out = w
	}
}

func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.prefix = strings.TrimSpace(prefix)
	}
}

func WithTimestamps(enabled bool) Option {
	return func(l *Logger) {
		l.timestamps = enabled
	}
}

// New returns a logger writing to stderr; stdout is reserved for program output.
func New(options ...Option) *Logger {
	l := &Logger{
		out:        os.Stderr,
		timestamps: true,
		level:      LevelInfo,
		isVerbose:  false,
		enabled:    zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}

	for _, opt := range options {
		opt(l)
	}

	l.base = l.build()
	return l
}

func (l *Logger) build() *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = encodeLevel
	if !l.timestamps {
		ec.TimeKey = zapcore.OmitKey
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(zapcore.AddSync(l.out)), l.enabled)

	z := zap.New(core)
	if l.prefix != "" {
		z = z.Named(l.prefix)
	}
	return z
}

func encodeLevel(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if lvl == traceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(lvl, enc)
}

func (l *Logger) SetVerbose(verbose bool) {
	l.isVerbose = verbose
	l.updateLevel()
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
	l.updateLevel()
}

// updateLevel keeps the zap core in step with verbose and level, so entries
// written through Zap() are filtered the same way.
func (l *Logger) updateLevel() {
	switch {
	case l.level >= LevelTrace:
		l.enabled.SetLevel(traceLevel)
	case l.isVerbose:
		l.enabled.SetLevel(zapcore.DebugLevel)
	default:
		l.enabled.SetLevel(zapcore.InfoLevel)
	}
}

func (l *Logger) IsVerbose() bool {
	return l.isVerbose
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := *l
	child.base = l.base.With(fields...)
	return &child
}

func (l *Logger) Zap() *zap.Logger {
	return l.base
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.base.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.base.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.base.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.isVerbose {
		l.base.Debug(fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LevelTrace {
		l.base.Log(traceLevel, fmt.Sprintf(format, args...))
	}
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.base.Fatal(fmt.Sprintf(format, args...))
}

func (l *Logger) Sync() error {
	return l.base.Sync()
}
