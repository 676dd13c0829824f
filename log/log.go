package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	Level  = zapcore.Level
	Field  = zap.Field
	Option = zap.Option
)

const (
	DebugLevel Level = zap.DebugLevel
	InfoLevel  Level = zap.InfoLevel
	WarnLevel  Level = zap.WarnLevel
	ErrorLevel Level = zap.ErrorLevel
	FatalLevel Level = zap.FatalLevel
)

var (
	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip
)

// Logger wraps a zap.Logger. The zero value is not usable, use New or DevLogger.
type Logger struct {
	l     *zap.Logger
	level zap.AtomicLevel
}

var (
	std   = New(os.Stderr, InfoLevel, AddCallerSkip(1))
	stdMu sync.RWMutex
)

// New creates a JSON logger writing to writer.
func New(writer io.Writer, level Level, opts ...Option) *Logger {
	return newLogger(writer, level, zapcore.NewJSONEncoder(prodEncoderConfig()), nil, opts...)
}

// DevLogger creates a console logger intended for humans.
func DevLogger(writer io.Writer, level Level, opts ...Option) *Logger {
	return newLogger(writer, level,
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), nil, opts...)
}

// NewWithFilter creates a logger like New/DevLogger but drops entries that
// don't match the zapfilter rules (e.g. "debug:engineer.* info:*").
//
//nolint:whitespace // editor/linter issue
func NewWithFilter(
	writer io.Writer,
	level Level,
	json bool,
	rules string,
	opts ...Option,
) (*Logger, error) {
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, err
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	if json {
		enc = zapcore.NewJSONEncoder(prodEncoderConfig())
	}
	return newLogger(writer, level, enc, filter, opts...), nil
}

//nolint:whitespace // editor/linter issue
func newLogger(
	writer io.Writer,
	level Level,
	enc zapcore.Encoder,
	filter zapfilter.FilterFunc,
	opts ...Option,
) *Logger {
	if writer == nil {
		panic("the writer is nil")
	}
	atomicLevel := zap.NewAtomicLevelAt(level)
	var core zapcore.Core = zapcore.NewCore(enc, zapcore.AddSync(writer), atomicLevel)
	if filter != nil {
		core = zapfilter.NewFilteringCore(core, filter)
	}
	return &Logger{l: zap.New(core, opts...), level: atomicLevel}
}

func prodEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	return cfg
}

// Default returns the process wide logger.
func Default() *Logger {
	stdMu.RLock()
	defer stdMu.RUnlock()
	return std
}

// ResetDefault replaces the process wide logger. Not safe to call while
// other goroutines log through the package level functions.
func ResetDefault(l *Logger) {
	stdMu.Lock()
	defer stdMu.Unlock()
	std = l
}

// ParseLevel converts names like "debug" or "warn" to a Level.
func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

// Named returns a child logger. Names are joined by '.'.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

// WithOptions returns a copy with the zap options applied.
func (l *Logger) WithOptions(opts ...Option) *Logger {
	return &Logger{l: l.l.WithOptions(opts...), level: l.level}
}

// With returns a child logger carrying the fields on every entry.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{l: l.l.With(fields...), level: l.level}
}

func (l *Logger) Level() Level {
	return l.level.Level()
}

func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level)
}

func (l *Logger) Enabled(level Level) bool {
	return l.level.Enabled(level)
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.l.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.l.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.l.Warn(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.l.Error(msg, fields...)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.l.Fatal(msg, fields...)
}

// Log logs at the given level.
func (l *Logger) Log(level Level, msg string, fields ...Field) {
	l.l.Log(level, msg, fields...)
}

func (l *Logger) Sync() error {
	return l.l.Sync()
}

func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { Default().Fatal(msg, fields...) }

func Sync() error {
	return Default().Sync()
}
