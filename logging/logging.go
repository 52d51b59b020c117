// Package logging defines the Logger interface used throughout the engine.
// It also includes functions for setting the global log level and per-component log levels.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mut          sync.Mutex
	globalLevel  = zap.InfoLevel
	loggerLevels = make(map[string]zapcore.Level)
	loggers      = make(map[string][]zap.AtomicLevel)
)

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "panic":
		return zap.PanicLevel
	case "fatal":
		return zap.FatalLevel
	default:
		panic("invalid log level '" + level + "'")
	}
}

// SetLogLevel sets the global log level.
// Loggers with a component-specific level keep their own level.
func SetLogLevel(levelStr string) {
	level := parseLevel(levelStr)
	mut.Lock()
	defer mut.Unlock()
	globalLevel = level
	for name, atoms := range loggers {
		if _, ok := loggerLevels[name]; ok {
			continue
		}
		for _, atom := range atoms {
			atom.SetLevel(level)
		}
	}
}

// SetComponentLogLevel sets a log level for the loggers with the given name,
// overriding the global level.
func SetComponentLogLevel(name, levelStr string) {
	level := parseLevel(levelStr)
	mut.Lock()
	defer mut.Unlock()
	loggerLevels[name] = level
	for _, atom := range loggers[name] {
		atom.SetLevel(level)
	}
}

// Logger is the logging interface used by the engine. It is based on zap.SugaredLogger.
type Logger interface {
	DPanic(args ...any)
	DPanicf(template string, args ...any)
	Debug(args ...any)
	Debugf(template string, args ...any)
	Error(args ...any)
	Errorf(template string, args ...any)
	Fatal(args ...any)
	Fatalf(template string, args ...any)
	Info(args ...any)
	Infof(template string, args ...any)
	Panic(args ...any)
	Panicf(template string, args ...any)
	Warn(args ...any)
	Warnf(template string, args ...any)
}

func register(name string, atom zap.AtomicLevel) {
	mut.Lock()
	defer mut.Unlock()
	if level, ok := loggerLevels[name]; ok {
		atom.SetLevel(level)
	} else {
		atom.SetLevel(globalLevel)
	}
	loggers[name] = append(loggers[name], atom)
}

// New returns a new logger for stderr with the given name.
func New(name string) Logger {
	var config zap.Config
	if strings.ToLower(os.Getenv("DAGBFT_LOG_TYPE")) == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	register(name, config.Level)
	l, err := config.Build()
	if err != nil {
		panic(err)
	}
	return l.Sugar().Named(name)
}

// NewWithDest returns a new logger for the given destination with the given name.
func NewWithDest(dest io.Writer, name string) Logger {
	atom := zap.NewAtomicLevel()
	register(name, atom)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.AddSync(dest), atom)
	l := zap.New(core)
	return l.Sugar().Named(name)
}
