// Package logging package contains functionality for pathgen logging.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.viam.com/utils"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logger used throughout pathgen. It can be handed to anything
// accepting a zap compatible logger.
type Logger interface {
	utils.ZapCompatibleLogger

	// Sublogger returns a new logger whose name is this logger's name with subname appended.
	Sublogger(subname string) Logger
	// AddAppender attaches another output. Subloggers created afterwards share it.
	AddAppender(core zapcore.Core)
	SetLevel(level Level)
	GetLevel() Level
	AsZap() *zap.SugaredLogger
}

var (
	globalMu     sync.RWMutex
	globalLogger = NewDebugLogger("startup")
)

// ReplaceGlobal replaces the global loggers.
func ReplaceGlobal(logger Logger) {
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// Global returns the global logger.
func Global() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// NewLoggerConfig returns a new default logger config.
func NewLoggerConfig() zap.Config {
	// from https://github.com/uber-go/zap/blob/2314926ec34c23ee21f3dd4399438469668f8097/config.go#L135
	// but disable stacktraces, use same keys as prod, color levels and write times in UTC.
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     utcTimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// timeLayout is ISO8601 with millisecond precision. Times are always written in UTC so every
// timestamp has the same width regardless of the machine's zone.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(timeLayout))
}

func newStdoutCore() zapcore.Core {
	cfg := NewLoggerConfig()
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg.EncoderConfig),
		zapcore.Lock(os.Stdout),
		zapcore.DebugLevel,
	)
}

// NewFileAppender returns a core writing JSON lines to a size rotated file. The returned closer
// releases the file.
func NewFileAppender(filename string) (zapcore.Core, io.Closer) {
	rotating := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    64,
		MaxBackups: 2,
		Compress:   true,
	}
	encoderConfig := NewLoggerConfig().EncoderConfig
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotating), zapcore.DebugLevel), rotating
}

// NewLogger returns a new logger that outputs Info+ logs to stdout.
func NewLogger(name string) Logger {
	return newImpl(name, INFO, []zapcore.Core{newStdoutCore()})
}

// NewDebugLogger returns a new logger that outputs Debug+ logs to stdout.
func NewDebugLogger(name string) Logger {
	return newImpl(name, DEBUG, []zapcore.Core{newStdoutCore()})
}

// NewBlankLogger returns a new logger that outputs Debug+ logs, but without any
// pre-existing outputs.
func NewBlankLogger(name string) Logger {
	return newImpl(name, DEBUG, nil)
}
