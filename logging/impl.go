package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// impl embeds the sugared logger built from its cores so every zap method is available.
// Rebuilding happens only on construction and level changes.
type impl struct {
	*zap.SugaredLogger

	name  string
	level zap.AtomicLevel
	cores []zapcore.Core
}

func newImpl(name string, level Level, cores []zapcore.Core) *impl {
	imp := &impl{
		name:  name,
		level: zap.NewAtomicLevelAt(level.AsZap()),
		cores: cores,
	}
	imp.rebuild()
	return imp
}

func (imp *impl) rebuild() {
	var core zapcore.Core
	switch len(imp.cores) {
	case 0:
		core = zapcore.NewNopCore()
	case 1:
		core = imp.cores[0]
	default:
		core = zapcore.NewTee(imp.cores...)
	}
	// the cores are all built at debug, so increasing to the atomic level never fails.
	filtered, err := zapcore.NewIncreaseLevelCore(core, imp.level)
	if err != nil {
		filtered = core
	}
	imp.SugaredLogger = zap.New(filtered, zap.AddCaller()).Named(imp.name).Sugar()
}

func (imp *impl) AddAppender(core zapcore.Core) {
	imp.cores = append(imp.cores, core)
	imp.rebuild()
}

func (imp *impl) SetLevel(level Level) {
	imp.level.SetLevel(level.AsZap())
}

func (imp *impl) GetLevel() Level {
	switch imp.level.Level() {
	case zapcore.DebugLevel:
		return DEBUG
	case zapcore.InfoLevel:
		return INFO
	case zapcore.WarnLevel:
		return WARN
	default:
		return ERROR
	}
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}

	return newImpl(newName, imp.GetLevel(), append([]zapcore.Core(nil), imp.cores...))
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	return imp.SugaredLogger
}
