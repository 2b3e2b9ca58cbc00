// internal/logging/sampling.go
package logging

import (
	"go.uber.org/zap/zapcore"
)

// newSampledCore wraps core with level-aware sampling.
// Error and above are never sampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	errorCore := &levelFilterCore{
		Core:     core,
		minLevel: zapcore.ErrorLevel,
		hasMin:   true,
	}

	belowErrorCore := &levelFilterCore{
		Core:     core,
		maxLevel: zapcore.WarnLevel,
		hasMax:   true,
	}

	sampledCore := zapcore.NewSamplerWithOptions(
		belowErrorCore,
		cfg.Tick.Duration(),
		cfg.Initial,
		cfg.Thereafter,
	)

	return zapcore.NewTee(errorCore, sampledCore)
}

// levelFilterCore filters logs by level range.
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
	maxLevel zapcore.Level
	hasMin   bool
	hasMax   bool
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	if c.hasMin && lvl < c.minLevel {
		return false
	}
	if c.hasMax && lvl > c.maxLevel {
		return false
	}
	return c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child core that preserves level filtering.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:     c.Core.With(fields),
		minLevel: c.minLevel,
		maxLevel: c.maxLevel,
		hasMin:   c.hasMin,
		hasMax:   c.hasMax,
	}
}
