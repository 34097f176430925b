package config

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/desim-go/desim"
)

// Builder assembles a root Sandbox and its logger from the grouped config
// structs, the same flag-to-constructor assembly cmd/root.go performs by
// hand for the teacher's sim.Simulator — here expressed as a fluent,
// reusable constructor so both the CLI and tests can share it.
type Builder struct {
	sandboxCfg SandboxConfig
	loggingCfg LoggingConfig

	counterNames []string
}

// NewBuilder starts a Builder from a SandboxConfig. Seed defaults to 0 and
// ID to "" if left unset.
func NewBuilder(sandboxCfg SandboxConfig) *Builder {
	return &Builder{sandboxCfg: sandboxCfg}
}

// WithLogging attaches a LoggingConfig; the zero value yields an unlogged
// sandbox (Logger() returns nil), matching Sandbox.WithLogger(nil).
func (b *Builder) WithLogging(loggingCfg LoggingConfig) *Builder {
	b.loggingCfg = loggingCfg
	return b
}

// WithHourCounters declares named hour-counters to create on Build, the
// "statics registry" spec.md's component table names.
func (b *Builder) WithHourCounters(names ...string) *Builder {
	b.counterNames = append(b.counterNames, names...)
	return b
}

// Build constructs the root Sandbox, its logger (nil if LoggingConfig was
// never set), and the declared hour-counter registry keyed by name.
func (b *Builder) Build() (*desim.Sandbox, map[string]*desim.HourCounter, error) {
	sandbox := desim.NewSandbox(b.sandboxCfg.ID, b.sandboxCfg.Seed)

	if b.loggingCfg.Level != "" {
		logger, err := newLogger(b.loggingCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("config: building sandbox %q: %w", b.sandboxCfg.ID, err)
		}
		sandbox.WithLogger(logger)
	}

	counters := make(map[string]*desim.HourCounter, len(b.counterNames))
	for _, name := range b.counterNames {
		counters[name] = sandbox.AddHourCounter(false)
	}

	return sandbox, counters, nil
}

// newLogger constructs a *logrus.Logger from a LoggingConfig, defaulting an
// empty level to Info. An unrecognized level is an error.
func newLogger(cfg LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	logger.SetLevel(parsed)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger, nil
}
