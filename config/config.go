// Package config loads the mathtrace configuration.
//
// Values are resolved in three layers: `default` struct tags, then the YAML
// file, then environment variables named PREFIX_SECTION_FIELD after the yaml
// tags (for example MATHTRACE_DATABASE_SQLITE_PATH). String values in the
// file may reference the environment as ${env:NAME}.
package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/vitalvas/mathtrace/xconfig"
	"github.com/vitalvas/mathtrace/xlogger"
)

// DefaultEnvPrefix is the environment prefix used by the mathtrace command.
const DefaultEnvPrefix = "MATHTRACE"

var (
	ErrNoInputs        = errors.New("at least one input is required")
	ErrNoTraces        = errors.New("at least one trace is required")
	ErrUnknownInput    = errors.New("unknown input")
	ErrDuplicateName   = errors.New("duplicate name")
	ErrInvalidSchedule = errors.New("invalid schedule")
)

type Config struct {
	Logger   xlogger.Config `yaml:"logger"`
	Database Database       `yaml:"database"`
	Schedule Schedule       `yaml:"schedule"`

	// MaxGap applies to traces that do not set their own.
	MaxGap    float64 `yaml:"max_gap" default:"1000"`
	OutputDir string  `yaml:"output_dir" default:"."`
	Workers   int     `yaml:"workers" default:"4"`

	Inputs []Input `yaml:"inputs"`
	Traces []Trace `yaml:"traces"`
}

type Database struct {
	// SQLitePath enables the trace recorder when set.
	SQLitePath string `yaml:"sqlite_path"`
}

type Schedule struct {
	// Cron uses six fields, seconds first. Empty disables recomputation.
	Cron string `yaml:"cron"`
}

// Input is a CSV file of timestamp,value rows.
type Input struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// Trace maps expression variables to input names.
type Trace struct {
	Name       string            `yaml:"name"`
	Expression string            `yaml:"expression"`
	MaxGap     float64           `yaml:"max_gap"`
	Variables  map[string]string `yaml:"variables"`
}

// Load reads the configuration at path. A missing file leaves the defaults
// in place. An empty envPrefix disables environment overrides.
func Load(path, envPrefix string) (*Config, error) {
	cfg := &Config{}

	opts := []xconfig.Option{xconfig.WithFiles(path)}
	if envPrefix != "" {
		opts = append(opts, xconfig.WithEnv(envPrefix))
	}

	if err := xconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}

// TraceMaxGap returns the gap limit for t.
func (c *Config) TraceMaxGap(t Trace) float64 {
	if t.MaxGap > 0 {
		return t.MaxGap
	}
	return c.MaxGap
}

// Validate checks that all required fields are set and that every trace
// references a configured input.
func (c *Config) Validate() error {
	if c.MaxGap < 0 {
		return fmt.Errorf("max_gap must not be negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}

	if c.Schedule.Cron != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, c.Schedule.Cron, err)
		}
	}

	if len(c.Inputs) == 0 {
		return ErrNoInputs
	}

	inputs := make(map[string]struct{}, len(c.Inputs))
	for i, in := range c.Inputs {
		if in.Name == "" {
			return fmt.Errorf("inputs[%d].name is required", i)
		}
		if in.File == "" {
			return fmt.Errorf("inputs[%d].file is required", i)
		}
		if _, ok := inputs[in.Name]; ok {
			return fmt.Errorf("%w: input %s", ErrDuplicateName, in.Name)
		}
		inputs[in.Name] = struct{}{}
	}

	if len(c.Traces) == 0 {
		return ErrNoTraces
	}

	traces := make(map[string]struct{}, len(c.Traces))
	for i, t := range c.Traces {
		if t.Name == "" {
			return fmt.Errorf("traces[%d].name is required", i)
		}
		if _, ok := traces[t.Name]; ok {
			return fmt.Errorf("%w: trace %s", ErrDuplicateName, t.Name)
		}
		traces[t.Name] = struct{}{}

		if t.Expression == "" {
			return fmt.Errorf("traces[%d].expression is required", i)
		}
		if t.MaxGap < 0 {
			return fmt.Errorf("traces[%d].max_gap must not be negative", i)
		}

		for variable, input := range t.Variables {
			if _, ok := inputs[input]; !ok {
				return fmt.Errorf("%w %q for variable %s of trace %s", ErrUnknownInput, input, variable, t.Name)
			}
		}
	}

	return nil
}
