package tracecomp

import (
	"errors"

	"github.com/vitalvas/mathtrace/mathexpr"
)

// Run-level failures. Per-point evaluation failures never surface here;
// they are counted as skipped points.
var (
	ErrParse           = errors.New("failed to parse expression")
	ErrUnboundVariable = mathexpr.ErrUnboundVariable
	ErrEmptySeries     = errors.New("input series is empty")
	ErrNoTimestamps    = errors.New("no timestamps found in input series")
	ErrNoValidPoints   = errors.New("expression produced no valid results")
	ErrCancelled       = errors.New("computation cancelled")
	ErrNoRequest       = errors.New("no computation prepared")
	ErrBusy            = errors.New("computation already running")
	ErrNoOutput        = errors.New("output series is required")
)
