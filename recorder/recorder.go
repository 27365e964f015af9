// Package recorder persists computed traces so they survive restarts and can
// be read by other tools.
package recorder

import (
	"context"
	"errors"

	"github.com/vitalvas/mathtrace/series"
)

var ErrNotFound = errors.New("trace not recorded")

// Recorder persists computed traces.
type Recorder interface {
	// SaveTrace stores trace, replacing any earlier points under the same name.
	SaveTrace(ctx context.Context, trace *series.Computed) error
	// LoadTrace returns the stored points of a trace.
	LoadTrace(ctx context.Context, name string) (*series.Series, error)
	Close() error
}
