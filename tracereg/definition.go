package tracereg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vitalvas/mathtrace/mathexpr"
	"github.com/vitalvas/mathtrace/series"
)

var (
	ErrEmptyName         = errors.New("trace name cannot be empty")
	ErrEmptyExpression   = errors.New("expression cannot be empty")
	ErrNoVariables       = errors.New("at least one variable must be defined")
	ErrEmptyVariableName = errors.New("variable name cannot be empty")
	ErrDuplicateVariable = errors.New("duplicate variable name")
	ErrNoSeriesSelected  = errors.New("no series selected for variable")
	ErrUndefinedVariable = errors.New("variable used in expression but not defined")
	ErrInvalidExpression = errors.New("invalid expression")
)

// Binding ties an expression variable to an input series.
type Binding struct {
	Name   string
	Series series.TimeSeries
}

// Definition describes a trace to create.
type Definition struct {
	Name       string
	Expression string
	Variables  []Binding
	// MaxGap <= 0 selects tracecomp.DefaultMaxGap.
	MaxGap float64
}

// Validate checks the definition against the registry. editing names the
// trace being replaced, which may keep its name.
func (d Definition) Validate(reg *Registry, editing string) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ErrEmptyName
	}

	if reg != nil && reg.Has(name) && name != editing {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}

	if strings.TrimSpace(d.Expression) == "" {
		return ErrEmptyExpression
	}

	engine := mathexpr.NewEngine()
	if err := engine.Parse(d.Expression); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidExpression, err)
	}

	if len(d.Variables) == 0 {
		return ErrNoVariables
	}

	defined := make(map[string]struct{}, len(d.Variables))
	for _, v := range d.Variables {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return ErrEmptyVariableName
		}
		if _, ok := defined[name]; ok {
			return fmt.Errorf("%w '%s'", ErrDuplicateVariable, name)
		}
		defined[name] = struct{}{}

		if series.IsNil(v.Series) {
			return fmt.Errorf("%w '%s'", ErrNoSeriesSelected, name)
		}
	}

	for _, name := range engine.Variables() {
		if _, ok := defined[name]; !ok {
			return fmt.Errorf("%w: '%s'", ErrUndefinedVariable, name)
		}
	}

	return nil
}

// Bindings returns the variables as a name to series map. Names are trimmed.
func (d Definition) Bindings() map[string]series.TimeSeries {
	out := make(map[string]series.TimeSeries, len(d.Variables))
	for _, v := range d.Variables {
		out[strings.TrimSpace(v.Name)] = v.Series
	}
	return out
}
